package domain

import "time"

// Outcome is the result of one station pipeline run. Err is nil on success and
// a *StationError otherwise.
type Outcome struct {
	Station    string
	Path       string
	Rows       int
	Skipped    int
	Err        error
	FinishedAt time.Time
}

// OK reports whether the station table was written.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Kind returns the failure kind, or zero on success.
func (o Outcome) Kind() FailureKind {
	k, _ := KindOf(o.Err)
	return k
}

// Status is "ok" for successful outcomes and the failure kind otherwise.
func (o Outcome) Status() string {
	if o.OK() {
		return "ok"
	}
	return o.Kind().String()
}
