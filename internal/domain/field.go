package domain

import (
	"database/sql"
	"strings"
	"time"
)

// Field is one of the fourteen standard meteorological observation columns.
type Field int

const (
	WDIR Field = iota // wind direction, degT
	WSPD              // wind speed, m/s
	GST               // gust speed, m/s
	WVHT              // significant wave height, m
	DPD               // dominant wave period, sec
	APD               // average wave period, sec
	MWD               // mean wave direction, degT
	PRES              // sea level pressure, hPa
	ATMP              // air temperature, degC
	WTMP              // sea surface temperature, degC
	DEWP              // dewpoint, degC
	VIS               // visibility, nmi
	PTDY              // pressure tendency, hPa
	TIDE              // water level, ft

	// NumFields is the number of standard meteorological fields.
	NumFields = int(TIDE) + 1
)

var fieldNames = [NumFields]string{
	"wdir", "wspd", "gst", "wvht", "dpd", "apd", "mwd",
	"pres", "atmp", "wtmp", "dewp", "vis", "ptdy", "tide",
}

// String returns the lowercase column name.
func (f Field) String() string {
	if f < 0 || int(f) >= NumFields {
		return "unknown"
	}
	return fieldNames[f]
}

// Fields returns all fields in output column order.
func Fields() []Field {
	out := make([]Field, NumFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// ParseField matches a column name case-insensitively.
func ParseField(name string) (Field, bool) {
	name = strings.ToLower(name)
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// TimeColumn is the name of the leading timestamp column in every station table.
const TimeColumn = "time"

// ColumnNames returns the fixed output schema: time followed by every field.
func ColumnNames() []string {
	names := make([]string, 0, NumFields+1)
	names = append(names, TimeColumn)
	names = append(names, fieldNames[:]...)
	return names
}

// Record is one decoded report line.
type Record struct {
	Time   time.Time
	Values [NumFields]sql.NullFloat64
}

// Value returns the decoded value for f, or an invalid NullFloat64 when the
// field was absent or missing on this line.
func (r Record) Value(f Field) sql.NullFloat64 {
	return r.Values[f]
}

// RawReport is the undecoded body of one station fetch.
type RawReport struct {
	Station string
	Status  int
	Body    []byte
}
