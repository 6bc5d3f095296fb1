package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a station could not be ingested.
type FailureKind int

const (
	Unavailable FailureKind = iota + 1
	TransportError
	EmptyData
	HeaderNotFound
	NoStandardMetRows
	WriteError
	MetadataCheckFailed
)

// Sentinel errors, one per failure kind, for use with errors.Is.
var (
	ErrUnavailable         = errors.New("data unavailable")
	ErrTransport           = errors.New("transport error")
	ErrEmptyData           = errors.New("empty data")
	ErrNoStandardMetRows   = errors.New("no standard met rows found")
	ErrWrite               = errors.New("write failed")
	ErrMetadataCheckFailed = errors.New("metadata check failed")
)

func (k FailureKind) String() string {
	switch k {
	case Unavailable:
		return "unavailable"
	case TransportError:
		return "transport_error"
	case EmptyData:
		return "empty_data"
	case HeaderNotFound:
		return "header_not_found"
	case NoStandardMetRows:
		return "no_standard_met_rows"
	case WriteError:
		return "write_error"
	case MetadataCheckFailed:
		return "metadata_check_failed"
	default:
		return "unknown"
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case Unavailable:
		return ErrUnavailable
	case TransportError:
		return ErrTransport
	case EmptyData:
		return ErrEmptyData
	case HeaderNotFound:
		return ErrHeaderNotFound
	case NoStandardMetRows:
		return ErrNoStandardMetRows
	case WriteError:
		return ErrWrite
	case MetadataCheckFailed:
		return ErrMetadataCheckFailed
	default:
		return nil
	}
}

// StationError is a classified, recoverable failure scoped to one station
// (or, for MetadataCheckFailed, to the metadata check).
type StationError struct {
	Station string
	Kind    FailureKind
	Err     error
}

// Fail builds a StationError. A nil cause falls back to the kind's sentinel.
func Fail(station string, kind FailureKind, err error) *StationError {
	if err == nil {
		err = kind.sentinel()
	}
	return &StationError{Station: station, Kind: kind, Err: err}
}

func (e *StationError) Error() string {
	if e.Station == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("station %s: %s: %v", e.Station, e.Kind, e.Err)
}

func (e *StationError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the failure kind.
func (e *StationError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf extracts the failure kind from err.
func KindOf(err error) (FailureKind, bool) {
	var se *StationError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
