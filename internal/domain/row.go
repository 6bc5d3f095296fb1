package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrLineSkipped marks a data line that could not yield a timestamp. The
// line is dropped; remaining lines are still parsed.
var ErrLineSkipped = errors.New("line skipped")

// SkippedLine describes a data line dropped by ParseRecords.
type SkippedLine struct {
	Number int // 1-based line number in the report
	Text   string
	Err    error
}

// TokenizeLine decodes one data line using the positions in h. Field tokens
// that are missing, malformed, or beyond the end of the line decode to null.
// An error wrapping ErrLineSkipped is returned when any time component is
// absent or invalid.
func TokenizeLine(line string, h HeaderMap) (Record, error) {
	tokens := strings.Fields(line)

	ts, err := parseTimestamp(tokens, h)
	if err != nil {
		return Record{}, err
	}

	rec := Record{Time: ts}
	for i, pos := range h.fields {
		if pos == notPresent || pos >= len(tokens) {
			continue
		}
		rec.Values[i] = decodeNullable(tokens[pos])
	}
	return rec, nil
}

// parseTimestamp builds the UTC observation time from the five leading time
// columns. Two-digit years are interpreted as 2000+YY.
func parseTimestamp(tokens []string, h HeaderMap) (time.Time, error) {
	var parts [numTimeComponents]int
	for c := range parts {
		pos := h.time[c]
		if pos >= len(tokens) {
			return time.Time{}, fmt.Errorf("%w: missing %s column", ErrLineSkipped, TimeComponent(c))
		}
		v, err := strconv.Atoi(tokens[pos])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s %q is not an integer", ErrLineSkipped, TimeComponent(c), tokens[pos])
		}
		parts[c] = v
	}

	year := parts[Year]
	switch {
	case year >= 0 && year < 100:
		year += 2000
	case year < 1000:
		return time.Time{}, fmt.Errorf("%w: year %d out of range", ErrLineSkipped, parts[Year])
	}

	month, day, hour, minute := parts[Month], parts[Day], parts[Hour], parts[Minute]
	if month < 1 || month > 12 || hour < 0 || hour > 23 || minute < 0 || minute > 59 || day < 1 {
		return time.Time{}, fmt.Errorf("%w: invalid date/time %d-%02d-%02d %02d:%02d",
			ErrLineSkipped, year, month, day, hour, minute)
	}

	ts := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if ts.Day() != day {
		return time.Time{}, fmt.Errorf("%w: day %d out of range for %d-%02d", ErrLineSkipped, day, year, month)
	}
	return ts, nil
}

// ParseRecords tokenizes report lines starting at index start using h. It
// stops at the next comment line, which begins a different table. Blank lines
// are ignored. Lines that fail to yield a timestamp are returned as skipped
// rather than failing the report.
func ParseRecords(lines []string, start int, h HeaderMap) ([]Record, []SkippedLine) {
	var (
		records []Record
		skipped []SkippedLine
	)
	for i := start; i < len(lines); i++ {
		l := strings.TrimSpace(lines[i])
		if l == "" {
			continue
		}
		if strings.HasPrefix(l, "#") {
			break
		}
		rec, err := TokenizeLine(l, h)
		if err != nil {
			skipped = append(skipped, SkippedLine{Number: i + 1, Text: l, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

// String returns the header name of the time component.
func (c TimeComponent) String() string {
	switch c {
	case Year:
		return "year"
	case Month:
		return "month"
	case Day:
		return "day"
	case Hour:
		return "hour"
	case Minute:
		return "minute"
	default:
		return "unknown"
	}
}
