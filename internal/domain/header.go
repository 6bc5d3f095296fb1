package domain

import (
	"errors"
	"strings"
)

// ErrHeaderNotFound is returned when a report has no standard meteorological
// header before its first data line.
var ErrHeaderNotFound = errors.New("standard met header not found")

// TimeComponent names one of the five leading date/time columns.
type TimeComponent int

const (
	Year TimeComponent = iota
	Month
	Day
	Hour
	Minute

	numTimeComponents = int(Minute) + 1
)

// timeTokens maps header tokens (comment marker stripped, original case) to
// time components. Month and minute are both "mm" once lowercased.
var timeTokens = map[string]TimeComponent{
	"YY":   Year,
	"YYYY": Year,
	"MM":   Month,
	"DD":   Day,
	"hh":   Hour,
	"mm":   Minute,
}

const notPresent = -1

// HeaderMap resolves column names to zero-based token positions for one
// report. It is built once by ParseHeader and is read-only afterwards.
type HeaderMap struct {
	time   [numTimeComponents]int
	fields [NumFields]int
	width  int
}

// FieldIndex returns the token position of f and whether the header named it.
func (h HeaderMap) FieldIndex(f Field) (int, bool) {
	i := h.fields[f]
	return i, i != notPresent
}

// TimeIndex returns the token position of a time component. Components the
// header did not name fall back to their conventional leading position.
func (h HeaderMap) TimeIndex(c TimeComponent) int {
	return h.time[c]
}

// Present returns the fields named by the header, in output column order.
func (h HeaderMap) Present() []Field {
	var out []Field
	for i, pos := range h.fields {
		if pos != notPresent {
			out = append(out, Field(i))
		}
	}
	return out
}

// Width is the number of tokens in the header line.
func (h HeaderMap) Width() int {
	return h.width
}

// isHeaderLine reports whether line is the column-name header: a comment
// whose first token is YY or YYYY.
func isHeaderLine(line string) bool {
	l := strings.TrimSpace(line)
	if !strings.HasPrefix(l, "#") {
		return false
	}
	tokens := strings.Fields(strings.TrimLeft(l, "#"))
	if len(tokens) == 0 {
		return false
	}
	return tokens[0] == "YY" || tokens[0] == "YYYY"
}

// ParseHeader builds a HeaderMap from a header line. It returns false if the
// line is not a standard meteorological header.
func ParseHeader(line string) (HeaderMap, bool) {
	if !isHeaderLine(line) {
		return HeaderMap{}, false
	}

	var h HeaderMap
	for i := range h.time {
		h.time[i] = notPresent
	}
	for i := range h.fields {
		h.fields[i] = notPresent
	}

	tokens := strings.Fields(strings.TrimSpace(line))
	h.width = len(tokens)
	for pos, tok := range tokens {
		tok = strings.TrimLeft(tok, "#")
		if c, ok := timeTokens[tok]; ok {
			if h.time[c] == notPresent {
				h.time[c] = pos
			}
			continue
		}
		if f, ok := ParseField(tok); ok && h.fields[f] == notPresent {
			h.fields[f] = pos
		}
	}

	for c := range h.time {
		if h.time[c] == notPresent {
			h.time[c] = c
		}
	}
	return h, true
}

// LocateHeader scans lines for the standard meteorological header and returns
// its HeaderMap along with the index of the first line after the header block.
// A units row directly beneath the header is skipped. ErrHeaderNotFound is
// returned if a data line appears before any header.
func LocateHeader(lines []string) (HeaderMap, int, error) {
	for i, line := range lines {
		l := strings.TrimSpace(line)
		if l == "" {
			continue
		}
		if !strings.HasPrefix(l, "#") {
			return HeaderMap{}, 0, ErrHeaderNotFound
		}
		h, ok := ParseHeader(l)
		if !ok {
			continue
		}
		next := i + 1
		if next < len(lines) && isCommentLine(lines[next]) && !isHeaderLine(lines[next]) {
			next++
		}
		return h, next, nil
	}
	return HeaderMap{}, 0, ErrHeaderNotFound
}

func isCommentLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}
