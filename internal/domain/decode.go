package domain

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
)

// MissingSentinel is the token NDBC uses for a missing observation.
const MissingSentinel = "MM"

// DecodeScalar decodes a single report token. It returns false when the token
// equals sentinel, is "NaN", or does not parse as a number.
func DecodeScalar(token, sentinel string) (float64, bool) {
	token = strings.TrimSpace(token)
	if token == "" || token == sentinel {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// decodeNullable wraps DecodeScalar for column storage.
func decodeNullable(token string) sql.NullFloat64 {
	v, ok := DecodeScalar(token, MissingSentinel)
	return sql.NullFloat64{Float64: v, Valid: ok}
}
