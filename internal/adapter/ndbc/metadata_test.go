package ndbc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<stations created="2026-10-19T00:00:00UTC" count="3">
  <station id="41001" name="EAST HATTERAS" owner="NDBC" pgm="NDBC Meteorological/Ocean" type="buoy">
    <history start="1976-06-19" stop="1985-01-01" lat="34.7" lng="-72.7" met="n"/>
    <history start="2020-01-01" stop="" lat="34.68" lng="-72.66" met="y"/>
  </station>
  <station id="42040" name="LUKE OFFSHORE" owner="NDBC" type="buoy">
    <history start="1995-10-01" stop="" lat="29.2" lng="-88.2" met="y"/>
  </station>
  <station id="ADCP1" name="CURRENTS ONLY" owner="NDBC" type="fixed">
    <history start="2010-01-01" stop="" lat="30.0" lng="-88.0" met="n"/>
  </station>
</stations>`

	md, err := ParseMetadata([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 3, md.Stations)
	assert.Equal(t, 2, md.MetStations)
}

func TestParseMetadata_Failures(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"wrong root", `<html><body>maintenance</body></html>`, "unexpected metadata root"},
		{"truncated", `<stations><station id="41001"><history met="y"/>`, "parse station metadata"},
		{"malformed", `<stations><station></stations>`, "parse station metadata"},
		{"empty", ``, "empty"},
		{"no met stations", `<stations><station id="A"><history met="n"/></station></stations>`, "no stations with met data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
