package domain

import (
	"database/sql"
	"time"
)

// Table is the columnar form of a station report. Every field column is
// always present and has the same length as Time.
type Table struct {
	Time    []time.Time
	Columns [NumFields][]sql.NullFloat64
}

// AssembleTable transcribes records into columns in their original order.
// No sorting, deduplication, or filtering is applied.
func AssembleTable(records []Record) Table {
	t := Table{Time: make([]time.Time, len(records))}
	for f := range t.Columns {
		t.Columns[f] = make([]sql.NullFloat64, len(records))
	}
	for i, rec := range records {
		t.Time[i] = rec.Time.UTC()
		for f := range t.Columns {
			t.Columns[f][i] = rec.Values[f]
		}
	}
	return t
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Time)
}

// Column returns the values of f, one per row.
func (t Table) Column(f Field) []sql.NullFloat64 {
	return t.Columns[f]
}

// Row returns row i as a Record.
func (t Table) Row(i int) Record {
	rec := Record{Time: t.Time[i]}
	for f := range t.Columns {
		rec.Values[f] = t.Columns[f][i]
	}
	return rec
}
