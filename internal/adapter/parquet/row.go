package parquet

import (
	"database/sql"
	"time"

	"github.com/couchcryptid/ndbc-met-etl/internal/domain"
)

// row is the on-disk schema of a station table: a UTC millisecond timestamp
// followed by the fourteen nullable fields in fixed order.
type row struct {
	Time int64    `parquet:"name=time, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Wdir *float64 `parquet:"name=wdir, type=DOUBLE, repetitiontype=OPTIONAL"`
	Wspd *float64 `parquet:"name=wspd, type=DOUBLE, repetitiontype=OPTIONAL"`
	Gst  *float64 `parquet:"name=gst, type=DOUBLE, repetitiontype=OPTIONAL"`
	Wvht *float64 `parquet:"name=wvht, type=DOUBLE, repetitiontype=OPTIONAL"`
	Dpd  *float64 `parquet:"name=dpd, type=DOUBLE, repetitiontype=OPTIONAL"`
	Apd  *float64 `parquet:"name=apd, type=DOUBLE, repetitiontype=OPTIONAL"`
	Mwd  *float64 `parquet:"name=mwd, type=DOUBLE, repetitiontype=OPTIONAL"`
	Pres *float64 `parquet:"name=pres, type=DOUBLE, repetitiontype=OPTIONAL"`
	Atmp *float64 `parquet:"name=atmp, type=DOUBLE, repetitiontype=OPTIONAL"`
	Wtmp *float64 `parquet:"name=wtmp, type=DOUBLE, repetitiontype=OPTIONAL"`
	Dewp *float64 `parquet:"name=dewp, type=DOUBLE, repetitiontype=OPTIONAL"`
	Vis  *float64 `parquet:"name=vis, type=DOUBLE, repetitiontype=OPTIONAL"`
	Ptdy *float64 `parquet:"name=ptdy, type=DOUBLE, repetitiontype=OPTIONAL"`
	Tide *float64 `parquet:"name=tide, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// fields returns pointers to the field slots in domain.Field order.
func (r *row) fields() [domain.NumFields]**float64 {
	return [domain.NumFields]**float64{
		&r.Wdir, &r.Wspd, &r.Gst, &r.Wvht, &r.Dpd, &r.Apd, &r.Mwd,
		&r.Pres, &r.Atmp, &r.Wtmp, &r.Dewp, &r.Vis, &r.Ptdy, &r.Tide,
	}
}

func toRows(t domain.Table) []row {
	rows := make([]row, t.Len())
	for i := range rows {
		rows[i].Time = t.Time[i].UTC().UnixMilli()
		slots := rows[i].fields()
		for f, slot := range slots {
			if v := t.Columns[f][i]; v.Valid {
				x := v.Float64
				*slot = &x
			}
		}
	}
	return rows
}

func fromRows(rows []row) domain.Table {
	records := make([]domain.Record, len(rows))
	for i := range rows {
		records[i].Time = time.UnixMilli(rows[i].Time).UTC()
		for f, slot := range rows[i].fields() {
			if *slot != nil {
				records[i].Values[f] = sql.NullFloat64{Float64: **slot, Valid: true}
			}
		}
	}
	return domain.AssembleTable(records)
}
