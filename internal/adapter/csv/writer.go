package csv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/couchcryptid/ndbc-met-etl/internal/domain"
)

// Ext is the file extension of CSV station artifacts.
const Ext = ".csv"

// row mirrors the Parquet schema. Null values are written as empty cells.
type row struct {
	Time string `csv:"time"`
	Wdir string `csv:"wdir"`
	Wspd string `csv:"wspd"`
	Gst  string `csv:"gst"`
	Wvht string `csv:"wvht"`
	Dpd  string `csv:"dpd"`
	Apd  string `csv:"apd"`
	Mwd  string `csv:"mwd"`
	Pres string `csv:"pres"`
	Atmp string `csv:"atmp"`
	Wtmp string `csv:"wtmp"`
	Dewp string `csv:"dewp"`
	Vis  string `csv:"vis"`
	Ptdy string `csv:"ptdy"`
	Tide string `csv:"tide"`
}

// Writer persists station tables as CSV files named <station>.csv.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a CSV writer rooted at dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// WriteTable writes t to <dir>/<station>.csv via a temporary file and rename.
func (w *Writer) WriteTable(_ context.Context, station string, t domain.Table) (string, error) {
	path := filepath.Join(w.dir, station+Ext)
	w.logger.Info("writing csv", "file", path, "rows", t.Len())

	tmp, err := os.CreateTemp(w.dir, "."+station+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	err = gocsv.Marshal(toRows(t), tmp)
	if err != nil {
		err = fmt.Errorf("marshal csv: %w", err)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	return path, nil
}

func toRows(t domain.Table) []*row {
	rows := make([]*row, t.Len())
	for i := range rows {
		r := &row{Time: t.Time[i].UTC().Format(time.RFC3339)}
		cells := [domain.NumFields]*string{
			&r.Wdir, &r.Wspd, &r.Gst, &r.Wvht, &r.Dpd, &r.Apd, &r.Mwd,
			&r.Pres, &r.Atmp, &r.Wtmp, &r.Dewp, &r.Vis, &r.Ptdy, &r.Tide,
		}
		for f, cell := range cells {
			if v := t.Columns[f][i]; v.Valid {
				*cell = strconv.FormatFloat(v.Float64, 'f', -1, 64)
			}
		}
		rows[i] = r
	}
	return rows
}
