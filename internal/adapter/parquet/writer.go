package parquet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	pq "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/couchcryptid/ndbc-met-etl/internal/domain"
)

// Ext is the file extension of station artifacts.
const Ext = ".parquet"

// Writer persists station tables as Parquet files named <station>.parquet.
// It implements pipeline.TableWriter.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Parquet writer rooted at dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// WriteTable writes t to <dir>/<station>.parquet. The table is written to a
// temporary file in the same directory and renamed into place, so a failed
// write never leaves a partial artifact.
func (w *Writer) WriteTable(_ context.Context, station string, t domain.Table) (string, error) {
	path := filepath.Join(w.dir, station+Ext)
	w.logger.Info("writing parquet", "file", path, "rows", t.Len(), "cols", len(domain.ColumnNames()))

	tmp, err := os.CreateTemp(w.dir, "."+station+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	err = writeRows(tmp, toRows(t))
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

func writeRows(f *os.File, rows []row) error {
	pw, err := writer.NewParquetWriterFromWriter(f, new(row), 1)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = pq.CompressionCodec_SNAPPY

	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return nil
}

// ReadTable reads a station artifact back into a table and returns the
// column names recorded in the file schema.
func ReadTable(path string) (t domain.Table, columns []string, err error) {
	// parquet-go panics on some corrupt footers.
	defer func() {
		if r := recover(); r != nil {
			t, columns, err = domain.Table{}, nil, fmt.Errorf("read parquet %s: %v", path, r)
		}
	}()

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return domain.Table{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(row), 1)
	if err != nil {
		return domain.Table{}, nil, fmt.Errorf("read parquet footer %s: %w", path, err)
	}
	defer pr.ReadStop()

	for i, info := range pr.SchemaHandler.Infos {
		if i == 0 {
			continue // root
		}
		columns = append(columns, info.ExName)
	}

	rows := make([]row, pr.GetNumRows())
	if len(rows) > 0 {
		if err := pr.Read(&rows); err != nil {
			return domain.Table{}, nil, fmt.Errorf("read rows %s: %w", path, err)
		}
	}
	return fromRows(rows), columns, nil
}
