package parquet

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ndbc-met-etl/internal/domain"
)

func testTable() domain.Table {
	rec1 := domain.Record{Time: time.Date(2024, 1, 15, 0, 10, 0, 0, time.UTC)}
	rec1.Values[domain.WDIR] = sql.NullFloat64{Float64: 270, Valid: true}
	rec1.Values[domain.WSPD] = sql.NullFloat64{Float64: 12.3, Valid: true}
	rec1.Values[domain.PRES] = sql.NullFloat64{Float64: 1013.2, Valid: true}

	rec2 := domain.Record{Time: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)}
	rec2.Values[domain.TIDE] = sql.NullFloat64{Float64: -0.4, Valid: true}

	return domain.AssembleTable([]domain.Record{rec1, rec2})
}

func TestWriter_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, slog.Default())

	path, err := w.WriteTable(context.Background(), "41001", testTable())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "41001.parquet"), path)

	got, columns, err := ReadTable(path)
	require.NoError(t, err)

	assert.Equal(t, domain.ColumnNames(), columns)
	assert.Equal(t, testTable(), got)
}

func TestWriter_EmptyTableKeepsSchema(t *testing.T) {
	dir := t.TempDir()
	path, err := NewWriter(dir, slog.Default()).WriteTable(context.Background(), "EMPTY", domain.AssembleTable(nil))
	require.NoError(t, err)

	got, columns, err := ReadTable(path)
	require.NoError(t, err)
	assert.Len(t, columns, 15)
	assert.Zero(t, got.Len())
}

func TestWriter_Idempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, slog.Default())

	path, err := w.WriteTable(context.Background(), "41001", testTable())
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = w.WriteTable(context.Background(), "41001", testTable())
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second), "artifacts differ between runs")
}

func TestWriter_MissingDirLeavesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	_, err := NewWriter(dir, slog.Default()).WriteTable(context.Background(), "41001", testTable())
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "41001.parquet"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriter_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	_, err := NewWriter(dir, slog.Default()).WriteTable(context.Background(), "41001", testTable())
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "41001.parquet", entries[0].Name())
}
