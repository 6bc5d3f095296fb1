// Command validate checks station artifacts written by ndbc: every Parquet
// file must carry the fixed 15-column schema in order, UTC timestamps, and
// finite values. When a CSV artifact for the same station sits alongside, its
// row count must match.
//
// Usage:
//
//	go run ./cmd/validate --dir data
//	go run ./cmd/validate data/41001.parquet data/46042.parquet
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/couchcryptid/ndbc-met-etl/internal/adapter/parquet"
	"github.com/couchcryptid/ndbc-met-etl/internal/domain"
)

type args struct {
	Dir   string   `arg:"-d,--dir" default:"data" help:"directory of station artifacts"`
	Files []string `arg:"positional" help:"artifact files to check (default: every .parquet in --dir)"`
}

func (args) Description() string {
	return "Validate NDBC station artifacts against the fixed output schema."
}

// phase tracks pass/fail for one artifact.
type phase struct {
	name   string
	rows   int
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	var a args
	arg.MustParse(&a)
	os.Exit(run(a, os.Stdout))
}

func run(a args, out io.Writer) int {
	files := a.Files
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob(filepath.Join(a.Dir, "*"+parquet.Ext))
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: list %s: %v\n", a.Dir, err)
			return 1
		}
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no artifacts found in %s\n", a.Dir)
		return 1
	}
	slices.Sort(files)

	fmt.Fprintln(out, "=== NDBC Artifact Validation ===")
	fmt.Fprintln(out)

	phases := make([]*phase, 0, len(files))
	for _, f := range files {
		phases = append(phases, validateArtifact(f))
	}

	allPassed := true
	rows := 0
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		rows += p.rows
		fmt.Fprintf(out, "  %-42s %6d rows  %s\n", p.name, p.rows, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Artifacts: %d, rows: %d\n", len(phases), rows)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Fprintf(out, "  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Fprintf(out, "  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

func validateArtifact(path string) *phase {
	p := &phase{name: filepath.Base(path)}

	table, columns, err := parquet.ReadTable(path)
	if err != nil {
		p.errorf("read: %v", err)
		return p
	}
	p.rows = table.Len()

	checkSchema(p, columns)
	checkTimes(p, table)
	checkValues(p, table)
	checkCSVParity(p, path, table.Len())
	return p
}

func checkSchema(p *phase, columns []string) {
	want := domain.ColumnNames()
	if !slices.Equal(columns, want) {
		p.errorf("columns = %v, want %v", columns, want)
	}
}

func checkTimes(p *phase, t domain.Table) {
	for i, ts := range t.Time {
		if ts.IsZero() {
			p.errorf("row %d: zero time", i)
			continue
		}
		if ts.Location() != time.UTC {
			p.errorf("row %d: time %s is not UTC", i, ts)
		}
		if ts.Second() != 0 || ts.Nanosecond() != 0 {
			p.errorf("row %d: time %s is not on a whole minute", i, ts)
		}
	}
}

func checkValues(p *phase, t domain.Table) {
	for _, f := range domain.Fields() {
		for i, v := range t.Column(f) {
			if v.Valid && (math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0)) {
				p.errorf("row %d: %s is %v", i, f, v.Float64)
			}
		}
	}
}

// checkCSVParity compares against a sibling CSV artifact, if one exists.
func checkCSVParity(p *phase, path string, rows int) {
	csvPath := strings.TrimSuffix(path, parquet.Ext) + ".csv"
	f, err := os.Open(csvPath)
	if err != nil {
		return
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		p.errorf("read %s: %v", filepath.Base(csvPath), err)
		return
	}
	if len(records) == 0 {
		p.errorf("%s has no header", filepath.Base(csvPath))
		return
	}
	if !slices.Equal(records[0], domain.ColumnNames()) {
		p.errorf("%s header = %v", filepath.Base(csvPath), records[0])
	}
	if got := len(records) - 1; got != rows {
		p.errorf("%s has %d rows, parquet has %d", filepath.Base(csvPath), got, rows)
	}
}
