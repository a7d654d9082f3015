// Command validate checks a data directory before it is mounted into the
// adjustment service: every input file is present, the YLT CSV carries the
// mapped columns, and each parquet table opens cleanly.
//
// Usage:
//
//	go run ./cmd/validate -data-dir ./demo-data
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/climate-adjust-service/internal/datafiles"
	"github.com/couchcryptid/climate-adjust-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", os.Getenv("DATA_DIR"), "directory containing the YLT CSV and parquet tables (default $DATA_DIR)")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(os.Stdout, *dataDir))
}

func run(out io.Writer, dataDir string) int {
	fmt.Fprintf(out, "=== YLT Data Directory Validation: %s ===\n\n", dataDir)

	paths := domain.ResolveFilePaths(dataDir)
	phases := []*phase{
		validatePresence(paths),
		validateYLT(paths.Input),
		validateParquet(paths),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-36s %s\n", p.name, status)
		for _, n := range p.notes {
			fmt.Fprintf(out, "      %s\n", n)
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Presence ──
// Unlike the request path, reports every missing file rather than the first.

func validatePresence(paths domain.FilePaths) *phase {
	p := &phase{name: "Phase 1: Input Files Present"}
	for _, lp := range paths.Labeled() {
		if err := lp.Verify(); err != nil {
			p.errorf("%v", err)
		}
	}
	return p
}

// ── Phase 2: YLT Schema ──

func validateYLT(path string) *phase {
	p := &phase{name: "Phase 2: YLT Schema (CSV)"}
	info, err := datafiles.InspectYLT(path, domain.DefaultParams().Columns.Names())
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if info.Rows == 0 {
		p.errorf("%s: no data rows", path)
	}
	p.notef("%d rows, columns: %s", info.Rows, strings.Join(info.Columns, ", "))
	return p
}

// ── Phase 3: Parquet Tables ──

func validateParquet(paths domain.FilePaths) *phase {
	p := &phase{name: "Phase 3: Parquet Tables"}
	for _, path := range []string{paths.Counts, paths.Metrics, paths.Gates} {
		info, err := datafiles.InspectParquet(path)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		p.notef("%s: %d rows, %d columns", path, info.Rows, len(info.Columns))
	}
	return p
}
