package domain

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Fixed file names inside the data directory.
const (
	InputFileName   = "sample-ylt.csv"
	CountsFileName  = "counts.parquet"
	MetricsFileName = "climate_metrics.parquet"
	GatesFileName   = "gates.parquet"
)

// FilePaths locates the four input files of an adjustment run.
type FilePaths struct {
	Input   string `json:"input_ylt_path"`
	Counts  string `json:"counts_path"`
	Metrics string `json:"metrics_path"`
	Gates   string `json:"gates_path"`
}

// ResolveFilePaths joins the fixed file names onto baseDir.
func ResolveFilePaths(baseDir string) FilePaths {
	return FilePaths{
		Input:   filepath.Join(baseDir, InputFileName),
		Counts:  filepath.Join(baseDir, CountsFileName),
		Metrics: filepath.Join(baseDir, MetricsFileName),
		Gates:   filepath.Join(baseDir, GatesFileName),
	}
}

// LabeledPath pairs a file path with the label used in errors and metrics.
type LabeledPath struct {
	Label string
	Path  string
}

// Labeled returns the paths in verification order: input, counts, metrics, gates.
func (p FilePaths) Labeled() []LabeledPath {
	return []LabeledPath{
		{Label: "Input YLT", Path: p.Input},
		{Label: "Counts", Path: p.Counts},
		{Label: "Metrics", Path: p.Metrics},
		{Label: "Gates", Path: p.Gates},
	}
}

// Verify checks that every path exists and is a regular file. It stops at the
// first failure and returns a *MissingFileError naming that path.
func (p FilePaths) Verify() error {
	for _, lp := range p.Labeled() {
		if err := lp.Verify(); err != nil {
			return err
		}
	}
	return nil
}

// Verify checks that the path exists and is a regular file.
func (lp LabeledPath) Verify() error {
	info, err := os.Stat(lp.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MissingFileError{Label: lp.Label, Path: lp.Path}
		}
		return &MissingFileError{Label: lp.Label, Path: lp.Path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &MissingFileError{Label: lp.Label, Path: lp.Path, Err: errors.New("not a regular file")}
	}
	return nil
}
