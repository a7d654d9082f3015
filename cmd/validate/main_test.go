package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/climate-adjust-service/internal/domain"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countRow struct {
	EventID int64 `parquet:"event_id"`
	Count   int64 `parquet:"count"`
}

func writeValidDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.InputFileName),
		[]byte("event_id,year,latitude,longitude,intensity,loss\n101,1,25.1,-80.2,48.0,1500000.0\n"), 0o600))
	for _, name := range []string{domain.CountsFileName, domain.MetricsFileName, domain.GatesFileName} {
		require.NoError(t, parquet.WriteFile(filepath.Join(dir, name), []countRow{{EventID: 101, Count: 3}}))
	}
	return dir
}

func TestRun_AllPass(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, writeValidDir(t))

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "1 rows")
}

func TestRun_ReportsEveryMissingFile(t *testing.T) {
	dir := writeValidDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, domain.CountsFileName)))
	require.NoError(t, os.Remove(filepath.Join(dir, domain.GatesFileName)))

	var out bytes.Buffer
	code := run(&out, dir)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Counts path not found")
	assert.Contains(t, out.String(), "Gates path not found")
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestRun_BadYLTHeader(t *testing.T) {
	dir := writeValidDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.InputFileName), []byte("id,loss\n1,2\n"), 0o600))

	var out bytes.Buffer
	code := run(&out, dir)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "missing columns: event_id, year, latitude, longitude, intensity")
}
