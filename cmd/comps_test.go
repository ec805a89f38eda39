package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/underwrite-cli/internal/comps"
	"github.com/sells-group/underwrite-cli/internal/export"
)

func parseCompFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addCompFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestCompFilter(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantMarket string
		wantDist   *float64
		wantMonths int
	}{
		{"defaults", nil, comps.MarketAll, nil, 12},
		{"market and distance", []string{"--market", "Tampa", "--max-distance", "5"}, "Tampa", ptr(5), 12},
		{"explicit months", []string{"--months", "24"}, comps.MarketAll, nil, 24},
		{"months disabled", []string{"--months", "0"}, comps.MarketAll, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := compFilter(parseCompFlags(t, tt.args...), 12)
			assert.Equal(t, tt.wantMarket, f.Market)
			assert.Equal(t, tt.wantDist, f.MaxDistance)
			assert.Equal(t, tt.wantMonths, f.RecencyMonths)
		})
	}
}

func ptr(v float64) *float64 { return &v }

func TestWriteOutput_Table(t *testing.T) {
	env := newTestEnv(t, clockwork.NewFakeClockAt(testNow))
	rows := env.Comps.Sales(comps.Filter{})

	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, export.SalesTable(rows), "table", ""))
	assert.Contains(t, buf.String(), "Sunset Villas (subject)")
	assert.Contains(t, buf.String(), "SIMILARITY")
}

func TestWriteOutput_CSVFile(t *testing.T) {
	env := newTestEnv(t, clockwork.NewFakeClockAt(testNow))
	rents := env.Comps.Rent(comps.Filter{})
	path := filepath.Join(t.TempDir(), "rent.csv")

	require.NoError(t, writeOutput(&bytes.Buffer{}, export.RentTable(rents), "csv", path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, recs, len(rents)+1)
	assert.Equal(t, "Name", recs[0][0])
}

func TestWriteOutput_XLSXFile(t *testing.T) {
	env := newTestEnv(t, clockwork.NewFakeClockAt(testNow))
	rows := env.Comps.Sales(comps.Filter{})
	path := filepath.Join(t.TempDir(), "sales.xlsx")

	require.NoError(t, writeOutput(&bytes.Buffer{}, export.SalesTable(rows), "xlsx", path))

	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "Sale Comps", wb.Sheets[0].Name)
	assert.Len(t, wb.Sheets[0].Rows, len(rows)+1)
}

func TestWriteOutput_Errors(t *testing.T) {
	table := export.Table{Columns: []export.Column{{Name: "Name"}}}

	err := writeOutput(&bytes.Buffer{}, table, "xlsx", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires --output")

	err = writeOutput(&bytes.Buffer{}, table, "pdf", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	err = writeOutput(&bytes.Buffer{}, table, "csv", filepath.Join(t.TempDir(), "missing", "out.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create")
}

func TestFormatFilterOptions(t *testing.T) {
	var buf bytes.Buffer
	formatFilterOptions(&buf, comps.Options{
		Markets:   []string{"All", "Tampa", "Orlando"},
		Distances: []float64{1, 3, 5, 10},
		Months:    []int{6, 12, 24, 36},
	})

	out := buf.String()
	assert.Contains(t, out, "All, Tampa, Orlando")
	assert.Contains(t, out, "1 mi, 3 mi, 5 mi, 10 mi")
	assert.Contains(t, out, "6 mo, 12 mo, 24 mo, 36 mo")
}
