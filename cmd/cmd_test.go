package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-compass/compass/internal/config"
	"github.com/carbon-compass/compass/internal/model"
	"github.com/carbon-compass/compass/pkg/textgen"
)

func TestListReports(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "B.PDF", "notes.txt", "data.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	files, err := listReports(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"B.PDF", "a.pdf"}, files)
}

func TestListReportsMissingDir(t *testing.T) {
	_, err := listReports(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestSummaryClient(t *testing.T) {
	cfg = &config.Config{}

	cfg.Summary.Provider = "extractive"
	client, err := summaryClient()
	require.NoError(t, err)
	assert.IsType(t, textgen.Extractive{}, client)

	cfg.Summary.Provider = "http"
	cfg.Summary.Endpoint = "http://localhost:8081/summarise"
	client, err = summaryClient()
	require.NoError(t, err)
	assert.IsType(t, &textgen.HTTPClient{}, client)

	cfg.Summary.Provider = "markov"
	_, err = summaryClient()
	assert.Error(t, err)
}

// testConfig builds a config that passes Validate("cli") with everything
// rooted in a temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	c := &config.Config{}
	c.Store.Driver = "sqlite"
	c.Store.DatabaseURL = filepath.Join(dir, "compass.db")
	c.Reports.Dir = dir
	c.Pdf.PdfToTextPath = "pdftotext"
	c.Pdf.PdfInfoPath = "pdfinfo"
	c.Chunking.ChunkSize = 1000
	c.Chunking.Overlap = 200
	c.Summary.Provider = "extractive"
	c.Batch.MaxConcurrentReports = 3
	return c
}

func TestCalcHistoryByID(t *testing.T) {
	cfg = testConfig(t)
	ctx := context.Background()

	st, err := initStore(ctx)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	id, err := st.SaveCalculation(ctx, "office-2024.csv", model.TotalEmissions{
		TotalKgCO2e:     3105,
		TotalTonnesCO2e: 3.105,
		ActivityCount:   2,
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	cmd := &cobra.Command{}
	cmd.SetContext(ctx)

	require.NoError(t, calcHistoryCmd.RunE(cmd, []string{id}))
	assert.Error(t, calcHistoryCmd.RunE(cmd, []string{"no-such-id"}))
}

func TestInitStoreSQLite(t *testing.T) {
	cfg = &config.Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = filepath.Join(t.TempDir(), "compass.db")

	st, err := initStore(context.Background())
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Migrate(context.Background()))
}
