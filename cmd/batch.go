package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	batchConcurrency int
	batchLimit       int
	batchRefresh     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyse every PDF in the reports directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		files, err := listReports(cfg.Reports.Dir)
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(files) > batchLimit {
			files = files[:batchLimit]
		}
		if len(files) == 0 {
			zap.L().Info("no reports to analyse", zap.String("dir", cfg.Reports.Dir))
			return nil
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentReports
		}

		zap.L().Info("starting batch analysis",
			zap.Int("reports", len(files)),
			zap.Int("concurrency", concurrency),
		)

		var succeeded, failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		for _, filename := range files {
			g.Go(func() error {
				result, err := env.Pipeline.Analyse(gctx, filename, batchRefresh)
				if err != nil {
					failed.Add(1)
					zap.L().Error("report analysis failed",
						zap.String("filename", filename),
						zap.Error(err),
					)
					return nil // don't abort the batch on individual failures
				}

				if err := env.Store.SaveAnalysis(gctx, result); err != nil {
					zap.L().Warn("persist analysis failed", zap.String("filename", filename), zap.Error(err))
				}

				succeeded.Add(1)
				zap.L().Info("report analysed",
					zap.String("filename", filename),
					zap.Float64("risk_score", result.Risk.OverallScore),
					zap.String("risk_level", string(result.Risk.RiskLevel)),
				)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch analysis")
		}

		zap.L().Info("batch complete",
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()),
		)
		return nil
	},
}

// listReports returns the PDF filenames in dir, sorted by name.
func listReports(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "read reports dir %q", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max reports processed in parallel (default from config)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max reports to process (0 = all)")
	batchCmd.Flags().BoolVar(&batchRefresh, "refresh", false, "ignore cached analyses and reprocess")
	rootCmd.AddCommand(batchCmd)
}
