package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/delivery-cli/internal/batch"
)

var (
	batchIn          string
	batchOut         string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Check delivery eligibility for every point in a spreadsheet",
	Example: `  delivery-cli batch --in customers.xlsx --out results.xlsx
  delivery-cli batch --in points.csv --out results.csv --concurrency 16`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if batchIn == "" || batchOut == "" {
			return eris.New("--in and --out are required")
		}

		ev, err := cfg.Evaluator()
		if err != nil {
			return err
		}

		points, rowErrs, err := batch.ReadPoints(batchIn)
		if err != nil {
			return err
		}
		for _, re := range rowErrs {
			zap.L().Warn("skipping row", zap.String("file", batchIn), zap.Int("line", re.Line), zap.String("error", re.Msg))
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}
		rows, sum, err := batch.Check(ctx, ev, points, concurrency)
		if err != nil {
			return err
		}
		if err := batch.WriteResults(batchOut, rows); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d points: %d deliverable, %d in city, %d failed, %d rows skipped -> %s\n",
			sum.Total, sum.Deliverable, sum.InCity, sum.Failed, len(rowErrs), batchOut)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchIn, "in", "", "input .xlsx or .csv with id, lat, lng columns (required)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "output .xlsx or .csv (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel checks (default from config)")
	rootCmd.AddCommand(batchCmd)
}
