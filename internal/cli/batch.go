package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/coltype/internal/pipeline"
	"github.com/ppiankov/coltype/internal/worker"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Profile multiple datasets in parallel",
	Long: `Batch profiles several datasets concurrently:
- Paths come from the arguments and/or a list file (--from, one per line)
- Duplicate paths are profiled once
- Files with identical content are profiled once (in-memory cache)
- A failing file is reported and the others still complete

Example:
  coltype batch a.csv b.parquet c.arrow
  coltype batch --from datasets.txt --concurrency 4 --output table`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("concurrency", runtime.NumCPU(), "number of files profiled at once")
	batchCmd.Flags().String("from", "", "file listing dataset paths, one per line")
	addProfileFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd, viper.GetViper())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, cfg.Output.Verbose, os.Stderr)
	if err != nil {
		return err
	}

	from, _ := cmd.Flags().GetString("from")
	if from == "" && len(args) == 0 {
		return fmt.Errorf("no datasets given")
	}

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := withTimeout(cmd.Context(), timeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  coltype Batch Profiling\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Arguments:    %d\n", len(args))
	if from != "" {
		fmt.Fprintf(os.Stderr, "  Path list:    %s\n", from)
	}
	fmt.Fprintf(os.Stderr, "  Concurrency:  %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Threshold:    %v\n", cfg.Inference.Threshold)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", timeout)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, concurrency)
	var results []*worker.FileResult
	if from != "" {
		results, err = processor.ProcessFile(ctx, from, args...)
		if err != nil {
			return fmt.Errorf("process file: %w", err)
		}
	} else {
		results = processor.ProcessPaths(ctx, worker.DedupePaths(args))
	}
	if len(results) == 0 {
		return fmt.Errorf("no datasets given")
	}

	failureCount := 0
	for _, result := range results {
		if err := result.GetError(); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%d rows, %d columns)\n", result.Path, result.Profile.Rows, result.Profile.Types.Len())
	}

	if err := p.Renderer().RenderBatch(cmd.OutOrStdout(), results); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d datasets\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", len(results)-failureCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d datasets failed", failureCount, len(results))
	}
	return nil
}
