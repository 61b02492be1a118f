package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/coltype/internal/model"
)

// flagKeys maps command flags to config keys
var flagKeys = map[string]string{
	"threshold":     "inference.threshold",
	"sample-size":   "inference.sample_size",
	"parallel-rows": "inference.parallel_row_threshold",
	"workers":       "inference.workers",
	"seed":          "inference.seed",
	"format":        "loader.format",
	"delimiter":     "loader.delimiter",
	"output":        "output.format",
	"explain":       "output.explain",
}

// addProfileFlags registers the inference, loader and output flags shared by profile and batch
func addProfileFlags(cmd *cobra.Command) {
	def := model.DefaultConfig()

	// Inference flags
	cmd.Flags().Float64("threshold", def.Inference.Threshold, "minimum share of sampled values that must agree, in (0,1]")
	cmd.Flags().Int("sample-size", def.Inference.SampleSize, "maximum number of values inspected per text column")
	cmd.Flags().Int("parallel-rows", def.Inference.ParallelRowThreshold, "row count above which columns are resolved in parallel")
	cmd.Flags().Int("workers", def.Inference.Workers, "parallel workers (0 = all CPUs)")
	cmd.Flags().Uint64("seed", def.Inference.Seed, "sampling seed for reproducible results (0 = random)")

	// Loader flags
	cmd.Flags().String("format", def.Loader.Format, "input format: csv, parquet, arrow (default: by extension)")
	cmd.Flags().String("delimiter", def.Loader.Delimiter, "CSV field delimiter")

	// Output flags
	cmd.Flags().StringP("output", "o", def.Output.Format, "output format: json, yaml, table")
	cmd.Flags().Bool("explain", false, "include the rule, sample size and tally for every column")
	cmd.Flags().Bool("no-cache", false, "disable the in-memory profile cache")

	cmd.Flags().Duration("timeout", 10*time.Minute, "overall timeout (0 = none)")
}

// bindProfileFlags binds the running command's flags to viper.
// Binding happens at run time because profile and batch share keys.
func bindProfileFlags(cmd *cobra.Command, v *viper.Viper) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// commandConfig loads the effective configuration for a profiling command
func commandConfig(cmd *cobra.Command, v *viper.Viper) (*model.Config, error) {
	if err := bindProfileFlags(cmd, v); err != nil {
		return nil, err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
