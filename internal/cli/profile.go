package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/coltype/internal/pipeline"
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Infer the type of every column in a dataset",
	Long: `Profile loads a dataset and labels each column:
- bool: exactly two distinct values, both yes/no/true/false
- int / float: every value is natively an integer / a float
- date: at least --threshold of the sampled values parse as dates
- string: at least --threshold of the sampled values do not
- not found: neither dates nor strings dominate

Use "-" to read CSV from stdin.

Example:
  coltype profile data.csv
  coltype profile data.parquet --output table --explain
  coltype profile data.tsv --threshold 0.8 --seed 42`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	addProfileFlags(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := commandConfig(cmd, viper.GetViper())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, cfg.Output.Verbose, os.Stderr)
	if err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := withTimeout(cmd.Context(), timeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Profiling: %s\n", path)
		fmt.Fprintf(os.Stderr, "Threshold: %v, sample size: %d\n", cfg.Inference.Threshold, cfg.Inference.SampleSize)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	profile, err := p.ProfileFile(ctx, path)
	if err != nil {
		return fmt.Errorf("profile failed: %w", err)
	}

	if err := p.Renderer().Render(cmd.OutOrStdout(), profile); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}
