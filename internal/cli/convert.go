package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/railplan/pkg/pipeline"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output       string
		scaleFactor  float64
		removeNonKs  bool
		noCache      bool
		refresh      bool
		flagsChanged = map[string]bool{}
	)

	cmd := &cobra.Command{
		Use:   "convert [topology.json]",
		Short: "Convert a topology into a schematic layout",
		Long: `Convert a geographically positioned topology into a schematic layout.

The convert command reads a topology JSON file, runs the schematic layout
engine over it, and writes the converted topology back out. Every edge of
the result runs horizontally or bends once into a 45-degree diagonal,
main tracks span the full drawing width, and signals sit on grid-aligned
positions.

Results are cached locally; identical inputs with identical options
return instantly on subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{"scale", "remove-non-ks-signals"} {
				flagsChanged[name] = cmd.Flags().Changed(name)
			}

			opts := pipeline.Options{
				ScaleFactor:        c.Config.ScaleFactor,
				RemoveNonKsSignals: c.Config.RemoveNonKsSignals,
				Refresh:            refresh,
				Logger:             c.Logger,
			}
			if flagsChanged["scale"] {
				opts.ScaleFactor = scaleFactor
			}
			if flagsChanged["remove-non-ks-signals"] {
				opts.RemoveNonKsSignals = removeNonKs
			}

			return c.runConvert(cmd.Context(), args[0], output, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.schematic.json)")
	cmd.Flags().Float64Var(&scaleFactor, "scale", c.Config.ScaleFactor, "scale factor for output coordinates")
	cmd.Flags().BoolVar(&removeNonKs, "remove-non-ks-signals", false, "strip signals of foreign signal systems before layout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// runConvert executes the conversion pipeline for a file.
func (c *CLI) runConvert(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	if output == "" {
		output = defaultOutputPath(input)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Converting topology...")
	spinner.Start()

	result, err := runner.ExecuteFile(ctx, input, output, opts)
	if err != nil {
		spinner.StopWithError("Conversion failed")
		return fmt.Errorf("convert: %w", err)
	}
	spinner.Stop()

	printSuccess("Converted %s", input)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.SignalCount, result.CacheInfo.ConvertHit)
	printFile(output)
	return nil
}

// defaultOutputPath derives the output file name from the input name.
func defaultOutputPath(input string) string {
	base := strings.TrimSuffix(input, ".json")
	return base + ".schematic.json"
}
