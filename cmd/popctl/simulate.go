package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popctl/internal/adapter/output"
	"github.com/jmylchreest/popctl/internal/timeline"
)

var simulateOpts struct {
	fps       int
	hold      time.Duration
	format    string
	precision int
	separator string
	noHeader  bool
	noColor   bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <popup>",
	Short: "Run a popup headless and print its animation timeline",
	Long: `Open a popup on an in-memory scene, wait until it is shown, hold it
open, close it and wait until it is hidden again. Every frame's state and
animated properties are printed.

The popup may be given as a unique prefix of its name.

Examples:
  # Frame table of the settings popup
  popctl simulate settings

  # JSON at 30 fps with a one second hold
  popctl simulate rew --fps 30 --hold 1s -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVar(&simulateOpts.fps, "fps", timeline.DefaultFPS,
		"Frames per second")
	simulateCmd.Flags().DurationVar(&simulateOpts.hold, "hold", timeline.DefaultHold,
		"Time the popup stays shown before it is closed")
	simulateCmd.Flags().StringVarP(&simulateOpts.format, "output", "o", string(output.FormatTable),
		"Output format (table, json, yaml, plain)")
	simulateCmd.Flags().IntVar(&simulateOpts.precision, "precision", 3,
		"Decimal places for property values")
	simulateCmd.Flags().StringVar(&simulateOpts.separator, "separator", "\t",
		"Field separator for plain output")
	simulateCmd.Flags().BoolVar(&simulateOpts.noHeader, "no-header", false,
		"Omit the header row")
	simulateCmd.Flags().BoolVar(&simulateOpts.noColor, "no-color", false,
		"Disable table styling")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	opts := output.DefaultFormatterOptions()
	opts.Precision = simulateOpts.precision
	opts.Separator = simulateOpts.separator
	opts.Header = !simulateOpts.noHeader
	opts.Color = !simulateOpts.noColor

	formatter, err := output.NewFormatter(output.FormatType(simulateOpts.format), opts)
	if err != nil {
		return err
	}

	tl, err := timeline.Simulate(cfg, args[0], timeline.Options{
		FPS:    simulateOpts.fps,
		Hold:   simulateOpts.hold,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	return formatter.Format(cmd.OutOrStdout(), tl)
}
