package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/popctl/internal/popup"
	"github.com/jmylchreest/popctl/internal/scene"
	"github.com/jmylchreest/popctl/internal/tween"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// errInvalidConfig is returned when validation finds popups that would be
// skipped.
var errInvalidConfig = errors.New("config has invalid popups")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config for popups that would be skipped",
	Long: `Load the config, wire every popup against an in-memory scene and
report problems.

Warnings (unresolved names, backdrop controls without a close control)
are listed first. Popups the controller would skip are listed after and
make the command exit non-zero.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config: %s\n", cfgPath)

	for _, p := range cfg.Problems() {
		fmt.Fprintln(out, warnStyle.Render("warning: ")+p)
	}

	sc, defs, err := scene.FromConfig(cfg)
	if err != nil {
		fmt.Fprintln(out, failStyle.Render("error: ")+err.Error())
		return errInvalidConfig
	}
	policy, err := popup.ParsePolicy(cfg.Overlap)
	if err != nil {
		return err
	}

	// Skipped popups are reported below, not logged.
	quiet := slog.New(slog.DiscardHandler)
	ctrl := popup.NewController(tween.NewEngine(quiet), popup.Options{
		Logger:   quiet,
		Policy:   policy,
		Viewport: sc,
	})

	var verr *popup.ValidationError
	if err := ctrl.Init(defs); errors.As(err, &verr) {
		for _, d := range verr.Definitions {
			fmt.Fprintln(out, failStyle.Render("skipped: ")+d.Error())
		}
		fmt.Fprintf(out, "%d of %d popups valid\n", len(ctrl.Names()), len(defs))
		return errInvalidConfig
	}

	fmt.Fprintln(out, okStyle.Render("ok: ")+fmt.Sprintf("%d popups valid (overlap=%s)", len(ctrl.Names()), policy))
	return nil
}
