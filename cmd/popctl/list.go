package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/popctl/internal/config"
	"github.com/jmylchreest/popctl/internal/model"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured popups",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	source := "built-in demo"
	if info, err := os.Stat(cfgPath); err == nil {
		source = fmt.Sprintf("%s (modified %s)", cfgPath, humanize.Time(info.ModTime()))
	}
	fmt.Fprintf(out, "%s  overlap=%s\n", source, cfg.Overlap)

	keys := make(map[string]string, len(cfg.Controls))
	for _, c := range cfg.Controls {
		keys[c.Name] = c.Key
	}

	rows := make([][]string, 0, len(cfg.Popups))
	for i, p := range cfg.Popups {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("popup-%d", i)
		}
		rows = append(rows, []string{
			name,
			p.Trigger,
			keys[p.Trigger],
			p.Surface,
			animationName(p),
			durationOf(p),
			dash(p.Close),
			dash(p.BackgroundClose),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("NAME", "TRIGGER", "KEY", "SURFACE", "ANIMATION", "DURATION", "CLOSE", "BACKDROP").
		Rows(rows...)
	fmt.Fprintln(out, t.String())
	fmt.Fprintf(out, "%s popups\n", humanize.Comma(int64(len(rows))))
	return nil
}

func animationName(p config.PopupConfig) string {
	anim, err := p.AnimationType()
	if err != nil {
		return p.Animation + " (invalid)"
	}
	return anim.String()
}

func durationOf(p config.PopupConfig) string {
	if p.Duration == nil {
		return model.DefaultDuration.String() + " (default)"
	}
	return p.Duration.Duration().String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
