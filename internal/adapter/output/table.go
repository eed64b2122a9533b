package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jmylchreest/popctl/internal/model"
	"github.com/jmylchreest/popctl/internal/timeline"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stateColours = map[model.PopupState]lipgloss.Color{
		model.StateHidden:   lipgloss.Color("8"),
		model.StateEntering: lipgloss.Color("12"),
		model.StateShown:    lipgloss.Color("10"),
		model.StateExiting:  lipgloss.Color("11"),
	}
)

// TableFormatter renders timelines as a bordered table.
type TableFormatter struct {
	opts FormatterOptions
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(opts FormatterOptions) *TableFormatter {
	return &TableFormatter{opts: opts}
}

// Format writes a title line and the sample table.
func (f *TableFormatter) Format(w io.Writer, tl *timeline.Timeline) error {
	title := fmt.Sprintf("%s  %s  %s @ %d fps", tl.Popup, tl.Animation, tl.Duration, tl.FPS)
	if f.opts.Color {
		title = titleStyle.Render(title)
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	rows := make([][]string, len(tl.Samples))
	for i, s := range tl.Samples {
		rows[i] = row(s, f.opts.Precision)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Rows(rows...)
	if f.opts.Header {
		t = t.Headers(columns...)
	}
	if f.opts.Color {
		t = t.BorderStyle(borderStyle).StyleFunc(func(r, c int) lipgloss.Style {
			if r == table.HeaderRow {
				return headerStyle
			}
			if c == 2 && r >= 0 && r < len(tl.Samples) {
				return cellStyle.Foreground(stateColours[tl.Samples[r].State])
			}
			return cellStyle
		})
	}

	_, err := fmt.Fprintln(w, t.String())
	return err
}
