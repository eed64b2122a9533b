// Package output provides output formatters for simulated timelines.
package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/popctl/internal/timeline"
)

// Formatter formats a timeline for output.
type Formatter interface {
	// Format writes the formatted timeline to the writer.
	Format(w io.Writer, tl *timeline.Timeline) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatTable FormatType = "table"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatPlain FormatType = "plain"
)

// FormatTypes returns every supported format.
func FormatTypes() []FormatType {
	return []FormatType{FormatTable, FormatJSON, FormatYAML, FormatPlain}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatTable, "":
		return NewTableFormatter(opts), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatPlain:
		return NewPlainFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, json, yaml or plain)", format)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Precision int    // Decimal places for property values
	Separator string // Field separator for plain format
	Header    bool   // Print a header line in table and plain formats
	Color     bool   // Style table output
}

// DefaultFormatterOptions returns sensible defaults for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		Precision: 3,
		Separator: "\t",
		Header:    true,
		Color:     true,
	}
}

// row renders the columns of one sample.
func row(s timeline.Sample, precision int) []string {
	f := func(v float64) string { return fmt.Sprintf("%.*f", precision, v) }
	return []string{
		fmt.Sprintf("%d", s.Frame),
		fmt.Sprintf("%.0f", float64(s.Time.Microseconds())/1000),
		s.State.String(),
		fmt.Sprintf("%t", s.Active),
		f(s.Scale),
		f(s.Opacity),
		f(s.Y),
		f(s.Rotation),
	}
}

var columns = []string{"frame", "ms", "state", "active", "scale", "opacity", "y", "rotation"}
