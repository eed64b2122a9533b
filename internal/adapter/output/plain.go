package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/popctl/internal/timeline"
)

// PlainFormatter writes one separator-delimited line per sample, for
// piping into other tools.
type PlainFormatter struct {
	opts FormatterOptions
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	if opts.Separator == "" {
		opts.Separator = "\t"
	}
	return &PlainFormatter{opts: opts}
}

// Format writes the samples as plain text.
func (f *PlainFormatter) Format(w io.Writer, tl *timeline.Timeline) error {
	if f.opts.Header {
		if _, err := fmt.Fprintln(w, strings.Join(columns, f.opts.Separator)); err != nil {
			return err
		}
	}
	for _, s := range tl.Samples {
		if _, err := fmt.Fprintln(w, strings.Join(row(s, f.opts.Precision), f.opts.Separator)); err != nil {
			return err
		}
	}
	return nil
}
