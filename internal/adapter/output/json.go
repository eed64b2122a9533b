package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/popctl/internal/timeline"
)

// JSONFormatter formats timelines as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes the timeline as an indented JSON document.
func (f *JSONFormatter) Format(w io.Writer, tl *timeline.Timeline) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(tl)
}
