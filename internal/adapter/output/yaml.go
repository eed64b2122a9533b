package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popctl/internal/timeline"
)

// YAMLFormatter formats timelines as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format writes the timeline as a YAML document.
func (f *YAMLFormatter) Format(w io.Writer, tl *timeline.Timeline) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(tl); err != nil {
		return err
	}
	return encoder.Close()
}
