package popup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPopup is returned when a popup name does not resolve.
var ErrUnknownPopup = errors.New("unknown popup")

// ErrAmbiguousPopup is returned when a name prefix matches several popups.
var ErrAmbiguousPopup = errors.New("ambiguous popup name")

// ErrDuplicateName is reported for a definition whose name is already taken.
var ErrDuplicateName = errors.New("duplicate popup name")

// DefinitionError describes one malformed popup definition.
type DefinitionError struct {
	Index int
	Name  string
	Err   error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("popup %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// ValidationError aggregates every malformed definition found by Init.
type ValidationError struct {
	Definitions []*DefinitionError
}

func (e *ValidationError) Error() string {
	if len(e.Definitions) == 1 {
		return "invalid popup definition: " + e.Definitions[0].Error()
	}
	parts := make([]string, len(e.Definitions))
	for i, d := range e.Definitions {
		parts[i] = d.Error()
	}
	return fmt.Sprintf("%d invalid popup definitions: %s", len(e.Definitions), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Definitions))
	for i, d := range e.Definitions {
		errs[i] = d
	}
	return errs
}
