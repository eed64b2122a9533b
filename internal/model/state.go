package model

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// PopupState is the lifecycle state of a single popup.
type PopupState int

// Hidden → Entering → Shown → Exiting → Hidden.
const (
	StateHidden PopupState = iota
	StateEntering
	StateShown
	StateExiting
)

// StateNames maps states to human-readable names.
var StateNames = map[PopupState]string{
	StateHidden:   "hidden",
	StateEntering: "entering",
	StateShown:    "shown",
	StateExiting:  "exiting",
}

func (s PopupState) String() string {
	if name, ok := StateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s PopupState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Animating reports whether a transition is in flight.
func (s PopupState) Animating() bool {
	return s == StateEntering || s == StateExiting
}

// Event records one state transition of a popup.
type Event struct {
	Popup string     `json:"popup" yaml:"popup"`
	From  PopupState `json:"from" yaml:"from"`
	To    PopupState `json:"to" yaml:"to"`
	Cycle string     `json:"cycle" yaml:"cycle"` // shared by every event of one open/close cycle
	At    time.Time  `json:"at" yaml:"at"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s: %s -> %s", e.Popup, e.From, e.To)
}

// NewCycleID returns a new ULID identifying one open/close cycle.
func NewCycleID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}
