package popup

import (
	"fmt"
	"strings"
)

// Policy decides what happens when a popup is asked to change state while
// a transition is already running.
type Policy string

const (
	// PolicyRestart cancels the running transition and starts the requested
	// one from the current property values. A Show during Exiting cancels
	// the pending deactivation.
	PolicyRestart Policy = "restart"
	// PolicyIgnore honours Show only from Hidden and Hide only from Shown.
	PolicyIgnore Policy = "ignore"
)

// DefaultPolicy is used when none is configured.
const DefaultPolicy = PolicyRestart

// ParsePolicy parses a policy name. The empty string yields DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultPolicy, nil
	case PolicyRestart:
		return PolicyRestart, nil
	case PolicyIgnore:
		return PolicyIgnore, nil
	default:
		return "", fmt.Errorf("unknown overlap policy %q (want restart or ignore)", s)
	}
}

func (p Policy) String() string { return string(p) }
