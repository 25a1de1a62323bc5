// Package onboarding models the multi-role onboarding wizard: typed drafts,
// the per-role step tables, the stepper state machine and the controller
// that ties them to persistence and the marketplace handoff.
package onboarding

import (
	"errors"
	"fmt"
	"strings"
)

// Role selects which step table applies to an application.
type Role string

const (
	RoleDriver     Role = "Driver"
	RoleDispatcher Role = "Dispatcher"
	RoleShipper    Role = "Shipper"
	RoleBroker     Role = "Broker"
)

var ErrUnknownRole = errors.New("unknown role")

var allRoles = []Role{RoleDriver, RoleDispatcher, RoleShipper, RoleBroker}

// AllRoles returns the roles in their display order.
func AllRoles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// ParseRole accepts any letter case, e.g. "driver" or "DRIVER".
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range allRoles {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
