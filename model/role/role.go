// Package role enumerates actor roles. Roles are plain tags without
// inheritance; the permission layer decides what each tag may do.
package role

import (
	"fmt"
	"strings"
)

// Role is an actor profile tag.
type Role string

const (
	Administrator      Role = "ADMINISTRATOR"
	SystemManager      Role = "SYSTEM_MANAGER"
	AdvancedExecutor   Role = "ADVANCED_EXECUTOR"
	Executor           Role = "EXECUTOR"
	RestrictedExecutor Role = "RESTRICTED_EXECUTOR"
	SignerValidator    Role = "SIGNER_VALIDATOR"
	Viewer             Role = "VIEWER"
)

var catalog = []Role{Administrator, SystemManager, AdvancedExecutor, Executor, RestrictedExecutor, SignerValidator, Viewer}

// All returns every known role.
func All() []Role {
	return append([]Role(nil), catalog...)
}

// Parse resolves a role name, case-insensitive.
func Parse(value string) (Role, error) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(value)))
	for _, r := range catalog {
		if r == candidate {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", value)
}

// Executor reports whether r is one of the area executor tiers.
func (r Role) Executor() bool {
	return r.In(AdvancedExecutor, Executor, RestrictedExecutor)
}

// Elevated reports whether r may act on closed or validating obligations.
func (r Role) Elevated() bool {
	return r.In(Administrator, SystemManager, SignerValidator)
}

// Manager reports whether r is Administrator or System Manager.
func (r Role) Manager() bool {
	return r.In(Administrator, SystemManager)
}

// In reports whether r matches any of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }
