// Package access decides whether a session may open a dashboard destination.
package access

import (
	"strings"

	"github.com/plateadmin/plateadmin/internal/auth"
)

// Redirect targets for denied navigation
const (
	EntryPath        = "/"
	UnauthorizedPath = "/unauthorized"
)

// Decision is the outcome of a gate check
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyUnauthorized:
		return "deny_unauthorized"
	default:
		return "unknown"
	}
}

// Redirect returns where a denied navigation should go, or "" for Allow
func (d Decision) Redirect() string {
	switch d {
	case DenyUnauthenticated:
		return EntryPath
	case DenyUnauthorized:
		return UnauthorizedPath
	default:
		return ""
	}
}

// Decide checks a session against an allow-list. A nil or empty allow-list
// admits any authenticated session. A session without a role never passes a
// non-empty allow-list.
func Decide(session *auth.Session, requiredRoles []string) Decision {
	if !session.Authenticated() {
		return DenyUnauthenticated
	}

	if len(requiredRoles) == 0 {
		return Allow
	}

	if !RoleAllowed(session.Role, requiredRoles) {
		return DenyUnauthorized
	}

	return Allow
}

// RoleAllowed reports whether role is in the allow-list, ignoring case
func RoleAllowed(role string, allowed []string) bool {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return false
	}

	for _, candidate := range allowed {
		if strings.ToUpper(strings.TrimSpace(candidate)) == role {
			return true
		}
	}

	return false
}
