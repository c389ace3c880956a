package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"cinema-api/internal/model"
)

// Access is the requirement a route places on its caller. The zero value
// admits any authenticated identity.
type Access struct {
	Public bool
	Roles  []string
}

func Public() Access {
	return Access{Public: true}
}

func Authenticated() Access {
	return Access{}
}

func RequireRoles(roles ...string) Access {
	return Access{Roles: roles}
}

// Allows reports whether principal satisfies a.
func (a Access) Allows(principal model.Principal) bool {
	if a.Public || len(a.Roles) == 0 {
		return true
	}
	for _, allowed := range a.Roles {
		if principal.HasRole(allowed) {
			return true
		}
	}
	return false
}

func (a Access) String() string {
	switch {
	case a.Public:
		return "public"
	case len(a.Roles) == 0:
		return "authenticated"
	default:
		return "roles:" + strings.Join(a.Roles, ",")
	}
}

// Policy maps "METHOD /route/pattern" to the access the route requires.
// Routes missing from the table require an authenticated identity.
type Policy map[string]Access

func PolicyKey(method string, pattern string) string {
	return strings.ToUpper(method) + " " + pattern
}

func (p Policy) Lookup(method string, pattern string) Access {
	if access, ok := p[PolicyKey(method, pattern)]; ok {
		return access
	}
	return Authenticated()
}

// Validate rejects malformed keys and unknown roles so a typo cannot silently
// fall back to the default or lock a route.
func (p Policy) Validate() error {
	for key, access := range p {
		method, pattern, ok := strings.Cut(key, " ")
		if !ok || pattern == "" || !strings.HasPrefix(pattern, "/") {
			return fmt.Errorf("invalid policy key %q", key)
		}
		switch method {
		case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions:
		default:
			return fmt.Errorf("invalid method in policy key %q", key)
		}
		for _, role := range access.Roles {
			if !model.IsKnownRole(role) {
				return fmt.Errorf("unknown role %q in policy key %q", role, key)
			}
		}
	}
	return nil
}
