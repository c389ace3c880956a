package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cinema-api/internal/metrics"
	"cinema-api/internal/model"
)

type Authenticator interface {
	Authenticate(raw string) (model.Principal, error)
}

type Decision string

const (
	DecisionAuthorized        Decision = "authorized"
	DecisionPublic            Decision = "public"
	DecisionNoCredential      Decision = "no_credential"
	DecisionInvalidCredential Decision = "invalid_credential"
	DecisionExpired           Decision = "expired"
	DecisionForbidden         Decision = "forbidden"
)

const unauthorizedMessage = "missing or invalid access token"

type contextKey string

const principalContextKey contextKey = "principal"

// Guard enforces the route policy for every request before it reaches a
// handler. It keeps no per-request state.
type Guard struct {
	auth    Authenticator
	policy  Policy
	metrics *metrics.Metrics
}

func NewGuard(auth Authenticator, policy Policy, m *metrics.Metrics) (*Guard, error) {
	if auth == nil {
		return nil, errors.New("guard requires an authenticator")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Guard{auth: auth, policy: policy, metrics: m}, nil
}

// Middleware resolves each request against routes to find its pattern and
// applies the matching policy entry. Requests that match no route pass
// through so the router can answer 404 or 405.
func (g *Guard) Middleware(routes chi.Routes) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rctx := chi.NewRouteContext()
			if !routes.Match(rctx, r.Method, routingPath(r)) {
				next.ServeHTTP(w, r)
				return
			}

			pattern := rctx.RoutePattern()
			access := g.policy.Lookup(r.Method, pattern)

			principal, decision := g.Decide(access, r.Header.Get("Authorization"))
			g.metrics.RecordGuardDecision(string(decision))

			switch decision {
			case DecisionPublic:
				next.ServeHTTP(w, r)
			case DecisionAuthorized:
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
			default:
				// Routing never runs for a rejected request; keep the
				// pattern for the request log.
				if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
					routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, pattern)
				}
				slog.Warn("access rejected",
					"reason", string(decision),
					"method", r.Method,
					"route", pattern,
					"requires", access.String(),
					"user_id", principal.UserID,
					"role", principal.Role,
				)
				writeRejection(w, decision)
			}
		})
	}
}

// Decide runs the authorization state machine for one request.
func (g *Guard) Decide(access Access, authorization string) (model.Principal, Decision) {
	if access.Public {
		return model.Principal{}, DecisionPublic
	}

	raw, ok := bearerToken(authorization)
	if !ok {
		return model.Principal{}, DecisionNoCredential
	}

	principal, err := g.auth.Authenticate(raw)
	if err != nil {
		if errors.Is(err, model.ErrTokenExpired) {
			return model.Principal{}, DecisionExpired
		}
		return model.Principal{}, DecisionInvalidCredential
	}

	if !access.Allows(principal) {
		return principal, DecisionForbidden
	}

	return principal, DecisionAuthorized
}

// routingPath is the path chi will route on: the remaining sub-router path,
// else the escaped path when it differs from the decoded one.
func routingPath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePath != "" {
		return rctx.RoutePath
	}
	if r.URL.RawPath != "" {
		return r.URL.RawPath
	}
	return r.URL.Path
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// writeRejection gives every token failure the same response.
func writeRejection(w http.ResponseWriter, decision Decision) {
	if decision == DecisionForbidden {
		writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
		return
	}

	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", unauthorizedMessage)
}

func WithPrincipal(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(model.Principal)
	return principal, ok
}
