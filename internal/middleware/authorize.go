package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"chat-api/internal/authz"
	"chat-api/internal/model"
)

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

// AuthorizeMiddleware runs the dynamic route authorization filter on every
// request. Which routes are protected is decided by the policies in the
// database, not by the router.
type AuthorizeMiddleware struct {
	evaluator *authz.Evaluator
}

func NewAuthorizeMiddleware(evaluator *authz.Evaluator) *AuthorizeMiddleware {
	return &AuthorizeMiddleware{evaluator: evaluator}
}

func (m *AuthorizeMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := m.safeEvaluate(r)

		switch decision.Outcome {
		case authz.OutcomeNoPolicy:
			next.ServeHTTP(w, r)
		case authz.OutcomeAllowed:
			ctx := context.WithValue(r.Context(), authClaimsContextKey, decision.Claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		default:
			writeFail(w, decision.Status, decision.Reason)
		}
	})
}

// safeEvaluate converts a panicking filter into a deny rather than letting
// the recovery middleware serve a 500 for an authorization fault.
func (m *AuthorizeMiddleware) safeEvaluate(r *http.Request) (decision authz.Decision) {
	defer func() {
		if recovered := recover(); recovered != nil {
			slog.Error("authorization filter panic", "error", recovered, "path", r.URL.Path)
			decision = authz.Decision{
				Outcome: authz.OutcomeDenied,
				Status:  http.StatusUnauthorized,
				Reason:  authz.ReasonFilterFailure,
			}
		}
	}()
	return m.evaluator.Evaluate(r)
}

// ClaimsFromContext returns the identity attached by the authorize filter.
// Requests that passed through without a policy have none.
func ClaimsFromContext(ctx context.Context) (*model.AccessClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AccessClaims)
	return claims, ok
}
