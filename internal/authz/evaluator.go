// Package authz implements the dynamic route-based authorization engine.
// Policies live in the database as (route, verb) -> roles records; nothing
// about protection is wired into the router. A route without an active
// policy passes through unauthenticated, a route with one requires a valid
// bearer token carrying at least one of the policy's roles.
package authz

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"chat-api/internal/model"
)

// PolicyStore is the lookup contract the evaluator needs from persistence.
// found=false means no active policy is registered for the pair; an error
// means the store itself failed.
type PolicyStore interface {
	FindActiveByRouteAndVerb(ctx context.Context, route string, verb string) (model.EndpointPolicy, bool, error)
}

// TokenVerifier validates an access token and returns its claims.
// Expired tokens must surface model.ErrTokenExpired.
type TokenVerifier interface {
	Verify(token string, now time.Time) (*model.AccessClaims, error)
}

type Outcome int

const (
	// OutcomeNoPolicy lets the request through without identity: only
	// routes with an explicit policy are protected.
	OutcomeNoPolicy Outcome = iota
	OutcomeAllowed
	OutcomeDenied
)

type Decision struct {
	Outcome Outcome
	Status  int
	Reason  string
	Claims  *model.AccessClaims
}

const (
	ReasonFilterFailure    = "authorization filter failure"
	ReasonTokenMissing     = "token missing or malformed, expected: Bearer <token>"
	ReasonTokenExpired     = "token expired"
	ReasonInvalidToken     = "invalid token"
	ReasonNotAuthenticated = "not authenticated"
	ReasonNotAuthorized    = "not authorized"
)

type Evaluator struct {
	policies PolicyStore
	tokens   TokenVerifier
	now      func() time.Time
}

func NewEvaluator(policies PolicyStore, tokens TokenVerifier) *Evaluator {
	return &Evaluator{policies: policies, tokens: tokens, now: time.Now}
}

// Evaluate runs the per-request authorization check. It holds no state
// between calls and is safe for concurrent use. The check order is fixed:
// policy lookup first (no token crypto for unprotected routes), then token
// validation, then role intersection.
func (e *Evaluator) Evaluate(r *http.Request) Decision {
	route := CanonicalRoute(r.URL.Path)

	policy, found, err := e.policies.FindActiveByRouteAndVerb(r.Context(), route, r.Method)
	if err != nil {
		// Store unreachable: fail closed. Distinct from the not-found
		// branch below, which fails open.
		return denied(ReasonFilterFailure, http.StatusUnauthorized)
	}
	if !found {
		return Decision{Outcome: OutcomeNoPolicy}
	}

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return denied(ReasonTokenMissing, http.StatusUnauthorized)
	}

	claims, err := e.tokens.Verify(token, e.now())
	if errors.Is(err, model.ErrTokenExpired) {
		return denied(ReasonTokenExpired, http.StatusUnauthorized)
	}
	if err != nil {
		return denied(ReasonInvalidToken, http.StatusUnauthorized)
	}

	if claims == nil || claims.UserID == "" {
		return denied(ReasonNotAuthenticated, http.StatusUnauthorized)
	}

	for _, have := range claims.Roles {
		for _, want := range policy.Roles {
			if strings.EqualFold(have, want) {
				return Decision{Outcome: OutcomeAllowed, Claims: claims}
			}
		}
	}

	return denied(ReasonNotAuthorized, http.StatusForbidden)
}

func denied(reason string, status int) Decision {
	return Decision{Outcome: OutcomeDenied, Status: status, Reason: reason}
}

// bearerToken extracts the token from an Authorization header of the form
// "Bearer <token>". The scheme keyword is case-insensitive.
func bearerToken(header string) (string, bool) {
	fields := strings.Fields(strings.TrimSpace(header))
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", false
	}
	return fields[1], true
}
