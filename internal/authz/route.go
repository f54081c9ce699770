package authz

import (
	"strings"

	"chat-api/internal/objectid"
)

// CanonicalRoute reduces a request path to the key endpoint policies are
// stored under. Paths with more than two segments collapse to the first two
// ("/user/507f1f77bcf86cd799439011" -> "/user") unless the third segment is
// not a valid 24-hex resource id, in which case it is part of the route
// ("/account/login" stays "/account/login"). Shorter paths pass through
// unchanged.
//
// A literal sub-route segment that happens to look like a resource id would
// be collapsed too, and a trailing slash keeps its empty last segment
// ("/user/" stays "/user/", a different key than "/user"). Stored policies
// were written against this exact behavior, so it is kept rather than
// replaced with route templates.
func CanonicalRoute(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}

	route := parts[0] + "/" + parts[1]
	if !objectid.IsValid(parts[2]) {
		route += "/" + parts[2]
	}
	return route
}
