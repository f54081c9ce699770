package middleware

import (
	"encoding/json"
	"net/http"

	"chat-api/internal/model"
)

// writeFail emits the failure envelope for responses produced inside the
// middleware chain, before a handler ever runs.
func writeFail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.Fail(message))
}
