package middleware

import (
	"net/http"
	"strings"
	"time"
)

func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"success":false,"message":"request timed out","object":null}`

	return func(next http.Handler) http.Handler {
		wrapped := http.TimeoutHandler(next, timeout, message)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// http.TimeoutHandler buffers the response and breaks hijacking,
			// so the websocket upgrade bypasses it.
			if strings.EqualFold(r.URL.Path, "/hub/ws") {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
