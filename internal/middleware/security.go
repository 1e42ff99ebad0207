// internal/middleware/security.go
//
// Response-header middleware for the JSON endpoints.
//
//   • X-Content-Type-Options  nosniff
//   • Cache-Control           no-store, so resolved settings never sit in a
//                             shared cache
//   • Referrer-Policy         no-referrer
//   • X-Frame-Options         DENY
//
// Notes
// -----
// • Headers are set before next.ServeHTTP; once a handler writes its body
//   the header map is frozen.  Values a handler sets afterwards still win.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

// Security sets the headers above on every response.
func Security(next http.Handler) http.Handler {
	headers := [...][2]string{
		{"X-Content-Type-Options", "nosniff"},
		{"Cache-Control", "no-store"},
		{"Referrer-Policy", "no-referrer"},
		{"X-Frame-Options", "DENY"},
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range headers {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}
