// Package requesttime pins one UTC timestamp per request so audit entries,
// transition timestamps and document expiry checks agree on "now".
package requesttime

import (
	"net/http"
	"time"

	"terralegit/pkg/requestcontext"
)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), time.Now().UTC())))
	})
}
