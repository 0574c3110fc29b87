package middlewarex

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"listconsole/internal/config"
)

// UserHeader carries the console user resolved by the gateway in front of us.
const UserHeader = "X-User-ID"

// ConsoleAuth checks the shared console bearer token (when configured) and
// requires a user id.
func ConsoleAuth(cfg config.Cfg) func(http.Handler) http.Handler {
	token := cfg.Sec.ConsoleToken
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" {
				auth := r.Header.Get("Authorization")
				if !strings.HasPrefix(auth, "Bearer ") {
					http.Error(w, "missing bearer", http.StatusUnauthorized)
					return
				}
				got := strings.TrimPrefix(auth, "Bearer ")
				if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
					http.Error(w, "invalid token", http.StatusUnauthorized)
					return
				}
			}

			user := strings.TrimSpace(r.Header.Get(UserHeader))
			if user == "" {
				http.Error(w, "missing "+UserHeader, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), user)))
		})
	}
}
