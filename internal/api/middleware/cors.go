package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS wraps h with a CORS policy. allowedOrigins is a comma separated list;
// empty allows any origin.
func CORS(h http.Handler, allowedOrigins string) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}
	if allowedOrigins != "" {
		for _, o := range strings.Split(allowedOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				opts.AllowedOrigins = append(opts.AllowedOrigins, o)
			}
		}
	}
	return cors.New(opts).Handler(h)
}
