package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS returns a middleware that handles cross-origin requests. The
// storefront fetches the exported JSON and catalog images directly from
// this server, so /json and the public API need permissive CORS.
//
// With no configured origins every origin is reflected back, which keeps
// credentialed requests working from any storefront deployment. When
// origins are configured only those are allowed.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	if len(allowedOrigins) == 0 {
		opts.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		opts.AllowedOrigins = allowedOrigins
	}

	return cors.New(opts).Handler
}
