package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/cors"
)

var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
}

// CORS allows credentialed requests from origins so the browser sends the
// access token cookie. The Stripe-Signature header is never needed cross-origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// AllowedOrigins returns extra plus the frontend origin, and the usual dev
// server ports when the frontend is local
func AllowedOrigins(frontendURL string, extra []string) []string {
	seen := make(map[string]bool)
	var origins []string
	add := func(o string) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" && !seen[o] {
			seen[o] = true
			origins = append(origins, o)
		}
	}

	add(frontendURL)
	for _, o := range extra {
		add(o)
	}

	if u, err := url.Parse(frontendURL); err == nil {
		if h := u.Hostname(); h == "localhost" || h == "127.0.0.1" {
			for _, o := range devOrigins {
				add(o)
			}
		}
	}
	return origins
}
