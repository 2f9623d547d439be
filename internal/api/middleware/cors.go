package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS разрешает фронтенду обращаться к API с указанных origins,
// включая cookies и заголовок Authorization. API принимает только GET и POST.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
