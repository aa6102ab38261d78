package http

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"membership-backend/internal/security"
	"membership-backend/internal/service"
)

// NewRouter serves the pages behind the emailed approval link.
func NewRouter(appSvc service.ApplicationService, tm security.TokenManager, allowedOrigins []string) http.Handler {
	h := NewApplicationHandler(appSvc)
	auth := Authenticate(tm)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", healthCheckHandler).Methods(http.MethodGet)

	apps := r.PathPrefix("/applications").Subrouter()
	apps.HandleFunc("", h.CreateApplication).Methods(http.MethodPost)
	apps.HandleFunc("/{token}", h.GetApplication).Methods(http.MethodGet)
	apps.Handle("/{token}/approve", auth(http.HandlerFunc(h.ApproveApplication))).Methods(http.MethodPost)
	apps.Handle("/{token}/reject", auth(http.HandlerFunc(h.RejectApplication))).Methods(http.MethodPost)

	return CORS(allowedOrigins)(r)
}

// CORS allows the approval page to call the API from another origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}
	// Credentials cannot be combined with a wildcard origin.
	for _, o := range allowedOrigins {
		if o == "*" {
			return cors.Handler(opts)
		}
	}
	opts.AllowCredentials = true
	return cors.Handler(opts)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
