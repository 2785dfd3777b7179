package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerSnapshotRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/snapshots", handler.GetSnapshots)
	mux.HandleFunc("POST /v1/snapshots/refresh", handler.RefreshSnapshots)
	mux.HandleFunc("GET /v1/jobs/refresh/runs", handler.ListRefreshRuns)
}

// The HTML board lives at the root; everything else under "/" is a 404.
func registerDashboardRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /{$}", handler.Dashboard)
	mux.HandleFunc("POST /refresh", handler.RefreshDashboard)
}
