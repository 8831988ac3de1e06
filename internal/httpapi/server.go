package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelmgrd/internal/manager"
	"modelmgrd/pkg/types"
)

// Service defines the manager surface required by the HTTP API layer.
type Service interface {
	ListAvailable() map[string]types.ModelInfo
	ListLoaded() map[string]types.ModelInfo
	Download(cfg types.ModelConfig) (string, error)
	DownloadStatus(id string) (types.DownloadTask, bool)
	Load(id string) error
	Unload(id string) error
	SwitchActive(id string, modelType types.ModelType) error
	Delete(id string) error
}

// NewMux builds the router for the model management API.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(RequestLogger)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/models", func(r chi.Router) {
		r.Get("/list", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, types.ModelListResponse{Models: svc.ListAvailable()})
		})

		r.Get("/loaded", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, types.ModelListResponse{Models: svc.ListLoaded()})
		})

		r.Post("/download", func(w http.ResponseWriter, r *http.Request) {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			var cfg types.ModelConfig
			if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			id, err := svc.Download(cfg)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, types.DownloadResponse{
				DownloadID: id,
				Message:    "started downloading model " + cfg.ModelID,
			})
		})

		r.Get("/download/{id}/status", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			task, ok := svc.DownloadStatus(id)
			if !ok {
				writeJSONError(w, http.StatusNotFound, "download task not found")
				return
			}
			writeJSON(w, task)
		})

		r.Post("/load/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if err := svc.Load(id); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, types.StatusResponse{Status: "success", Message: "model " + id + " loaded successfully"})
		})

		r.Post("/unload/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if err := svc.Unload(id); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, types.StatusResponse{Status: "success", Message: "model " + id + " unloaded successfully"})
		})

		r.Post("/switch/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			modelType := types.ModelType(r.URL.Query().Get("model_type"))
			if modelType == "" {
				modelType = types.ModelTypeLLM
			}
			if err := svc.SwitchActive(id, modelType); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, types.StatusResponse{Status: "success", Message: "switched active " + string(modelType) + " to " + id})
		})

		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if err := svc.Delete(id); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, types.StatusResponse{Status: "success", Message: "model " + id + " deleted successfully"})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// writeError maps manager errors to HTTP status codes: unknown ids are
// 404, caller mistakes and no-op signals are 400, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case manager.IsModelNotFound(err):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case manager.IsInvalidConfig(err), manager.IsNotLoaded(err), manager.IsLoadFailed(err):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
