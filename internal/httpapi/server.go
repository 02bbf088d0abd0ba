package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Service defines the engine methods required by the HTTP API layer.
type Service interface {
	Execute(modelID string, input []byte, kind types.OutputKind, priority int) (*engine.Future, error)
	ExecuteMultiple(modelIDs []string, input []byte, kind types.OutputKind, priority int) (*engine.MultiFuture, error)
	Models() []types.ModelInfo
	Status() types.StatusResponse
	GetPerformanceStats(modelID string) (types.ModelStats, bool)
	GetOverallPerformanceStats() types.OverallStats
	OptimizeRuntime()
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
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

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ModelsResponse{Models: svc.Models()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.GetOverallPerformanceStats())
	})

	r.Get("/stats/{model}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "model")
		st, ok := svc.GetPerformanceStats(id)
		if !ok {
			writeJSONError(w, http.StatusNotFound, "no stats for model: "+id)
			return
		}
		writeJSON(w, st)
	})

	r.Post("/optimize", func(w http.ResponseWriter, r *http.Request) {
		svc.OptimizeRuntime()
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/infer", func(w http.ResponseWriter, r *http.Request) {
		var req types.ExecuteRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Model) == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}
		priority := resolvePriority(svc, req.Model, req.Priority)
		lvl := requestLogLevel(r)
		start := time.Now()
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Str("path", r.URL.Path).Str("model", req.Model).Int("priority", priority)
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("infer start")
		}

		fut, err := svc.Execute(req.Model, []byte(req.Input), req.OutputKind, priority)
		if err != nil {
			writeEngineError(w, r, err, lvl, start)
			return
		}
		joined, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := fut.GetTimeout(waitDuration(req.WaitMs))
		if err != nil {
			if joined.Err() != nil {
				return
			}
			writeEngineError(w, r, err, lvl, start)
			return
		}
		writeJSON(w, types.ExecuteResponse{Model: req.Model, Result: res, Cached: fut.Cached()})
		logEnd(r, lvl, http.StatusOK, start, nil)
	})

	r.Post("/infer/multi", func(w http.ResponseWriter, r *http.Request) {
		var req types.ExecuteMultiRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if len(req.Models) == 0 {
			writeJSONError(w, http.StatusBadRequest, "models is required")
			return
		}
		priority := resolvePriority(svc, req.Models[0], req.Priority)
		lvl := requestLogLevel(r)
		start := time.Now()

		mf, err := svc.ExecuteMultiple(req.Models, []byte(req.Input), req.OutputKind, priority)
		if err != nil {
			writeEngineError(w, r, err, lvl, start)
			return
		}
		joined, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		results, err := mf.GetTimeout(waitDuration(req.WaitMs))
		if err != nil {
			if joined.Err() != nil {
				return
			}
			writeEngineError(w, r, err, lvl, start)
			return
		}
		writeJSON(w, types.ExecuteMultiResponse{Results: results})
		logEnd(r, lvl, http.StatusOK, start, nil)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Status().Closed {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("closed"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// resolvePriority uses the request priority when given, otherwise the
// model's configured default.
func resolvePriority(svc Service, modelID string, p *int) int {
	if p != nil {
		return *p
	}
	for _, m := range svc.Models() {
		if m.ID == modelID {
			return m.Config.Priority
		}
	}
	return 0
}

func waitDuration(waitMs int) time.Duration {
	if waitMs <= 0 {
		return defaultWaitDuration
	}
	return time.Duration(waitMs) * time.Millisecond
}

// decodeJSONBody enforces content type and body size, decoding into dst.
// Writes the error response itself and returns false on failure.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
