package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/locsynth/kit"
	"github.com/hazyhaar/locsynth/locator"
	"github.com/hazyhaar/locsynth/shield"
)

// Handler returns the HTTP API:
//
//	POST /v1/locate              LocateRequest → LocateResult
//	GET  /v1/strategies          StrategyOrder
//	PUT  /v1/strategies/{scope}  {"order": [...]} → SetOrderResult
//	GET  /healthz
func (r *Recorder) Handler() http.Handler {
	ep := r.endpoints()

	mux := chi.NewRouter()
	for _, mw := range shield.DefaultAPIStack(r.logger, r.cfg.Fetch.MaxBody) {
		mux.Use(mw)
	}

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.Route("/v1", func(api chi.Router) {
		api.Post("/locate", func(w http.ResponseWriter, req *http.Request) {
			var in LocateRequest
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				writeError(w, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
				return
			}
			serve(w, req, ep.locate, &in)
		})

		api.Get("/strategies", func(w http.ResponseWriter, req *http.Request) {
			serve(w, req, ep.strategies, nil)
		})

		api.Put("/strategies/{scope}", func(w http.ResponseWriter, req *http.Request) {
			var in SetOrderRequest
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				writeError(w, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
				return
			}
			in.Scope = chi.URLParam(req, "scope")
			serve(w, req, ep.setOrder, &in)
		})
	})
	return mux
}

func serve(w http.ResponseWriter, req *http.Request, e kit.Endpoint, in any) {
	resp, err := e(req.Context(), in)
	if err != nil {
		shield.GetLogger(req.Context()).Debug("recorder: request failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrNoDocument),
		errors.Is(err, locator.ErrUnknownStrategy):
		return http.StatusBadRequest
	case errors.Is(err, ErrTargetNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownScope),
		errors.Is(err, ErrNotFrame),
		errors.Is(err, ErrRenderUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), map[string]string{"error": err.Error()})
}
