// Package api exposes the command pipeline over HTTP and MCP. Internal error
// detail is logged; callers receive only the external code and a short,
// non-technical message.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/luminalights/lumina/internal/pipeline"
	"github.com/luminalights/lumina/internal/storage"
	"github.com/luminalights/lumina/internal/variety"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB
	maxFavoritePayload = 16 << 10
	maxPlanDays        = 31
	userIDHeader       = "X-User-ID"
)

// Deps holds the dependencies for the HTTP handler.
type Deps struct {
	Pipeline *pipeline.Handler
	Store    *storage.Store
	Token    string
}

// NewHandler returns the HTTP handler for the Lumina service. All /v1 routes
// require bearer auth; /health does not.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Post("/v1/command", handleCommand(deps.Pipeline))
		r.Post("/v1/schedule", handleSchedule(deps.Pipeline))
		r.Post("/v1/variety", handleVariety)
		r.Get("/v1/favorites", handleListFavorites(deps.Store))
		r.Put("/v1/favorites/{name}", handleSaveFavorite(deps.Store))
		r.Delete("/v1/favorites/{name}", handleDeleteFavorite(deps.Store))
		r.Get("/v1/usage", handleRecentUsage(deps.Store))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleCommand(p *pipeline.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, payload, ok := readCommandRequest(w, r)
		if !ok {
			return
		}

		resp, err := p.ProcessCommand(r.Context(), userID, payload)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleSchedule(p *pipeline.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, payload, ok := readCommandRequest(w, r)
		if !ok {
			return
		}

		resp, err := p.ProcessSchedule(r.Context(), userID, payload)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// varietyRequest is the body of POST /v1/variety: a deterministic plan that
// spends no model quota.
type varietyRequest struct {
	Days   []string       `json:"days"`
	Config variety.Config `json:"config"`
}

func handleVariety(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	var req varietyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid-argument", "invalid request body: %v", err)
		return
	}
	if len(req.Days) == 0 || len(req.Days) > maxPlanDays {
		httpError(w, http.StatusBadRequest, "invalid-argument", "days must contain 1-%d labels", maxPlanDays)
		return
	}

	entries := variety.Generate(req.Days, req.Config)
	if !variety.ValidatePlan(entries) {
		httpError(w, http.StatusInternalServerError, "internal", "generated plan failed validation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan": entries})
}

func handleListFavorites(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		favs, err := store.ListFavorites(r.Context(), userID)
		if err != nil {
			slog.Error("listing favorites", "user_id", userID, "error", err)
			httpError(w, http.StatusInternalServerError, "internal", "could not list favorites")
			return
		}
		writeJSON(w, http.StatusOK, renderFavorites(favs))
	}
}

func handleSaveFavorite(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		name := chi.URLParam(r, "name")
		if name == "" {
			httpError(w, http.StatusBadRequest, "invalid-argument", "favorite name is required")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxFavoritePayload)
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid-argument", "reading body: %v", err)
			return
		}
		if !json.Valid(payload) {
			httpError(w, http.StatusBadRequest, "invalid-argument", "payload must be valid JSON")
			return
		}

		if err := store.SaveFavorite(r.Context(), storage.Favorite{
			UserID:      userID,
			Name:        name,
			PayloadJSON: string(payload),
		}); err != nil {
			slog.Error("saving favorite", "user_id", userID, "name", name, "error", err)
			httpError(w, http.StatusInternalServerError, "internal", "could not save favorite")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"name": name})
	}
}

func handleDeleteFavorite(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		name := chi.URLParam(r, "name")
		err := store.DeleteFavorite(r.Context(), userID, name)
		if err == storage.ErrNotFound {
			httpError(w, http.StatusNotFound, "not-found", "no favorite named %q", name)
			return
		}
		if err != nil {
			slog.Error("deleting favorite", "user_id", userID, "name", name, "error", err)
			httpError(w, http.StatusInternalServerError, "internal", "could not delete favorite")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRecentUsage(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		records, err := store.RecentUsage(r.Context(), userID, 50)
		if err != nil {
			slog.Error("listing usage", "user_id", userID, "error", err)
			httpError(w, http.StatusInternalServerError, "internal", "could not list usage")
			return
		}
		writeJSON(w, http.StatusOK, renderUsage(records))
	}
}

// readCommandRequest pulls the user ID and bounded body from a pipeline
// request.
func readCommandRequest(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return "", nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid-argument", "reading body: %v", err)
		return "", nil, false
	}
	return userID, payload, true
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		httpError(w, http.StatusBadRequest, "invalid-argument", "%s header is required", userIDHeader)
		return "", false
	}
	return userID, true
}

// writePipelineError logs the internal detail and surfaces only the external
// code with a short user-facing message.
func writePipelineError(w http.ResponseWriter, err error) {
	code := pipeline.CodeFor(err)
	slog.Warn("pipeline request failed", "code", string(code), "error", err)
	httpError(w, statusForCode(code), string(code), "%s", pipeline.UserMessage(code))
}

// statusForCode maps external error codes to HTTP statuses.
func statusForCode(code pipeline.Code) int {
	switch code {
	case pipeline.CodeInvalidArgument:
		return http.StatusBadRequest
	case pipeline.CodeResourceExhausted:
		return http.StatusTooManyRequests
	case pipeline.CodeFailedPrecondition:
		return http.StatusPreconditionFailed
	case pipeline.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func httpError(w http.ResponseWriter, status int, code string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": fmt.Sprintf(format, args...),
		},
	})
}

type favoriteView struct {
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt string          `json:"updatedAt"`
}

func renderFavorites(favs []storage.Favorite) []favoriteView {
	out := make([]favoriteView, 0, len(favs))
	for _, f := range favs {
		out = append(out, favoriteView{
			Name:      f.Name,
			Payload:   json.RawMessage(f.PayloadJSON),
			UpdatedAt: f.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

type usageView struct {
	Status       string `json:"status"`
	LatencyMs    int64  `json:"latencyMs"`
	InputTokens  int    `json:"inputTokens,omitempty"`
	OutputTokens int    `json:"outputTokens,omitempty"`
	Model        string `json:"model,omitempty"`
	Error        string `json:"error,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

func renderUsage(records []storage.UsageRecord) []usageView {
	out := make([]usageView, 0, len(records))
	for _, r := range records {
		out = append(out, usageView{
			Status:       r.Status,
			LatencyMs:    r.LatencyMs,
			InputTokens:  r.InputTokens,
			OutputTokens: r.OutputTokens,
			Model:        r.Model,
			Error:        r.Error,
			CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
