package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/urrwish/namecheck"
)

// Handler serves lookup and introspection routes for one engine.
type Handler struct {
	engine *namecheck.Engine
	mux    *http.ServeMux
}

// New creates a Handler wired to engine.
func New(engine *namecheck.Engine) *Handler {
	h := &Handler{engine: engine, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /lookup", h.lookupGet)
	h.mux.HandleFunc("POST /lookup", h.lookupPost)
	h.mux.HandleFunc("GET /cache/entries", h.cacheEntries)
	h.mux.HandleFunc("GET /metrics", h.metrics)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type lookupRequest struct {
	ID string `json:"id"`
}

type lookupResponse struct {
	ID       string `json:"id"`
	Outcome  string `json:"outcome"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (h *Handler) lookupGet(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, r.URL.Query().Get("id"))
}

func (h *Handler) lookupPost(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	h.resolve(w, r, req.ID)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing player id")
		return
	}

	out, err := h.engine.Resolve(r.Context(), id)
	if err != nil {
		if errors.Is(err, namecheck.ErrEmptyPlayerID) {
			writeError(w, http.StatusBadRequest, "missing player id")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "engine unavailable")
		return
	}

	writeJSON(w, statusFor(out.Kind), lookupResponse{
		ID:       id,
		Outcome:  out.Kind.String(),
		Username: out.Username,
		Message:  out.Message,
	})
}

func (h *Handler) cacheEntries(w http.ResponseWriter, r *http.Request) {
	store := h.engine.Cache()
	if store == nil {
		writeError(w, http.StatusNotFound, "cache disabled")
		return
	}

	entries, err := store.Entries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cache dump failed")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) metrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Metrics().Snapshot())
}

// statusFor maps an outcome kind to the HTTP status it travels under.
func statusFor(kind namecheck.OutcomeKind) int {
	switch kind {
	case namecheck.OutcomeResolved:
		return http.StatusOK
	case namecheck.OutcomeNotFound:
		return http.StatusNotFound
	case namecheck.OutcomeAuthFailure:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
