package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/mudra/internal/store"
)

// defaultListLimit applies when no limit is given.
const defaultListLimit = 50

// RecognitionHandler serves the recognition journal.
type RecognitionHandler struct {
	store *store.Store
}

// NewRecognitionHandler creates a RecognitionHandler with the given store.
func NewRecognitionHandler(s *store.Store) *RecognitionHandler {
	return &RecognitionHandler{store: s}
}

// ServeHTTP routes /api/recognitions and /api/recognitions/{id}.
func (h *RecognitionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/recognitions")
	id = strings.TrimPrefix(id, "/")

	if id == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type listRecognitionsResponse struct {
	Recognitions []*store.Recognition `json:"recognitions"`
	Counts       map[string]int       `json:"counts"`
}

type recognitionResponse struct {
	*store.Recognition
	Actions []*store.Action `json:"actions"`
}

// list handles GET /api/recognitions?limit=N.
func (h *RecognitionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	recs, err := h.store.Recognitions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recognitions")
		return
	}
	counts, err := h.store.Recognitions().CountByName()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count recognitions")
		return
	}

	if recs == nil {
		recs = []*store.Recognition{}
	}
	writeJSON(w, http.StatusOK, listRecognitionsResponse{Recognitions: recs, Counts: counts})
}

// get handles GET /api/recognitions/{id}, including points and actions.
func (h *RecognitionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.store.Recognitions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recognition not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get recognition")
		return
	}

	actions, err := h.store.Actions().ListByRecognition(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list actions")
		return
	}
	if actions == nil {
		actions = []*store.Action{}
	}

	writeJSON(w, http.StatusOK, recognitionResponse{Recognition: rec, Actions: actions})
}

// delete handles DELETE /api/recognitions/{id}.
func (h *RecognitionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Recognitions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recognition not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete recognition")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
