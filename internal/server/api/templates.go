// Package api provides the HTTP handlers of the mudra service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/gesture"
)

// maxBodySize caps request bodies.
const maxBodySize = 1 << 20

// TemplateHandler serves the recognizer's template set.
type TemplateHandler struct {
	recognizer *gesture.Recognizer
	trainer    *gesture.Trainer
}

// NewTemplateHandler creates a TemplateHandler. A nil trainer disables
// training from samples.
func NewTemplateHandler(r *gesture.Recognizer, t *gesture.Trainer) *TemplateHandler {
	return &TemplateHandler{recognizer: r, trainer: t}
}

// ServeHTTP routes /api/templates and /api/templates/{name}.
func (h *TemplateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/templates")
	name = strings.TrimPrefix(name, "/")

	if name == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, name)
	case http.MethodDelete:
		h.delete(w, r, name)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createTemplateRequest struct {
	Name string `json:"name"`
	// Points registers a template directly. Unless Normalize is set they
	// are stored as given.
	Points    []geometry.Point `json:"points"`
	Normalize bool             `json:"normalize"`
	// Samples trains a template from several recorded attempts.
	Samples [][]geometry.Point `json:"samples"`
}

type listTemplatesResponse struct {
	Templates []gesture.TemplateInfo `json:"templates"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeBody reads a size-limited JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// list handles GET /api/templates.
func (h *TemplateHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listTemplatesResponse{Templates: h.recognizer.Templates()})
}

// get handles GET /api/templates/{name} and includes the stored points.
func (h *TemplateHandler) get(w http.ResponseWriter, r *http.Request, name string) {
	tpl, ok := h.recognizer.Template(name)
	if !ok {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// create handles POST /api/templates.
func (h *TemplateHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if (len(req.Points) == 0) == (len(req.Samples) == 0) {
		writeError(w, http.StatusBadRequest, "Exactly one of points or samples is required")
		return
	}

	var points []geometry.Point
	if len(req.Samples) > 0 {
		if h.trainer == nil {
			writeError(w, http.StatusBadRequest, "Training is not enabled")
			return
		}
		tpl, err := h.trainer.TrainPoints(req.Name, req.Samples)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		points = tpl.Points
	} else {
		for _, s := range geometry.SplitStrokes(req.Points) {
			if len(s) < 2 {
				writeError(w, http.StatusBadRequest, "Every stroke needs at least 2 points")
				return
			}
		}
		points = req.Points
		if req.Normalize {
			points = geometry.MustNormalize(points, false, 0)
		}
	}

	if err := h.recognizer.AddGesture(req.Name, points); err != nil {
		if errors.Is(err, gesture.ErrDuplicateName) {
			writeError(w, http.StatusConflict, "Template name already exists")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, gesture.TemplateInfo{
		Name:    req.Name,
		Points:  len(points),
		Strokes: geometry.CountStrokes(points),
	})
}

// delete handles DELETE /api/templates/{name}.
func (h *TemplateHandler) delete(w http.ResponseWriter, r *http.Request, name string) {
	if !h.recognizer.RemoveGesture(name) {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
