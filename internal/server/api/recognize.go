package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/gesture"
)

// RecognizeHandler matches a posted point set without going through the
// segmenter or triggering any action.
type RecognizeHandler struct {
	recognizer *gesture.Recognizer
}

// NewRecognizeHandler creates a RecognizeHandler.
func NewRecognizeHandler(r *gesture.Recognizer) *RecognizeHandler {
	return &RecognizeHandler{recognizer: r}
}

type recognizeRequest struct {
	Points []geometry.Point `json:"points"`
}

type rankResponse struct {
	Results []gesture.Result `json:"results"`
}

// ServeHTTP handles POST /api/recognize. With ?rank=1 every template is
// scored; this requires the input to have each template's point count and
// answers 422 otherwise.
func (h *RecognizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req recognizeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if rank := r.URL.Query().Get("rank"); rank == "1" || rank == "true" {
		results, err := h.recognizer.Rank(req.Points)
		if err != nil {
			if errors.Is(err, gesture.ErrLengthMismatch) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to rank")
			return
		}
		writeJSON(w, http.StatusOK, rankResponse{Results: results})
		return
	}

	writeJSON(w, http.StatusOK, h.recognizer.Recognize(req.Points))
}
