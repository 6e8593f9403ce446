package server

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/monitoring"
	"github.com/ayusman/mudra/internal/preview"
)

// PreviewHandler serves PNG renderings of templates at
// /api/preview/{name}.png.
type PreviewHandler struct {
	recognizer *gesture.Recognizer
}

// NewPreviewHandler creates a PreviewHandler.
func NewPreviewHandler(r *gesture.Recognizer) *PreviewHandler {
	return &PreviewHandler{recognizer: r}
}

// ServeHTTP implements http.Handler.
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/preview/")
	name = strings.TrimSuffix(name, ".png")

	tpl, ok := h.recognizer.Template(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := preview.WritePNG(&buf, preview.DefaultWidth, preview.DefaultHeight, tpl.Name,
		preview.Layer{Label: tpl.Name, Points: tpl.Points}); err != nil {
		monitoring.Logf("preview %s: %v", name, err)
		http.Error(w, "Failed to render preview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}
