package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/dreveal/backoffice/internal/errors"
	"github.com/dreveal/backoffice/internal/model"
	"github.com/dreveal/backoffice/internal/store"
	"github.com/dreveal/backoffice/internal/util"
)

// ArtifactHandler serves stored report artifacts on the public surface.
// Filenames come straight from the URL, so both routes refuse anything
// that is not a plain name with the expected extension.
type ArtifactHandler struct {
	store store.Store
}

func NewArtifactHandler(st store.Store) *ArtifactHandler {
	return &ArtifactHandler{store: st}
}

func (h *ArtifactHandler) ServeChart(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, model.BucketCharts, ".png")
}

func (h *ArtifactHandler) ServeData(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, model.BucketData, ".json")
}

func (h *ArtifactHandler) serve(w http.ResponseWriter, r *http.Request, bucket, suffix string) {
	filename := chi.URLParam(r, "filename")
	if !util.SafeArtifactName(filename, suffix) {
		writeError(w, apperrors.InvalidInput("filename", "must be a plain "+suffix+" file name"))
		return
	}

	data, contentType, err := h.store.ReadArtifact(r.Context(), bucket, filename)
	if err != nil {
		if errors.Is(err, store.ErrArtifactNotFound) {
			writeError(w, apperrors.NotFound("File"))
			return
		}
		writeError(w, apperrors.Storage(err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
