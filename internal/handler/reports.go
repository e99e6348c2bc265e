package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/dreveal/backoffice/internal/config"
	apperrors "github.com/dreveal/backoffice/internal/errors"
	"github.com/dreveal/backoffice/internal/service"
)

type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Generate accepts the admin's multipart upload and mints a tokenized
// report link.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid multipart form"})
		return
	}

	chartData, chartName, err := readFormFile(r, "chartFile")
	if err != nil {
		writeError(w, apperrors.MissingRequired("chartFile"))
		return
	}
	jsonData, jsonName, err := readFormFile(r, "jsonFile")
	if err != nil {
		writeError(w, apperrors.MissingRequired("jsonFile"))
		return
	}

	report, err := h.reports.Issue(r.Context(), service.IssueReportParams{
		ClientName:    r.FormValue("clientName"),
		GeneratedDate: r.FormValue("generatedDate"),
		ChartFileName: chartName,
		ChartData:     chartData,
		JSONFileName:  jsonName,
		JSONData:      jsonData,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	log.Info().Str("reportId", report.ID).Str("clientName", report.ClientName).Msg("report issued")

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"id":       report.ID,
		"token":    report.Token,
		"chartUrl": report.ChartURL,
		"dataUrl":  report.DataURL,
	})
}

func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"count":   len(reports),
	})
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.reports.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// PublicView serves the shared report page's data. The token is the only
// credential.
func (h *ReportHandler) PublicView(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	view, err := h.reports.GetByToken(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"report":  view,
	})
}
