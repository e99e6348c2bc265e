package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/dreveal/backoffice/internal/errors"
	"github.com/dreveal/backoffice/internal/model"
	"github.com/dreveal/backoffice/internal/store"
	"github.com/dreveal/backoffice/internal/util"
)

// ReportService mints and resolves tokenized forecast reports.
type ReportService struct {
	store store.Store
}

func NewReportService(st store.Store) *ReportService {
	return &ReportService{store: st}
}

// IssueReportParams carries the admin's multipart upload.
type IssueReportParams struct {
	ClientName    string
	GeneratedDate string
	ChartFileName string
	ChartData     []byte
	JSONFileName  string
	JSONData      []byte
}

// Issue validates the upload, then persists artifacts before metadata so a
// listed report never references missing artifacts. Validation failures
// happen before any write. A metadata failure after artifact success can
// leave orphaned artifacts; those are surfaced as storage errors and not
// rolled back.
func (s *ReportService) Issue(ctx context.Context, params IssueReportParams) (*model.Report, error) {
	if strings.TrimSpace(params.ClientName) == "" {
		return nil, apperrors.MissingRequired("clientName")
	}
	if strings.TrimSpace(params.GeneratedDate) == "" {
		return nil, apperrors.MissingRequired("generatedDate")
	}
	if len(params.ChartData) == 0 || !strings.HasSuffix(params.ChartFileName, ".png") {
		return nil, apperrors.InvalidInput("chartFile", "must be a PNG image")
	}
	if len(params.JSONData) == 0 || !strings.HasSuffix(params.JSONFileName, ".json") {
		return nil, apperrors.InvalidInput("jsonFile", "must be a JSON file")
	}
	if _, err := model.NormalizePayload(params.JSONData); err != nil {
		return nil, apperrors.InvalidInput("jsonFile", "content is not valid JSON")
	}

	token, err := util.GenerateToken()
	if err != nil {
		return nil, apperrors.Internal("Failed to generate report token").WithCause(err)
	}

	report := &model.Report{
		ID:            uuid.NewString(),
		Token:         token,
		ClientName:    params.ClientName,
		GeneratedDate: params.GeneratedDate,
		CreatedAt:     time.Now().UTC(),
		ChartFileName: token + "_chart.png",
		JSONFileName:  token + "_data.json",
	}

	chartURL, err := s.store.StoreArtifact(ctx, model.BucketCharts, report.ChartFileName, "image/png", params.ChartData)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	dataURL, err := s.store.StoreArtifact(ctx, model.BucketData, report.JSONFileName, "application/json", params.JSONData)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	report.ChartURL = chartURL
	report.DataURL = dataURL

	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, apperrors.Storage(err)
	}

	return report, nil
}

// GetByToken resolves a public share token. A missing token and an
// unreadable data artifact are reported identically as not-found so a
// caller cannot distinguish the two.
func (s *ReportService) GetByToken(ctx context.Context, token string) (*model.ReportView, error) {
	report, err := s.store.FindReportByToken(ctx, token)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if report == nil {
		return nil, apperrors.NotFound("Report")
	}

	data, _, err := s.store.ReadArtifact(ctx, model.BucketData, report.JSONFileName)
	if err != nil {
		log.Warn().Err(err).Str("reportId", report.ID).Msg("report data artifact unreadable")
		return nil, apperrors.NotFound("Report")
	}

	forecast, err := model.NormalizePayload(data)
	if err != nil {
		log.Warn().Err(err).Str("reportId", report.ID).Msg("report data artifact corrupted")
		return nil, apperrors.NotFound("Report")
	}

	return &model.ReportView{
		ClientName:    report.ClientName,
		GeneratedDate: report.GeneratedDate,
		CreatedAt:     report.CreatedAt,
		ChartURL:      report.ChartURL,
		DataURL:       report.DataURL,
		Forecast:      forecast,
	}, nil
}

// List returns all reports, newest first.
func (s *ReportService) List(ctx context.Context) ([]model.Report, error) {
	reports, err := s.store.ListReports(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return reports, nil
}

// Delete removes a report by its internal id. Missing ids are a no-op.
// Artifact removal is best-effort: a failure there is logged but never
// blocks the metadata deletion from standing.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	report, err := s.store.FindReportByID(ctx, id)
	if err != nil {
		return apperrors.Storage(err)
	}
	if report == nil {
		return nil
	}

	if err := s.store.DeleteReport(ctx, id); err != nil {
		return apperrors.Storage(err)
	}

	if err := s.store.DeleteArtifact(ctx, model.BucketCharts, report.ChartFileName); err != nil {
		log.Warn().Err(err).Str("reportId", id).Msg("failed to delete chart artifact")
	}
	if err := s.store.DeleteArtifact(ctx, model.BucketData, report.JSONFileName); err != nil {
		log.Warn().Err(err).Str("reportId", id).Msg("failed to delete data artifact")
	}

	return nil
}
