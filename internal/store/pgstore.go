package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/dreveal/backoffice/internal/config"
	"github.com/dreveal/backoffice/internal/model"
)

// schema is applied idempotently at startup. Artifact bytes live in
// report_artifacts; public URLs are built from the configured base URL and
// served by the same chart/data handlers as the file backend, so the
// locator contract is identical across backends.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS waitlist_submissions (
		id                TEXT PRIMARY KEY,
		submitted_at      TIMESTAMPTZ NOT NULL,
		full_name         TEXT NOT NULL,
		email             TEXT NOT NULL,
		company           TEXT NOT NULL DEFAULT '',
		job_title         TEXT NOT NULL DEFAULT '',
		company_type      TEXT NOT NULL DEFAULT '',
		aum               TEXT NOT NULL DEFAULT '',
		primary_markets   TEXT[] NOT NULL DEFAULT '{}',
		current_tools     TEXT NOT NULL DEFAULT '',
		team_size         TEXT NOT NULL DEFAULT '',
		location          TEXT NOT NULL DEFAULT '',
		biggest_challenge TEXT NOT NULL DEFAULT '',
		interest_level    TEXT NOT NULL DEFAULT '',
		budget_range      TEXT NOT NULL DEFAULT '',
		additional_notes  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id              TEXT PRIMARY KEY,
		token           TEXT NOT NULL UNIQUE,
		client_name     TEXT NOT NULL,
		generated_date  TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		chart_file_name TEXT NOT NULL,
		json_file_name  TEXT NOT NULL,
		chart_url       TEXT NOT NULL,
		data_url        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS report_artifacts (
		bucket       TEXT NOT NULL,
		name         TEXT NOT NULL,
		content_type TEXT NOT NULL,
		data         BYTEA NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (bucket, name)
	)`,
}

// PGStore is the hosted backend: report and waitlist metadata plus
// artifact payloads in Postgres, locators as absolute URLs.
type PGStore struct {
	db      *sqlx.DB
	baseURL string
}

func NewPGStore(databaseURL, baseURL string) (*PGStore, error) {
	db, err := connect(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PGStore{db: db, baseURL: strings.TrimSuffix(baseURL, "/")}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PGStore) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Waitlist submissions

func (s *PGStore) CreateSubmission(ctx context.Context, sub *model.WaitlistSubmission) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO waitlist_submissions (
			id, submitted_at, full_name, email, company, job_title,
			company_type, aum, primary_markets, current_tools, team_size,
			location, biggest_challenge, interest_level, budget_range,
			additional_notes
		) VALUES (
			:id, :submitted_at, :full_name, :email, :company, :job_title,
			:company_type, :aum, :primary_markets, :current_tools, :team_size,
			:location, :biggest_challenge, :interest_level, :budget_range,
			:additional_notes
		)
	`, sub)
	return err
}

func (s *PGStore) ListSubmissions(ctx context.Context) ([]model.WaitlistSubmission, error) {
	subs := []model.WaitlistSubmission{}
	err := s.db.SelectContext(ctx, &subs, `
		SELECT * FROM waitlist_submissions ORDER BY submitted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *PGStore) DeleteSubmission(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM waitlist_submissions WHERE id = $1`, id)
	return err
}

// Reports

func (s *PGStore) CreateReport(ctx context.Context, report *model.Report) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO reports (
			id, token, client_name, generated_date, created_at,
			chart_file_name, json_file_name, chart_url, data_url
		) VALUES (
			:id, :token, :client_name, :generated_date, :created_at,
			:chart_file_name, :json_file_name, :chart_url, :data_url
		)
	`, report)
	return err
}

func (s *PGStore) ListReports(ctx context.Context) ([]model.Report, error) {
	reports := []model.Report{}
	err := s.db.SelectContext(ctx, &reports, `
		SELECT * FROM reports ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *PGStore) FindReportByToken(ctx context.Context, token string) (*model.Report, error) {
	var report model.Report
	err := s.db.GetContext(ctx, &report, `
		SELECT * FROM reports WHERE token = $1
	`, token)
	return handleNotFound(&report, err)
}

func (s *PGStore) FindReportByID(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	err := s.db.GetContext(ctx, &report, `
		SELECT * FROM reports WHERE id = $1
	`, id)
	return handleNotFound(&report, err)
}

func (s *PGStore) DeleteReport(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	return err
}

// Artifacts

func (s *PGStore) StoreArtifact(ctx context.Context, bucket, name, contentType string, data []byte) (string, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO report_artifacts (bucket, name, content_type, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (bucket, name) DO UPDATE
		SET content_type = EXCLUDED.content_type, data = EXCLUDED.data
	`, bucket, name, contentType, data)
	if err != nil {
		return "", fmt.Errorf("store artifact %s: %w", name, err)
	}
	return s.baseURL + bucketURLPath(bucket, name), nil
}

func (s *PGStore) ReadArtifact(ctx context.Context, bucket, name string) ([]byte, string, error) {
	var row struct {
		ContentType string `db:"content_type"`
		Data        []byte `db:"data"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT content_type, data FROM report_artifacts
		WHERE bucket = $1 AND name = $2
	`, bucket, name)
	found, err := handleNotFound(&row, err)
	if err != nil {
		return nil, "", err
	}
	if found == nil {
		return nil, "", ErrArtifactNotFound
	}
	return found.Data, found.ContentType, nil
}

func (s *PGStore) DeleteArtifact(ctx context.Context, bucket, name string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM report_artifacts WHERE bucket = $1 AND name = $2
	`, bucket, name)
	return err
}

func (s *PGStore) Close() error {
	return s.db.Close()
}
