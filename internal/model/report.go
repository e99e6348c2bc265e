package model

import "time"

// Artifact buckets. The file store maps these to directories, the
// Postgres store to rows in the artifact table.
const (
	BucketCharts = "report-charts"
	BucketData   = "report-data"
)

// Report is the metadata record for one issued forecast report. Token is
// the public capability embedded in share URLs; ID is internal and used
// only for administrative deletion.
type Report struct {
	ID            string    `db:"id" json:"id"`
	Token         string    `db:"token" json:"token"`
	ClientName    string    `db:"client_name" json:"clientName"`
	GeneratedDate string    `db:"generated_date" json:"generatedDate"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	ChartFileName string    `db:"chart_file_name" json:"chartFileName"`
	JSONFileName  string    `db:"json_file_name" json:"jsonFileName"`
	ChartURL      string    `db:"chart_url" json:"chartUrl"`
	DataURL       string    `db:"data_url" json:"dataUrl"`
}

// ReportView is the public projection served for a valid share token,
// including the normalized forecast payload.
type ReportView struct {
	ClientName    string           `json:"clientName"`
	GeneratedDate string           `json:"generatedDate"`
	CreatedAt     time.Time        `json:"createdAt"`
	ChartURL      string           `json:"chartUrl"`
	DataURL       string           `json:"dataUrl"`
	Forecast      *ForecastPayload `json:"forecast,omitempty"`
}
