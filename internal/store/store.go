// Package store defines the persistence backend shared by the waitlist and
// report services, with two interchangeable implementations: a local
// filesystem store using one JSON index file per collection, and a hosted
// Postgres store. The implementation is selected once at startup.
package store

import (
	"context"
	"errors"

	"github.com/dreveal/backoffice/internal/model"
)

// ErrArtifactNotFound is returned by ReadArtifact when no artifact exists
// under the given bucket and name.
var ErrArtifactNotFound = errors.New("artifact not found")

// Store is the durable-state contract. Find methods return (nil, nil) when
// no record matches; Delete methods are idempotent and succeed on missing
// ids.
type Store interface {
	CreateSubmission(ctx context.Context, sub *model.WaitlistSubmission) error
	ListSubmissions(ctx context.Context) ([]model.WaitlistSubmission, error)
	DeleteSubmission(ctx context.Context, id string) error

	CreateReport(ctx context.Context, report *model.Report) error
	ListReports(ctx context.Context) ([]model.Report, error)
	FindReportByToken(ctx context.Context, token string) (*model.Report, error)
	FindReportByID(ctx context.Context, id string) (*model.Report, error)
	DeleteReport(ctx context.Context, id string) error

	// StoreArtifact persists raw artifact bytes and returns a public
	// locator (a URL the chart/data handlers can serve or redirect to).
	StoreArtifact(ctx context.Context, bucket, name, contentType string, data []byte) (string, error)
	ReadArtifact(ctx context.Context, bucket, name string) (data []byte, contentType string, err error)
	DeleteArtifact(ctx context.Context, bucket, name string) error

	Close() error
}
