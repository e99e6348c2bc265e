package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dreveal/backoffice/internal/model"
)

const (
	waitlistIndexFile = "waitlist-submissions.json"
	reportsIndexFile  = "index.json"
)

// FileStore keeps each collection in a single JSON index file that is
// read, modified and rewritten in full on every mutation, with artifacts
// as plain files alongside. The mutex serializes writers within this
// process only; there is no cross-process locking. That is an accepted
// limitation of the file backend given its single-admin usage.
type FileStore struct {
	mu       sync.Mutex
	dataDir  string
	chartDir string
	jsonDir  string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	s := &FileStore{
		dataDir:  dataDir,
		chartDir: filepath.Join(dataDir, "reports", "charts"),
		jsonDir:  filepath.Join(dataDir, "reports", "data"),
	}

	for _, dir := range []string{filepath.Join(dataDir, "reports"), s.chartDir, s.jsonDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	return s, nil
}

func (s *FileStore) waitlistPath() string {
	return filepath.Join(s.dataDir, waitlistIndexFile)
}

func (s *FileStore) reportsPath() string {
	return filepath.Join(s.dataDir, "reports", reportsIndexFile)
}

// readIndex loads a whole collection; a missing index file is an empty
// collection, not an error.
func readIndex[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return records, nil
}

func writeIndex[T any](path string, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write index %s: %w", path, err)
	}
	return nil
}

// Waitlist submissions

func (s *FileStore) CreateSubmission(_ context.Context, sub *model.WaitlistSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := readIndex[model.WaitlistSubmission](s.waitlistPath())
	if err != nil {
		return err
	}
	subs = append(subs, *sub)
	return writeIndex(s.waitlistPath(), subs)
}

func (s *FileStore) ListSubmissions(_ context.Context) ([]model.WaitlistSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := readIndex[model.WaitlistSubmission](s.waitlistPath())
	if err != nil {
		return nil, err
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].Timestamp.After(subs[j].Timestamp)
	})
	return subs, nil
}

func (s *FileStore) DeleteSubmission(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := readIndex[model.WaitlistSubmission](s.waitlistPath())
	if err != nil {
		return err
	}

	kept := subs[:0]
	for _, sub := range subs {
		if sub.ID != id {
			kept = append(kept, sub)
		}
	}
	if len(kept) == len(subs) {
		return nil
	}
	return writeIndex(s.waitlistPath(), kept)
}

// Reports

func (s *FileStore) CreateReport(_ context.Context, report *model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := readIndex[model.Report](s.reportsPath())
	if err != nil {
		return err
	}
	reports = append(reports, *report)
	return writeIndex(s.reportsPath(), reports)
}

func (s *FileStore) ListReports(_ context.Context) ([]model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := readIndex[model.Report](s.reportsPath())
	if err != nil {
		return nil, err
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

func (s *FileStore) FindReportByToken(_ context.Context, token string) (*model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := readIndex[model.Report](s.reportsPath())
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if reports[i].Token == token {
			return &reports[i], nil
		}
	}
	return nil, nil
}

func (s *FileStore) FindReportByID(_ context.Context, id string) (*model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := readIndex[model.Report](s.reportsPath())
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if reports[i].ID == id {
			return &reports[i], nil
		}
	}
	return nil, nil
}

func (s *FileStore) DeleteReport(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := readIndex[model.Report](s.reportsPath())
	if err != nil {
		return err
	}

	kept := reports[:0]
	for _, r := range reports {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(reports) {
		return nil
	}
	return writeIndex(s.reportsPath(), kept)
}

// Artifacts

func (s *FileStore) bucketDir(bucket string) (string, error) {
	switch bucket {
	case model.BucketCharts:
		return s.chartDir, nil
	case model.BucketData:
		return s.jsonDir, nil
	default:
		return "", fmt.Errorf("unknown artifact bucket %q", bucket)
	}
}

func bucketURLPath(bucket, name string) string {
	if bucket == model.BucketCharts {
		return "/charts/" + name
	}
	return "/reports/data/" + name
}

func (s *FileStore) StoreArtifact(_ context.Context, bucket, name, _ string, data []byte) (string, error) {
	dir, err := s.bucketDir(bucket)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}
	return bucketURLPath(bucket, name), nil
}

func (s *FileStore) ReadArtifact(_ context.Context, bucket, name string) ([]byte, string, error) {
	dir, err := s.bucketDir(bucket)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrArtifactNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("read artifact %s: %w", name, err)
	}
	return data, contentTypeFor(name), nil
}

func (s *FileStore) DeleteArtifact(_ context.Context, bucket, name string) error {
	dir, err := s.bucketDir(bucket)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileStore) Close() error {
	return nil
}

func contentTypeFor(name string) string {
	if filepath.Ext(name) == ".png" {
		return "image/png"
	}
	return "application/json"
}
