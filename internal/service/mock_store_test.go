package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dreveal/backoffice/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateSubmission(ctx context.Context, sub *model.WaitlistSubmission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockStore) ListSubmissions(ctx context.Context) ([]model.WaitlistSubmission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WaitlistSubmission), args.Error(1)
}

func (m *mockStore) DeleteSubmission(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockStore) CreateReport(ctx context.Context, report *model.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockStore) ListReports(ctx context.Context) ([]model.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}

func (m *mockStore) FindReportByToken(ctx context.Context, token string) (*model.Report, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *mockStore) FindReportByID(ctx context.Context, id string) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *mockStore) DeleteReport(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockStore) StoreArtifact(ctx context.Context, bucket, name, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, bucket, name, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *mockStore) ReadArtifact(ctx context.Context, bucket, name string) ([]byte, string, error) {
	args := m.Called(ctx, bucket, name)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *mockStore) DeleteArtifact(ctx context.Context, bucket, name string) error {
	args := m.Called(ctx, bucket, name)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
	done chan struct{}
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{done: make(chan struct{}, 1)}
}

func (m *mockNotifier) NotifySubmission(ctx context.Context, sub *model.WaitlistSubmission) error {
	args := m.Called(ctx, sub)
	m.done <- struct{}{}
	return args.Error(0)
}
