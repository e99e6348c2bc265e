package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/dreveal/backoffice/internal/errors"
	"github.com/dreveal/backoffice/internal/model"
	"github.com/dreveal/backoffice/internal/notify"
	"github.com/dreveal/backoffice/internal/store"
)

const notifyDispatchTimeout = 15 * time.Second

// WaitlistService stores intake form submissions and dispatches the
// best-effort lead notification.
type WaitlistService struct {
	store    store.Store
	notifier notify.Notifier
}

func NewWaitlistService(st store.Store, notifier notify.Notifier) *WaitlistService {
	return &WaitlistService{store: st, notifier: notifier}
}

// Submit persists a new submission and responds on the strength of that
// write alone. The notification is dispatched afterwards on its own
// goroutine and deadline; its outcome never reaches the caller.
func (s *WaitlistService) Submit(ctx context.Context, params model.SubmitWaitlistParams) (*model.WaitlistSubmission, error) {
	if strings.TrimSpace(params.FullName) == "" {
		return nil, apperrors.MissingRequired("fullName")
	}
	if strings.TrimSpace(params.Email) == "" {
		return nil, apperrors.MissingRequired("email")
	}

	sub := &model.WaitlistSubmission{
		ID:               uuid.NewString(),
		Timestamp:        time.Now().UTC(),
		FullName:         params.FullName,
		Email:            params.Email,
		Company:          params.Company,
		JobTitle:         params.JobTitle,
		CompanyType:      params.CompanyType,
		AUM:              params.AUM,
		PrimaryMarkets:   params.PrimaryMarkets,
		CurrentTools:     params.CurrentTools,
		TeamSize:         params.TeamSize,
		Location:         params.Location,
		BiggestChallenge: params.BiggestChallenge,
		InterestLevel:    params.InterestLevel,
		BudgetRange:      params.BudgetRange,
		AdditionalNotes:  params.AdditionalNotes,
	}

	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return nil, apperrors.Storage(err)
	}

	go s.dispatchNotification(sub)

	return sub, nil
}

func (s *WaitlistService) dispatchNotification(sub *model.WaitlistSubmission) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyDispatchTimeout)
	defer cancel()

	if err := s.notifier.NotifySubmission(ctx, sub); err != nil {
		log.Error().Err(err).Str("submissionId", sub.ID).Msg("waitlist notification failed")
	}
}

// List returns all submissions, newest first.
func (s *WaitlistService) List(ctx context.Context) ([]model.WaitlistSubmission, error) {
	subs, err := s.store.ListSubmissions(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return subs, nil
}

// Delete removes one submission by id; missing ids are a no-op.
func (s *WaitlistService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSubmission(ctx, id); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}
