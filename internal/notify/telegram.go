// Package notify delivers best-effort outbound notifications. Failures are
// logged, never propagated: the submit path that triggers a notification
// has already committed and responded by the time delivery is attempted.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dreveal/backoffice/internal/model"
)

const notifyTimeout = 10 * time.Second

type Notifier interface {
	NotifySubmission(ctx context.Context, sub *model.WaitlistSubmission) error
}

// NopNotifier is used when Telegram credentials are not configured.
type NopNotifier struct{}

func (NopNotifier) NotifySubmission(context.Context, *model.WaitlistSubmission) error {
	return nil
}

// TelegramNotifier posts new-lead summaries to a Telegram chat via the bot
// sendMessage API.
type TelegramNotifier struct {
	client   *http.Client
	apiBase  string
	botToken string
	chatID   string
}

func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		client:   &http.Client{Timeout: notifyTimeout},
		apiBase:  "https://api.telegram.org",
		botToken: botToken,
		chatID:   chatID,
	}
}

func (n *TelegramNotifier) NotifySubmission(ctx context.Context, sub *model.WaitlistSubmission) error {
	payload := map[string]any{
		"chat_id":                  n.chatID,
		"text":                     formatSubmission(sub),
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := n.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("telegram notification error")
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("telegram notification rejected")
		return fmt.Errorf("notification failed with status %d", resp.StatusCode)
	}

	log.Info().
		Str("email", sub.Email).
		Dur("elapsed", elapsed).
		Msg("telegram notification sent")

	return nil
}

func formatSubmission(sub *model.WaitlistSubmission) string {
	var b strings.Builder

	b.WriteString("*New Waitlist Lead!*\n\n")
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nCompany: %s\nJob Title: %s\n\n",
		sub.FullName, sub.Email, sub.Company, sub.JobTitle)
	fmt.Fprintf(&b, "Type: %s\nAUM: %s\nTeam Size: %s\nLocation: %s\n\n",
		sub.CompanyType, sub.AUM, sub.TeamSize, sub.Location)
	fmt.Fprintf(&b, "Primary Markets: %s\nCurrent Tools: %s\n\n",
		strings.Join(sub.PrimaryMarkets, ", "), orNotSpecified(sub.CurrentTools))
	fmt.Fprintf(&b, "Interest Level: %s\nBudget Range: %s\n\n",
		sub.InterestLevel, sub.BudgetRange)
	fmt.Fprintf(&b, "Biggest Challenge:\n%s\n\n", orNotSpecified(sub.BiggestChallenge))
	fmt.Fprintf(&b, "Submitted: %s", sub.Timestamp.Format(time.RFC1123))

	return b.String()
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}
