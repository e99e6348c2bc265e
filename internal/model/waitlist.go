package model

import (
	"time"

	"github.com/lib/pq"
)

// WaitlistSubmission is an append-only intake form record. There is no
// update path: submissions are created, listed, and deleted, never mutated.
type WaitlistSubmission struct {
	ID               string         `db:"id" json:"id"`
	Timestamp        time.Time      `db:"submitted_at" json:"timestamp"`
	FullName         string         `db:"full_name" json:"fullName"`
	Email            string         `db:"email" json:"email"`
	Company          string         `db:"company" json:"company"`
	JobTitle         string         `db:"job_title" json:"jobTitle"`
	CompanyType      string         `db:"company_type" json:"companyType"`
	AUM              string         `db:"aum" json:"aum"`
	PrimaryMarkets   pq.StringArray `db:"primary_markets" json:"primaryMarkets"`
	CurrentTools     string         `db:"current_tools" json:"currentTools"`
	TeamSize         string         `db:"team_size" json:"teamSize"`
	Location         string         `db:"location" json:"location"`
	BiggestChallenge string         `db:"biggest_challenge" json:"biggestChallenge"`
	InterestLevel    string         `db:"interest_level" json:"interestLevel"`
	BudgetRange      string         `db:"budget_range" json:"budgetRange"`
	AdditionalNotes  string         `db:"additional_notes" json:"additionalNotes"`
}

// SubmitWaitlistParams carries the client-supplied form fields; id and
// timestamp are assigned server-side.
type SubmitWaitlistParams struct {
	FullName         string   `json:"fullName"`
	Email            string   `json:"email"`
	Company          string   `json:"company"`
	JobTitle         string   `json:"jobTitle"`
	CompanyType      string   `json:"companyType"`
	AUM              string   `json:"aum"`
	PrimaryMarkets   []string `json:"primaryMarkets"`
	CurrentTools     string   `json:"currentTools"`
	TeamSize         string   `json:"teamSize"`
	Location         string   `json:"location"`
	BiggestChallenge string   `json:"biggestChallenge"`
	InterestLevel    string   `json:"interestLevel"`
	BudgetRange      string   `json:"budgetRange"`
	AdditionalNotes  string   `json:"additionalNotes"`
}
