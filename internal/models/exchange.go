package models

import "time"

type ExchangeStatus string

const (
	StatusApplied    ExchangeStatus = "applied"    // answer replaced the displayed one
	StatusSuperseded ExchangeStatus = "superseded" // a newer submit was issued first
	StatusFailed     ExchangeStatus = "failed"
)

// Exchange is one submit round trip as recorded in the journal.
type Exchange struct {
	ID         string         `json:"id"`
	Seq        uint64         `json:"seq"`
	Query      string         `json:"query"`
	Answer     string         `json:"answer"`
	Status     ExchangeStatus `json:"status"`
	StatusCode int            `json:"status_code,omitempty"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

func (e Exchange) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}
