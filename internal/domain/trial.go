package domain

import "time"

// TrialAnalysisLimit is the fixed lifetime allowance for users without a
// paid plan.
const TrialAnalysisLimit = 2

// UserTrial is the stored free-trial record, created lazily on first check.
type UserTrial struct {
	UserID         string    `json:"userId"`
	AnalysesUsed   int       `json:"analysesUsed"`
	TrialStartedAt time.Time `json:"trialStartedAt"`
}

// TrialStatus is the response shape for trial check/consume.
type TrialStatus struct {
	IsOnFreeTrial     bool      `json:"isOnFreeTrial"`
	AnalysesUsed      int       `json:"analysesUsed"`
	AnalysesLimit     int       `json:"analysesLimit"`
	AnalysesRemaining int       `json:"analysesRemaining"`
	TrialStartedAt    time.Time `json:"trialStartedAt"`
	TrialEnded        bool      `json:"trialEnded,omitempty"`
}

// TrialRequest is the input for the trial endpoints.
type TrialRequest struct {
	UserID string `json:"userId" validate:"required"`
}
