package domain

import "time"

// CreditTransaction is a ledger entry against a user's credit balance.
// Refinement only ever writes refunds; charges come from the billing side.
type CreditTransaction struct {
	ID        string    `json:"id"         db:"id"`
	BriefID   string    `json:"brief_id"   db:"brief_id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	Amount    float64   `json:"amount"     db:"amount"`
	Reason    string    `json:"reason"     db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const RefundReasonQualityFailed = "quality_gate_failed"
