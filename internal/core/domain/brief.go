package domain

import "time"

// Brief represents a policy brief moving through the refinement pipeline.
type Brief struct {
	ID        string      `json:"id"          db:"id"`
	Topic     string      `json:"topic"       db:"topic"`
	Content   string      `json:"content"     db:"content"`
	Status    BriefStatus `json:"status"      db:"status"`
	Score     float64     `json:"score"       db:"score"`
	Attempts  int         `json:"attempts"    db:"attempts"`
	CreatedAt time.Time   `json:"created_at"  db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"  db:"updated_at"`
}

type BriefStatus string

const (
	BriefStatusDraft     BriefStatus = "draft"
	BriefStatusRefining  BriefStatus = "refining"
	BriefStatusPublished BriefStatus = "published"
	BriefStatusFailed    BriefStatus = "failed"
)

// ScoringDimensions are the axes a brief is scored on. Fixers each target
// one dimension.
var ScoringDimensions = []string{
	"accuracy",
	"clarity",
	"neutrality",
	"sourcing",
	"structure",
}
