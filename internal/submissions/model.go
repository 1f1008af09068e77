package submissions

import "time"

// Pipeline stages for a submission.
const (
	StageSubmitted    = "submitted"
	StageInReview     = "in_review"
	StageShortlisted  = "shortlisted"
	StageOptInPending = "opt_in_pending"
	StageInterview    = "interview"
	StageOffer        = "offer"
	StagePlaced       = "placed"
	StageRejected     = "rejected"
	StageWithdrawn    = "withdrawn"
)

// ActiveStages is the set of stages eligible for batch evaluation.
var ActiveStages = []string{
	StageSubmitted,
	StageInReview,
	StageShortlisted,
	StageOptInPending,
	StageInterview,
	StageOffer,
}

// Submission represents one candidate-to-opportunity pairing moving through
// the pipeline. The evaluation engine reads it; the surrounding workflow
// mutates it.
type Submission struct {
	ID               string     `json:"id"`
	CandidateName    string     `json:"candidateName"`
	JobTitle         string     `json:"jobTitle"`
	Stage            string     `json:"stage"`
	RecruiterActorID string     `json:"recruiterActorId"`
	ClientActorID    string     `json:"clientActorId"`
	MatchScore       *float64   `json:"matchScore,omitempty"`
	SubmittedAt      time.Time  `json:"submittedAt"`
	LastActivityAt   time.Time  `json:"lastActivityAt"`
	ArchivedAt       *time.Time `json:"archivedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// IsTerminal reports whether the stage ends the pipeline.
func IsTerminal(stage string) bool {
	switch stage {
	case StagePlaced, StageRejected, StageWithdrawn:
		return true
	default:
		return false
	}
}

// IsValidStage reports whether the stage is a known pipeline stage.
func IsValidStage(stage string) bool {
	switch stage {
	case StageSubmitted, StageInReview, StageShortlisted, StageOptInPending,
		StageInterview, StageOffer, StagePlaced, StageRejected, StageWithdrawn:
		return true
	default:
		return false
	}
}
