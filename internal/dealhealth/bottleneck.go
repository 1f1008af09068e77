package dealhealth

import (
	"time"

	"pipeline-backend/internal/deadlines"
	"pipeline-backend/internal/submissions"
)

// Bottleneck names what is currently blocking a submission and who owns it.
type Bottleneck struct {
	Label   string
	ActorID string
	Days    int
}

// stageRule describes a stage-level stall diagnosis used when no deadline is
// breached. A rule fires once the stall strictly exceeds stallOverDays.
type stageRule struct {
	stage         string
	stallOverDays float64
	label         string
	// blamesClient selects the demand-side actor; otherwise the recruiter.
	blamesClient bool
}

var stageRules = []stageRule{
	{submissions.StageSubmitted, 2, "client_review", true},
	{submissions.StageInReview, 2, "client_decision", true},
	{submissions.StageOptInPending, 0, "candidate_opt_in", false},
	{submissions.StageInterview, 0, "interview_scheduling", true},
}

// Diagnose finds the current bottleneck, first from breached deadlines, then
// from stage-level stall rules. No match returns the zero Bottleneck.
func Diagnose(sub submissions.Submission, open []deadlines.Deadline, now time.Time) Bottleneck {
	for _, d := range open {
		if !d.IsBreached(now) {
			continue
		}
		days := int(now.Sub(d.DeadlineAt).Hours() / 24)
		if days < 0 {
			days = 0
		}
		return Bottleneck{
			Label:   d.EntityType + "_" + d.RuleID,
			ActorID: d.ActorID,
			Days:    days,
		}
	}

	stalled := now.Sub(sub.LastActivityAt).Hours() / 24
	for _, rule := range stageRules {
		if sub.Stage != rule.stage || stalled <= rule.stallOverDays {
			continue
		}
		actorID := sub.RecruiterActorID
		if rule.blamesClient {
			actorID = sub.ClientActorID
		}
		return Bottleneck{Label: rule.label, ActorID: actorID, Days: int(stalled)}
	}
	return Bottleneck{}
}
