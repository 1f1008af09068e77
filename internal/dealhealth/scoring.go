package dealhealth

import (
	"math"
	"time"

	"pipeline-backend/internal/behavior"
	"pipeline-backend/internal/deadlines"
	"pipeline-backend/internal/submissions"
)

// Component weights of the composite health score.
const (
	weightPhase    = 0.25
	weightSLA      = 0.25
	weightActivity = 0.20
	weightBehavior = 0.15
	weightMatch    = 0.15
)

// defaultMatchScore stands in when the external matcher has not supplied a
// value.
const defaultMatchScore = 50

// expectedStageDays maps each stage to how long a healthy submission is
// expected to sit in it.
var expectedStageDays = map[string]int{
	submissions.StageSubmitted:   2,
	submissions.StageInReview:    5,
	submissions.StageShortlisted: 7,
	submissions.StageInterview:   14,
	submissions.StageOffer:       7,
}

const defaultExpectedDays = 7

// Inputs is everything Calculate reads. The caller assembles it after the
// deadline state machine has run, so OpenDeadlines reflect post-transition
// statuses.
type Inputs struct {
	Submission    submissions.Submission
	OpenDeadlines []deadlines.Deadline
	Recruiter     *behavior.Score
	Client        *behavior.Score
}

// PhaseScore scores how long the submission has sat in its current stage
// relative to the expected duration.
func PhaseScore(stage string, ageDays float64) int {
	expected, ok := expectedStageDays[stage]
	if !ok {
		expected = defaultExpectedDays
	}
	e := float64(expected)
	switch {
	case ageDays <= e:
		return 100
	case ageDays <= 2*e:
		return 70
	case ageDays <= 3*e:
		return 40
	default:
		return 20
	}
}

// SLAScore penalizes open and overdue deadlines. Every open deadline costs a
// little; warned and breached ones cost more on top.
func SLAScore(open []deadlines.Deadline, now time.Time) int {
	score := 100
	for _, d := range open {
		score -= 5
		switch {
		case d.IsBreached(now):
			score -= 30
		case d.Status == deadlines.StatusWarningSent:
			score -= 15
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ActivityScore is a step function of days since the last observed activity.
func ActivityScore(inactiveDays int) int {
	switch {
	case inactiveDays <= 0:
		return 100
	case inactiveDays <= 1:
		return 90
	case inactiveDays <= 3:
		return 70
	case inactiveDays <= 7:
		return 50
	case inactiveDays <= 14:
		return 30
	default:
		return 10
	}
}

// behaviorScore is 100 minus the mean risk of the two actors. A missing
// snapshot is treated as neutral risk 50, per the partial-data policy.
func behaviorScore(recruiter, client *behavior.Score) float64 {
	return 100 - (actorRisk(recruiter)+actorRisk(client))/2
}

func actorRisk(score *behavior.Score) float64 {
	if score == nil {
		return 50
	}
	return score.RiskScore
}

// matchScore returns the external match-quality value, defaulted when
// absent.
func matchScore(sub submissions.Submission) float64 {
	if sub.MatchScore == nil {
		return defaultMatchScore
	}
	return *sub.MatchScore
}

// RiskLevel buckets a health score.
func RiskLevel(health int) string {
	switch {
	case health >= 80:
		return RiskLow
	case health >= 60:
		return RiskMedium
	case health >= 40:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// DropOffProbability estimates the chance the deal dies, in percent.
func DropOffProbability(health, inactiveDays, bottleneckDays int, hasBottleneck bool) float64 {
	p := float64(100 - health)
	if inactiveDays > 7 {
		p += 15
	}
	if inactiveDays > 14 {
		p += 20
	}
	if hasBottleneck {
		p += 10
	}
	if bottleneckDays > 5 {
		p += 15
	}
	return clamp(p, 5, 95)
}

// Calculate derives the full health snapshot from current inputs. It is
// pure: same inputs and now always produce the same record.
func Calculate(in Inputs, now time.Time) DealHealth {
	ageDays := now.Sub(in.Submission.SubmittedAt).Hours() / 24
	inactiveDays := int(now.Sub(in.Submission.LastActivityAt).Hours() / 24)
	if inactiveDays < 0 {
		inactiveDays = 0
	}

	phase := PhaseScore(in.Submission.Stage, ageDays)
	sla := SLAScore(in.OpenDeadlines, now)
	activity := ActivityScore(inactiveDays)
	behaviorComponent := behaviorScore(in.Recruiter, in.Client)
	match := matchScore(in.Submission)

	health := int(math.Round(
		float64(phase)*weightPhase +
			float64(sla)*weightSLA +
			float64(activity)*weightActivity +
			behaviorComponent*weightBehavior +
			match*weightMatch))
	if health < 0 {
		health = 0
	}
	if health > 100 {
		health = 100
	}

	bottleneck := Diagnose(in.Submission, in.OpenDeadlines, now)
	level := RiskLevel(health)

	breached := 0
	for _, d := range in.OpenDeadlines {
		if d.IsBreached(now) {
			breached++
		}
	}
	factors, actions := adviseOn(conditions{
		InactiveDays:  inactiveDays,
		Bottleneck:    bottleneck.Label,
		BreachedCount: breached,
		MatchScore:    match,
		MatchMissing:  in.Submission.MatchScore == nil,
	})

	return DealHealth{
		SubmissionID:          in.Submission.ID,
		HealthScore:           health,
		RiskLevel:             level,
		DropOffProbability:    DropOffProbability(health, inactiveDays, bottleneck.Days, bottleneck.Label != ""),
		DaysSinceLastActivity: inactiveDays,
		Bottleneck:            bottleneck.Label,
		BottleneckActorID:     bottleneck.ActorID,
		BottleneckDays:        bottleneck.Days,
		RiskFactors:           factors,
		RecommendedActions:    actions,
		Assessment:            assess(level, health, factors),
		CalculatedAt:          now,
	}
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
