package dealhealth

import "fmt"

// conditions is the condensed input the advice builder reads.
type conditions struct {
	InactiveDays  int
	Bottleneck    string
	BreachedCount int
	MatchScore    float64
	MatchMissing  bool
}

// bottleneckAdvice maps stage bottleneck labels to the action that clears
// them. Deadline-derived labels fall through to a generic nudge.
var bottleneckAdvice = map[string]string{
	"client_review":        "Nudge the client to review the submission",
	"client_decision":      "Ask the client for a decision on the shortlist",
	"candidate_opt_in":     "Have the recruiter chase the candidate opt-in",
	"interview_scheduling": "Push to get the interview on the calendar",
}

// adviseOn builds the ordered risk factor and recommended action lists from
// the conditions that currently hold. Order is fixed so the first factor is
// always the most urgent one for the assessment line.
func adviseOn(c conditions) (factors, actions []string) {
	factors = []string{}
	actions = []string{}

	if c.BreachedCount > 0 {
		factors = append(factors, fmt.Sprintf("%d breached SLA deadline(s)", c.BreachedCount))
		actions = append(actions, "Resolve the overdue obligations before anything else")
	}
	if c.Bottleneck != "" {
		factors = append(factors, fmt.Sprintf("stalled on %s", c.Bottleneck))
		advice, ok := bottleneckAdvice[c.Bottleneck]
		if !ok {
			advice = "Follow up with the responsible party on the blocking obligation"
		}
		actions = append(actions, advice)
	}
	if c.InactiveDays > 3 {
		factors = append(factors, fmt.Sprintf("no activity for %d days", c.InactiveDays))
		actions = append(actions, "Re-engage both sides with a status check-in")
	}
	if !c.MatchMissing && c.MatchScore < 60 {
		factors = append(factors, fmt.Sprintf("weak match score (%.0f)", c.MatchScore))
		actions = append(actions, "Re-validate candidate fit against the role requirements")
	}

	if len(actions) == 0 {
		actions = append(actions, "Continue monitoring")
	}
	return factors, actions
}

// assess renders a one-line summary from the risk level, health score, and
// leading risk factor.
func assess(level string, health int, factors []string) string {
	top := "no outstanding risk factors"
	if len(factors) > 0 {
		top = factors[0]
	}
	switch level {
	case RiskLow:
		return fmt.Sprintf("Deal is on track (health %d); %s.", health, top)
	case RiskMedium:
		return fmt.Sprintf("Deal needs attention (health %d); watch: %s.", health, top)
	case RiskHigh:
		return fmt.Sprintf("Deal is at risk (health %d); main issue: %s.", health, top)
	default:
		return fmt.Sprintf("Deal is in critical shape (health %d); act now on: %s.", health, top)
	}
}
