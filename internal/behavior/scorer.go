package behavior

import (
	"math"
	"time"

	"pipeline-backend/internal/deadlines"
)

// ObservationWindow caps how many recent latency observations feed the
// average.
const ObservationWindow = 50

// responseCapHours bounds the response-time contribution to the risk score.
const responseCapHours = 48

// classRule pairs a predicate with a behavior class. Rules are evaluated
// top-to-bottom, first match wins, so tie-break order is an explicit,
// testable artifact.
type classRule struct {
	match func(avgResponse, compliance, ghostRate float64) bool
	class string
}

var classRules = []classRule{
	{func(avg, compliance, _ float64) bool { return avg < 4 && compliance > 95 }, ClassFastResponder},
	{func(avg, compliance, _ float64) bool { return avg > 24 && compliance < 70 }, ClassSlowResponder},
	{func(_, _, ghost float64) bool { return ghost > 20 }, ClassGhoster},
	{func(_, compliance, _ float64) bool { return compliance > 90 }, ClassHighPerformer},
	{func(_, compliance, _ float64) bool { return compliance < 50 }, ClassAtRisk},
}

// Classify returns the behavior class for the given metrics.
func Classify(avgResponse, compliance, ghostRate float64) string {
	for _, rule := range classRules {
		if rule.match(avgResponse, compliance, ghostRate) {
			return rule.class
		}
	}
	return ClassNeutral
}

// Compute derives a fresh Score from an actor's latency observations and
// deadline outcome counts. prev, when present, only supplies the response
// average fallback for actors with no observations. now is passed in so the
// function stays deterministic.
func Compute(actorID string, latencies []float64, counts deadlines.OutcomeCounts, prev *Score, now time.Time) Score {
	avgResponse := 0.0
	switch {
	case len(latencies) > 0:
		sum := 0.0
		for _, latency := range latencies {
			sum += latency
		}
		avgResponse = sum / float64(len(latencies))
	case prev != nil:
		avgResponse = prev.AvgResponseTimeHours
	}

	compliance := 100.0
	ghostRate := 0.0
	if total := counts.Total(); total > 0 {
		compliance = float64(counts.Completed) / float64(total) * 100
		ghostRate = float64(counts.Breached+counts.Escalated) / float64(total) * 100
	}

	risk := ghostRate*0.4 + (100-compliance)*0.4 + math.Min(avgResponse, responseCapHours)/responseCapHours*20
	risk = clamp(risk, 0, 100)

	// An actor with no observations and no deadline history has earned no
	// class yet; the defaults alone must not read as fast_responder.
	class := ClassNeutral
	if len(latencies) > 0 || counts.Total() > 0 {
		class = Classify(avgResponse, compliance, ghostRate)
	}

	return Score{
		ActorID:              actorID,
		AvgResponseTimeHours: avgResponse,
		ResponseCount:        len(latencies),
		GhostRate:            ghostRate,
		SLAComplianceRate:    compliance,
		BehaviorClass:        class,
		RiskScore:            risk,
		CalculatedAt:         now,
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
