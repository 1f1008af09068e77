package behavior

import "time"

// Behavior classes, from best to worst. Classification is first-match-wins
// over the ordered rule list in scorer.go.
const (
	ClassFastResponder = "fast_responder"
	ClassHighPerformer = "high_performer"
	ClassNeutral       = "neutral"
	ClassSlowResponder = "slow_responder"
	ClassAtRisk        = "at_risk"
	ClassGhoster       = "ghoster"
)

// Score is a derived reputation snapshot for one actor. It is fully replaced
// on each recomputation, never patched.
type Score struct {
	ActorID              string    `json:"actorId"`
	AvgResponseTimeHours float64   `json:"avgResponseTimeHours"`
	ResponseCount        int       `json:"responseCount"`
	GhostRate            float64   `json:"ghostRate"`
	SLAComplianceRate    float64   `json:"slaComplianceRate"`
	BehaviorClass        string    `json:"behaviorClass"`
	RiskScore            float64   `json:"riskScore"`
	CalculatedAt         time.Time `json:"calculatedAt"`
}

// Observation is one observed response latency for an actor.
type Observation struct {
	ID           string    `json:"id"`
	ActorID      string    `json:"actorId"`
	LatencyHours float64   `json:"latencyHours"`
	ObservedAt   time.Time `json:"observedAt"`
}
