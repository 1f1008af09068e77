package dealhealth

import "time"

// Risk levels, ordered from healthiest to worst.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// DealHealth is the derived health snapshot for one submission. It is a
// cache of a pure function over current inputs, fully recomputed and
// upserted each evaluation, never hand-edited.
type DealHealth struct {
	SubmissionID          string    `json:"submissionId"`
	HealthScore           int       `json:"healthScore"`
	RiskLevel             string    `json:"riskLevel"`
	DropOffProbability    float64   `json:"dropOffProbability"`
	DaysSinceLastActivity int       `json:"daysSinceLastActivity"`
	Bottleneck            string    `json:"bottleneck,omitempty"`
	BottleneckActorID     string    `json:"bottleneckActorId,omitempty"`
	BottleneckDays        int       `json:"bottleneckDays"`
	RiskFactors           []string  `json:"riskFactors"`
	RecommendedActions    []string  `json:"recommendedActions"`
	Assessment            string    `json:"assessment"`
	CalculatedAt          time.Time `json:"calculatedAt"`
}
