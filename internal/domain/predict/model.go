package predict

import "time"

// Indicators are computed on demand from the site's purchase history,
// never persisted.
type Indicators struct {
	MonthlyBurnRate             float64
	BurnRateVarianceVsBudgetPct float64
	MonthsRemaining             float64
	EstimatedExhaustionDate     *time.Time
	FinancialProgressPct        float64
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// severityRank orders suggestions for display; ties keep rule
// evaluation order (stable sort).
func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

type Suggestion struct {
	Type            string   `json:"type"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Severity        Severity `json:"severity"`
	EstimatedImpact float64  `json:"estimatedImpact"`
}

const (
	SourceAI    = "ai"
	SourceRules = "rules"
)

type Result struct {
	Indicators  Indicators
	Suggestions []Suggestion
	Source      string
}
