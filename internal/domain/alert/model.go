package alert

import "time"

type Type string

const (
	TypeEngagement  Type = "engagement_threshold"
	TypeRealization Type = "realization_threshold"
)

// Alert records one threshold crossing. After creation only the
// acknowledged flag ever changes, and only from false to true.
type Alert struct {
	ID            int64
	SiteID        int64
	AlertType     Type
	Message       string
	ThresholdPct  float64
	ReachedPct    float64
	BudgetAmount  float64
	ReachedAmount float64
	Acknowledged  bool
	CreatedAt     time.Time
}
