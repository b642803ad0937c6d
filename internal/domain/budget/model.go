package budget

import "time"

type Budget struct {
	ID             int64
	SiteID         int64
	InitialAmount  float64
	RevisedAmount  *float64
	EngagedAmount  float64
	RealizedAmount float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PlannedAmount is the reference amount for every consumption ratio:
// the revised amount supersedes the initial one as soon as it is set.
func (b Budget) PlannedAmount() float64 {
	if b.RevisedAmount != nil {
		return *b.RevisedAmount
	}
	return b.InitialAmount
}

// Line — lot budgétaire, a sub-category of planned spend within a budget.
type Line struct {
	ID            int64
	BudgetID      int64
	Code          string
	Label         string
	PlannedAmount float64
	CreatedAt     time.Time
}

// Figures are the consumption ratios of one site, shared by the alert
// and suggestion engines.
type Figures struct {
	SiteID         int64
	PlannedAmount  float64
	EngagedAmount  float64
	RealizedAmount float64
	EngagedPct     float64
	RealizedPct    float64
}

// Pct keeps downstream consumers total-safe: a zero planned amount
// yields 0, not a division error.
func Pct(part, planned float64) float64 {
	if planned == 0 {
		return 0
	}
	return part / planned * 100
}

func (b Budget) Figures() Figures {
	planned := b.PlannedAmount()
	return Figures{
		SiteID:         b.SiteID,
		PlannedAmount:  planned,
		EngagedAmount:  b.EngagedAmount,
		RealizedAmount: b.RealizedAmount,
		EngagedPct:     Pct(b.EngagedAmount, planned),
		RealizedPct:    Pct(b.RealizedAmount, planned),
	}
}

// LineSummary pairs a line with the allocation total already placed on it.
// The total may exceed 100 — over-allocation is surfaced, never rejected.
type LineSummary struct {
	Line         Line
	AllocatedPct float64
}

type Summary struct {
	Budget  Budget
	Figures Figures
	Lines   []LineSummary
}
