package predict

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/ocordel/chantier-api/internal/domain/budget"
	"github.com/ocordel/chantier-api/internal/infra/metrics"
)

type FiguresProvider interface {
	Figures(ctx context.Context, siteID int64) (budget.Figures, error)
}

// History exposes the time window of a site's live orders: earliest
// order date and, when known, the latest expected delivery.
type History interface {
	OrderWindow(ctx context.Context, siteID int64) (first time.Time, lastExpected *time.Time, ok bool, err error)
}

// Provider is the optional external AI source. Any error here is
// recovered by falling back to the deterministic rules — the caller of
// Suggestions never sees it.
type Provider interface {
	Suggestions(ctx context.Context, siteID int64, ind Indicators, fig budget.Figures) ([]Suggestion, error)
}

type Engine struct {
	figures  FiguresProvider
	history  History
	provider Provider
	timeout  time.Duration
	rules    Rules
	log      *slog.Logger
	now      func() time.Time
}

func NewEngine(figures FiguresProvider, history History, provider Provider, timeout time.Duration, rules Rules, log *slog.Logger) *Engine {
	return &Engine{
		figures:  figures,
		history:  history,
		provider: provider,
		timeout:  timeout,
		rules:    rules,
		log:      log,
		now:      time.Now,
	}
}

func (e *Engine) Indicators(ctx context.Context, siteID int64) (Indicators, error) {
	fig, err := e.figures.Figures(ctx, siteID)
	if err != nil {
		return Indicators{}, err
	}
	first, lastExpected, hasOrders, err := e.history.OrderWindow(ctx, siteID)
	if err != nil {
		return Indicators{}, err
	}
	return e.compute(fig, first, lastExpected, hasOrders), nil
}

func (e *Engine) compute(fig budget.Figures, first time.Time, lastExpected *time.Time, hasOrders bool) Indicators {
	ind := Indicators{FinancialProgressPct: fig.RealizedPct}
	if !hasOrders {
		return ind
	}

	now := e.now()
	elapsedDays := now.Sub(first).Hours() / 24
	if elapsedDays < 1 {
		elapsedDays = 1
	}
	ind.MonthlyBurnRate = fig.RealizedAmount / elapsedDays * 30

	// Reference rate: the even monthly burn that would spend the whole
	// budget over the project window (first order to latest expected
	// delivery, falling back to the elapsed window).
	windowDays := elapsedDays
	if lastExpected != nil && lastExpected.After(first) {
		windowDays = lastExpected.Sub(first).Hours() / 24
		if windowDays < 1 {
			windowDays = 1
		}
	}
	if fig.PlannedAmount > 0 {
		plannedMonthly := fig.PlannedAmount / windowDays * 30
		if plannedMonthly > 0 {
			ind.BurnRateVarianceVsBudgetPct = (ind.MonthlyBurnRate - plannedMonthly) / plannedMonthly * 100
		}
	}

	if ind.MonthlyBurnRate > 0 {
		remaining := fig.PlannedAmount - fig.RealizedAmount
		if remaining < 0 {
			remaining = 0
		}
		ind.MonthsRemaining = remaining / ind.MonthlyBurnRate
		d := now.AddDate(0, 0, int(ind.MonthsRemaining*30))
		ind.EstimatedExhaustionDate = &d
	}
	// Zero burn rate: months remaining stays 0 and the exhaustion date
	// stays nil, meaning unbounded.
	return ind
}

func (e *Engine) Suggestions(ctx context.Context, siteID int64) (*Result, error) {
	fig, err := e.figures.Figures(ctx, siteID)
	if err != nil {
		return nil, err
	}
	first, lastExpected, hasOrders, err := e.history.OrderWindow(ctx, siteID)
	if err != nil {
		return nil, err
	}
	ind := e.compute(fig, first, lastExpected, hasOrders)

	if e.provider != nil {
		aiCtx, cancel := context.WithTimeout(ctx, e.timeout)
		sugs, err := e.provider.Suggestions(aiCtx, siteID, ind, fig)
		cancel()
		if err == nil {
			metrics.Suggestions.WithLabelValues(SourceAI).Inc()
			return &Result{Indicators: ind, Suggestions: rank(sugs), Source: SourceAI}, nil
		}
		e.log.Warn("ai provider unavailable, falling back to rules", "site_id", siteID, "err", err)
	}

	metrics.Suggestions.WithLabelValues(SourceRules).Inc()
	return &Result{Indicators: ind, Suggestions: rank(e.rules.evaluate(fig)), Source: SourceRules}, nil
}

// rank sorts critical before warning before info, keeping the original
// order within a severity.
func rank(sugs []Suggestion) []Suggestion {
	sort.SliceStable(sugs, func(i, j int) bool {
		return severityRank(sugs[i].Severity) < severityRank(sugs[j].Severity)
	})
	return sugs
}
