package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ocordel/chantier-api/internal/domain/budget"
	"github.com/ocordel/chantier-api/internal/domain/faults"
	"github.com/ocordel/chantier-api/internal/infra/metrics"
)

type Store interface {
	Create(ctx context.Context, a *Alert) (*Alert, error)
	HasActive(ctx context.Context, siteID int64, t Type) (bool, error)
	ListBySite(ctx context.Context, siteID int64) ([]Alert, error)
	ByID(ctx context.Context, id int64) (*Alert, bool, error)
	Acknowledge(ctx context.Context, id int64) error
}

type FiguresProvider interface {
	Figures(ctx context.Context, siteID int64) (budget.Figures, error)
}

// Notifier pushes freshly raised alerts to the outside (admin chat,
// mail relay...). Delivery failures are logged, never propagated: the
// alert is already on the ledger.
type Notifier interface {
	AlertRaised(ctx context.Context, a Alert) error
}

type Thresholds struct {
	EngagementPct  float64
	RealizationPct float64
}

type Engine struct {
	store      Store
	figures    FiguresProvider
	thresholds Thresholds
	notifier   Notifier
	log        *slog.Logger
}

func NewEngine(store Store, figures FiguresProvider, thresholds Thresholds, notifier Notifier, log *slog.Logger) *Engine {
	return &Engine{store: store, figures: figures, thresholds: thresholds, notifier: notifier, log: log}
}

// Evaluate runs one overrun pass for the site and returns the alerts
// created by this pass. A ratio back under its threshold never removes
// anything: alerts only leave the active list through acknowledgment.
func (e *Engine) Evaluate(ctx context.Context, siteID int64) ([]Alert, error) {
	fig, err := e.figures.Figures(ctx, siteID)
	if err != nil {
		if faults.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	checks := []struct {
		typ       Type
		threshold float64
		reached   float64
		amount    float64
		label     string
	}{
		{TypeEngagement, e.thresholds.EngagementPct, fig.EngagedPct, fig.EngagedAmount, "engagé"},
		{TypeRealization, e.thresholds.RealizationPct, fig.RealizedPct, fig.RealizedAmount, "réalisé"},
	}

	created := []Alert{}
	for _, c := range checks {
		if c.threshold <= 0 || fig.PlannedAmount == 0 || c.reached < c.threshold {
			continue
		}
		active, err := e.store.HasActive(ctx, siteID, c.typ)
		if err != nil {
			return nil, err
		}
		if active {
			continue
		}
		a, err := e.store.Create(ctx, &Alert{
			SiteID:    siteID,
			AlertType: c.typ,
			Message: fmt.Sprintf("Budget %s à %.1f%% (seuil %.0f%%) : %.2f € sur %.2f € prévus",
				c.label, c.reached, c.threshold, c.amount, fig.PlannedAmount),
			ThresholdPct:  c.threshold,
			ReachedPct:    c.reached,
			BudgetAmount:  fig.PlannedAmount,
			ReachedAmount: c.amount,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, *a)
		metrics.AlertsRaised.WithLabelValues(string(c.typ)).Inc()
		e.log.Warn("overrun alert raised",
			"site_id", siteID, "type", string(c.typ),
			"reached_pct", c.reached, "threshold_pct", c.threshold)
		e.notify(ctx, *a)
	}
	return created, nil
}

func (e *Engine) notify(ctx context.Context, a Alert) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.AlertRaised(ctx, a); err != nil {
		e.log.Error("alert notification failed", "alert_id", a.ID, "err", err)
	}
}

func (e *Engine) List(ctx context.Context, siteID int64) ([]Alert, error) {
	return e.store.ListBySite(ctx, siteID)
}

// Acknowledge is idempotent: a second call on an acknowledged alert is
// a no-op, not an error.
func (e *Engine) Acknowledge(ctx context.Context, id int64) (*Alert, error) {
	a, ok, err := e.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, faults.NotFound("alert", id)
	}
	if a.Acknowledged {
		return a, nil
	}
	if err := e.store.Acknowledge(ctx, id); err != nil {
		return nil, err
	}
	a.Acknowledged = true
	return a, nil
}
