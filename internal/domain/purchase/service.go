package purchase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ocordel/chantier-api/internal/domain/alert"
	"github.com/ocordel/chantier-api/internal/domain/budget"
	"github.com/ocordel/chantier-api/internal/domain/faults"
	"github.com/ocordel/chantier-api/internal/infra/metrics"
)

type Store interface {
	Create(ctx context.Context, o *Order) (*Order, error)
	ByID(ctx context.Context, id int64) (*Order, bool, error)
	ListBySite(ctx context.Context, siteID int64, status Status) ([]Order, error)
	Transition(ctx context.Context, id int64, from, to Status, reason, invoiceNumber string) (bool, error)
	DeleteRequested(ctx context.Context, id int64) (bool, error)
	SumTotals(ctx context.Context, siteID int64) (engaged, realized float64, err error)
}

type BudgetLedger interface {
	BudgetBySite(ctx context.Context, siteID int64) (*budget.Budget, bool, error)
	UpdateConsumption(ctx context.Context, siteID int64, engaged, realized float64) error
	LineByID(ctx context.Context, id int64) (*budget.Line, bool, error)
}

type Directory interface {
	SiteExists(ctx context.Context, id int64) (bool, error)
	SupplierExists(ctx context.Context, id int64) (bool, error)
}

// AlertEvaluator runs the overrun pass synchronously after each
// transition; a failure there fails the transition call loudly.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, siteID int64) ([]alert.Alert, error)
}

type Service struct {
	store   Store
	budgets BudgetLedger
	dir     Directory
	alerts  AlertEvaluator
	log     *slog.Logger
	locks   *siteLocks
}

func NewService(store Store, budgets BudgetLedger, dir Directory, alerts AlertEvaluator, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		budgets: budgets,
		dir:     dir,
		alerts:  alerts,
		log:     log,
		locks:   newSiteLocks(),
	}
}

type CreateInput struct {
	SiteID           int64
	SupplierID       int64
	BudgetLineID     *int64
	Type             string
	Label            string
	Quantity         float64
	Unit             string
	UnitPrice        float64
	VATRate          float64
	OrderDate        time.Time
	ExpectedDelivery *time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	if in.Quantity <= 0 {
		return nil, faults.Validation("quantity must be > 0")
	}
	if in.UnitPrice < 0 {
		return nil, faults.Validation("unit price must be >= 0")
	}
	if in.VATRate < 0 {
		return nil, faults.Validation("vat rate must be >= 0")
	}
	if in.Label == "" {
		return nil, faults.Validation("label must not be empty")
	}
	if in.Unit == "" {
		return nil, faults.Validation("unit must not be empty")
	}

	if ok, err := s.dir.SiteExists(ctx, in.SiteID); err != nil {
		return nil, err
	} else if !ok {
		return nil, faults.NotFound("site", in.SiteID)
	}
	if ok, err := s.dir.SupplierExists(ctx, in.SupplierID); err != nil {
		return nil, err
	} else if !ok {
		return nil, faults.NotFound("supplier", in.SupplierID)
	}
	if in.BudgetLineID != nil {
		line, ok, err := s.budgets.LineByID(ctx, *in.BudgetLineID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, faults.NotFound("budget line", *in.BudgetLineID)
		}
		b, hasBudget, err := s.budgets.BudgetBySite(ctx, in.SiteID)
		if err != nil {
			return nil, err
		}
		if !hasBudget || line.BudgetID != b.ID {
			return nil, faults.Validation("budget line %d does not belong to site %d", *in.BudgetLineID, in.SiteID)
		}
	}

	orderDate := in.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}
	o, err := s.store.Create(ctx, &Order{
		SiteID:           in.SiteID,
		SupplierID:       in.SupplierID,
		BudgetLineID:     in.BudgetLineID,
		Type:             in.Type,
		Label:            in.Label,
		Quantity:         in.Quantity,
		Unit:             in.Unit,
		UnitPrice:        in.UnitPrice,
		VATRate:          in.VATRate,
		OrderDate:        orderDate,
		ExpectedDelivery: in.ExpectedDelivery,
		Status:           StatusRequested,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("purchase order created", "order_id", o.ID, "site_id", o.SiteID, "total_excl_tax", o.TotalExclTax())
	return o, nil
}

func (s *Service) ByID(ctx context.Context, id int64) (*Order, error) {
	o, ok, err := s.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, faults.NotFound("purchase order", id)
	}
	return o, nil
}

func (s *Service) ListBySite(ctx context.Context, siteID int64, status Status) ([]Order, error) {
	if status != "" && !status.Valid() {
		return nil, faults.Validation("unknown status %q", status)
	}
	return s.store.ListBySite(ctx, siteID, status)
}

func (s *Service) Approve(ctx context.Context, id int64) (*Order, error) {
	return s.transition(ctx, id, TriggerApprove, "", "")
}

func (s *Service) Reject(ctx context.Context, id int64, reason string) (*Order, error) {
	if reason == "" {
		return nil, faults.Validation("rejection reason must not be empty")
	}
	return s.transition(ctx, id, TriggerReject, reason, "")
}

func (s *Service) Order(ctx context.Context, id int64) (*Order, error) {
	return s.transition(ctx, id, TriggerOrder, "", "")
}

func (s *Service) Deliver(ctx context.Context, id int64) (*Order, error) {
	return s.transition(ctx, id, TriggerDeliver, "", "")
}

func (s *Service) Invoice(ctx context.Context, id int64, invoiceNumber string) (*Order, error) {
	if invoiceNumber == "" {
		return nil, faults.Validation("invoice number must not be empty")
	}
	return s.transition(ctx, id, TriggerInvoice, "", invoiceNumber)
}

// Delete removes an order that never left the requested state; anything
// further along is kept for audit and answers with an invalid transition.
func (s *Service) Delete(ctx context.Context, id int64) error {
	o, ok, err := s.store.ByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return faults.NotFound("purchase order", id)
	}
	unlock := s.locks.lock(o.SiteID)
	defer unlock()

	deleted, err := s.store.DeleteRequested(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		cur, found, err := s.store.ByID(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return faults.NotFound("purchase order", id)
		}
		return faults.InvalidTransition(string(cur.Status), "delete")
	}
	s.log.Info("purchase order deleted", "order_id", id, "site_id", o.SiteID)
	return nil
}

func (s *Service) transition(ctx context.Context, id int64, trigger Trigger, reason, invoiceNumber string) (*Order, error) {
	o, ok, err := s.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, faults.NotFound("purchase order", id)
	}

	unlock := s.locks.lock(o.SiteID)
	defer unlock()

	next, err := Next(o.Status, trigger)
	if err != nil {
		metrics.Transitions.WithLabelValues(string(trigger), "invalid").Inc()
		return nil, err
	}

	// CAS write: a concurrent transition that got there first leaves
	// zero rows affected, so the loser re-reads and reports the
	// post-transition status with no write of its own.
	applied, err := s.store.Transition(ctx, id, o.Status, next, reason, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if !applied {
		cur, found, err := s.store.ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		from := ""
		if found {
			from = string(cur.Status)
		}
		metrics.Transitions.WithLabelValues(string(trigger), "invalid").Inc()
		return nil, faults.InvalidTransition(from, string(trigger))
	}

	if err := s.recompute(ctx, o.SiteID); err != nil {
		return nil, err
	}

	metrics.Transitions.WithLabelValues(string(trigger), "ok").Inc()
	s.log.Info("purchase order transition",
		"order_id", id, "site_id", o.SiteID,
		"trigger", string(trigger), "from", string(o.Status), "to", string(next))

	updated, _, err := s.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// recompute refreshes the site's engaged/realized totals and runs the
// overrun pass. Sites without a budget have nothing to compare against.
func (s *Service) recompute(ctx context.Context, siteID int64) error {
	_, hasBudget, err := s.budgets.BudgetBySite(ctx, siteID)
	if err != nil {
		return err
	}
	if !hasBudget {
		s.log.Debug("no budget for site, skipping overrun pass", "site_id", siteID)
		return nil
	}

	engaged, realized, err := s.store.SumTotals(ctx, siteID)
	if err != nil {
		return err
	}
	if err := s.budgets.UpdateConsumption(ctx, siteID, engaged, realized); err != nil {
		return err
	}
	_, err = s.alerts.Evaluate(ctx, siteID)
	return err
}
