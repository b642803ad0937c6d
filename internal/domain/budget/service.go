package budget

import (
	"context"
	"log/slog"

	"github.com/ocordel/chantier-api/internal/domain/faults"
)

type Store interface {
	CreateBudget(ctx context.Context, siteID int64, initialAmount float64) (*Budget, error)
	BudgetBySite(ctx context.Context, siteID int64) (*Budget, bool, error)
	SetRevisedAmount(ctx context.Context, siteID int64, amount *float64) error
	UpdateConsumption(ctx context.Context, siteID int64, engaged, realized float64) error
	CreateLine(ctx context.Context, budgetID int64, code, label string, planned float64) (*Line, error)
	UpdateLine(ctx context.Context, id int64, code, label string, planned float64) (*Line, error)
	DeleteLine(ctx context.Context, id int64) error
	LineByID(ctx context.Context, id int64) (*Line, bool, error)
	LinesForBudget(ctx context.Context, budgetID int64) ([]Line, error)
	LineReferenced(ctx context.Context, lineID int64) (bool, error)
}

type SiteDirectory interface {
	SiteExists(ctx context.Context, id int64) (bool, error)
}

type AllocationTotals interface {
	TotalPercentage(ctx context.Context, budgetLineID int64) (float64, error)
}

type Service struct {
	store  Store
	sites  SiteDirectory
	allocs AllocationTotals
	log    *slog.Logger
}

func NewService(store Store, sites SiteDirectory, allocs AllocationTotals, log *slog.Logger) *Service {
	return &Service{store: store, sites: sites, allocs: allocs, log: log}
}

func (s *Service) Create(ctx context.Context, siteID int64, initialAmount float64) (*Budget, error) {
	if initialAmount < 0 {
		return nil, faults.Validation("initial amount must be >= 0")
	}
	ok, err := s.sites.SiteExists(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, faults.NotFound("site", siteID)
	}
	if _, exists, err := s.store.BudgetBySite(ctx, siteID); err != nil {
		return nil, err
	} else if exists {
		return nil, faults.Validation("site %d already has a budget", siteID)
	}
	b, err := s.store.CreateBudget(ctx, siteID, initialAmount)
	if err != nil {
		return nil, err
	}
	s.log.Info("budget created", "site_id", siteID, "initial_amount", initialAmount)
	return b, nil
}

// SetRevised updates the revised amount; a nil amount clears the revision
// so ratios fall back to the initial amount.
func (s *Service) SetRevised(ctx context.Context, siteID int64, amount *float64) (*Budget, error) {
	if amount != nil && *amount < 0 {
		return nil, faults.Validation("revised amount must be >= 0")
	}
	if _, exists, err := s.store.BudgetBySite(ctx, siteID); err != nil {
		return nil, err
	} else if !exists {
		return nil, faults.NotFound("budget", siteID)
	}
	if err := s.store.SetRevisedAmount(ctx, siteID, amount); err != nil {
		return nil, err
	}
	b, _, err := s.store.BudgetBySite(ctx, siteID)
	return b, err
}

func (s *Service) Figures(ctx context.Context, siteID int64) (Figures, error) {
	b, ok, err := s.store.BudgetBySite(ctx, siteID)
	if err != nil {
		return Figures{}, err
	}
	if !ok {
		return Figures{}, faults.NotFound("budget", siteID)
	}
	return b.Figures(), nil
}

func (s *Service) Summary(ctx context.Context, siteID int64) (*Summary, error) {
	b, ok, err := s.store.BudgetBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, faults.NotFound("budget", siteID)
	}
	lines, err := s.store.LinesForBudget(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	sum := &Summary{Budget: *b, Figures: b.Figures()}
	for _, l := range lines {
		total, err := s.allocs.TotalPercentage(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		sum.Lines = append(sum.Lines, LineSummary{Line: l, AllocatedPct: total})
	}
	return sum, nil
}

func (s *Service) CreateLine(ctx context.Context, siteID int64, code, label string, planned float64) (*Line, error) {
	if code == "" {
		return nil, faults.Validation("line code must not be empty")
	}
	if planned < 0 {
		return nil, faults.Validation("planned amount must be >= 0")
	}
	b, ok, err := s.store.BudgetBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, faults.NotFound("budget", siteID)
	}
	existing, err := s.store.LinesForBudget(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	for _, l := range existing {
		if l.Code == code {
			return nil, faults.Validation("line code %q already used in this budget", code)
		}
	}
	return s.store.CreateLine(ctx, b.ID, code, label, planned)
}

func (s *Service) UpdateLine(ctx context.Context, id int64, code, label string, planned float64) (*Line, error) {
	if code == "" {
		return nil, faults.Validation("line code must not be empty")
	}
	if planned < 0 {
		return nil, faults.Validation("planned amount must be >= 0")
	}
	if _, ok, err := s.store.LineByID(ctx, id); err != nil {
		return nil, err
	} else if !ok {
		return nil, faults.NotFound("budget line", id)
	}
	return s.store.UpdateLine(ctx, id, code, label, planned)
}

// DeleteLine refuses to remove a line that allocations or purchase
// orders still reference.
func (s *Service) DeleteLine(ctx context.Context, id int64) error {
	if _, ok, err := s.store.LineByID(ctx, id); err != nil {
		return err
	} else if !ok {
		return faults.NotFound("budget line", id)
	}
	ref, err := s.store.LineReferenced(ctx, id)
	if err != nil {
		return err
	}
	if ref {
		return faults.Validation("budget line %d is still referenced", id)
	}
	return s.store.DeleteLine(ctx, id)
}
