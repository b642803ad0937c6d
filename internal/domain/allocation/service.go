package allocation

import (
	"context"
	"log/slog"

	"github.com/ocordel/chantier-api/internal/domain/budget"
	"github.com/ocordel/chantier-api/internal/domain/faults"
)

type Store interface {
	Create(ctx context.Context, budgetLineID, taskID int64, percentage float64) (*Allocation, error)
	ByID(ctx context.Context, id int64) (*Allocation, bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ForLine(ctx context.Context, budgetLineID int64) ([]Allocation, error)
	TotalPercentage(ctx context.Context, budgetLineID int64) (float64, error)
}

type LineStore interface {
	LineByID(ctx context.Context, id int64) (*budget.Line, bool, error)
}

type TaskDirectory interface {
	TaskExists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	store Store
	lines LineStore
	tasks TaskDirectory
	log   *slog.Logger
}

func NewService(store Store, lines LineStore, tasks TaskDirectory, log *slog.Logger) *Service {
	return &Service{store: store, lines: lines, tasks: tasks, log: log}
}

// Create accepts any total above 100% on the line: over-allocation is a
// soft constraint, surfaced through TotalPercentage rather than blocked.
func (s *Service) Create(ctx context.Context, budgetLineID, taskID int64, percentage float64) (*Allocation, error) {
	if percentage <= 0 || percentage > 100 {
		return nil, faults.Validation("percentage must be in (0, 100], got %.2f", percentage)
	}
	if _, ok, err := s.lines.LineByID(ctx, budgetLineID); err != nil {
		return nil, err
	} else if !ok {
		return nil, faults.NotFound("budget line", budgetLineID)
	}
	if ok, err := s.tasks.TaskExists(ctx, taskID); err != nil {
		return nil, err
	} else if !ok {
		return nil, faults.NotFound("task", taskID)
	}

	a, err := s.store.Create(ctx, budgetLineID, taskID, percentage)
	if err != nil {
		return nil, err
	}

	total, err := s.store.TotalPercentage(ctx, budgetLineID)
	if err != nil {
		return nil, err
	}
	if total > 100 {
		s.log.Warn("budget line over-allocated", "budget_line_id", budgetLineID, "total_pct", total)
	}
	return a, nil
}

// Delete is unconditional once the allocation exists.
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return faults.NotFound("allocation", id)
	}
	return nil
}

func (s *Service) ForLine(ctx context.Context, budgetLineID int64) ([]Allocation, float64, error) {
	if _, ok, err := s.lines.LineByID(ctx, budgetLineID); err != nil {
		return nil, 0, err
	} else if !ok {
		return nil, 0, faults.NotFound("budget line", budgetLineID)
	}
	allocs, err := s.store.ForLine(ctx, budgetLineID)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.TotalPercentage(ctx, budgetLineID)
	if err != nil {
		return nil, 0, err
	}
	return allocs, total, nil
}

// AffectedAmount correlates task completion with money: the slice of
// the line's planned amount the allocation represents.
func (s *Service) AffectedAmount(ctx context.Context, id int64) (float64, error) {
	a, ok, err := s.store.ByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, faults.NotFound("allocation", id)
	}
	line, ok, err := s.lines.LineByID(ctx, a.BudgetLineID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, faults.NotFound("budget line", a.BudgetLineID)
	}
	return line.PlannedAmount * a.Percentage / 100, nil
}
