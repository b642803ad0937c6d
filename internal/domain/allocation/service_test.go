package allocation

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ocordel/chantier-api/internal/domain/budget"
	"github.com/ocordel/chantier-api/internal/domain/faults"
)

type memStore struct {
	mu     sync.Mutex
	allocs map[int64]*Allocation
	nextID int64
}

func newMemStore() *memStore { return &memStore{allocs: map[int64]*Allocation{}} }

func (m *memStore) Create(_ context.Context, lineID, taskID int64, pct float64) (*Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a := &Allocation{ID: m.nextID, BudgetLineID: lineID, TaskID: taskID, Percentage: pct, CreatedAt: time.Now()}
	m.allocs[a.ID] = a
	cp := *a
	return &cp, nil
}

func (m *memStore) ByID(_ context.Context, id int64) (*Allocation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.allocs[id]
	if !ok {
		return nil, false, nil
	}
	cp := *a
	return &cp, true, nil
}

func (m *memStore) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.allocs[id]; !ok {
		return false, nil
	}
	delete(m.allocs, id)
	return true, nil
}

func (m *memStore) ForLine(_ context.Context, lineID int64) ([]Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Allocation{}
	for _, a := range m.allocs {
		if a.BudgetLineID == lineID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) TotalPercentage(_ context.Context, lineID int64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, a := range m.allocs {
		if a.BudgetLineID == lineID {
			total += a.Percentage
		}
	}
	return total, nil
}

type stubLines struct{ lines map[int64]*budget.Line }

func (s stubLines) LineByID(_ context.Context, id int64) (*budget.Line, bool, error) {
	l, ok := s.lines[id]
	if !ok {
		return nil, false, nil
	}
	cp := *l
	return &cp, true, nil
}

type stubTasks struct{ missing bool }

func (s stubTasks) TaskExists(context.Context, int64) (bool, error) { return !s.missing, nil }

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	lines := stubLines{lines: map[int64]*budget.Line{
		10: {ID: 10, BudgetID: 1, Code: "GO-03", Label: "Gros œuvre", PlannedAmount: 20_000},
	}}
	svc := NewService(store, lines, stubTasks{}, slog.New(slog.DiscardHandler))
	return svc, store
}

func TestCreatePercentageBounds(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, pct := range []float64{0, -5, 100.01, 150} {
		if _, err := svc.Create(ctx, 10, 1, pct); !faults.IsValidation(err) {
			t.Fatalf("pct %.2f: got %v, want validation error", pct, err)
		}
	}
	if _, err := svc.Create(ctx, 10, 1, 100); err != nil {
		t.Fatalf("pct 100 must be accepted: %v", err)
	}
	if _, err := svc.Create(ctx, 10, 2, 0.5); err != nil {
		t.Fatalf("pct 0.5 must be accepted: %v", err)
	}
}

func TestCreateUnknownReferences(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, 99, 1, 50); !faults.IsNotFound(err) {
		t.Fatalf("unknown line: got %v, want not found", err)
	}

	store := newMemStore()
	lines := stubLines{lines: map[int64]*budget.Line{10: {ID: 10, PlannedAmount: 100}}}
	svcNoTask := NewService(store, lines, stubTasks{missing: true}, slog.New(slog.DiscardHandler))
	if _, err := svcNoTask.Create(ctx, 10, 1, 50); !faults.IsNotFound(err) {
		t.Fatalf("unknown task: got %v, want not found", err)
	}
}

// 60% then 50% on the same line: both accepted, the total surfaces 110.
func TestOverAllocationIsSurfacedNotRejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, 10, 1, 60); err != nil {
		t.Fatalf("first allocation: %v", err)
	}
	if _, err := svc.Create(ctx, 10, 2, 50); err != nil {
		t.Fatalf("second allocation must not be rejected: %v", err)
	}

	allocs, total, err := svc.ForLine(ctx, 10)
	if err != nil {
		t.Fatalf("ForLine: %v", err)
	}
	if len(allocs) != 2 {
		t.Fatalf("listed %d allocations, want 2", len(allocs))
	}
	if total != 110 {
		t.Fatalf("total percentage = %.2f, want 110", total)
	}
}

func TestDeleteUnconditional(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, 10, 1, 75)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, a.ID); !faults.IsNotFound(err) {
		t.Fatalf("second delete: got %v, want not found", err)
	}

	_, total, err := svc.ForLine(ctx, 10)
	if err != nil {
		t.Fatalf("ForLine: %v", err)
	}
	if total != 0 {
		t.Fatalf("total percentage after delete = %.2f, want 0", total)
	}
}

func TestAffectedAmount(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, 10, 1, 25)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	amount, err := svc.AffectedAmount(ctx, a.ID)
	if err != nil {
		t.Fatalf("AffectedAmount: %v", err)
	}
	if amount != 5000 {
		t.Fatalf("affected amount = %.2f, want 5000 (25%% of 20000)", amount)
	}

	if _, err := svc.AffectedAmount(ctx, 999); !faults.IsNotFound(err) {
		t.Fatalf("got %v, want not found", err)
	}
}
