package budget

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ocordel/chantier-api/internal/domain/faults"
)

type memStore struct {
	mu         sync.Mutex
	budgets    map[int64]*Budget // keyed by site
	lines      map[int64]*Line
	referenced map[int64]bool
	nextID     int64
}

func newMemStore() *memStore {
	return &memStore{budgets: map[int64]*Budget{}, lines: map[int64]*Line{}, referenced: map[int64]bool{}}
}

func (m *memStore) CreateBudget(_ context.Context, siteID int64, initial float64) (*Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	b := &Budget{ID: m.nextID, SiteID: siteID, InitialAmount: initial, CreatedAt: time.Now()}
	m.budgets[siteID] = b
	cp := *b
	return &cp, nil
}

func (m *memStore) BudgetBySite(_ context.Context, siteID int64) (*Budget, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[siteID]
	if !ok {
		return nil, false, nil
	}
	cp := *b
	return &cp, true, nil
}

func (m *memStore) SetRevisedAmount(_ context.Context, siteID int64, amount *float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[siteID].RevisedAmount = amount
	return nil
}

func (m *memStore) UpdateConsumption(_ context.Context, siteID int64, engaged, realized float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[siteID].EngagedAmount = engaged
	m.budgets[siteID].RealizedAmount = realized
	return nil
}

func (m *memStore) CreateLine(_ context.Context, budgetID int64, code, label string, planned float64) (*Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	l := &Line{ID: m.nextID, BudgetID: budgetID, Code: code, Label: label, PlannedAmount: planned}
	m.lines[l.ID] = l
	cp := *l
	return &cp, nil
}

func (m *memStore) UpdateLine(_ context.Context, id int64, code, label string, planned float64) (*Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.lines[id]
	l.Code, l.Label, l.PlannedAmount = code, label, planned
	cp := *l
	return &cp, nil
}

func (m *memStore) DeleteLine(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lines, id)
	return nil
}

func (m *memStore) LineByID(_ context.Context, id int64) (*Line, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lines[id]
	if !ok {
		return nil, false, nil
	}
	cp := *l
	return &cp, true, nil
}

func (m *memStore) LinesForBudget(_ context.Context, budgetID int64) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Line{}
	for _, l := range m.lines {
		if l.BudgetID == budgetID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memStore) LineReferenced(_ context.Context, lineID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.referenced[lineID], nil
}

type stubSites struct{ missing bool }

func (s stubSites) SiteExists(context.Context, int64) (bool, error) { return !s.missing, nil }

type stubTotals struct{ totals map[int64]float64 }

func (s stubTotals) TotalPercentage(_ context.Context, lineID int64) (float64, error) {
	return s.totals[lineID], nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	svc := NewService(store, stubSites{}, stubTotals{totals: map[int64]float64{}}, slog.New(slog.DiscardHandler))
	return svc, store
}

func TestCreateBudgetOncePerSite(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, -5); !faults.IsValidation(err) {
		t.Fatalf("negative amount: got %v, want validation error", err)
	}
	if _, err := svc.Create(ctx, 1, 100_000); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, 1, 50_000); !faults.IsValidation(err) {
		t.Fatalf("second budget for the site: got %v, want validation error", err)
	}
}

func TestCreateBudgetUnknownSite(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, stubSites{missing: true}, stubTotals{}, slog.New(slog.DiscardHandler))
	if _, err := svc.Create(context.Background(), 9, 1000); !faults.IsNotFound(err) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestSetRevised(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	svc.Create(ctx, 1, 100_000)

	neg := -1.0
	if _, err := svc.SetRevised(ctx, 1, &neg); !faults.IsValidation(err) {
		t.Fatalf("negative revision: got %v, want validation error", err)
	}

	v := 130_000.0
	b, err := svc.SetRevised(ctx, 1, &v)
	if err != nil {
		t.Fatalf("SetRevised: %v", err)
	}
	if b.PlannedAmount() != 130_000 {
		t.Fatalf("planned = %.2f, want 130000", b.PlannedAmount())
	}

	b, err = svc.SetRevised(ctx, 1, nil)
	if err != nil {
		t.Fatalf("clear revision: %v", err)
	}
	if b.PlannedAmount() != 100_000 {
		t.Fatalf("planned after clear = %.2f, want the initial 100000", b.PlannedAmount())
	}

	if _, err := svc.SetRevised(ctx, 2, &v); !faults.IsNotFound(err) {
		t.Fatalf("no budget: got %v, want not found", err)
	}
}

func TestCreateLineDuplicateCode(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	svc.Create(ctx, 1, 100_000)

	if _, err := svc.CreateLine(ctx, 1, "GO-01", "Gros œuvre", 40_000); err != nil {
		t.Fatalf("create line: %v", err)
	}
	if _, err := svc.CreateLine(ctx, 1, "GO-01", "Doublon", 10_000); !faults.IsValidation(err) {
		t.Fatalf("duplicate code: got %v, want validation error", err)
	}
	if _, err := svc.CreateLine(ctx, 1, "", "Sans code", 10_000); !faults.IsValidation(err) {
		t.Fatalf("empty code: got %v, want validation error", err)
	}
}

func TestDeleteLineBlockedWhileReferenced(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	svc.Create(ctx, 1, 100_000)
	l, _ := svc.CreateLine(ctx, 1, "CVC-02", "Chauffage", 25_000)

	store.referenced[l.ID] = true
	if err := svc.DeleteLine(ctx, l.ID); !faults.IsValidation(err) {
		t.Fatalf("referenced line: got %v, want validation error", err)
	}

	store.referenced[l.ID] = false
	if err := svc.DeleteLine(ctx, l.ID); err != nil {
		t.Fatalf("delete unreferenced line: %v", err)
	}
	if err := svc.DeleteLine(ctx, l.ID); !faults.IsNotFound(err) {
		t.Fatalf("second delete: got %v, want not found", err)
	}
}
