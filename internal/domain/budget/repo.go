package budget

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ db *pgxpool.Pool }

func NewRepo(db *pgxpool.Pool) *Repo { return &Repo{db: db} }

func (r *Repo) CreateBudget(ctx context.Context, siteID int64, initialAmount float64) (*Budget, error) {
	const q = `
		INSERT INTO budgets (site_id, initial_amount)
		VALUES ($1, $2)
		RETURNING id, site_id, initial_amount, revised_amount,
		          engaged_amount, realized_amount, created_at, updated_at;
	`
	row := r.db.QueryRow(ctx, q, siteID, initialAmount)
	return scanBudget(row)
}

func (r *Repo) BudgetBySite(ctx context.Context, siteID int64) (*Budget, bool, error) {
	const q = `
		SELECT id, site_id, initial_amount, revised_amount,
		       engaged_amount, realized_amount, created_at, updated_at
		FROM budgets
		WHERE site_id = $1;
	`
	b, err := scanBudget(r.db.QueryRow(ctx, q, siteID))
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *Repo) SetRevisedAmount(ctx context.Context, siteID int64, amount *float64) error {
	const q = `
		UPDATE budgets SET revised_amount = $2, updated_at = NOW()
		WHERE site_id = $1;
	`
	tag, err := r.db.Exec(ctx, q, siteID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repo) UpdateConsumption(ctx context.Context, siteID int64, engaged, realized float64) error {
	const q = `
		UPDATE budgets SET engaged_amount = $2, realized_amount = $3, updated_at = NOW()
		WHERE site_id = $1;
	`
	_, err := r.db.Exec(ctx, q, siteID, engaged, realized)
	return err
}

func (r *Repo) CreateLine(ctx context.Context, budgetID int64, code, label string, planned float64) (*Line, error) {
	const q = `
		INSERT INTO budget_lines (budget_id, code, label, planned_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, budget_id, code, label, planned_amount, created_at;
	`
	return scanLine(r.db.QueryRow(ctx, q, budgetID, code, label, planned))
}

func (r *Repo) UpdateLine(ctx context.Context, id int64, code, label string, planned float64) (*Line, error) {
	const q = `
		UPDATE budget_lines SET code = $2, label = $3, planned_amount = $4
		WHERE id = $1
		RETURNING id, budget_id, code, label, planned_amount, created_at;
	`
	return scanLine(r.db.QueryRow(ctx, q, id, code, label, planned))
}

func (r *Repo) DeleteLine(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM budget_lines WHERE id=$1`, id)
	return err
}

func (r *Repo) LineByID(ctx context.Context, id int64) (*Line, bool, error) {
	const q = `
		SELECT id, budget_id, code, label, planned_amount, created_at
		FROM budget_lines
		WHERE id = $1;
	`
	l, err := scanLine(r.db.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return l, true, nil
}

func (r *Repo) LinesForBudget(ctx context.Context, budgetID int64) ([]Line, error) {
	const q = `
		SELECT id, budget_id, code, label, planned_amount, created_at
		FROM budget_lines
		WHERE budget_id = $1
		ORDER BY code ASC;
	`
	rows, err := r.db.Query(ctx, q, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.BudgetID, &l.Code, &l.Label, &l.PlannedAmount, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LineReferenced reports whether any allocation or purchase order still
// points at the line; such a line must not be deleted.
func (r *Repo) LineReferenced(ctx context.Context, lineID int64) (bool, error) {
	const q = `
		SELECT EXISTS (SELECT 1 FROM allocations WHERE budget_line_id = $1)
		    OR EXISTS (SELECT 1 FROM purchase_orders WHERE budget_line_id = $1 AND deleted_at IS NULL);
	`
	var ref bool
	err := r.db.QueryRow(ctx, q, lineID).Scan(&ref)
	return ref, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanBudget(row rowScanner) (*Budget, error) {
	var b Budget
	var revised sql.NullFloat64
	if err := row.Scan(&b.ID, &b.SiteID, &b.InitialAmount, &revised,
		&b.EngagedAmount, &b.RealizedAmount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if revised.Valid {
		v := revised.Float64
		b.RevisedAmount = &v
	}
	return &b, nil
}

func scanLine(row rowScanner) (*Line, error) {
	var l Line
	if err := row.Scan(&l.ID, &l.BudgetID, &l.Code, &l.Label, &l.PlannedAmount, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}
