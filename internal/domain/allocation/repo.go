package allocation

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ db *pgxpool.Pool }

func NewRepo(db *pgxpool.Pool) *Repo { return &Repo{db: db} }

func (r *Repo) Create(ctx context.Context, budgetLineID, taskID int64, percentage float64) (*Allocation, error) {
	const q = `
		INSERT INTO allocations (budget_line_id, task_id, percentage)
		VALUES ($1, $2, $3)
		RETURNING id, budget_line_id, task_id, percentage, created_at;
	`
	row := r.db.QueryRow(ctx, q, budgetLineID, taskID, percentage)
	var a Allocation
	if err := row.Scan(&a.ID, &a.BudgetLineID, &a.TaskID, &a.Percentage, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) ByID(ctx context.Context, id int64) (*Allocation, bool, error) {
	const q = `
		SELECT id, budget_line_id, task_id, percentage, created_at
		FROM allocations
		WHERE id = $1;
	`
	var a Allocation
	err := r.db.QueryRow(ctx, q, id).Scan(&a.ID, &a.BudgetLineID, &a.TaskID, &a.Percentage, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &a, true, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM allocations WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repo) ForLine(ctx context.Context, budgetLineID int64) ([]Allocation, error) {
	const q = `
		SELECT id, budget_line_id, task_id, percentage, created_at
		FROM allocations
		WHERE budget_line_id = $1
		ORDER BY created_at ASC, id ASC;
	`
	rows, err := r.db.Query(ctx, q, budgetLineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Allocation{}
	for rows.Next() {
		var a Allocation
		if err := rows.Scan(&a.ID, &a.BudgetLineID, &a.TaskID, &a.Percentage, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) TotalPercentage(ctx context.Context, budgetLineID int64) (float64, error) {
	const q = `SELECT COALESCE(SUM(percentage), 0) FROM allocations WHERE budget_line_id = $1;`
	var total float64
	err := r.db.QueryRow(ctx, q, budgetLineID).Scan(&total)
	return total, err
}
