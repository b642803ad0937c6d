// Package directory gives read-only access to the site/supplier/task
// referentials. The core only ever checks existence and reads labels;
// managing these records belongs to the surrounding application.
package directory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Site struct {
	ID   int64
	Name string
}

type Supplier struct {
	ID   int64
	Name string
}

type Task struct {
	ID     int64
	SiteID int64
	Label  string
}

type Repo struct{ db *pgxpool.Pool }

func NewRepo(db *pgxpool.Pool) *Repo { return &Repo{db: db} }

func (r *Repo) SiteExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM sites WHERE id=$1)`, id)
}

func (r *Repo) SupplierExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE id=$1)`, id)
}

func (r *Repo) TaskExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id=$1)`, id)
}

func (r *Repo) SiteByID(ctx context.Context, id int64) (*Site, bool, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name FROM sites WHERE id=$1`, id)
	var s Site
	if err := row.Scan(&s.ID, &s.Name); err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &s, true, nil
}

func (r *Repo) exists(ctx context.Context, q string, id int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, q, id).Scan(&ok)
	return ok, err
}
