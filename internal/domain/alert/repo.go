package alert

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ db *pgxpool.Pool }

func NewRepo(db *pgxpool.Pool) *Repo { return &Repo{db: db} }

const alertCols = `id, site_id, alert_type, message, threshold_pct,
	reached_pct, budget_amount, reached_amount, acknowledged, created_at`

func (r *Repo) Create(ctx context.Context, a *Alert) (*Alert, error) {
	const q = `
		INSERT INTO overrun_alerts
		(site_id, alert_type, message, threshold_pct, reached_pct, budget_amount, reached_amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING ` + alertCols + `;
	`
	row := r.db.QueryRow(ctx, q, a.SiteID, a.AlertType, a.Message,
		a.ThresholdPct, a.ReachedPct, a.BudgetAmount, a.ReachedAmount)
	return scanAlert(row)
}

// HasActive reports whether an unacknowledged alert of the given type
// already covers the current threshold crossing for the site.
func (r *Repo) HasActive(ctx context.Context, siteID int64, t Type) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM overrun_alerts
			WHERE site_id = $1 AND alert_type = $2 AND NOT acknowledged
		);
	`
	var ok bool
	err := r.db.QueryRow(ctx, q, siteID, t).Scan(&ok)
	return ok, err
}

// ListBySite: active alerts before acknowledged ones, each group newest
// first.
func (r *Repo) ListBySite(ctx context.Context, siteID int64) ([]Alert, error) {
	const q = `
		SELECT ` + alertCols + `
		FROM overrun_alerts
		WHERE site_id = $1
		ORDER BY acknowledged ASC, created_at DESC, id DESC;
	`
	rows, err := r.db.Query(ctx, q, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Repo) ByID(ctx context.Context, id int64) (*Alert, bool, error) {
	const q = `SELECT ` + alertCols + ` FROM overrun_alerts WHERE id = $1;`
	a, err := scanAlert(r.db.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// Acknowledge is one-way; acknowledging twice leaves the row as is.
func (r *Repo) Acknowledge(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE overrun_alerts SET acknowledged = TRUE WHERE id = $1`, id)
	return err
}

func scanAlert(row interface{ Scan(dest ...any) error }) (*Alert, error) {
	var a Alert
	if err := row.Scan(&a.ID, &a.SiteID, &a.AlertType, &a.Message, &a.ThresholdPct,
		&a.ReachedPct, &a.BudgetAmount, &a.ReachedAmount, &a.Acknowledged, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
