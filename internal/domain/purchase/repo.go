package purchase

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ db *pgxpool.Pool }

func NewRepo(db *pgxpool.Pool) *Repo { return &Repo{db: db} }

const orderCols = `id, site_id, supplier_id, budget_line_id, type, label,
	quantity, unit, unit_price, vat_rate, order_date, expected_delivery,
	status, rejection_reason, invoice_number, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, o *Order) (*Order, error) {
	const q = `
		INSERT INTO purchase_orders
		(site_id, supplier_id, budget_line_id, type, label, quantity, unit,
		 unit_price, vat_rate, order_date, expected_delivery, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING ` + orderCols + `;
	`
	row := r.db.QueryRow(ctx, q,
		o.SiteID, o.SupplierID, o.BudgetLineID, o.Type, o.Label, o.Quantity,
		o.Unit, o.UnitPrice, o.VATRate, o.OrderDate, o.ExpectedDelivery, o.Status)
	return scanOrder(row)
}

func (r *Repo) ByID(ctx context.Context, id int64) (*Order, bool, error) {
	const q = `
		SELECT ` + orderCols + `
		FROM purchase_orders
		WHERE id = $1 AND deleted_at IS NULL;
	`
	o, err := scanOrder(r.db.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func (r *Repo) ListBySite(ctx context.Context, siteID int64, status Status) ([]Order, error) {
	q := `
		SELECT ` + orderCols + `
		FROM purchase_orders
		WHERE site_id = $1 AND deleted_at IS NULL
	`
	args := []any{siteID}
	if status != "" {
		q += ` AND status = $2`
		args = append(args, status)
	}
	q += ` ORDER BY order_date DESC, id DESC;`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// Transition is a compare-and-set on status: it only writes when the
// order is still in the expected source state, so of two concurrent
// transitions the second sees zero rows affected and no write happens.
func (r *Repo) Transition(ctx context.Context, id int64, from, to Status, reason, invoiceNumber string) (bool, error) {
	const q = `
		UPDATE purchase_orders
		SET status = $3,
		    rejection_reason = CASE WHEN $4 <> '' THEN $4 ELSE rejection_reason END,
		    invoice_number   = CASE WHEN $5 <> '' THEN $5 ELSE invoice_number END,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2 AND deleted_at IS NULL;
	`
	tag, err := r.db.Exec(ctx, q, id, from, to, reason, invoiceNumber)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteRequested soft-deletes an order that never left the requested
// state; anything further along is retained for audit.
func (r *Repo) DeleteRequested(ctx context.Context, id int64) (bool, error) {
	const q = `
		UPDATE purchase_orders SET deleted_at = NOW()
		WHERE id = $1 AND status = 'requested' AND deleted_at IS NULL;
	`
	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SumTotals recomputes the site aggregates over all live orders:
// engaged excludes requested and rejected, realized keeps only
// delivered and invoiced.
func (r *Repo) SumTotals(ctx context.Context, siteID int64) (engaged, realized float64, err error) {
	const q = `
		SELECT
			COALESCE(SUM(quantity * unit_price) FILTER (WHERE status NOT IN ('requested','rejected')), 0),
			COALESCE(SUM(quantity * unit_price) FILTER (WHERE status IN ('delivered','invoiced')), 0)
		FROM purchase_orders
		WHERE site_id = $1 AND deleted_at IS NULL;
	`
	err = r.db.QueryRow(ctx, q, siteID).Scan(&engaged, &realized)
	return engaged, realized, err
}

// OrderWindow returns the earliest order date and, when present, the
// latest expected delivery over a site's live orders.
func (r *Repo) OrderWindow(ctx context.Context, siteID int64) (first time.Time, lastExpected *time.Time, ok bool, err error) {
	const q = `
		SELECT MIN(order_date), MAX(expected_delivery)
		FROM purchase_orders
		WHERE site_id = $1 AND deleted_at IS NULL AND status <> 'rejected';
	`
	var min, max sql.NullTime
	if err := r.db.QueryRow(ctx, q, siteID).Scan(&min, &max); err != nil {
		return time.Time{}, nil, false, err
	}
	if !min.Valid {
		return time.Time{}, nil, false, nil
	}
	if max.Valid {
		t := max.Time
		lastExpected = &t
	}
	return min.Time, lastExpected, true, nil
}

func scanOrder(row interface{ Scan(dest ...any) error }) (*Order, error) {
	var o Order
	var lineID sql.NullInt64
	var expected sql.NullTime
	var reason, invoice sql.NullString
	if err := row.Scan(&o.ID, &o.SiteID, &o.SupplierID, &lineID, &o.Type, &o.Label,
		&o.Quantity, &o.Unit, &o.UnitPrice, &o.VATRate, &o.OrderDate, &expected,
		&o.Status, &reason, &invoice, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if lineID.Valid {
		v := lineID.Int64
		o.BudgetLineID = &v
	}
	if expected.Valid {
		t := expected.Time
		o.ExpectedDelivery = &t
	}
	o.RejectionReason = reason.String
	o.InvoiceNumber = invoice.String
	return &o, nil
}
