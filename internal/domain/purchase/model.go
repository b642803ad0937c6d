package purchase

import "time"

type Status string

const (
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusOrdered   Status = "ordered"
	StatusDelivered Status = "delivered"
	StatusInvoiced  Status = "invoiced"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusOrdered, StatusDelivered, StatusInvoiced, StatusRejected:
		return true
	}
	return false
}

// Engaged: committed spend, everything past the request stage that was
// not rejected.
func (s Status) Engaged() bool {
	return s != StatusRequested && s != StatusRejected
}

// Realized: spend confirmed by delivery or invoicing.
func (s Status) Realized() bool {
	return s == StatusDelivered || s == StatusInvoiced
}

// Order — achat. Created in requested status, then driven only through
// the state machine; never physically deleted once it leaves requested.
type Order struct {
	ID               int64
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
	Status           Status
	RejectionReason  string
	InvoiceNumber    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (o Order) TotalExclTax() float64 { return o.Quantity * o.UnitPrice }

func (o Order) VATAmount() float64 { return o.TotalExclTax() * o.VATRate / 100 }

func (o Order) TotalInclTax() float64 { return o.TotalExclTax() + o.VATAmount() }
