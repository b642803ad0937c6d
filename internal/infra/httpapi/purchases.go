package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ocordel/chantier-api/internal/domain/faults"
	"github.com/ocordel/chantier-api/internal/domain/purchase"
)

type orderDTO struct {
	ID               int64   `json:"id"`
	SiteID           int64   `json:"siteId"`
	SupplierID       int64   `json:"supplierId"`
	BudgetLineID     *int64  `json:"budgetLineId,omitempty"`
	Type             string  `json:"type,omitempty"`
	Label            string  `json:"label"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	UnitPrice        float64 `json:"unitPriceExclTax"`
	VATRate          float64 `json:"vatRate"`
	TotalExclTax     float64 `json:"totalExclTax"`
	VATAmount        float64 `json:"vatAmount"`
	TotalInclTax     float64 `json:"totalInclTax"`
	OrderDate        string  `json:"orderDate"`
	ExpectedDelivery *string `json:"expectedDeliveryDate,omitempty"`
	Status           string  `json:"status"`
	RejectionReason  string  `json:"rejectionReason,omitempty"`
	InvoiceNumber    string  `json:"invoiceNumber,omitempty"`
}

const dateLayout = "2006-01-02"

func orderToDTO(o purchase.Order) orderDTO {
	dto := orderDTO{
		ID:              o.ID,
		SiteID:          o.SiteID,
		SupplierID:      o.SupplierID,
		BudgetLineID:    o.BudgetLineID,
		Type:            o.Type,
		Label:           o.Label,
		Quantity:        o.Quantity,
		Unit:            o.Unit,
		UnitPrice:       o.UnitPrice,
		VATRate:         o.VATRate,
		TotalExclTax:    o.TotalExclTax(),
		VATAmount:       o.VATAmount(),
		TotalInclTax:    o.TotalInclTax(),
		OrderDate:       o.OrderDate.Format(dateLayout),
		Status:          string(o.Status),
		RejectionReason: o.RejectionReason,
		InvoiceNumber:   o.InvoiceNumber,
	}
	if o.ExpectedDelivery != nil {
		s := o.ExpectedDelivery.Format(dateLayout)
		dto.ExpectedDelivery = &s
	}
	return dto
}

func (h *Handler) createPurchase(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body struct {
		SupplierID       int64   `json:"supplierId"`
		BudgetLineID     *int64  `json:"budgetLineId"`
		Type             string  `json:"type"`
		Label            string  `json:"label"`
		Quantity         float64 `json:"quantity"`
		Unit             string  `json:"unit"`
		UnitPrice        float64 `json:"unitPriceExclTax"`
		VATRate          float64 `json:"vatRate"`
		OrderDate        string  `json:"orderDate"`
		ExpectedDelivery string  `json:"expectedDeliveryDate"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, faults.Validation("invalid body: %v", err))
		return
	}

	in := purchase.CreateInput{
		SiteID:       siteID,
		SupplierID:   body.SupplierID,
		BudgetLineID: body.BudgetLineID,
		Type:         body.Type,
		Label:        body.Label,
		Quantity:     body.Quantity,
		Unit:         body.Unit,
		UnitPrice:    body.UnitPrice,
		VATRate:      body.VATRate,
	}
	if body.OrderDate != "" {
		d, err := time.Parse(dateLayout, body.OrderDate)
		if err != nil {
			h.fail(c, faults.Validation("invalid orderDate %q", body.OrderDate))
			return
		}
		in.OrderDate = d
	}
	if body.ExpectedDelivery != "" {
		d, err := time.Parse(dateLayout, body.ExpectedDelivery)
		if err != nil {
			h.fail(c, faults.Validation("invalid expectedDeliveryDate %q", body.ExpectedDelivery))
			return
		}
		in.ExpectedDelivery = &d
	}

	o, err := h.purchases.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderToDTO(*o))
}

func (h *Handler) listPurchases(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	orders, err := h.purchases.ListBySite(c.Request.Context(), siteID, purchase.Status(c.Query("status")))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := []orderDTO{}
	for _, o := range orders {
		out = append(out, orderToDTO(o))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getPurchase(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.purchases.ByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orderToDTO(*o))
}

func (h *Handler) deletePurchase(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.purchases.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) approvePurchase(c *gin.Context) {
	h.runTransition(c, func(id int64) (*purchase.Order, error) {
		return h.purchases.Approve(c.Request.Context(), id)
	})
}

func (h *Handler) rejectPurchase(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, faults.Validation("invalid body: %v", err))
		return
	}
	h.runTransition(c, func(id int64) (*purchase.Order, error) {
		return h.purchases.Reject(c.Request.Context(), id, body.Reason)
	})
}

func (h *Handler) orderPurchase(c *gin.Context) {
	h.runTransition(c, func(id int64) (*purchase.Order, error) {
		return h.purchases.Order(c.Request.Context(), id)
	})
}

func (h *Handler) deliverPurchase(c *gin.Context) {
	h.runTransition(c, func(id int64) (*purchase.Order, error) {
		return h.purchases.Deliver(c.Request.Context(), id)
	})
}

func (h *Handler) invoicePurchase(c *gin.Context) {
	var body struct {
		InvoiceNumber string `json:"invoiceNumber"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, faults.Validation("invalid body: %v", err))
		return
	}
	h.runTransition(c, func(id int64) (*purchase.Order, error) {
		return h.purchases.Invoice(c.Request.Context(), id, body.InvoiceNumber)
	})
}

func (h *Handler) runTransition(c *gin.Context, fn func(id int64) (*purchase.Order, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := fn(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orderToDTO(*o))
}
