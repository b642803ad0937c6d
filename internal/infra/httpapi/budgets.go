package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ocordel/chantier-api/internal/domain/budget"
	"github.com/ocordel/chantier-api/internal/domain/faults"
	"github.com/ocordel/chantier-api/internal/report"
)

type budgetDTO struct {
	ID             int64    `json:"id"`
	SiteID         int64    `json:"siteId"`
	InitialAmount  float64  `json:"initialAmountExclTax"`
	RevisedAmount  *float64 `json:"revisedAmountExclTax,omitempty"`
	PlannedAmount  float64  `json:"plannedAmountExclTax"`
	EngagedAmount  float64  `json:"engagedAmount"`
	RealizedAmount float64  `json:"realizedAmount"`
	EngagedPct     float64  `json:"engagedPct"`
	RealizedPct    float64  `json:"realizedPct"`
}

func budgetToDTO(b budget.Budget) budgetDTO {
	fig := b.Figures()
	return budgetDTO{
		ID:             b.ID,
		SiteID:         b.SiteID,
		InitialAmount:  b.InitialAmount,
		RevisedAmount:  b.RevisedAmount,
		PlannedAmount:  fig.PlannedAmount,
		EngagedAmount:  fig.EngagedAmount,
		RealizedAmount: fig.RealizedAmount,
		EngagedPct:     fig.EngagedPct,
		RealizedPct:    fig.RealizedPct,
	}
}

type lineDTO struct {
	ID            int64   `json:"id"`
	Code          string  `json:"code"`
	Label         string  `json:"label"`
	PlannedAmount float64 `json:"plannedAmountExclTax"`
	AllocatedPct  float64 `json:"allocatedPct"`
}

func (h *Handler) createBudget(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body struct {
		InitialAmount float64 `json:"initialAmountExclTax"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, faults.Validation("invalid body: %v", err))
		return
	}
	b, err := h.budgets.Create(c.Request.Context(), siteID, body.InitialAmount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, budgetToDTO(*b))
}

func (h *Handler) setRevisedAmount(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body struct {
		RevisedAmount *float64 `json:"revisedAmountExclTax"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, faults.Validation("invalid body: %v", err))
		return
	}
	b, err := h.budgets.SetRevised(c.Request.Context(), siteID, body.RevisedAmount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, budgetToDTO(*b))
}

func (h *Handler) budgetSummary(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sum, err := h.budgets.Summary(c.Request.Context(), siteID)
	if err != nil {
		h.fail(c, err)
		return
	}
	lines := []lineDTO{}
	for _, l := range sum.Lines {
		lines = append(lines, lineDTO{
			ID:            l.Line.ID,
			Code:          l.Line.Code,
			Label:         l.Line.Label,
			PlannedAmount: l.Line.PlannedAmount,
			AllocatedPct:  l.AllocatedPct,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"budget": budgetToDTO(sum.Budget),
		"lines":  lines,
	})
}

func (h *Handler) exportBudget(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sum, err := h.budgets.Summary(c.Request.Context(), siteID)
	if err != nil {
		h.fail(c, err)
		return
	}
	orders, err := h.purchases.ListBySite(c.Request.Context(), siteID, "")
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="budget-chantier-%d.xlsx"`, siteID))
	if err := report.WriteBudgetXLSX(c.Writer, sum, orders); err != nil {
		h.log.Error("budget export failed", "site_id", siteID, "err", err)
	}
}

func (h *Handler) createBudgetLine(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Code          string  `json:"code"`
		Label         string  `json:"label"`
		PlannedAmount float64 `json:"plannedAmountExclTax"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, faults.Validation("invalid body: %v", err))
		return
	}
	l, err := h.budgets.CreateLine(c.Request.Context(), siteID, body.Code, body.Label, body.PlannedAmount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, lineDTO{ID: l.ID, Code: l.Code, Label: l.Label, PlannedAmount: l.PlannedAmount})
}

func (h *Handler) updateBudgetLine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Code          string  `json:"code"`
		Label         string  `json:"label"`
		PlannedAmount float64 `json:"plannedAmountExclTax"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, faults.Validation("invalid body: %v", err))
		return
	}
	l, err := h.budgets.UpdateLine(c.Request.Context(), id, body.Code, body.Label, body.PlannedAmount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lineDTO{ID: l.ID, Code: l.Code, Label: l.Label, PlannedAmount: l.PlannedAmount})
}

func (h *Handler) deleteBudgetLine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.budgets.DeleteLine(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
