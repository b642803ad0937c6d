package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ocordel/chantier-api/internal/domain/allocation"
	"github.com/ocordel/chantier-api/internal/domain/faults"
)

type allocationDTO struct {
	ID           int64   `json:"id"`
	BudgetLineID int64   `json:"budgetLineId"`
	TaskID       int64   `json:"taskId"`
	Percentage   float64 `json:"percentage"`
}

func allocationToDTO(a allocation.Allocation) allocationDTO {
	return allocationDTO{ID: a.ID, BudgetLineID: a.BudgetLineID, TaskID: a.TaskID, Percentage: a.Percentage}
}

func (h *Handler) createAllocation(c *gin.Context) {
	var body struct {
		BudgetLineID int64   `json:"budgetLineId"`
		TaskID       int64   `json:"taskId"`
		Percentage   float64 `json:"percentage"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, faults.Validation("invalid body: %v", err))
		return
	}
	a, err := h.allocs.Create(c.Request.Context(), body.BudgetLineID, body.TaskID, body.Percentage)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, allocationToDTO(*a))
}

func (h *Handler) deleteAllocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.allocs.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) lineAllocations(c *gin.Context) {
	lineID, ok := pathID(c, "id")
	if !ok {
		return
	}
	allocs, total, err := h.allocs.ForLine(c.Request.Context(), lineID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := []allocationDTO{}
	for _, a := range allocs {
		out = append(out, allocationToDTO(a))
	}
	c.JSON(http.StatusOK, gin.H{
		"allocations":     out,
		"totalPercentage": total,
	})
}

func (h *Handler) affectedAmount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	amount, err := h.allocs.AffectedAmount(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affectedAmount": amount})
}
