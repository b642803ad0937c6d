package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ocordel/chantier-api/internal/domain/alert"
)

type alertDTO struct {
	ID            int64   `json:"id"`
	SiteID        int64   `json:"siteId"`
	AlertType     string  `json:"alertType"`
	Message       string  `json:"message"`
	ThresholdPct  float64 `json:"configuredThreshold"`
	ReachedPct    float64 `json:"reachedPercentage"`
	BudgetAmount  float64 `json:"budgetAmount"`
	ReachedAmount float64 `json:"reachedAmount"`
	Acknowledged  bool    `json:"acknowledged"`
	CreatedAt     string  `json:"createdAt"`
}

func alertToDTO(a alert.Alert) alertDTO {
	return alertDTO{
		ID:            a.ID,
		SiteID:        a.SiteID,
		AlertType:     string(a.AlertType),
		Message:       a.Message,
		ThresholdPct:  a.ThresholdPct,
		ReachedPct:    a.ReachedPct,
		BudgetAmount:  a.BudgetAmount,
		ReachedAmount: a.ReachedAmount,
		Acknowledged:  a.Acknowledged,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) listAlerts(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	alerts, err := h.alerts.List(c.Request.Context(), siteID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := []alertDTO{}
	for _, a := range alerts {
		out = append(out, alertToDTO(a))
	}
	c.JSON(http.StatusOK, out)
}

// checkOverrun runs one explicit evaluation pass and returns only the
// alerts created by it.
func (h *Handler) checkOverrun(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	created, err := h.alerts.Evaluate(c.Request.Context(), siteID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := []alertDTO{}
	for _, a := range created {
		out = append(out, alertToDTO(a))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) acknowledgeAlert(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.alerts.Acknowledge(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alertToDTO(*a))
}
