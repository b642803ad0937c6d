package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ocordel/chantier-api/internal/domain/predict"
)

type indicatorsDTO struct {
	MonthlyBurnRate             float64 `json:"monthlyBurnRate"`
	BurnRateVarianceVsBudgetPct float64 `json:"burnRateVarianceVsBudgetPct"`
	MonthsRemaining             float64 `json:"monthsRemaining"`
	EstimatedExhaustionDate     *string `json:"estimatedExhaustionDate"`
	FinancialProgressPct        float64 `json:"financialProgressPct"`
}

func indicatorsToDTO(ind predict.Indicators) indicatorsDTO {
	dto := indicatorsDTO{
		MonthlyBurnRate:             ind.MonthlyBurnRate,
		BurnRateVarianceVsBudgetPct: ind.BurnRateVarianceVsBudgetPct,
		MonthsRemaining:             ind.MonthsRemaining,
		FinancialProgressPct:        ind.FinancialProgressPct,
	}
	if ind.EstimatedExhaustionDate != nil {
		s := ind.EstimatedExhaustionDate.Format(time.RFC3339)
		dto.EstimatedExhaustionDate = &s
	}
	return dto
}

func (h *Handler) indicators(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ind, err := h.predict.Indicators(c.Request.Context(), siteID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, indicatorsToDTO(ind))
}

func (h *Handler) suggestions(c *gin.Context) {
	siteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.predict.Suggestions(c.Request.Context(), siteID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"indicators":  indicatorsToDTO(res.Indicators),
		"suggestions": res.Suggestions,
		"source":      res.Source,
	})
}
