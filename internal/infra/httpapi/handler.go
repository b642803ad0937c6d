package httpapi

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/ocordel/chantier-api/internal/domain/alert"
	"github.com/ocordel/chantier-api/internal/domain/allocation"
	"github.com/ocordel/chantier-api/internal/domain/budget"
	"github.com/ocordel/chantier-api/internal/domain/predict"
	"github.com/ocordel/chantier-api/internal/domain/purchase"
)

type Handler struct {
	budgets   *budget.Service
	purchases *purchase.Service
	allocs    *allocation.Service
	alerts    *alert.Engine
	predict   *predict.Engine
	log       *slog.Logger
}

func NewHandler(
	budgets *budget.Service,
	purchases *purchase.Service,
	allocs *allocation.Service,
	alerts *alert.Engine,
	pred *predict.Engine,
	log *slog.Logger,
) *Handler {
	return &Handler{
		budgets:   budgets,
		purchases: purchases,
		allocs:    allocs,
		alerts:    alerts,
		predict:   pred,
		log:       log,
	}
}

func (h *Handler) register(r *gin.Engine) {
	r.POST("/sites/:id/budget", h.createBudget)
	r.PUT("/sites/:id/budget/revised", h.setRevisedAmount)
	r.GET("/sites/:id/budget", h.budgetSummary)
	r.GET("/sites/:id/budget/export", h.exportBudget)
	r.POST("/sites/:id/budget/lines", h.createBudgetLine)
	r.PUT("/budget/lines/:id", h.updateBudgetLine)
	r.DELETE("/budget/lines/:id", h.deleteBudgetLine)
	r.GET("/budget/lines/:id/allocations", h.lineAllocations)

	r.POST("/sites/:id/purchases", h.createPurchase)
	r.GET("/sites/:id/purchases", h.listPurchases)
	r.GET("/purchases/:id", h.getPurchase)
	r.DELETE("/purchases/:id", h.deletePurchase)
	r.PATCH("/purchases/:id/approve", h.approvePurchase)
	r.PATCH("/purchases/:id/reject", h.rejectPurchase)
	r.PATCH("/purchases/:id/order", h.orderPurchase)
	r.PATCH("/purchases/:id/deliver", h.deliverPurchase)
	r.PATCH("/purchases/:id/invoice", h.invoicePurchase)

	r.POST("/allocations", h.createAllocation)
	r.DELETE("/allocations/:id", h.deleteAllocation)
	r.GET("/allocations/:id/affected-amount", h.affectedAmount)

	r.GET("/sites/:id/alerts", h.listAlerts)
	r.POST("/sites/:id/alerts/check", h.checkOverrun)
	r.PATCH("/alerts/:id/acknowledge", h.acknowledgeAlert)

	r.GET("/sites/:id/indicators", h.indicators)
	r.GET("/sites/:id/suggestions", h.suggestions)
}
