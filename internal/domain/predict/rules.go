package predict

import (
	"fmt"

	"github.com/ocordel/chantier-api/internal/domain/budget"
)

type Rules struct {
	// Budgets at or above this amount get the progress-billing hint.
	LargeBudgetThreshold float64
	// Engagement must exceed planned by more than this many points
	// before the critical overrun fires.
	OverrunPct float64
	// Projected margin under this floor triggers the renegotiation
	// warning.
	MarginFloorPct float64
}

// evaluate runs the deterministic rule set in fixed order; each rule
// contributes zero or one suggestion, independently of the others.
func (r Rules) evaluate(fig budget.Figures) []Suggestion {
	out := []Suggestion{}

	if r.LargeBudgetThreshold > 0 && fig.PlannedAmount >= r.LargeBudgetThreshold {
		out = append(out, Suggestion{
			Type:     "progress_billing",
			Title:    "Mettre en place une facturation d'avancement",
			Severity: SeverityInfo,
			Description: fmt.Sprintf(
				"Le budget prévu (%.0f €) dépasse %.0f € : une facturation formelle à l'avancement sécurise la trésorerie.",
				fig.PlannedAmount, r.LargeBudgetThreshold),
		})
	}

	if overrun := fig.EngagedPct - 100; overrun > r.OverrunPct {
		out = append(out, Suggestion{
			Type:     "budget_overrun",
			Title:    "Dépassement budgétaire engagé",
			Severity: SeverityCritical,
			Description: fmt.Sprintf(
				"Les engagements atteignent %.1f%% du budget : le rythme de dépense doit être corrigé immédiatement.",
				fig.EngagedPct),
			EstimatedImpact: fig.EngagedAmount - fig.PlannedAmount,
		})
	}

	if fig.PlannedAmount > 0 {
		margin := (fig.PlannedAmount - fig.EngagedAmount) / fig.PlannedAmount * 100
		if margin < r.MarginFloorPct {
			out = append(out, Suggestion{
				Type:     "renegotiate_suppliers",
				Title:    "Renégocier les conditions fournisseurs",
				Severity: SeverityWarning,
				Description: fmt.Sprintf(
					"La marge projetée (%.1f%%) est sous le plancher de %.0f%% : renégocier les prochains achats.",
					margin, r.MarginFloorPct),
			})
		}
	}

	if len(out) == 0 {
		out = append(out, Suggestion{
			Type:        "on_track",
			Title:       "Budget sous contrôle",
			Severity:    SeverityInfo,
			Description: "Aucune règle de risque déclenchée sur la consommation actuelle.",
		})
	}
	return out
}
