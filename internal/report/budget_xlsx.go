package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ocordel/chantier-api/internal/domain/budget"
	"github.com/ocordel/chantier-api/internal/domain/purchase"
)

// WriteBudgetXLSX renders a two-sheet workbook: the budget summary with
// its lines, then one row per purchase order.
func WriteBudgetXLSX(w io.Writer, sum *budget.Summary, orders []purchase.Order) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, "Budget"); err != nil {
		return err
	}
	sheet = "Budget"

	rows := [][]interface{}{
		{"site_id", sum.Budget.SiteID},
		{"initial_amount", sum.Budget.InitialAmount},
		{"revised_amount", revisedCell(sum.Budget.RevisedAmount)},
		{"planned_amount", sum.Figures.PlannedAmount},
		{"engaged_amount", sum.Figures.EngagedAmount},
		{"engaged_pct", sum.Figures.EngagedPct},
		{"realized_amount", sum.Figures.RealizedAmount},
		{"realized_pct", sum.Figures.RealizedPct},
	}
	for i, r := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return err
		}
	}

	// Lot detail below the summary block.
	lineHeader := []interface{}{"code", "label", "planned_amount", "allocated_pct"}
	base := len(rows) + 2
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", base), &lineHeader); err != nil {
		return err
	}
	for i, l := range sum.Lines {
		row := []interface{}{l.Line.Code, l.Line.Label, l.Line.PlannedAmount, l.AllocatedPct}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", base+1+i), &row); err != nil {
			return err
		}
	}

	const ordersSheet = "Achats"
	if _, err := f.NewSheet(ordersSheet); err != nil {
		return err
	}
	header := []interface{}{
		"id", "label", "supplier_id", "status", "quantity", "unit",
		"unit_price", "total_excl_tax", "vat_rate", "total_incl_tax",
		"order_date", "invoice_number",
	}
	if err := f.SetSheetRow(ordersSheet, "A1", &header); err != nil {
		return err
	}
	for i, o := range orders {
		row := []interface{}{
			o.ID, o.Label, o.SupplierID, string(o.Status), o.Quantity, o.Unit,
			o.UnitPrice, o.TotalExclTax(), o.VATRate, o.TotalInclTax(),
			o.OrderDate.Format("2006-01-02"), o.InvoiceNumber,
		}
		if err := f.SetSheetRow(ordersSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func revisedCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
