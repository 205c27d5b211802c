package infra

// pdf.go: closing report (cierre de caja) rendered with go-pdf/fpdf.
// A4 portrait with:
//   - Session header (id, opened/closed timestamps, opening balance)
//   - Totals per payment method and expenses
//   - Theoretical cash and, when a count was declared, the difference
//   - Expense lines
//
// The output file is saved to storagePath/cierre_{sesion_id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"

	"github.com/go-pdf/fpdf"
)

// ReporteCierre is everything the closing report prints.
type ReporteCierre struct {
	Sesion        *model.SesionCaja
	Cierre        model.CierreCaja
	Transacciones []model.Transaccion
	Gastos        []model.Gasto
}

// GenerateCierrePDF writes the closing report and returns the file path.
// storagePath is created if needed.
func GenerateCierrePDF(r ReporteCierre, storagePath string) (string, error) {
	if r.Sesion == nil {
		return "", fmt.Errorf("pdf: nil session")
	}
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("cierre_%s.pdf", r.Sesion.ID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Cierre de caja", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Sesion "+r.Sesion.ID.String(), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	label := contentW * 0.6
	value := contentW * 0.4
	row := func(l, v string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(label, 6, l, "", 0, "L", false, 0, "")
		pdf.CellFormat(value, 6, v, "", 1, "R", false, 0, "")
	}

	row("Apertura", r.Sesion.OpenedAt.Format("02/01/2006 15:04"), false)
	if r.Sesion.ClosedAt != nil {
		row("Cierre", r.Sesion.ClosedAt.Format("02/01/2006 15:04"), false)
	}
	row("Monto inicial", "$"+domain.FormatearMonto(r.Sesion.MontoInicial), false)
	row("Transacciones", fmt.Sprintf("%d", len(r.Transacciones)), false)

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	c := r.Cierre
	row("Efectivo", "$"+domain.FormatearMonto(c.TotalEfectivo), false)
	row("Tarjeta", "$"+domain.FormatearMonto(c.TotalTarjeta), false)
	row("Digital", "$"+domain.FormatearMonto(c.TotalDigital), false)
	row("Total ventas", "$"+domain.FormatearMonto(c.TotalVentas), true)
	row("Gastos", "-$"+domain.FormatearMonto(c.TotalGastos), false)
	row("Efectivo teorico", "$"+domain.FormatearMonto(c.EfectivoTeorico), true)

	if r.Sesion.EfectivoContado != nil && r.Sesion.Diferencia != nil {
		row("Efectivo contado", "$"+domain.FormatearMonto(*r.Sesion.EfectivoContado), false)
		clasif := ""
		if r.Sesion.ClasificacionDiferencia != nil {
			clasif = " (" + *r.Sesion.ClasificacionDiferencia + ")"
		}
		row("Diferencia"+clasif, "$"+domain.FormatearMonto(*r.Sesion.Diferencia), true)
	}

	// ── Expenses ─────────────────────────────────────────────────────────────
	if len(r.Gastos) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(label, 6, "Gasto", "B", 0, "L", false, 0, "")
		pdf.CellFormat(value, 6, "Monto", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, g := range r.Gastos {
			desc := g.Categoria
			if g.Notas != nil && *g.Notas != "" {
				desc += " - " + *g.Notas
			}
			if len(desc) > 60 {
				desc = desc[:57] + "..."
			}
			pdf.CellFormat(label, 5, desc, "", 0, "L", false, 0, "")
			pdf.CellFormat(value, 5, "$"+domain.FormatearMonto(g.Monto), "", 1, "R", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
