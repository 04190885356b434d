package infra

// pdf.go: Batch report PDF using go-pdf/fpdf.
// A4 portrait with:
//   - Title and batch id
//   - Summary table (group, product, qty, revenue, cost, profit)
//   - Bold totals row

import (
	"fmt"
	"io"
	"time"

	"github.com/Empasex/Mini-POS/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// WriteBatchReportPDF renders the summaries of one archived batch to w.
func WriteBatchReportPDF(w io.Writer, batchID string, rows []model.ResumenArchivo) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Mini-POS - Lote archivado", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Lote: "+batchID, "", 1, "L", false, 0, "")
	if len(rows) > 0 && rows[0].CreatedAt != nil {
		pdf.CellFormat(contentW, 5, "Archivado: "+rows[0].CreatedAt.UTC().Format("02/01/2006 15:04")+" UTC", "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Table header ─────────────────────────────────────────────────────────
	widths := []float64{
		contentW * 0.14, // grupo
		contentW * 0.34, // nombre
		contentW * 0.10, // cantidad
		contentW * 0.14, // ingresos
		contentW * 0.14, // costos
		contentW * 0.14, // ganancia
	}
	headers := []string{"Grupo", "Producto", "Cant", "Ingresos", "Costos", "Ganancia"}
	pdf.SetFont("Helvetica", "B", 8)
	for i, h := range headers {
		align := "R"
		if i < 2 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 6, h, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	// ── Rows ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	var cantidad int
	ingresos, costos, ganancia := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range rows {
		nombre := r.Nombre
		if len([]rune(nombre)) > 48 {
			nombre = string([]rune(nombre)[:47]) + "..."
		}
		pdf.CellFormat(widths[0], 5, r.Grupo, "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 5, tr(nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 5, fmt.Sprintf("%d", r.CantidadTotal), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 5, "$"+r.Ingresos.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 5, "$"+r.Costos.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 5, "$"+r.Ganancia.StringFixed(2), "", 1, "R", false, 0, "")

		cantidad += r.CantidadTotal
		ingresos = ingresos.Add(r.Ingresos)
		costos = costos.Add(r.Costos)
		ganancia = ganancia.Add(r.Ganancia)
	}

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(widths[0]+widths[1], 6, "TOTAL", "T", 0, "L", false, 0, "")
	pdf.CellFormat(widths[2], 6, fmt.Sprintf("%d", cantidad), "T", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 6, "$"+ingresos.StringFixed(2), "T", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 6, "$"+costos.StringFixed(2), "T", 0, "R", false, 0, "")
	pdf.CellFormat(widths[5], 6, "$"+ganancia.StringFixed(2), "T", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Generado "+time.Now().UTC().Format(time.RFC3339), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write report: %w", err)
	}
	return nil
}
