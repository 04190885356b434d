package infra

import (
	"fmt"
	"io"
	"time"

	"github.com/Empasex/Mini-POS/internal/model"

	"github.com/xuri/excelize/v2"
)

const excelSheet = "Resumenes"

var excelHeaders = []string{
	"Grupo", "ProductoID", "Nombre", "CantidadTotal",
	"Ingresos", "Costos", "Ganancia", "MinHora", "MaxHora", "CreatedAt",
}

// WriteBatchReportExcel writes the summaries of one batch as an .xlsx workbook.
// Money cells are numeric so the sheet can be summed directly.
func WriteBatchReportExcel(w io.Writer, batchID string, rows []model.ResumenArchivo) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", excelSheet); err != nil {
		return fmt.Errorf("excel: rename sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: "Lote " + batchID}); err != nil {
		return fmt.Errorf("excel: doc props: %w", err)
	}

	header := make([]interface{}, len(excelHeaders))
	for i, h := range excelHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(excelSheet, "A1", &header); err != nil {
		return fmt.Errorf("excel: header: %w", err)
	}

	for i, r := range rows {
		var productoID interface{}
		if r.ProductoID != nil {
			productoID = *r.ProductoID
		}
		ingresos, _ := r.Ingresos.Float64()
		costos, _ := r.Costos.Float64()
		ganancia, _ := r.Ganancia.Float64()
		row := []interface{}{
			r.Grupo, productoID, r.Nombre, r.CantidadTotal,
			ingresos, costos, ganancia,
			excelTime(r.MinHora), excelTime(r.MaxHora), excelTime(r.CreatedAt),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(excelSheet, cell, &row); err != nil {
			return fmt.Errorf("excel: row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("excel: write workbook: %w", err)
	}
	return nil
}

func excelTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
