package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Empasex/Mini-POS/internal/dto"
	"github.com/Empasex/Mini-POS/internal/infra"
	"github.com/Empasex/Mini-POS/internal/model"
	"github.com/Empasex/Mini-POS/internal/repository"
)

const (
	// MaxSerie bounds the length of a zero-filled series.
	MaxSerie = 365

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// Exportacion is a rendered batch report ready to be sent as a download.
type Exportacion struct {
	Nombre      string
	ContentType string
	Datos       []byte
}

// ReporteService answers read-only queries over archived summaries.
type ReporteService interface {
	ListarLotes(ctx context.Context) ([]dto.LoteResponse, error)
	DetalleLote(ctx context.Context, batchID string) ([]dto.ResumenResponse, error)
	Metricas(ctx context.Context, periodo string) ([]dto.MetricaPeriodo, error)
	Serie(ctx context.Context, periodo string, last int) ([]dto.MetricaPeriodo, error)
	Totales(ctx context.Context, start, end string) (*dto.TotalesResponse, error)
	ExportarLote(ctx context.Context, batchID, formato string) (*Exportacion, error)
}

type reporteService struct {
	repo repository.ArchivoRepository
	now  func() time.Time
}

func NewReporteService(repo repository.ArchivoRepository) ReporteService {
	return &reporteService{repo: repo, now: time.Now}
}

func (s *reporteService) ListarLotes(ctx context.Context) ([]dto.LoteResponse, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, &ComputationError{Op: "lotes", Err: err}
	}
	return agruparLotes(rows), nil
}

func (s *reporteService) DetalleLote(ctx context.Context, batchID string) ([]dto.ResumenResponse, error) {
	rows, err := s.resumenesLote(ctx, batchID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ResumenResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, resumenToResponse(r))
	}
	return out, nil
}

func (s *reporteService) resumenesLote(ctx context.Context, batchID string) ([]model.ResumenArchivo, error) {
	rows, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, &ComputationError{Op: "detalle de lote", Err: err}
	}
	if len(rows) == 0 {
		return nil, ErrLoteNoEncontrado
	}
	return rows, nil
}

func (s *reporteService) Metricas(ctx context.Context, periodo string) ([]dto.MetricaPeriodo, error) {
	p, err := ParsePeriodo(periodo)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, &ComputationError{Op: "metricas", Err: err}
	}
	return agruparPorPeriodo(rows, p, s.now().UTC()), nil
}

func (s *reporteService) Serie(ctx context.Context, periodo string, last int) ([]dto.MetricaPeriodo, error) {
	p, err := ParsePeriodo(periodo)
	if err != nil {
		return nil, err
	}
	if last < 1 || last > MaxSerie {
		return nil, validacion("last", fmt.Sprintf("debe estar entre 1 y %d", MaxSerie))
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, &ComputationError{Op: "serie", Err: err}
	}
	now := s.now().UTC()
	return completarSerie(agruparPorPeriodo(rows, p, now), p.UltimasClaves(now, last)), nil
}

// Totales sums summaries in the optional inclusive range [start, end].
func (s *reporteService) Totales(ctx context.Context, start, end string) (*dto.TotalesResponse, error) {
	var desde, hasta *time.Time
	if start != "" {
		t, err := parseISO(start)
		if err != nil {
			return nil, validacion("start", "fecha ISO-8601 invalida")
		}
		desde = &t
	}
	if end != "" {
		t, err := parseISO(end)
		if err != nil {
			return nil, validacion("end", "fecha ISO-8601 invalida")
		}
		hasta = &t
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, &ComputationError{Op: "totales", Err: err}
	}
	tot := sumarTotales(rows, desde, hasta, s.now().UTC())
	return &tot, nil
}

// ExportarLote renders a batch as xlsx or pdf.
func (s *reporteService) ExportarLote(ctx context.Context, batchID, formato string) (*Exportacion, error) {
	if formato == "" {
		formato = "xlsx"
	}
	if formato != "xlsx" && formato != "pdf" {
		return nil, validacion("format", "use xlsx o pdf")
	}
	rows, err := s.resumenesLote(ctx, batchID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	exp := &Exportacion{Nombre: "lote_" + batchID + "." + formato}
	switch formato {
	case "pdf":
		exp.ContentType = ContentTypePDF
		err = infra.WriteBatchReportPDF(&buf, batchID, rows)
	default:
		exp.ContentType = ContentTypeXLSX
		err = infra.WriteBatchReportExcel(&buf, batchID, rows)
	}
	if err != nil {
		return nil, &ComputationError{Op: "exportacion " + formato, Err: err}
	}
	exp.Datos = buf.Bytes()
	return exp, nil
}

func resumenToResponse(r model.ResumenArchivo) dto.ResumenResponse {
	return dto.ResumenResponse{
		BatchID:       r.BatchID,
		Grupo:         r.Grupo,
		ProductoID:    r.ProductoID,
		Nombre:        r.Nombre,
		CantidadTotal: r.CantidadTotal,
		Ingresos:      r.Ingresos,
		Costos:        r.Costos,
		Ganancia:      r.Ganancia,
		MinHora:       r.MinHora,
		MaxHora:       r.MaxHora,
		CreatedAt:     r.CreatedAt,
	}
}
