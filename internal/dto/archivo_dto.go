package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Query DTOs ──────────────────────────────────────────────────────────────

// EjecutarArchivoQuery is bound from the query string of POST /v1/archive/run.
type EjecutarArchivoQuery struct {
	BatchSize int `form:"batch_size,default=200" validate:"min=1,max=10000"`
}

// MetricasQuery is bound from GET /v1/archive/metrics.
type MetricasQuery struct {
	Period string `form:"period,default=day" validate:"oneof=day week month"`
}

// SerieQuery is bound from GET /v1/archive/metrics/series.
type SerieQuery struct {
	Period string `form:"period,default=day" validate:"oneof=day week month"`
	Last   int    `form:"last,default=30"    validate:"min=1,max=365"`
}

// TotalesQuery holds optional inclusive ISO-8601 bounds. Parsing happens in
// the service so malformed values surface as a validation error on "start"/"end".
type TotalesQuery struct {
	Start string `form:"start"`
	End   string `form:"end"`
}

type EliminarTodoQuery struct {
	Confirm bool `form:"confirm"`
}

type ExportarLoteQuery struct {
	Format string `form:"format,default=xlsx" validate:"oneof=xlsx pdf"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ResumenResponse is one summary row of a batch.
type ResumenResponse struct {
	BatchID       string          `json:"batch_id"`
	Grupo         string          `json:"grupo"`
	ProductoID    *int64          `json:"producto_id"`
	Nombre        string          `json:"nombre"`
	CantidadTotal int             `json:"cantidad_total"`
	Ingresos      decimal.Decimal `json:"ingresos"`
	Costos        decimal.Decimal `json:"costos"`
	Ganancia      decimal.Decimal `json:"ganancia"`
	MinHora       *time.Time      `json:"min_hora"`
	MaxHora       *time.Time      `json:"max_hora"`
	CreatedAt     *time.Time      `json:"created_at"`
}

// LoteResponse is one entry of GET /v1/archive/batches.
type LoteResponse struct {
	BatchID       string          `json:"batch_id"`
	CreatedAt     *time.Time      `json:"created_at"`
	TotalIngresos decimal.Decimal `json:"total_ingresos"`
	TotalGanancia decimal.Decimal `json:"total_ganancia"`
	TotalItems    int             `json:"total_items"`
	MinHora       *time.Time      `json:"min_hora"`
	MaxHora       *time.Time      `json:"max_hora"`
}

// MetricaPeriodo is one bucket of the metrics and series endpoints.
type MetricaPeriodo struct {
	Period   string          `json:"period"`
	Ingresos decimal.Decimal `json:"ingresos"`
	Ganancia decimal.Decimal `json:"ganancia"`
	Items    int             `json:"items"`
}

type TotalesResponse struct {
	Ingresos decimal.Decimal `json:"ingresos"`
	Ganancia decimal.Decimal `json:"ganancia"`
	Items    int             `json:"items"`
	Batches  int             `json:"batches"`
}

// EjecutarArchivoResponse is returned by POST /v1/archive/run. BatchID is null
// and Mensaje set when there was nothing to archive.
type EjecutarArchivoResponse struct {
	BatchID    *string `json:"batch_id"`
	Archivadas int     `json:"archived"`
	Resumenes  int     `json:"summaries"`
	Mensaje    string  `json:"message,omitempty"`
}

type EliminarLoteResponse struct {
	DeletedBatchID string `json:"deleted_batch_id"`
	Deleted        int64  `json:"deleted"`
	Mensaje        string `json:"message"`
}

type EliminarTodoResponse struct {
	DeletedAll bool   `json:"deleted_all"`
	Deleted    int64  `json:"deleted"`
	Mensaje    string `json:"message"`
}
