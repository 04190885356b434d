package handler

import (
	"fmt"
	"net/http"

	"github.com/Empasex/Mini-POS/internal/dto"
	"github.com/Empasex/Mini-POS/internal/service"

	"github.com/gin-gonic/gin"
)

type ArchivoHandler struct {
	archivo service.ArchivoService
	reporte service.ReporteService
}

func NewArchivoHandler(archivo service.ArchivoService, reporte service.ReporteService) *ArchivoHandler {
	return &ArchivoHandler{archivo: archivo, reporte: reporte}
}

// Ejecutar godoc
// @Summary      Ejecutar archivado
// @Description  Archiva hasta batch_size ventas (las más recientes primero) en resúmenes por producto, en una sola transacción.
// @Tags         archivo
// @Produce      json
// @Security     BearerAuth
// @Param        batch_size query int false "Ventas por lote (1-10000)" default(200)
// @Success      200  {object} dto.EjecutarArchivoResponse
// @Failure      400  {object} apierror.APIError "batch_size no numérico"
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Failure      500  {object} apierror.APIError
// @Router       /v1/archive/run [post]
func (h *ArchivoHandler) Ejecutar(c *gin.Context) {
	var q dto.EjecutarArchivoQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	resp, err := h.archivo.Ejecutar(c.Request.Context(), q.BatchSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarLotes godoc
// @Summary      Listar lotes archivados
// @Description  Un elemento por batch con totales de ingresos, ganancia e items; más reciente primero.
// @Tags         archivo
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.LoteResponse
// @Router       /v1/archive/batches [get]
func (h *ArchivoHandler) ListarLotes(c *gin.Context) {
	lotes, err := h.reporte.ListarLotes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lotes)
}

// DetalleLote godoc
// @Summary      Detalle de lote
// @Tags         archivo
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "Batch ID"
// @Success      200  {array}  dto.ResumenResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/archive/batches/{id} [get]
func (h *ArchivoHandler) DetalleLote(c *gin.Context) {
	rows, err := h.reporte.DetalleLote(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ExportarLote godoc
// @Summary      Exportar lote
// @Description  Descarga los resúmenes de un lote como planilla Excel o PDF.
// @Tags         archivo
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id     path  string true  "Batch ID"
// @Param        format query string false "xlsx | pdf" default(xlsx)
// @Success      200
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/archive/batches/{id}/export [get]
func (h *ArchivoHandler) ExportarLote(c *gin.Context) {
	var q dto.ExportarLoteQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	exp, err := h.reporte.ExportarLote(c.Request.Context(), c.Param("id"), q.Format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Nombre))
	c.Data(http.StatusOK, exp.ContentType, exp.Datos)
}

// EliminarLote godoc
// @Summary      Eliminar lote
// @Tags         archivo
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "Batch ID"
// @Success      200  {object} dto.EliminarLoteResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/archive/batches/{id} [delete]
func (h *ArchivoHandler) EliminarLote(c *gin.Context) {
	resp, err := h.archivo.EliminarLote(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarTodo godoc
// @Summary      Eliminar todos los resúmenes
// @Description  Requiere confirm=true.
// @Tags         archivo
// @Produce      json
// @Security     BearerAuth
// @Param        confirm query bool true "Confirmación explícita"
// @Success      200  {object} dto.EliminarTodoResponse
// @Failure      400  {object} apierror.APIError "confirm no booleano"
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/archive/batches [delete]
func (h *ArchivoHandler) EliminarTodo(c *gin.Context) {
	var q dto.EliminarTodoQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	resp, err := h.archivo.EliminarTodo(c.Request.Context(), q.Confirm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Metricas godoc
// @Summary      Métricas por período
// @Tags         archivo
// @Produce      json
// @Security     BearerAuth
// @Param        period query string false "day | week | month" default(day)
// @Success      200  {array}  dto.MetricaPeriodo
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/archive/metrics [get]
func (h *ArchivoHandler) Metricas(c *gin.Context) {
	var q dto.MetricasQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	out, err := h.reporte.Metricas(c.Request.Context(), q.Period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Serie godoc
// @Summary      Serie de métricas con ceros
// @Description  Últimos `last` períodos terminando en el actual, orden ascendente.
// @Tags         archivo
// @Produce      json
// @Security     BearerAuth
// @Param        period query string false "day | week | month" default(day)
// @Param        last   query int    false "Cantidad de períodos (1-365)" default(30)
// @Success      200  {array}  dto.MetricaPeriodo
// @Failure      400  {object} apierror.APIError "last no numérico"
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/archive/metrics/series [get]
func (h *ArchivoHandler) Serie(c *gin.Context) {
	var q dto.SerieQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	out, err := h.reporte.Serie(c.Request.Context(), q.Period, q.Last)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Totales godoc
// @Summary      Totales del archivo
// @Description  start/end opcionales e inclusivos (ISO-8601).
// @Tags         archivo
// @Produce      json
// @Security     BearerAuth
// @Param        start query string false "Desde"
// @Param        end   query string false "Hasta"
// @Success      200  {object} dto.TotalesResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/archive/summary/totals [get]
func (h *ArchivoHandler) Totales(c *gin.Context) {
	var q dto.TotalesQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	out, err := h.reporte.Totales(c.Request.Context(), q.Start, q.End)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
