package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Empasex/Mini-POS/internal/config"
	"github.com/Empasex/Mini-POS/internal/dto"
	"github.com/Empasex/Mini-POS/internal/infra"
	"github.com/Empasex/Mini-POS/internal/middleware"
	"github.com/Empasex/Mini-POS/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	reg    *prometheus.Registry
}

func newTestServer(t *testing.T, runLimit int) *testServer {
	t.Helper()
	db, err := infra.NewDatabase(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	reg := prometheus.NewRegistry()
	cfg := &config.Config{Env: "test", JWTSecret: testSecret}
	deps := Deps{
		DB:         db,
		Metrics:    infra.NewMetrics(reg),
		Gatherer:   reg,
		SnapshotCB: infra.NewCircuitBreaker(infra.DefaultCBConfig("snapshot")),
	}
	if runLimit > 0 {
		deps.RunLimiter = middleware.NewRateLimiter("run", runLimit, time.Minute)
	}
	return &testServer{engine: New(cfg, deps), db: db, reg: reg}
}

func token(t *testing.T, rol string) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID:   "u-1",
		Username: "admin",
		Rol:      rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, rol string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if rol != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, rol))
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedVenta(t *testing.T, productoID int64, cantidad int, total string, hora time.Time) {
	t.Helper()
	require.NoError(t, s.db.Create(&model.Venta{
		ProductoID: &productoID,
		Nombre:     "Item",
		Cantidad:   cantidad,
		Total:      decimal.RequireFromString(total),
		Hora:       hora.UTC(),
	}).Error)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 0)
	s.seedVenta(t, 1, 1, "3", time.Now().UTC().Add(-time.Hour))
	s.seedVenta(t, 2, 1, "4", time.Now().UTC().Add(-time.Hour))

	w := s.do(t, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	assert.Equal(t, "closed", body["snapshot_breaker"])
	assert.Equal(t, 2.0, body["ventas_pendientes"])
	assert.NotContains(t, body, "snapshot_dlq")
}

func TestArchive_EmptySecretRejectsAllTokens(t *testing.T) {
	db, err := infra.NewDatabase(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	engine := New(&config.Config{Env: "development"}, Deps{DB: db})

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/v1/archive/run"},
		{http.MethodDelete, "/v1/archive/batches?confirm=true"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+token(t, "admin"))
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestArchive_RequiresToken(t *testing.T) {
	s := newTestServer(t, 0)
	w := s.do(t, http.MethodGet, "/v1/archive/batches", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestArchive_RequiresAdministrador(t *testing.T) {
	s := newTestServer(t, 0)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/v1/archive/run", "cajero").Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/v1/archive/metrics", "supervisor").Code)
	// alias of administrador
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/archive/batches", "admin").Code)
}

func TestArchive_RunThenReport(t *testing.T) {
	s := newTestServer(t, 0)
	require.NoError(t, s.db.Create(&model.Producto{
		ID: 7, Nombre: "Cafe", PrecioVenta: decimal.RequireFromString("5"),
		CostoUnitario: decimal.RequireFromString("2"),
	}).Error)
	hora := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	s.seedVenta(t, 7, 2, "10", hora)
	s.seedVenta(t, 7, 1, "5", hora.Add(time.Minute))

	w := s.do(t, http.MethodPost, "/v1/archive/run?batch_size=50", "administrador")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	run := decode[dto.EjecutarArchivoResponse](t, w)
	require.NotNil(t, run.BatchID)
	assert.Equal(t, 2, run.Archivadas)
	assert.Equal(t, 1, run.Resumenes)

	w = s.do(t, http.MethodGet, "/v1/archive/batches", "administrador")
	require.Equal(t, http.StatusOK, w.Code)
	lotes := decode[[]dto.LoteResponse](t, w)
	require.Len(t, lotes, 1)
	assert.Equal(t, *run.BatchID, lotes[0].BatchID)
	assert.True(t, decimal.RequireFromString("15").Equal(lotes[0].TotalIngresos))
	assert.True(t, decimal.RequireFromString("9").Equal(lotes[0].TotalGanancia))
	assert.Equal(t, 3, lotes[0].TotalItems)

	w = s.do(t, http.MethodGet, "/v1/archive/batches/"+*run.BatchID, "administrador")
	require.Equal(t, http.StatusOK, w.Code)
	detalle := decode[[]dto.ResumenResponse](t, w)
	require.Len(t, detalle, 1)
	assert.Equal(t, "p7", detalle[0].Grupo)

	w = s.do(t, http.MethodGet, "/v1/archive/summary/totals", "administrador")
	require.Equal(t, http.StatusOK, w.Code)
	tot := decode[dto.TotalesResponse](t, w)
	assert.Equal(t, 3, tot.Items)
	assert.Equal(t, 1, tot.Batches)

	w = s.do(t, http.MethodGet, "/v1/archive/metrics/series?period=day&last=3", "administrador")
	require.Equal(t, http.StatusOK, w.Code)
	serie := decode[[]dto.MetricaPeriodo](t, w)
	assert.Len(t, serie, 3)

	// second run finds nothing
	w = s.do(t, http.MethodPost, "/v1/archive/run", "administrador")
	require.Equal(t, http.StatusOK, w.Code)
	vacio := decode[dto.EjecutarArchivoResponse](t, w)
	assert.Nil(t, vacio.BatchID)
	assert.Equal(t, 0, vacio.Archivadas)
	assert.NotEmpty(t, vacio.Mensaje)
}

func TestArchive_Export(t *testing.T) {
	s := newTestServer(t, 0)
	s.seedVenta(t, 3, 1, "4", time.Now().UTC().Add(-time.Hour))
	run := decode[dto.EjecutarArchivoResponse](t, s.do(t, http.MethodPost, "/v1/archive/run", "administrador"))
	require.NotNil(t, run.BatchID)

	w := s.do(t, http.MethodGet, "/v1/archive/batches/"+*run.BatchID+"/export?format=pdf", "administrador")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "%PDF", w.Body.String()[:4])

	w = s.do(t, http.MethodGet, "/v1/archive/batches/"+*run.BatchID+"/export?format=csv", "administrador")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodGet, "/v1/archive/batches/nope/export", "administrador")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestArchive_Delete(t *testing.T) {
	s := newTestServer(t, 0)
	s.seedVenta(t, 1, 1, "1", time.Now().UTC().Add(-time.Hour))
	s.seedVenta(t, 2, 1, "2", time.Now().UTC().Add(-time.Hour))
	run := decode[dto.EjecutarArchivoResponse](t, s.do(t, http.MethodPost, "/v1/archive/run", "administrador"))
	require.NotNil(t, run.BatchID)

	w := s.do(t, http.MethodDelete, "/v1/archive/batches/missing", "administrador")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/v1/archive/batches", "administrador")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodDelete, "/v1/archive/batches/"+*run.BatchID, "administrador")
	require.Equal(t, http.StatusOK, w.Code)
	del := decode[dto.EliminarLoteResponse](t, w)
	assert.Equal(t, int64(2), del.Deleted)

	w = s.do(t, http.MethodDelete, "/v1/archive/batches?confirm=true", "administrador")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[dto.EliminarTodoResponse](t, w)
	assert.True(t, all.DeletedAll)
	assert.Equal(t, int64(0), all.Deleted)
}

func TestArchive_QueryValidation(t *testing.T) {
	s := newTestServer(t, 0)

	assert.Equal(t, http.StatusUnprocessableEntity, s.do(t, http.MethodPost, "/v1/archive/run?batch_size=0", "administrador").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(t, http.MethodPost, "/v1/archive/run?batch_size=10001", "administrador").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/v1/archive/run?batch_size=abc", "administrador").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(t, http.MethodGet, "/v1/archive/metrics?period=year", "administrador").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(t, http.MethodGet, "/v1/archive/metrics/series?last=366", "administrador").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(t, http.MethodGet, "/v1/archive/summary/totals?start=ayer", "administrador").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(t, http.MethodGet, "/v1/archive/summary/totals?end=2024-13-40", "administrador").Code)
}

func TestArchive_RunRateLimited(t *testing.T) {
	s := newTestServer(t, 1)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/archive/run", "administrador").Code)
	w := s.do(t, http.MethodPost, "/v1/archive/run", "administrador")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	// reads are not limited by the run limiter
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/archive/batches", "administrador").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, 0)
	s.do(t, http.MethodPost, "/v1/archive/run", "administrador")

	w := s.do(t, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "minipos_archive_runs_total")
}
