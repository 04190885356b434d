package router

import (
	"net/http"

	"github.com/Empasex/Mini-POS/internal/apierror"
	"github.com/Empasex/Mini-POS/internal/config"
	"github.com/Empasex/Mini-POS/internal/handler"
	"github.com/Empasex/Mini-POS/internal/infra"
	"github.com/Empasex/Mini-POS/internal/middleware"
	"github.com/Empasex/Mini-POS/internal/repository"
	"github.com/Empasex/Mini-POS/internal/service"
	"github.com/Empasex/Mini-POS/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide dependencies built in main. Redis, the
// dispatcher, the snapshot breaker and the limiters may be nil.
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Locker     service.Locker
	Dispatcher *worker.Dispatcher
	Metrics    *infra.Metrics
	Gatherer   prometheus.Gatherer
	SnapshotCB *infra.CircuitBreaker

	GlobalLimiter *middleware.RateLimiter
	RunLimiter    *middleware.RateLimiter
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.ErrorHandler())
	if deps.GlobalLimiter != nil {
		r.Use(deps.GlobalLimiter.Middleware())
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	ventaRepo := repository.NewVentaRepository(deps.DB)
	productoRepo := repository.NewProductoRepository(deps.DB)
	archivoRepo := repository.NewArchivoRepository(deps.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	archivoSvc := service.NewArchivoService(ventaRepo, productoRepo, archivoRepo, deps.Locker, deps.Dispatcher, deps.Metrics)
	reporteSvc := service.NewReporteService(archivoRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	archivoH := handler.NewArchivoHandler(archivoSvc, reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(deps.DB, ventaRepo, deps.Redis, deps.SnapshotCB))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Archive administration: administrador only
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	archive := r.Group("/v1/archive", jwtMW, middleware.RequireRole(middleware.RolAdministrador))
	{
		run := []gin.HandlerFunc{}
		if deps.RunLimiter != nil {
			run = append(run, deps.RunLimiter.Middleware())
		}
		archive.POST("/run", append(run, archivoH.Ejecutar)...)

		archive.GET("/batches", archivoH.ListarLotes)
		archive.DELETE("/batches", archivoH.EliminarTodo)
		archive.GET("/batches/:id", archivoH.DetalleLote)
		archive.DELETE("/batches/:id", archivoH.EliminarLote)
		archive.GET("/batches/:id/export", archivoH.ExportarLote)

		archive.GET("/metrics", archivoH.Metricas)
		archive.GET("/metrics/series", archivoH.Serie)
		archive.GET("/summary/totals", archivoH.Totales)
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apierror.New("not found"))
	})

	return r
}
