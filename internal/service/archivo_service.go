package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Empasex/Mini-POS/internal/dto"
	"github.com/Empasex/Mini-POS/internal/infra"
	"github.com/Empasex/Mini-POS/internal/model"
	"github.com/Empasex/Mini-POS/internal/repository"
	"github.com/Empasex/Mini-POS/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// MaxBatchSize bounds how many sales one run may claim.
	MaxBatchSize = 10000
	// DefaultBatchSize is used by the HTTP trigger and the CLI when unset.
	DefaultBatchSize = 200

	archiveLockKey = "archive:run"
)

// ResultadoArchivo is the outcome of one archive run. The zero value means
// there was nothing to archive.
type ResultadoArchivo struct {
	BatchID    string
	Archivadas int
	Resumenes  int
}

// Vacio reports whether the run archived nothing.
func (r ResultadoArchivo) Vacio() bool { return r.BatchID == "" }

// Locker serializes archive runs across processes.
type Locker interface {
	Obtain(ctx context.Context, key string) (release func(context.Context) error, err error)
}

type ArchivoService interface {
	// ArchivarLote moves up to batchSize live sales into per-product
	// summaries under a fresh batch id, in one transaction.
	ArchivarLote(ctx context.Context, batchSize int) (ResultadoArchivo, error)
	Ejecutar(ctx context.Context, batchSize int) (*dto.EjecutarArchivoResponse, error)
	EliminarLote(ctx context.Context, batchID string) (*dto.EliminarLoteResponse, error)
	EliminarTodo(ctx context.Context, confirm bool) (*dto.EliminarTodoResponse, error)
}

type archivoService struct {
	ventaRepo    repository.VentaRepository
	productoRepo repository.ProductoRepository
	archivoRepo  repository.ArchivoRepository
	locker       Locker
	dispatcher   *worker.Dispatcher
	metrics      *infra.Metrics

	now   func() time.Time
	newID func() string
}

func NewArchivoService(
	ventaRepo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	archivoRepo repository.ArchivoRepository,
	locker Locker,
	dispatcher *worker.Dispatcher,
	metrics *infra.Metrics,
) ArchivoService {
	return &archivoService{
		ventaRepo:    ventaRepo,
		productoRepo: productoRepo,
		archivoRepo:  archivoRepo,
		locker:       locker,
		dispatcher:   dispatcher,
		metrics:      metrics,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── ArchivarLote ──────────────────────────────────────────────────────────────
//   1. Take the cross-process lock (if configured)
//   2. BEGIN TX: claim newest sales FOR UPDATE SKIP LOCKED
//   3. Drop unpersisted sales; nothing left → empty result
//   4. Group and price; insert summaries; delete the claimed sales
//   5. COMMIT, or roll back everything and return ArchivalError

func (s *archivoService) ArchivarLote(ctx context.Context, batchSize int) (ResultadoArchivo, error) {
	if batchSize < 1 || batchSize > MaxBatchSize {
		return ResultadoArchivo{}, validacion("batch_size", fmt.Sprintf("debe estar entre 1 y %d", MaxBatchSize))
	}

	inicio := time.Now()
	if s.locker != nil {
		release, err := s.locker.Obtain(ctx, archiveLockKey)
		if errors.Is(err, infra.ErrLockHeld) {
			s.metrics.ObserveRun(infra.RunResultBusy, 0, 0, time.Since(inicio))
			return ResultadoArchivo{}, ErrArchivadoEnCurso
		}
		if err != nil {
			s.metrics.ObserveRun(infra.RunResultError, 0, 0, time.Since(inicio))
			return ResultadoArchivo{}, &ArchivalError{Err: fmt.Errorf("obtener lock: %w", err)}
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("archivo: liberar lock")
			}
		}()
	}

	var res ResultadoArchivo
	err := runTx(ctx, s.ventaRepo.DB(), func(tx *gorm.DB) error {
		ventas, err := s.ventaRepo.ListParaArchivarTx(ctx, tx, batchSize)
		if err != nil {
			return fmt.Errorf("seleccionar ventas: %w", err)
		}
		ventas = soloPersistidas(ventas)
		if len(ventas) == 0 {
			return nil
		}

		batchID := s.newID()
		creado := s.now().UTC()
		resumenes, err := s.resumir(ctx, tx, batchID, creado, ventas)
		if err != nil {
			return err
		}
		if err := s.archivoRepo.CreateTx(ctx, tx, resumenes); err != nil {
			return fmt.Errorf("insertar resumenes: %w", err)
		}

		ids := make([]int64, len(ventas))
		for i, v := range ventas {
			ids[i] = v.ID
		}
		borradas, err := s.ventaRepo.DeleteByIDsTx(ctx, tx, ids)
		if err != nil {
			return fmt.Errorf("eliminar ventas: %w", err)
		}
		if borradas != int64(len(ids)) {
			return fmt.Errorf("eliminar ventas: se borraron %d de %d seleccionadas", borradas, len(ids))
		}

		res = ResultadoArchivo{BatchID: batchID, Archivadas: len(ids), Resumenes: len(resumenes)}
		return nil
	})
	elapsed := time.Since(inicio)
	if err != nil {
		s.metrics.ObserveRun(infra.RunResultError, 0, 0, elapsed)
		log.Error().Err(err).Int("batch_size", batchSize).Msg("archivo: run fallido, rollback")
		return ResultadoArchivo{}, &ArchivalError{Err: err}
	}

	if res.Vacio() {
		s.metrics.ObserveRun(infra.RunResultEmpty, 0, 0, elapsed)
		log.Info().Int("batch_size", batchSize).Msg("archivo: no hay ventas para archivar")
		return res, nil
	}
	s.metrics.ObserveRun(infra.RunResultOK, res.Archivadas, res.Resumenes, elapsed)
	log.Info().
		Str("batch_id", res.BatchID).
		Int("archived", res.Archivadas).
		Int("summaries", res.Resumenes).
		Dur("duration", elapsed).
		Msg("archivo: lote archivado")
	return res, nil
}

func soloPersistidas(ventas []model.Venta) []model.Venta {
	out := ventas[:0:0]
	for _, v := range ventas {
		if v.Persistida() {
			out = append(out, v)
		}
	}
	return out
}

// claveGrupo returns the grouping key of a sale and the product id recorded
// on its summary. Sales without a valid product are never merged.
func claveGrupo(v model.Venta) (string, *int64) {
	if v.ProductoID != nil && *v.ProductoID > 0 {
		id := *v.ProductoID
		return fmt.Sprintf("p%d", id), &id
	}
	if v.ID != 0 {
		return fmt.Sprintf("v%d", v.ID), nil
	}
	return "v" + uuid.NewString(), nil
}

func truncarNombre(s string) string {
	if utf8.RuneCountInString(s) <= model.MaxNombreResumen {
		return s
	}
	return string([]rune(s)[:model.MaxNombreResumen])
}

// resumir groups ventas and prices each group. Unit costs are read once per
// product inside tx; an unknown product costs zero.
func (s *archivoService) resumir(ctx context.Context, tx *gorm.DB, batchID string, creado time.Time, ventas []model.Venta) ([]model.ResumenArchivo, error) {
	costos := make(map[int64]decimal.Decimal)
	costoDe := func(id int64) (decimal.Decimal, error) {
		if c, ok := costos[id]; ok {
			return c, nil
		}
		c, _, err := s.productoRepo.CostoUnitarioTx(ctx, tx, id)
		if err != nil {
			return decimal.Zero, fmt.Errorf("costo producto %d: %w", id, err)
		}
		costos[id] = c
		return c, nil
	}

	idx := make(map[string]int)
	resumenes := make([]model.ResumenArchivo, 0)
	for _, v := range ventas {
		clave, productoID := claveGrupo(v)
		i, ok := idx[clave]
		if !ok {
			i = len(resumenes)
			idx[clave] = i
			resumenes = append(resumenes, model.ResumenArchivo{
				BatchID:    batchID,
				Grupo:      clave,
				ProductoID: productoID,
				Nombre:     truncarNombre(v.Nombre),
				Ingresos:   decimal.Zero,
				Costos:     decimal.Zero,
				CreatedAt:  &creado,
			})
		}
		r := &resumenes[i]

		costo := decimal.Zero
		if r.ProductoID != nil {
			unit, err := costoDe(*r.ProductoID)
			if err != nil {
				return nil, err
			}
			costo = unit.Mul(decimal.NewFromInt(int64(v.Cantidad)))
		}
		r.CantidadTotal += v.Cantidad
		r.Ingresos = r.Ingresos.Add(v.Total)
		r.Costos = r.Costos.Add(costo)

		if !v.Hora.IsZero() {
			h := v.Hora
			if r.MinHora == nil || h.Before(*r.MinHora) {
				r.MinHora = &h
			}
			if r.MaxHora == nil || h.After(*r.MaxHora) {
				r.MaxHora = &h
			}
		}
	}
	for i := range resumenes {
		resumenes[i].Ganancia = resumenes[i].Ingresos.Sub(resumenes[i].Costos)
	}
	return resumenes, nil
}

// ── Administration ────────────────────────────────────────────────────────────

func (s *archivoService) Ejecutar(ctx context.Context, batchSize int) (*dto.EjecutarArchivoResponse, error) {
	res, err := s.ArchivarLote(ctx, batchSize)
	if err != nil {
		return nil, err
	}
	if res.Vacio() {
		return &dto.EjecutarArchivoResponse{Mensaje: "No sales archived"}, nil
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueSnapshot(ctx, res.BatchID); err != nil {
			log.Warn().Err(err).Str("batch_id", res.BatchID).Msg("archivo: no se pudo encolar snapshot")
		}
	}

	batchID := res.BatchID
	return &dto.EjecutarArchivoResponse{
		BatchID:    &batchID,
		Archivadas: res.Archivadas,
		Resumenes:  res.Resumenes,
	}, nil
}

func (s *archivoService) EliminarLote(ctx context.Context, batchID string) (*dto.EliminarLoteResponse, error) {
	if batchID == "" {
		return nil, validacion("batch_id", "requerido")
	}
	n, err := s.archivoRepo.DeleteBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("eliminar lote %s: %w", batchID, err)
	}
	if n == 0 {
		return nil, ErrLoteNoEncontrado
	}
	log.Info().Str("batch_id", batchID).Int64("deleted", n).Msg("archivo: lote eliminado")
	return &dto.EliminarLoteResponse{DeletedBatchID: batchID, Deleted: n, Mensaje: "deleted"}, nil
}

// EliminarTodo wipes every summary. confirm must be true.
func (s *archivoService) EliminarTodo(ctx context.Context, confirm bool) (*dto.EliminarTodoResponse, error) {
	if !confirm {
		return nil, validacion("confirm", "se requiere confirm=true para eliminar todos los resumenes")
	}
	n, err := s.archivoRepo.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("eliminar resumenes: %w", err)
	}
	log.Warn().Int64("deleted", n).Msg("archivo: todos los resumenes eliminados")
	return &dto.EliminarTodoResponse{DeletedAll: true, Deleted: n, Mensaje: "all summaries deleted"}, nil
}
