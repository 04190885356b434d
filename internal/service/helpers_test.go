package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Empasex/Mini-POS/internal/infra"
	"github.com/Empasex/Mini-POS/internal/model"
	"github.com/Empasex/Mini-POS/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory SQLite database with the schema applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewDatabase(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func i64(v int64) *int64 { return &v }

func tptr(t time.Time) *time.Time { return &t }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got.String())
}

func seedProducto(t *testing.T, db *gorm.DB, id int64, nombre, costo string) {
	t.Helper()
	require.NoError(t, db.Create(&model.Producto{
		ID:            id,
		Nombre:        nombre,
		PrecioVenta:   dec("10"),
		CostoUnitario: dec(costo),
		Stock:         100,
	}).Error)
}

func seedVenta(t *testing.T, db *gorm.DB, productoID *int64, nombre string, cantidad int, total string, hora time.Time) model.Venta {
	t.Helper()
	v := model.Venta{
		ProductoID: productoID,
		Nombre:     nombre,
		Cantidad:   cantidad,
		Total:      dec(total),
		Hora:       hora.UTC(),
	}
	require.NoError(t, db.Create(&v).Error)
	return v
}

func countVentas(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Venta{}).Count(&n).Error)
	return n
}

func countResumenes(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.ResumenArchivo{}).Count(&n).Error)
	return n
}

// ── Stubs ─────────────────────────────────────────────────────────────────────

// failingVentaRepo wraps the real repository and sabotages the delete step,
// after summaries have already been inserted in the same transaction.
type failingVentaRepo struct {
	repository.VentaRepository
	deleteErr   error
	shortDelete bool
}

func (r *failingVentaRepo) DeleteByIDsTx(ctx context.Context, tx *gorm.DB, ids []int64) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	n, err := r.VentaRepository.DeleteByIDsTx(ctx, tx, ids)
	if r.shortDelete {
		return n - 1, err
	}
	return n, err
}

var _ repository.VentaRepository = (*failingVentaRepo)(nil)

// stubLocker records lock usage.
type stubLocker struct {
	err      error
	obtained int
	released int
}

func (l *stubLocker) Obtain(_ context.Context, _ string) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.obtained++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

var _ Locker = (*stubLocker)(nil)

func newArchivoService(db *gorm.DB, locker Locker) *archivoService {
	return NewArchivoService(
		repository.NewVentaRepository(db),
		repository.NewProductoRepository(db),
		repository.NewArchivoRepository(db),
		locker,
		nil,
		nil,
	).(*archivoService)
}

func itoa(n int64) string { return fmt.Sprintf("%d", n) }
