package repository

import (
	"context"

	"github.com/Empasex/Mini-POS/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VentaRepository is the live sale store as seen by the archive engine.
type VentaRepository interface {
	// ListParaArchivarTx claims up to limit sales, newest first. Rows are
	// locked FOR UPDATE SKIP LOCKED so concurrent runs never claim the same sale.
	ListParaArchivarTx(ctx context.Context, tx *gorm.DB, limit int) ([]model.Venta, error)
	// DeleteByIDsTx removes the given sales and returns the number of rows deleted.
	DeleteByIDsTx(ctx context.Context, tx *gorm.DB, ids []int64) (int64, error)
	Count(ctx context.Context) (int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ventaRepo) ListParaArchivarTx(ctx context.Context, tx *gorm.DB, limit int) ([]model.Venta, error) {
	var ventas []model.Venta
	q := r.conn(tx).WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}
	err := q.Order("hora DESC").Order("id DESC").
		Limit(limit).
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) DeleteByIDsTx(ctx context.Context, tx *gorm.DB, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.conn(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&model.Venta{})
	return res.RowsAffected, res.Error
}

func (r *ventaRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Venta{}).Count(&n).Error
	return n, err
}
