package repository

import (
	"context"
	"errors"

	"github.com/Empasex/Mini-POS/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductoRepository is the read-only slice of the product catalog used by
// the archive engine. Product CRUD lives in the catalog service.
type ProductoRepository interface {
	// CostoUnitarioTx returns the product's unit cost. found is false (and the
	// cost zero) when the product does not exist.
	CostoUnitarioTx(ctx context.Context, tx *gorm.DB, id int64) (costo decimal.Decimal, found bool, err error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) CostoUnitarioTx(ctx context.Context, tx *gorm.DB, id int64) (decimal.Decimal, bool, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	var p model.Producto
	err := conn.WithContext(ctx).Select("id", "costo_unitario").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return p.CostoUnitario, true, nil
}
