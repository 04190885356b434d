package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto is a catalog entry. The archive engine only reads CostoUnitario;
// the rest of the row is owned by the catalog service.
type Producto struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Nombre      string          `gorm:"index;not null"`
	PrecioVenta decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// CostoUnitario feeds the margin computed at archival time
	CostoUnitario decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	Stock         int             `gorm:"not null;default:0"`
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
}

func (Producto) TableName() string { return "productos" }
