package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxNombreResumen bounds ResumenArchivo.Nombre (characters, not bytes).
const MaxNombreResumen = 250

// ResumenArchivo is one aggregated row per (batch, group) written by the
// archive engine. Grupo is "p<producto_id>" for catalog products or a
// per-sale surrogate ("v<venta_id>") when the sale had no valid product.
// Rows are immutable; they are only ever deleted by batch administration.
type ResumenArchivo struct {
	BatchID       string          `gorm:"type:varchar(36);primaryKey"`
	Grupo         string          `gorm:"type:varchar(64);primaryKey"`
	ProductoID    *int64          `gorm:"index"`
	Nombre        string          `gorm:"type:varchar(250);not null;default:''"`
	CantidadTotal int             `gorm:"not null;default:0"`
	Ingresos      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Costos        decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	// Ganancia is always Ingresos - Costos
	Ganancia  decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	MinHora   *time.Time
	MaxHora   *time.Time
	CreatedAt *time.Time `gorm:"index;autoCreateTime:false"`
}

func (ResumenArchivo) TableName() string { return "resumenes_archivo" }
