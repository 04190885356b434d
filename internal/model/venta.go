package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venta is a live (not yet archived) sale. Rows are created by the sales
// service and removed by the archive engine once summarized.
// ID == 0 means the row was never persisted.
type Venta struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`
	// ProductoID may be NULL or non-positive for ad-hoc sales
	ProductoID *int64          `gorm:"index"`
	Nombre     string          `gorm:"not null;default:''"`
	Cantidad   int             `gorm:"not null;default:0"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Hora       time.Time       `gorm:"index;not null"`
}

func (Venta) TableName() string { return "ventas" }

// Persistida reports whether the sale has a database identifier.
func (v Venta) Persistida() bool { return v.ID != 0 }
