// cmd/seed/main.go: Carga productos y ventas de demo para probar el archivado.
// Uso: go run ./cmd/seed -ventas 500
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/Empasex/Mini-POS/internal/infra"
	"github.com/Empasex/Mini-POS/internal/model"

	"github.com/shopspring/decimal"
)

var catalogo = []model.Producto{
	{ID: 1, Nombre: "Yerba Mate 1kg", PrecioVenta: decimal.RequireFromString("4200"), CostoUnitario: decimal.RequireFromString("3100")},
	{ID: 2, Nombre: "Gaseosa 500ml", PrecioVenta: decimal.RequireFromString("950"), CostoUnitario: decimal.RequireFromString("610")},
	{ID: 3, Nombre: "Galletitas", PrecioVenta: decimal.RequireFromString("1200"), CostoUnitario: decimal.RequireFromString("780.5")},
	{ID: 4, Nombre: "Leche 1L", PrecioVenta: decimal.RequireFromString("1100"), CostoUnitario: decimal.RequireFromString("890")},
}

func main() {
	n := flag.Int("ventas", 200, "cantidad de ventas a generar")
	dias := flag.Int("dias", 30, "repartir las ventas en los ultimos N dias")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "sqlite://minipos.db"
	}

	db, err := infra.NewDatabase(dsn)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatalf("migrate error: %v", err)
	}

	ctx := context.Background()
	for _, p := range catalogo {
		p.Stock = 1000
		if err := db.WithContext(ctx).Save(&p).Error; err != nil {
			log.Fatalf("producto %d: %v", p.ID, err)
		}
	}

	now := time.Now().UTC()
	ventas := make([]model.Venta, 0, *n)
	for i := 0; i < *n; i++ {
		cant := 1 + rand.Intn(4)
		v := model.Venta{
			Cantidad: cant,
			Hora:     now.Add(-time.Duration(rand.Int63n(int64(*dias) * int64(24*time.Hour)))),
		}
		// one in ten is an ad-hoc sale without a catalog product
		if rand.Intn(10) == 0 {
			v.Nombre = "Varios"
			v.Total = decimal.NewFromInt(int64(100 * cant))
		} else {
			p := catalogo[rand.Intn(len(catalogo))]
			id := p.ID
			v.ProductoID = &id
			v.Nombre = p.Nombre
			v.Total = p.PrecioVenta.Mul(decimal.NewFromInt(int64(cant)))
		}
		ventas = append(ventas, v)
	}
	if err := db.WithContext(ctx).CreateInBatches(ventas, 100).Error; err != nil {
		log.Fatalf("insert error: %v", err)
	}
	fmt.Printf("✅ %d productos y %d ventas cargados\n", len(catalogo), len(ventas))
}
