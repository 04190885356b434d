package infra

import (
	"fmt"
	"strings"

	"github.com/Empasex/Mini-POS/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection. postgres:// and postgresql:// DSNs use
// the pgx-backed Postgres driver; anything else (a file path, "file:" URI or
// "sqlite://" URL) is opened with the pure-Go SQLite driver, which is what
// local development and the test suite use.
func NewDatabase(dsn string) (*gorm.DB, error) {
	dialector, isSQLite := dialectorFor(dsn)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if isSQLite {
		// SQLite serializes writers; a single connection also keeps
		// in-memory databases alive for the lifetime of the pool.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}
	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, bool) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), false
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), true
	default:
		return sqlite.Open(dsn), true
	}
}

// RunMigrations creates or updates the tables this service reads and writes,
// then applies the Postgres-only index patches GORM cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Producto{},
		&model.Venta{},
		&model.ResumenArchivo{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL. Each statement is guarded so
// re-running on an already-patched database is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// archive engine claims the newest sales first
		{"ventas hora desc index",
			`CREATE INDEX IF NOT EXISTS idx_ventas_hora_desc ON ventas (hora DESC, id DESC)`},
		// metrics fall back to min_hora when created_at is NULL
		{"resumenes effective time index",
			`CREATE INDEX IF NOT EXISTS idx_resumenes_archivo_effective
			   ON resumenes_archivo ((COALESCE(created_at, min_hora)))`},
		{"resumenes ganancia check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_resumenes_archivo_ganancia') THEN
    ALTER TABLE resumenes_archivo
      ADD CONSTRAINT chk_resumenes_archivo_ganancia CHECK (ganancia = ingresos - costos);
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
