package repository

import (
	"context"

	"github.com/Empasex/Mini-POS/internal/model"

	"gorm.io/gorm"
)

// ArchivoRepository persists ResumenArchivo rows.
type ArchivoRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, resumenes []model.ResumenArchivo) error
	List(ctx context.Context) ([]model.ResumenArchivo, error)
	ListByBatch(ctx context.Context, batchID string) ([]model.ResumenArchivo, error)
	DeleteBatch(ctx context.Context, batchID string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	DB() *gorm.DB
}

type archivoRepo struct{ db *gorm.DB }

func NewArchivoRepository(db *gorm.DB) ArchivoRepository { return &archivoRepo{db: db} }

func (r *archivoRepo) DB() *gorm.DB { return r.db }

func (r *archivoRepo) CreateTx(ctx context.Context, tx *gorm.DB, resumenes []model.ResumenArchivo) error {
	if len(resumenes) == 0 {
		return nil
	}
	conn := r.db
	if tx != nil {
		conn = tx
	}
	return conn.WithContext(ctx).CreateInBatches(resumenes, 500).Error
}

func (r *archivoRepo) List(ctx context.Context) ([]model.ResumenArchivo, error) {
	var rows []model.ResumenArchivo
	err := r.db.WithContext(ctx).Order("batch_id ASC").Order("grupo ASC").Find(&rows).Error
	return rows, err
}

func (r *archivoRepo) ListByBatch(ctx context.Context, batchID string) ([]model.ResumenArchivo, error) {
	var rows []model.ResumenArchivo
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("grupo ASC").
		Find(&rows).Error
	return rows, err
}

func (r *archivoRepo) DeleteBatch(ctx context.Context, batchID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("batch_id = ?", batchID).Delete(&model.ResumenArchivo{})
	return res.RowsAffected, res.Error
}

// DeleteAll wipes the summary store. Guarding against accidental calls is the
// caller's job.
func (r *archivoRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.ResumenArchivo{})
	return res.RowsAffected, res.Error
}
