package infra

// snapshot.go: Parquet copies of archived batches in S3-compatible storage.
// The snapshot is a convenience export for offline analysis; the database
// remains the source of truth and nothing reads these objects back.

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Empasex/Mini-POS/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/parquet-go/parquet-go"
)

const snapshotContentType = "application/vnd.apache.parquet"

// SnapshotRow is the Parquet schema of one archived summary. Money columns
// are decimal strings so the copy is exact; timestamps are Unix milliseconds.
// Pointer fields become optional columns.
type SnapshotRow struct {
	BatchID       string `parquet:"batch_id"`
	Grupo         string `parquet:"grupo"`
	ProductoID    *int64 `parquet:"producto_id"`
	Nombre        string `parquet:"nombre"`
	CantidadTotal int64  `parquet:"cantidad_total"`
	Ingresos      string `parquet:"ingresos"`
	Costos        string `parquet:"costos"`
	Ganancia      string `parquet:"ganancia"`
	MinHoraMs     *int64 `parquet:"min_hora_ms"`
	MaxHoraMs     *int64 `parquet:"max_hora_ms"`
	CreatedAtMs   *int64 `parquet:"created_at_ms"`
}

// SnapshotRowsFrom converts summary rows to their Parquet form.
func SnapshotRowsFrom(rows []model.ResumenArchivo) []SnapshotRow {
	out := make([]SnapshotRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, SnapshotRow{
			BatchID:       r.BatchID,
			Grupo:         r.Grupo,
			ProductoID:    r.ProductoID,
			Nombre:        r.Nombre,
			CantidadTotal: int64(r.CantidadTotal),
			Ingresos:      r.Ingresos.String(),
			Costos:        r.Costos.String(),
			Ganancia:      r.Ganancia.String(),
			MinHoraMs:     unixMilli(r.MinHora),
			MaxHoraMs:     unixMilli(r.MaxHora),
			CreatedAtMs:   unixMilli(r.CreatedAt),
		})
	}
	return out
}

func unixMilli(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// EncodeSnapshot writes rows to w as a single Parquet file.
func EncodeSnapshot(w io.Writer, rows []SnapshotRow) error {
	pw := parquet.NewGenericWriter[SnapshotRow](w)
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("snapshot: write rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("snapshot: close writer: %w", err)
	}
	return nil
}

// SnapshotStoreConfig locates the bucket. Endpoint is only set for
// S3-compatible stores (MinIO, R2); it also switches to path-style URLs.
type SnapshotStoreConfig struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

// SnapshotStore uploads batch snapshots to S3.
type SnapshotStore struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewSnapshotStore builds an S3 client from the default AWS credential chain.
// It returns nil, nil when no bucket is configured.
func NewSnapshotStore(ctx context.Context, cfg SnapshotStoreConfig) (*SnapshotStore, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &SnapshotStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Key returns the object key for a batch.
func (s *SnapshotStore) Key(batchID string) string {
	prefix := s.prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + batchID + ".parquet"
}

// Put encodes rows and uploads them under Key(batchID). It returns the s3:// URI.
func (s *SnapshotStore) Put(ctx context.Context, batchID string, rows []model.ResumenArchivo) (string, error) {
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, SnapshotRowsFrom(rows)); err != nil {
		return "", err
	}
	key := s.Key(batchID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String(snapshotContentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object s3://%s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
