package storage

import (
	"context"

	appreturns "github.com/erp/returns/internal/application/returns"
	"github.com/erp/returns/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewEvidenceStorage returns S3 storage when a bucket is configured and the stub otherwise
func NewEvidenceStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (appreturns.EvidenceStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Bucket == "" {
		logger.Warn("No evidence bucket configured, using stub storage")
		return NewStubEvidenceStorage(""), nil
	}

	s3Storage, err := NewS3EvidenceStorage(ctx, cfg, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		// uploads still work against a bucket provisioned out of band
		logger.Warn("Could not ensure evidence bucket", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
	}
	logger.Info("Evidence storage initialized", zap.String("bucket", s3Storage.Bucket()))
	return s3Storage, nil
}
