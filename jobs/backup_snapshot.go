package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/medipos-erp/medipos/internal/backup"
)

// BackupSnapshotHandler writes the nightly snapshot into dir.
func BackupSnapshotHandler(service *backup.Service, dir string, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		path, err := service.WriteFile(ctx, dir)
		if err != nil {
			logger.Error("backup snapshot", slog.Any("error", err))
			return err
		}
		logger.Info("backup snapshot written", slog.String("path", path))
		return nil
	}
}
