package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/shift-reconcile/internal/service/file"
)

// UploadJobs keeps the upload archive within its retention window.
type UploadJobs struct {
	fileService file.FileService
	retention   time.Duration
	now         func() time.Time
}

func NewUploadJobs(fileService file.FileService, retention time.Duration) *UploadJobs {
	return &UploadJobs{
		fileService: fileService,
		retention:   retention,
		now:         time.Now,
	}
}

func (j *UploadJobs) RegisterJobs(scheduler *Scheduler) {
	if j.retention <= 0 {
		slog.Info("Cron: upload archive retention disabled")
		return
	}
	scheduler.AddJob("purge_upload_archive", 6*time.Hour, j.PurgeExpiredUploads)
}

func (j *UploadJobs) PurgeExpiredUploads(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)

	removed, err := j.fileService.PurgeArchive(ctx, cutoff)
	if err != nil {
		return err
	}

	if removed > 0 {
		slog.Info("Cron: purged archived uploads", "removed", removed, "cutoff", cutoff)
	}
	return nil
}
