package file

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/storage"
	"github.com/google/uuid"
)

// ArchiveRoot is the storage prefix of every archived upload.
const ArchiveRoot = "uploads"

type FileService interface {
	// ArchiveUpload keeps a copy of an imported spreadsheet and returns its key
	ArchiveUpload(ctx context.Context, file io.Reader, filename string) (string, error)

	// PurgeArchive removes archived uploads last modified before cutoff
	PurgeArchive(ctx context.Context, cutoff time.Time) (int, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

// ArchiveUpload stores the file under uploads/<yyyy>/<mm>/<uuid><ext>.
func (s *fileServiceImpl) ArchiveUpload(ctx context.Context, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	now := s.now().UTC()

	key := path.Join(
		ArchiveRoot,
		now.Format("2006"),
		now.Format("01"),
		uuid.New().String()+ext,
	)

	uploadedPath, err := s.storage.Upload(ctx, file, key, contentType(ext))
	if err != nil {
		return "", fmt.Errorf("failed to archive upload: %w", err)
	}

	return uploadedPath, nil
}

// PurgeArchive implements FileService.
func (s *fileServiceImpl) PurgeArchive(ctx context.Context, cutoff time.Time) (int, error) {
	objects, err := s.storage.List(ctx, ArchiveRoot)
	if err != nil {
		return 0, fmt.Errorf("failed to list archive: %w", err)
	}

	removed := 0
	for _, obj := range objects {
		if !obj.ModTime.Before(cutoff) {
			continue
		}
		if err := s.storage.Delete(ctx, obj.Path); err != nil {
			slog.Warn("failed to purge archived upload", "path", obj.Path, "error", err)
			continue
		}
		removed++
	}

	return removed, nil
}

func contentType(ext string) string {
	switch ext {
	case ".xlsx", ".xlsm":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
