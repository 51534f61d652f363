package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coyotecrew/camporee-collator/designer"
	"github.com/coyotecrew/camporee-collator/storage"
	"github.com/coyotecrew/camporee-collator/utils"
)

// ExportResult reports where an exported configuration bundle landed.
type ExportResult struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// ExportService builds a complete scoring-app configuration bundle from the
// game definition files and uploads the zip to object storage.
type ExportService interface {
	Export(ctx context.Context, title string) (*ExportResult, error)
}

type exportService struct {
	gamesDir string
	uploader storage.FileUploader
	clock    utils.Clock
	log      *slog.Logger
}

func NewExportService(gamesDir string, uploader storage.FileUploader, clock utils.Clock, log *slog.Logger) ExportService {
	if clock == nil {
		clock = utils.SystemClock
	}
	if log == nil {
		log = slog.Default()
	}
	return &exportService{gamesDir: gamesDir, uploader: uploader, clock: clock, log: log}
}

func (s *exportService) Export(ctx context.Context, title string) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, ErrExportUnavailable
	}

	now := s.clock().UTC()
	bundle, err := designer.Convert(s.gamesDir, title, now)
	if err != nil {
		return nil, fmt.Errorf("failed to build configuration bundle: %w", err)
	}

	var buf bytes.Buffer
	if err := bundle.WriteZip(&buf); err != nil {
		return nil, fmt.Errorf("failed to write bundle zip: %w", err)
	}

	key := fmt.Sprintf("exports/CamporeeConfig-%s.zip", now.Format("20060102-150405"))
	res, err := s.uploader.Upload(ctx, key, "application/zip", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to upload bundle: %w", err)
	}

	s.log.Info("configuration bundle exported",
		slog.String("key", key),
		slog.Int("games", len(bundle.Games)),
		slog.Duration("took", time.Since(now)),
	)
	return &ExportResult{URL: res.Location, Key: res.Key, Size: int64(buf.Len())}, nil
}
