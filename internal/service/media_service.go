// FILE: internal/service/media_service.go
package service

import (
	"context"
	"io"
	"time"

	"inspection-be/internal/pkg/logger"
	"inspection-be/pkg/storage"
	"inspection-be/pkg/whatsapp"

	"github.com/google/uuid"
)

// MediaDownloader fetches attachment bytes from the provider, implemented by whatsapp.Client.
type MediaDownloader interface {
	DownloadMedia(ctx context.Context, url string) (io.ReadCloser, string, error)
}

type StoredMedia struct {
	URL         string
	ContentType string
	StorageKey  string // empty when the provider URL is recorded as-is
}

type IMediaService interface {
	// Store copies the attachment into media storage. It never fails: when the
	// copy cannot be made the provider URL is kept as evidence instead.
	Store(ctx context.Context, sessionKey string, workOrderID uuid.UUID, media *whatsapp.Media) StoredMedia
}

type MediaService struct {
	downloader MediaDownloader
	storage    storage.MediaStorage
	logger     logger.ILogger
	now        func() time.Time
}

func NewMediaService(downloader MediaDownloader, store storage.MediaStorage, log logger.ILogger) *MediaService {
	return &MediaService{
		downloader: downloader,
		storage:    store,
		logger:     log,
		now:        time.Now,
	}
}

func (s *MediaService) Store(ctx context.Context, sessionKey string, workOrderID uuid.UUID, media *whatsapp.Media) StoredMedia {
	if media == nil {
		return StoredMedia{}
	}

	fallback := StoredMedia{URL: media.URL, ContentType: media.MimeType}
	if media.URL == "" || s.downloader == nil || s.storage == nil {
		return fallback
	}

	body, contentType, err := s.downloader.DownloadMedia(ctx, media.URL)
	if err != nil {
		s.logger.Warn("MediaService", "Media download failed, keeping provider URL", map[string]interface{}{
			"session_key": sessionKey,
			"url":         media.URL,
			"error":       err.Error(),
		})
		return fallback
	}
	defer body.Close()

	if contentType == "" {
		contentType = media.MimeType
	}

	key := storage.ObjectKey(workOrderID, media.FileName, contentType, s.now())
	url, err := s.storage.Put(ctx, key, body, contentType)
	if err != nil {
		s.logger.Warn("MediaService", "Media upload failed, keeping provider URL", map[string]interface{}{
			"session_key": sessionKey,
			"key":         key,
			"error":       err.Error(),
		})
		return fallback
	}

	return StoredMedia{URL: url, ContentType: contentType, StorageKey: key}
}
