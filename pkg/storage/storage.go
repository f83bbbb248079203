// Package storage persists inspection media (photos, videos, documents)
// and returns a URL that can be recorded against a task entry.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaStorage writes an object and returns its public URL.
type MediaStorage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// ObjectKey builds "<workOrderID>/<yyyymmdd>/<uuid><ext>". The extension is
// derived from the content type, or from fileName when the type is unknown.
func ObjectKey(workOrderID uuid.UUID, fileName, contentType string, now time.Time) string {
	ext := path.Ext(fileName)
	if ext == "" && contentType != "" {
		if exts, err := mime.ExtensionsByType(strings.TrimSpace(strings.Split(contentType, ";")[0])); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return fmt.Sprintf("%s/%s/%s%s", workOrderID, now.UTC().Format("20060102"), uuid.New(), strings.ToLower(ext))
}
