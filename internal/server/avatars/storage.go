// Package avatars stores uploaded profile images in S3-compatible object
// storage or in process memory.
package avatars

import (
	"context"
	"fmt"
	"mime"
	"time"

	"github.com/google/uuid"
)

// Storage saves an object and returns the URL it can be fetched from.
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// NewKey returns a fresh object key for one of userID's avatars.
func NewKey(userID, contentType string) string {
	d := time.Now()
	ext := ""
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		ext = exts[0]
	}
	return fmt.Sprintf("avatars/%s/%d%02d%02d/%v%s", userID, d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}
