package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	AvatarFolder   = "avatars"
	SpacesFolder   = "event_spaces"
	EventsFolder   = "events"
	ServicesFolder = "services"

	uploadTag = "evently"
)

// UploadImages uploads each non-empty path (local file, URL or data URI) into folder
// and returns the secure URLs in input order.
func UploadImages(ctx context.Context, cld *cloudinary.Cloudinary, imageNames []string, folder string) ([]string, error) {
	if cld == nil {
		return nil, fmt.Errorf("cloudinary is not configured")
	}
	var urls []string
	for i, filePath := range imageNames {
		if strings.TrimSpace(filePath) == "" {
			slog.Debug("Skipping empty image path", "index", i)
			continue
		}
		uploadResult, err := cld.Upload.Upload(ctx, filePath, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{uploadTag},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image %s: %v", filePath, err)
		}
		urls = append(urls, uploadResult.SecureURL)
	}
	return urls, nil
}

// PublicIDFromURL turns ".../upload/v123/event_spaces/abc.jpg" into "event_spaces/abc".
func PublicIDFromURL(url string) string {
	idx := strings.Index(url, "/upload/")
	if idx < 0 {
		return ""
	}
	rest := url[idx+len("/upload/"):]
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) == 2 && strings.HasPrefix(parts[0], "v") && isDigits(parts[0][1:]) {
		rest = parts[1]
	}
	return strings.TrimSuffix(rest, path.Ext(rest))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DeleteImages removes previously uploaded images. Failures are logged and skipped.
func DeleteImages(ctx context.Context, cld *cloudinary.Cloudinary, urls []string) int {
	if cld == nil {
		return 0
	}
	deleted := 0
	for _, u := range urls {
		id := PublicIDFromURL(u)
		if id == "" {
			continue
		}
		if _, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id}); err != nil {
			slog.Warn("Failed to delete image", "public_id", id, "error", err)
			continue
		}
		deleted++
	}
	return deleted
}
