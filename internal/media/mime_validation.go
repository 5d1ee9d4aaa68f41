package media

import (
	"fmt"
	"mime"
	"strings"
)

var imageMimeTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

const allowedImageDescription = "PNG, JPEG, WebP, or GIF images"

func sniffMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	if mediaType == "" {
		return "", fmt.Errorf("mime type missing")
	}
	return strings.ToLower(mediaType), nil
}

func isAllowedImage(mimeType string) bool {
	_, ok := imageMimeTypes[mimeType]
	return ok
}

func extensionFor(mimeType string) string {
	return imageMimeTypes[mimeType]
}
