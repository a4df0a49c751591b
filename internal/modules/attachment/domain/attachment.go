package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
)

// MaxUploadBytes is the largest file the destination accepts
const MaxUploadBytes = 20 << 20

var (
	unsupportedExtensions = []string{".svg", ".webp", ".tiff", ".psd"}
	imageExtensions       = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}
	videoExtensions       = []string{".mp4", ".avi", ".mov", ".wmv", ".flv", ".webm", ".mkv"}
)

// Attachment is a file attached to an inbound message
type Attachment struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// Asset is a downloaded attachment waiting for deletion
type Asset struct {
	Path      string    `json:"path"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryForContentType classifies by MIME type prefix
func CategoryForContentType(contentType string) Category {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return CategoryImage
	case strings.HasPrefix(contentType, "video/"):
		return CategoryVideo
	default:
		return CategoryOther
	}
}

// CategoryForFilename classifies by file extension
func CategoryForFilename(name string) Category {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case lo.Contains(imageExtensions, ext):
		return CategoryImage
	case lo.Contains(videoExtensions, ext):
		return CategoryVideo
	default:
		return CategoryOther
	}
}

// Unsupported reports whether the destination refuses files with this name's extension
func Unsupported(name string) bool {
	return lo.Contains(unsupportedExtensions, strings.ToLower(filepath.Ext(name)))
}
