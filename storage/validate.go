package storage

import (
	"errors"

	"github.com/olekhov/mediapress/models"
)

// Ingress validation failures. Callers map these to distinct response codes:
// unsupported type is client-correctable (400), oversize is 413.
var (
	ErrUnsupportedType = errors.New("unsupported media type")
	ErrTooLarge        = errors.New("file exceeds size ceiling")
)

// extByMime doubles as the upload allow-list: a declared content type absent
// from this table is rejected before any byte is staged.
var extByMime = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
	"video/mp4":  "mp4",
	"video/webm": "webm",
}

// Limits carries the per-kind upload size ceilings, injected from config.
type Limits struct {
	ImageMaxBytes int64
	VideoMaxBytes int64
}

// CheckUpload validates the declared content type and size before any
// expensive work. The staging writer re-enforces the ceiling against actual
// bytes, so a wrong declared size cannot sneak an oversized file through.
func (v Limits) CheckUpload(mimeType string, size int64) error {
	if _, ok := extByMime[mimeType]; !ok {
		return ErrUnsupportedType
	}
	if size > v.CeilingFor(KindFor(mimeType)) {
		return ErrTooLarge
	}
	return nil
}

// CeilingFor returns the byte ceiling applied to uploads of the given kind.
func (v Limits) CeilingFor(kind string) int64 {
	if kind == models.KindImage {
		return v.ImageMaxBytes
	}
	return v.VideoMaxBytes
}

// KindFor derives the media kind from an allow-listed content type.
func KindFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
		return models.KindImage
	case "video/mp4", "video/webm":
		return models.KindVideo
	}
	return models.KindFile
}

// ExtFor resolves the canonical file extension for a supported content type.
func ExtFor(mimeType string) string {
	if ext, ok := extByMime[mimeType]; ok {
		return ext
	}
	return "bin"
}
