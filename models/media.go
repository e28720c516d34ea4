package models

import (
	"time"

	"gorm.io/datatypes"
)

// Media kinds, derived from the declared content type at ingress.
const (
	KindImage = "image"
	KindVideo = "video"
	KindFile  = "file"
)

// Publication states for a media record.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Variant describes one derived rendition of an original image. Dimensions and
// byte size are read back from the written file, never assumed from the request.
type Variant struct {
	Path     string `json:"path"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	ByteSize int64  `json:"byte_size"`
}

// Media represents one uploaded asset, its original descriptor and its
// derived variants. All paths are storage-relative; absolute URLs are
// resolved per request and never persisted.
type Media struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	Kind     string `gorm:"size:16;index;not null" json:"kind"`
	Name     string `gorm:"size:255" json:"name"`
	MimeType string `gorm:"size:100" json:"mime_type"`

	// Original descriptor
	Path     string `gorm:"size:512;not null" json:"path"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Format   string `gorm:"size:16" json:"format"`
	ByteSize int64  `json:"byte_size"`

	// Complete fixed set for images, empty for every other kind.
	Variants datatypes.JSONType[map[string]Variant] `json:"variants"`

	Category    string                      `gorm:"size:64;index" json:"category"`
	SubCategory string                      `gorm:"size:64;index" json:"sub_category"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Status      string                      `gorm:"size:16;index;default:'draft'" json:"status"`
	OwnerID     uint                        `gorm:"index" json:"owner_id"`

	AltText string `gorm:"size:255" json:"alt_text"`
	Caption string `gorm:"size:1024" json:"caption"`
	Credit  string `gorm:"size:255" json:"credit"`
	Title   string `gorm:"size:255" json:"title"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default pluralization.
func (Media) TableName() string {
	return "media"
}

// FilePaths collects every distinct storage-relative path referenced by the
// record: the original plus each variant. Used by cleanup.
func (m *Media) FilePaths() []string {
	paths := make([]string, 0, 1+len(m.Variants.Data()))
	paths = append(paths, m.Path)
	for _, v := range m.Variants.Data() {
		paths = append(paths, v.Path)
	}
	return paths
}

// ValidStatus reports whether s is one of the recognized publication states.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}
