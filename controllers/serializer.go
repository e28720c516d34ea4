package controllers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/olekhov/mediapress/models"
	"github.com/olekhov/mediapress/storage"
)

type variantPayload struct {
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	ByteSize int64  `json:"byte_size"`
}

type mediaPayload struct {
	ID          string                    `json:"id"`
	Kind        string                    `json:"kind"`
	PreviewKind string                    `json:"preview_kind"`
	Name        string                    `json:"name"`
	MimeType    string                    `json:"mime_type"`
	URL         string                    `json:"url"`
	Width       int                       `json:"width,omitempty"`
	Height      int                       `json:"height,omitempty"`
	Format      string                    `json:"format"`
	ByteSize    int64                     `json:"byte_size"`
	Variants    map[string]variantPayload `json:"variants"`
	Category    string                    `json:"category"`
	SubCategory string                    `json:"sub_category"`
	Tags        []string                  `json:"tags"`
	Status      string                    `json:"status"`
	OwnerID     uint                      `json:"owner_id"`
	AltText     string                    `json:"alt_text"`
	Caption     string                    `json:"caption"`
	Credit      string                    `json:"credit"`
	Title       string                    `json:"title"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// serializeMedia resolves every stored path into an absolute URL for this
// request. Resolution happens fresh per request, so a base URL change never
// requires a data migration. The record itself is not mutated.
func serializeMedia(m *models.Media, base string) mediaPayload {
	variants := make(map[string]variantPayload, len(m.Variants.Data()))
	for name, v := range m.Variants.Data() {
		variants[name] = variantPayload{
			URL:      resolve(v.Path, base),
			Width:    v.Width,
			Height:   v.Height,
			Format:   v.Format,
			ByteSize: v.ByteSize,
		}
	}

	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}

	return mediaPayload{
		ID:          m.ID,
		Kind:        m.Kind,
		PreviewKind: previewKind(m.MimeType, m.Kind),
		Name:        m.Name,
		MimeType:    m.MimeType,
		URL:         resolve(m.Path, base),
		Width:       m.Width,
		Height:      m.Height,
		Format:      m.Format,
		ByteSize:    m.ByteSize,
		Variants:    variants,
		Category:    m.Category,
		SubCategory: m.SubCategory,
		Tags:        tags,
		Status:      m.Status,
		OwnerID:     m.OwnerID,
		AltText:     m.AltText,
		Caption:     m.Caption,
		Credit:      m.Credit,
		Title:       m.Title,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func resolve(path, base string) string {
	return storage.AbsoluteURL(storage.NormalizeStoragePath(path), base)
}

// previewKind gives clients a rendering hint derived from the content type,
// falling back to the persisted kind for legacy rows without one.
func previewKind(mimeType, kind string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return models.KindImage
	case strings.HasPrefix(mimeType, "video/"):
		return models.KindVideo
	case mimeType == "":
		return kind
	}
	return models.KindFile
}

// requestBase picks the configured public base URL when set, otherwise
// derives scheme+host from the inbound request.
func requestBase(ctx *gin.Context, publicBaseURL string) string {
	if publicBaseURL != "" {
		return publicBaseURL
	}
	return storage.RequestBase(ctx.Request)
}
