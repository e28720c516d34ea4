package models

import (
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ListFilter narrows and pages a media listing. StartIndex takes precedence
// over Page when both are supplied; both resolve to the same skip/limit
// semantics underneath.
type ListFilter struct {
	Category    string
	SubCategory string
	Kind        string
	Status      string
	Query       string // free-text match over name, alt text and tags

	Sort       string // "asc" or "desc" by creation time, desc by default
	Page       int
	StartIndex int // -1 when not supplied
	Limit      int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (f ListFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	if f.Limit > maxListLimit {
		return maxListLimit
	}
	return f.Limit
}

// Offset resolves page-number and explicit start-index pagination into one
// skip value. An explicit StartIndex overrides the page number.
func (f ListFilter) Offset() int {
	if f.StartIndex >= 0 {
		return f.StartIndex
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.limit()
}

// CreateMedia persists a fully assembled record. Callers must have staged the
// original and generated the complete variant set before calling.
func CreateMedia(db *gorm.DB, m *Media) error {
	return db.Create(m).Error
}

// GetMedia fetches one record by id. Returns gorm.ErrRecordNotFound when absent.
func GetMedia(db *gorm.DB, id string) (*Media, error) {
	var m Media
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMedia returns one page of records plus the total count of all records
// matching the filter regardless of the pagination window.
func ListMedia(db *gorm.DB, f ListFilter) ([]Media, int64, error) {
	q := db.Model(&Media{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.SubCategory != "" {
		q = q.Where("sub_category = ?", f.SubCategory)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Query != "" {
		// tags are stored as a JSON array, so a LIKE over the serialized
		// column covers tag matches as well
		like := "%" + f.Query + "%"
		q = q.Where("name LIKE ? OR alt_text LIKE ? OR title LIKE ? OR tags LIKE ?", like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if strings.EqualFold(f.Sort, "asc") {
		order = "created_at ASC"
	}

	var items []Media
	if err := q.Order(order).Limit(f.limit()).Offset(f.Offset()).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// MediaPatch carries the mutable metadata fields of an update request.
// Nil fields are left untouched; id, kind, original descriptor and variants
// are immutable after creation and cannot appear here.
type MediaPatch struct {
	Category    *string   `json:"category"`
	SubCategory *string   `json:"sub_category"`
	Tags        *[]string `json:"tags"`
	Status      *string   `json:"status"`
	AltText     *string   `json:"alt_text"`
	Caption     *string   `json:"caption"`
	Credit      *string   `json:"credit"`
	Title       *string   `json:"title"`
}

// UpdateMediaMeta applies a metadata patch to an existing record and returns
// the updated row.
func UpdateMediaMeta(db *gorm.DB, id string, patch MediaPatch) (*Media, error) {
	m, err := GetMedia(db, id)
	if err != nil {
		return nil, err
	}
	if patch.Category != nil {
		m.Category = *patch.Category
	}
	if patch.SubCategory != nil {
		m.SubCategory = *patch.SubCategory
	}
	if patch.Tags != nil {
		m.Tags = datatypes.JSONSlice[string](DedupeTags(*patch.Tags))
	}
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	if patch.AltText != nil {
		m.AltText = *patch.AltText
	}
	if patch.Caption != nil {
		m.Caption = *patch.Caption
	}
	if patch.Credit != nil {
		m.Credit = *patch.Credit
	}
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if err := db.Save(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMedia removes the row. File cleanup happens before this call.
func DeleteMedia(db *gorm.DB, id string) error {
	res := db.Delete(&Media{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DedupeTags trims and deduplicates tags while preserving first-seen order.
func DedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
