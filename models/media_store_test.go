package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Media{}))
	return db
}

func seedMedia(t *testing.T, db *gorm.DB, id, category string, createdAt time.Time) *Media {
	t.Helper()
	m := &Media{
		ID:       id,
		Kind:     KindImage,
		Name:     id + ".jpg",
		MimeType: "image/jpeg",
		Path:     "/uploads/" + id + "-original.jpg",
		Width:    800,
		Height:   600,
		Format:   "jpg",
		ByteSize: 12345,
		Variants: datatypes.NewJSONType(map[string]Variant{
			"thumb": {Path: "/uploads/" + id + "-thumb.jpg", Width: 320, Height: 240, Format: "jpg", ByteSize: 2048},
		}),
		Category:  category,
		Tags:      datatypes.JSONSlice[string]{"press"},
		Status:    StatusPublished,
		OwnerID:   1,
		CreatedAt: createdAt,
	}
	require.NoError(t, CreateMedia(db, m))
	return m
}

func TestCreateAndGetMedia(t *testing.T) {
	db := newTestDB(t)
	seedMedia(t, db, "aaa", "news", time.Now())

	got, err := GetMedia(db, "aaa")
	require.NoError(t, err)
	assert.Equal(t, KindImage, got.Kind)
	assert.Equal(t, "/uploads/aaa-original.jpg", got.Path)
	require.Contains(t, got.Variants.Data(), "thumb")
	assert.Equal(t, 320, got.Variants.Data()["thumb"].Width)

	_, err = GetMedia(db, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListMediaFilterSortAndTotal(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedMedia(t, db, fmt.Sprintf("news-%d", i), "news", base.Add(time.Duration(i)*time.Hour))
	}
	seedMedia(t, db, "sport-0", "sport", base)

	// newest first with a window of one; total counts every match
	items, total, err := ListMedia(db, ListFilter{Category: "news", Sort: "desc", Limit: 1, StartIndex: -1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "news-2", items[0].ID)

	items, _, err = ListMedia(db, ListFilter{Category: "news", Sort: "asc", Limit: 10, StartIndex: -1})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "news-0", items[0].ID)

	// unfiltered
	_, total, err = ListMedia(db, ListFilter{StartIndex: -1})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
}

func TestListMediaFreeTextOverNameAndTags(t *testing.T) {
	db := newTestDB(t)
	m := seedMedia(t, db, "tagged", "news", time.Now())
	m.Tags = datatypes.JSONSlice[string]{"festival", "summer"}
	require.NoError(t, db.Save(m).Error)
	seedMedia(t, db, "plain", "news", time.Now())

	items, total, err := ListMedia(db, ListFilter{Query: "festival", StartIndex: -1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "tagged", items[0].ID)
}

func TestListMediaPagination(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedMedia(t, db, fmt.Sprintf("m-%d", i), "news", base.Add(time.Duration(i)*time.Minute))
	}

	// page-number pagination
	items, _, err := ListMedia(db, ListFilter{Sort: "asc", Page: 2, Limit: 2, StartIndex: -1})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "m-2", items[0].ID)

	// explicit start index overrides the page number
	items, _, err = ListMedia(db, ListFilter{Sort: "asc", Page: 2, Limit: 2, StartIndex: 4})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "m-4", items[0].ID)
}

func TestUpdateMediaMetaMutableFieldsOnly(t *testing.T) {
	db := newTestDB(t)
	seedMedia(t, db, "upd", "news", time.Now())

	title := "A headline photo"
	status := StatusArchived
	tags := []string{"a", "b", "a", " "}
	updated, err := UpdateMediaMeta(db, "upd", MediaPatch{Title: &title, Status: &status, Tags: &tags})
	require.NoError(t, err)

	assert.Equal(t, "A headline photo", updated.Title)
	assert.Equal(t, StatusArchived, updated.Status)
	assert.Equal(t, []string{"a", "b"}, []string(updated.Tags))

	// the original descriptor and variants are untouched
	assert.Equal(t, "/uploads/upd-original.jpg", updated.Path)
	assert.Contains(t, updated.Variants.Data(), "thumb")

	_, err = UpdateMediaMeta(db, "missing", MediaPatch{Title: &title})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteMedia(t *testing.T) {
	db := newTestDB(t)
	seedMedia(t, db, "del", "news", time.Now())

	require.NoError(t, DeleteMedia(db, "del"))
	_, err := GetMedia(db, "del")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, DeleteMedia(db, "del"), gorm.ErrRecordNotFound)
}

func TestDedupeTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, []string(DedupeTags([]string{" a", "b ", "a", ""})))
	assert.Empty(t, DedupeTags([]string{"", "  "}))
}
