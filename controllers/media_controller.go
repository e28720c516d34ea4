package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/olekhov/mediapress/config"
	"github.com/olekhov/mediapress/middleware"
	"github.com/olekhov/mediapress/models"
	"github.com/olekhov/mediapress/storage"
	"github.com/olekhov/mediapress/utils"
)

const mediaListCachePrefix = "cache:media:list:"

// MediaController manages upload, listing and lifecycle of media records.
type MediaController struct {
	db            *gorm.DB
	store         *storage.Local
	limits        storage.Limits
	publicBaseURL string
}

// NewMediaController wires the controller with its storage root and ingress
// limits taken from configuration.
func NewMediaController(db *gorm.DB, store *storage.Local, cfg config.AppConfig) *MediaController {
	return &MediaController{
		db:    db,
		store: store,
		limits: storage.Limits{
			ImageMaxBytes: cfg.ImageMaxBytes(),
			VideoMaxBytes: cfg.VideoMaxBytes(),
		},
		publicBaseURL: cfg.PublicBaseURL,
	}
}

// Upload accepts a multipart body with a single binary field plus optional
// metadata fields, stages the original, derives the fixed variant set for
// images and persists one record. Any failure after staging purges every
// file written for the attempt, so a partial upload is never observable.
func (m *MediaController) Upload(ctx *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "no file uploaded")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}

	if err := m.limits.CheckUpload(mimeType, header.Size); err != nil {
		m.rejectUpload(ctx, err)
		return
	}

	status := ctx.PostForm("status")
	if status == "" {
		status = models.StatusDraft
	}
	if !models.ValidStatus(status) {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid status")
		return
	}

	kind := storage.KindFor(mimeType)
	id := uuid.New().String()

	original, err := m.store.Stage(file, id, mimeType, header.Filename, m.limits.CeilingFor(kind))
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			utils.Error(ctx, http.StatusRequestEntityTooLarge, 41301, "file exceeds size ceiling")
			return
		}
		utils.Sugar.Errorf("stage upload %s failed: %v", id, err)
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to store file")
		return
	}

	variants := map[string]models.Variant{}
	if kind == models.KindImage {
		variants, err = m.store.GenerateVariants(original, id)
		if err != nil {
			// variant files for this attempt are already gone; drop the original too
			m.store.Purge(original.Path)
			if errors.Is(err, storage.ErrUnreadableImage) {
				utils.Error(ctx, http.StatusUnprocessableEntity, 42201, "corrupt or unreadable image")
				return
			}
			utils.Sugar.Errorf("generate variants for %s failed: %v", id, err)
			utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to process image")
			return
		}
	}

	rec := models.Media{
		ID:          id,
		Kind:        kind,
		Name:        filepath.Base(header.Filename),
		MimeType:    mimeType,
		Path:        original.Path,
		Width:       original.Width,
		Height:      original.Height,
		Format:      original.Format,
		ByteSize:    original.ByteSize,
		Variants:    datatypes.NewJSONType(variants),
		Category:    strings.TrimSpace(ctx.PostForm("category")),
		SubCategory: strings.TrimSpace(ctx.PostForm("sub_category")),
		Tags:        datatypes.JSONSlice[string](models.DedupeTags(strings.Split(ctx.PostForm("tags"), ","))),
		Status:      status,
		OwnerID:     principal.UserID,
		AltText:     utils.Sanitize(ctx.PostForm("alt_text")),
		Caption:     utils.Sanitize(ctx.PostForm("caption")),
		Credit:      utils.Sanitize(ctx.PostForm("credit")),
		Title:       utils.Sanitize(ctx.PostForm("title")),
	}

	if err := models.CreateMedia(m.db, &rec); err != nil {
		m.store.Purge(rec.FilePaths()...)
		utils.Sugar.Errorf("create media record %s failed: %v", id, err)
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to save media record")
		return
	}

	utils.InvalidateByPrefix(mediaListCachePrefix)

	payload := serializeMedia(&rec, requestBase(ctx, m.publicBaseURL))
	utils.Success(ctx, gin.H{
		"media":     payload,
		"url":       payload.URL,
		"name":      rec.Name,
		"mime_type": rec.MimeType,
	})
}

func (m *MediaController) rejectUpload(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		utils.Error(ctx, http.StatusRequestEntityTooLarge, 41301, "file exceeds size ceiling")
	default:
		utils.Error(ctx, http.StatusBadRequest, 40002, "unsupported media type")
	}
}

// List returns one page of records with filter and sort applied, plus the
// total match count. Responses without a free-text query are cached; the
// cache key includes the resolved base URL because payloads carry absolute
// URLs.
func (m *MediaController) List(ctx *gin.Context) {
	filter := models.ListFilter{
		Category:    strings.TrimSpace(ctx.Query("category")),
		SubCategory: strings.TrimSpace(ctx.Query("sub_category")),
		Kind:        strings.TrimSpace(ctx.Query("kind")),
		Status:      strings.TrimSpace(ctx.Query("status")),
		Query:       strings.TrimSpace(ctx.Query("q")),
		Sort:        ctx.DefaultQuery("sort", "desc"),
		StartIndex:  -1,
	}
	if v, err := strconv.Atoi(ctx.Query("page")); err == nil && v > 0 {
		filter.Page = v
	}
	if v, err := strconv.Atoi(ctx.Query("start_index")); err == nil && v >= 0 {
		filter.StartIndex = v
	}
	if v, err := strconv.Atoi(ctx.Query("limit")); err == nil && v > 0 {
		filter.Limit = v
	}

	base := requestBase(ctx, m.publicBaseURL)

	var cacheKey string
	if filter.Query == "" {
		cacheKey = fmt.Sprintf("%scat=%s:sub=%s:kind=%s:status=%s:sort=%s:off=%d:lim=%d:base=%s",
			mediaListCachePrefix, filter.Category, filter.SubCategory, filter.Kind,
			filter.Status, filter.Sort, filter.Offset(), filter.Limit, base)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	items, total, err := models.ListMedia(m.db, filter)
	if err != nil {
		utils.Sugar.Errorf("list media failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to list media")
		return
	}

	payloads := make([]mediaPayload, 0, len(items))
	for i := range items {
		payloads = append(payloads, serializeMedia(&items[i], base))
	}

	envelope := utils.JSONResponse{
		Code:    0,
		Message: "success",
		Data: gin.H{
			"items":      payloads,
			"total":      total,
			"startIndex": filter.Offset(),
			"limit":      filter.Limit,
		},
	}
	b, err := json.Marshal(envelope)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to list media")
		return
	}
	if cacheKey != "" {
		utils.CacheSetBytes(cacheKey, b, 10*time.Minute)
	}
	ctx.Data(http.StatusOK, "application/json", b)
}

// Get returns one serialized record by id.
func (m *MediaController) Get(ctx *gin.Context) {
	rec, err := models.GetMedia(m.db, ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "media not found")
		return
	}
	utils.Success(ctx, gin.H{"media": serializeMedia(rec, requestBase(ctx, m.publicBaseURL))})
}

// Update patches mutable metadata. The id, kind, original descriptor and
// variants cannot change; unknown fields in the body are ignored.
func (m *MediaController) Update(ctx *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	rec, err := models.GetMedia(m.db, ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "media not found")
		return
	}
	if !canMutate(principal, rec.OwnerID) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not permitted")
		return
	}

	var patch models.MediaPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request payload")
		return
	}
	if patch.Status != nil && !models.ValidStatus(*patch.Status) {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid status")
		return
	}
	sanitizePatch(&patch)

	updated, err := models.UpdateMediaMeta(m.db, rec.ID, patch)
	if err != nil {
		utils.Sugar.Errorf("update media %s failed: %v", rec.ID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to update media")
		return
	}

	utils.InvalidateByPrefix(mediaListCachePrefix)
	utils.Success(ctx, gin.H{"media": serializeMedia(updated, requestBase(ctx, m.publicBaseURL))})
}

// Delete removes every referenced file and then the row. A file that is
// already missing counts as removed; the operation only succeeds once both
// the row and the files are gone.
func (m *MediaController) Delete(ctx *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	rec, err := models.GetMedia(m.db, ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "media not found")
		return
	}
	if !canMutate(principal, rec.OwnerID) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not permitted")
		return
	}

	m.store.Purge(rec.FilePaths()...)
	if err := models.DeleteMedia(m.db, rec.ID); err != nil {
		utils.Sugar.Errorf("delete media %s failed: %v", rec.ID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to delete media")
		return
	}

	utils.InvalidateByPrefix(mediaListCachePrefix)
	utils.Success(ctx, gin.H{"deleted": rec.ID})
}

// canMutate applies the ownership-or-elevated-role gate before any mutation.
func canMutate(p middleware.Principal, ownerID uint) bool {
	return p.Elevated() || p.UserID == ownerID
}

func sanitizePatch(patch *models.MediaPatch) {
	clean := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := utils.Sanitize(*s)
		return &v
	}
	patch.AltText = clean(patch.AltText)
	patch.Caption = clean(patch.Caption)
	patch.Credit = clean(patch.Credit)
	patch.Title = clean(patch.Title)
}
