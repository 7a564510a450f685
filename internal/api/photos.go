package api

import (
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"weld-inspection-db/internal/model"
	"weld-inspection-db/internal/storage"

	"github.com/gin-gonic/gin"
)

var photoExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".heic": true,
}

func (h *Handler) ListPhotos(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.welds.Get(ctx, id); err != nil {
		h.respondError(c, err, "Weld")
		return
	}

	photos, err := h.photos.ListPhotos(ctx, id)
	if err != nil {
		h.respondError(c, err, "Photos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": photos})
}

// UploadPhoto stores a multipart "photo" for the weld. report_number
// defaults to the weld's report.
func (h *Handler) UploadPhoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	weld, err := h.welds.Get(ctx, id)
	if err != nil {
		h.respondError(c, err, "Weld")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Server.MaxUploadBytes)
	header, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	ext := strings.ToLower(path.Ext(header.Filename))
	if !photoExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported photo type " + ext})
		return
	}

	reportNumber := weld.Report
	if raw := strings.TrimSpace(c.PostForm("report_number")); raw != "" {
		reportNumber, err = strconv.Atoi(raw)
		if err != nil || reportNumber < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report_number"})
			return
		}
	}
	caption := strings.TrimSpace(c.PostForm("caption"))
	if len([]rune(caption)) > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "caption is longer than 500 characters"})
		return
	}

	src, err := header.Open()
	if err != nil {
		h.respondError(c, err, "Photo")
		return
	}
	defer src.Close()

	now := h.now()
	key := storage.PhotoKey(now, header.Filename)
	if err := h.storage.Upload(ctx, key, src, contentType(header.Header.Get("Content-Type"), key)); err != nil {
		h.respondError(c, err, "Photo")
		return
	}

	photo := &model.WeldPhoto{
		WeldID:       weld.ID,
		Photo:        key,
		ReportNumber: reportNumber,
		Caption:      caption,
		UploadedAt:   now,
	}
	if err := h.photos.InsertPhoto(ctx, photo); err != nil {
		if delErr := h.storage.Delete(ctx, key); delErr != nil {
			h.log.Warn().Err(delErr).Str("key", key).Msg("Failed to remove orphaned photo object")
		}
		h.respondError(c, err, "Weld")
		return
	}

	h.log.Info().Int64("weld_id", weld.ID).Int64("photo_id", photo.ID).Str("key", key).Msg("Photo uploaded")
	c.JSON(http.StatusCreated, photo)
}

func (h *Handler) GetPhotoContent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	photo, err := h.photos.GetPhoto(ctx, id)
	if err != nil {
		h.respondError(c, err, "Photo")
		return
	}

	body, err := h.storage.Download(ctx, photo.Photo)
	if err != nil {
		h.log.Error().Err(err).Str("key", photo.Photo).Msg("Failed to download photo")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Photo content unavailable"})
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, contentType("", photo.Photo), body, map[string]string{
		"Content-Disposition": `inline; filename="` + photo.FileName() + `"`,
	})
}

func (h *Handler) DeletePhoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	photo, err := h.photos.GetPhoto(ctx, id)
	if err != nil {
		h.respondError(c, err, "Photo")
		return
	}
	if err := h.photos.DeletePhoto(ctx, id); err != nil {
		h.respondError(c, err, "Photo")
		return
	}
	if err := h.storage.Delete(ctx, photo.Photo); err != nil {
		h.log.Warn().Err(err).Str("key", photo.Photo).Msg("Failed to delete photo object")
	}

	c.Status(http.StatusNoContent)
}

func contentType(declared, key string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}
