package api

import (
	"net/http"
	"path"
	"strings"

	"weld-inspection-db/internal/model"
	"weld-inspection-db/internal/storage"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// UploadImport stores a multipart "file" spreadsheet and queues it for the
// import worker. An optional "sheet" form value overrides the configured sheet.
func (h *Handler) UploadImport(c *gin.Context) {
	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Server.MaxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if ext := strings.ToLower(path.Ext(header.Filename)); ext != ".xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .xlsx spreadsheets can be imported"})
		return
	}

	src, err := header.Open()
	if err != nil {
		h.respondError(c, err, "Import")
		return
	}
	defer src.Close()

	key := storage.ImportKey()
	if err := h.storage.Upload(ctx, key, src, xlsxContentType); err != nil {
		h.respondError(c, err, "Import")
		return
	}

	file := &model.ImportFile{
		StoragePath: key,
		FileName:    path.Base(header.Filename),
		Status:      model.FileStatusUploaded,
	}
	if err := h.files.CreateFile(ctx, file); err != nil {
		h.respondError(c, err, "Import")
		return
	}

	job := model.ImportJob{FileID: file.ID, StoragePath: key, Sheet: strings.TrimSpace(c.PostForm("sheet"))}
	if err := h.jobs.EnqueueImportJob(ctx, job); err != nil {
		msg := "failed to queue import: " + err.Error()
		if upErr := h.files.UpdateFileStatus(ctx, file.ID, model.FileStatusFailed, model.ImportCounts{}, &msg); upErr != nil {
			h.log.Error().Err(upErr).Int64("file_id", file.ID).Msg("Failed to mark import as failed")
		}
		h.log.Error().Err(err).Int64("file_id", file.ID).Msg("Failed to enqueue import job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue import job"})
		return
	}

	h.log.Info().Int64("file_id", file.ID).Str("file_name", file.FileName).Msg("Import job enqueued")
	c.JSON(http.StatusAccepted, importStatus(file))
}

func (h *Handler) GetImport(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	file, err := h.files.GetFile(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Import")
		return
	}
	c.JSON(http.StatusOK, importStatus(file))
}

func importStatus(f *model.ImportFile) model.ImportStatusResponse {
	return model.ImportStatusResponse{
		FileID:       f.ID,
		FileName:     f.FileName,
		Status:       string(f.Status),
		Created:      f.CreatedCount,
		Updated:      f.UpdatedCount,
		Skipped:      f.SkippedCount,
		Total:        f.CreatedCount + f.UpdatedCount,
		ErrorMessage: f.ErrorMessage,
		UpdatedAt:    f.UpdatedAt,
	}
}
