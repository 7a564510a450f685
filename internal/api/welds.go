package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"weld-inspection-db/internal/model"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListWelds(c *gin.Context) {
	filter := model.WeldFilter{
		Side:     strings.TrimSpace(c.Query("side")),
		PassFail: strings.TrimSpace(c.Query("pass_fail")),
		WeldType: strings.TrimSpace(c.Query("weld_type")),
		Search:   c.Query("q"),
	}

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
			return
		}
		*dst = n
	}
	if raw := c.Query("report"); raw != "" {
		report, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report"})
			return
		}
		filter.Report = &report
	}

	welds, total, err := h.welds.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "Welds")
		return
	}

	limit, offset := filter.Page()
	c.JSON(http.StatusOK, model.WeldListResponse{Items: welds, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) GetWeld(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	weld, err := h.welds.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Weld")
		return
	}
	c.JSON(http.StatusOK, weld)
}

func (h *Handler) CreateWeld(c *gin.Context) {
	rec, ok := h.bindWeld(c)
	if !ok {
		return
	}

	now := h.now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	if err := h.welds.Insert(c.Request.Context(), rec); err != nil {
		h.respondError(c, err, "Weld")
		return
	}

	h.log.Info().Int64("weld_id", rec.ID).Str("key", rec.Key().String()).Msg("Weld created")
	c.JSON(http.StatusCreated, rec)
}

// UpdateWeld replaces every field of the weld, key included. Moving onto a
// key another weld holds is a conflict.
func (h *Handler) UpdateWeld(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	rec, ok := h.bindWeld(c)
	if !ok {
		return
	}

	existing, err := h.welds.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Weld")
		return
	}

	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = h.now()
	if err := h.welds.Update(c.Request.Context(), rec); err != nil {
		h.respondError(c, err, "Weld")
		return
	}

	h.log.Info().Int64("weld_id", rec.ID).Str("key", rec.Key().String()).Msg("Weld updated")
	c.JSON(http.StatusOK, rec)
}

// DeleteWeld removes the weld, its photo rows and the photo objects.
func (h *Handler) DeleteWeld(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	photos, err := h.photos.ListPhotos(ctx, id)
	if err != nil {
		h.respondError(c, err, "Weld")
		return
	}
	if err := h.welds.Delete(ctx, id); err != nil {
		h.respondError(c, err, "Weld")
		return
	}

	for _, p := range photos {
		if err := h.storage.Delete(ctx, p.Photo); err != nil {
			h.log.Warn().Err(err).Str("key", p.Photo).Msg("Failed to delete photo object")
		}
	}

	h.log.Info().Int64("weld_id", id).Int("photos", len(photos)).Msg("Weld deleted")
	c.Status(http.StatusNoContent)
}

func (h *Handler) bindWeld(c *gin.Context) (*model.WeldRecord, bool) {
	var req model.WeldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return nil, false
	}
	trimRequest(&req)

	if err := h.validate.Struct(&req); err != nil {
		h.respondValidation(c, validationErrors(err))
		return nil, false
	}

	return weldFromRequest(&req, h.cfg.Import.DefaultWPS), true
}

func trimRequest(req *model.WeldRequest) {
	for _, s := range []*string{
		&req.Side, &req.Section, &req.WeldID, &req.WeldID2, &req.WeldID3, &req.WeldID4,
		&req.TableCriteria1, &req.TableCriteria2, &req.TableCriteria3,
		&req.WeldType, &req.WeldSize, &req.WPSNumber, &req.InspectionUTSW, &req.InspectionMT,
		&req.Inspector, &req.Date, &req.PassFail, &req.CorrectiveActionTaken, &req.RepairWelder,
		&req.RepairInspectionDate, &req.WeldProcess, &req.Note,
	} {
		*s = strings.TrimSpace(*s)
	}
}

// weldFromRequest expects a validated request; dates are already known to
// parse.
func weldFromRequest(req *model.WeldRequest, defaultWPS string) *model.WeldRecord {
	wps := req.WPSNumber
	if wps == "" {
		wps = defaultWPS
	}

	return &model.WeldRecord{
		Report:                req.Report,
		Side:                  req.Side,
		Section:               req.Section,
		WeldID:                req.WeldID,
		WeldID2:               req.WeldID2,
		WeldID3:               req.WeldID3,
		WeldID4:               req.WeldID4,
		EstimatedRepairLength: req.EstimatedRepairLength,
		TotalWeldLength:       req.TotalWeldLength,
		TableCriteria1:        req.TableCriteria1,
		TableCriteria2:        req.TableCriteria2,
		TableCriteria3:        req.TableCriteria3,
		WeldType:              req.WeldType,
		WeldSize:              req.WeldSize,
		WPSNumber:             wps,
		InspectionUTSW:        req.InspectionUTSW,
		InspectionMT:          req.InspectionMT,
		Inspector:             req.Inspector,
		Date:                  parseDay(req.Date),
		PassFail:              req.PassFail,
		CorrectiveActionTaken: req.CorrectiveActionTaken,
		RepairWelder:          req.RepairWelder,
		RepairInspectionDate:  parseDay(req.RepairInspectionDate),
		WeldProcess:           req.WeldProcess,
		Note:                  req.Note,
	}
}

func parseDay(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
