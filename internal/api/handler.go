package api

import (
	"context"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"weld-inspection-db/internal/config"
	"weld-inspection-db/internal/db"
	"weld-inspection-db/internal/logger"
	"weld-inspection-db/internal/model"
	"weld-inspection-db/internal/storage"
	"weld-inspection-db/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// JobQueue hands uploaded spreadsheets to the import worker.
type JobQueue interface {
	EnqueueImportJob(ctx context.Context, job model.ImportJob) error
	Pending(ctx context.Context) (int64, error)
}

type HealthCheck func(ctx context.Context) error

type Handler struct {
	welds    db.WeldRepository
	photos   db.PhotoRepository
	files    db.FileRepository
	storage  storage.Storage
	jobs     JobQueue
	validate *validator.Validate
	checks   map[string]HealthCheck
	cfg      *config.Config
	now      func() time.Time
	log      zerolog.Logger
}

func NewHandler(
	welds db.WeldRepository,
	photos db.PhotoRepository,
	files db.FileRepository,
	storage storage.Storage,
	jobs JobQueue,
	cfg *config.Config,
) *Handler {
	return &Handler{
		welds:    welds,
		photos:   photos,
		files:    files,
		storage:  storage,
		jobs:     jobs,
		validate: newValidator(),
		checks:   make(map[string]HealthCheck),
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		log:      logger.Component("api"),
	}
}

// AddHealthCheck registers a dependency probed by GET /health.
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
		"checks":  deps,
	}
	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}
	if h.jobs != nil {
		if pending, err := h.jobs.Pending(ctx); err == nil {
			body["pending_imports"] = pending
		}
	}
	c.JSON(status, body)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationErrors flattens validator output into the shared ValidationError type.
func validationErrors(err error) []errors.ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []errors.ValidationError{{Message: err.Error()}}
	}

	out := make([]errors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		msg := "failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out = append(out, errors.ValidationError{Field: fe.Field(), Value: fe.Value(), Message: msg})
	}
	return out
}

func (h *Handler) respondValidation(c *gin.Context, issues []errors.ValidationError) {
	fields := make([]gin.H, 0, len(issues))
	for _, issue := range issues {
		fields = append(fields, gin.H{"field": issue.Field, "message": issue.Message})
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
}

// respondError maps store errors onto HTTP statuses. resource names the
// entity for 404 bodies and logs.
func (h *Handler) respondError(c *gin.Context, err error, resource string) {
	switch {
	case errors.Is(err, errors.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
	case errors.Is(err, errors.ErrDuplicateKey):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("resource", resource).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
