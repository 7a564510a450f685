package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"weld-inspection-db/internal/config"
	"weld-inspection-db/internal/db"
	"weld-inspection-db/internal/model"
	"weld-inspection-db/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []model.ImportJob
	err  error
}

func (q *fakeQueue) EnqueueImportJob(ctx context.Context, job model.ImportJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Pending(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.jobs)), nil
}

type testAPI struct {
	router  *gin.Engine
	handler *Handler
	store   *db.MemoryStore
	objects *storage.MemoryStorage
	queue   *fakeQueue
	token   string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cfg, err := config.Parse([]byte("app:\n  version: test\nauth:\n  jwt_secret: " + testSecret + "\n"))
	require.NoError(t, err)

	store := db.NewMemoryStore()
	objects := storage.NewMemoryStorage()
	queue := &fakeQueue{}
	handler := NewHandler(store, store, store, objects, queue, cfg)

	token, err := IssueToken(testSecret, "inspector", time.Hour)
	require.NoError(t, err)

	return &testAPI{
		router:  NewRouter(handler, nil, cfg.Auth.JWTSecret),
		handler: handler,
		store:   store,
		objects: objects,
		queue:   queue,
		token:   token,
	}
}

func (a *testAPI) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if a.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) json(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return a.do(t, req)
}

func (a *testAPI) multipart(t *testing.T, path, field, filename string, content []byte, values map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return a.do(t, req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (a *testAPI) createWeld(t *testing.T, body gin.H) model.WeldRecord {
	t.Helper()
	rec := a.json(t, http.MethodPost, "/api/v1/welds", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var w model.WeldRecord
	decode(t, rec, &w)
	return w
}

func TestHealthIsPublic(t *testing.T) {
	a := newTestAPI(t)
	a.token = ""

	rec := a.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "weld-inspection-db", body["service"])
	assert.Equal(t, float64(0), body["pending_imports"])

	a.handler.AddHealthCheck("database", func(context.Context) error { return fmt.Errorf("connection refused") })
	rec = a.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestAuthMiddleware(t *testing.T) {
	a := newTestAPI(t)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"garbage token":  "Bearer not-a-jwt",
	}
	other, err := IssueToken("other-secret", "x", time.Hour)
	require.NoError(t, err)
	cases["wrong secret"] = "Bearer " + other
	expired, err := IssueToken(testSecret, "x", -time.Minute)
	require.NoError(t, err)
	cases["expired"] = "Bearer " + expired

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/welds", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			a.router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	rec := a.json(t, http.MethodGet, "/api/v1/welds", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWeldCRUD(t *testing.T) {
	a := newTestAPI(t)

	w := a.createWeld(t, gin.H{"section": " S1 ", "weld_id4": "W1", "report": 5, "date": "2024-03-14", "side": "A"})
	assert.Equal(t, "S1", w.Section)
	assert.Equal(t, model.DefaultWPSNumber, w.WPSNumber)
	require.NotNil(t, w.Date)
	assert.Equal(t, "2024-03-14", w.Date.Format("2006-01-02"))

	rec := a.json(t, http.MethodPost, "/api/v1/welds", gin.H{"section": "S1", "weld_id4": "W1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	other := a.createWeld(t, gin.H{"section": "S1", "weld_id4": "W2", "side": "B"})

	rec = a.json(t, http.MethodGet, fmt.Sprintf("/api/v1/welds/%d", w.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.json(t, http.MethodPut, fmt.Sprintf("/api/v1/welds/%d", w.ID), gin.H{"section": "S1", "weld_id4": "W1", "report": 6})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.WeldRecord
	decode(t, rec, &updated)
	assert.Equal(t, 6, updated.Report)
	assert.Equal(t, "", updated.Side, "PUT replaces every field")
	assert.True(t, w.CreatedAt.Equal(updated.CreatedAt))

	rec = a.json(t, http.MethodPut, fmt.Sprintf("/api/v1/welds/%d", other.ID), gin.H{"section": "S1", "weld_id4": "W1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.json(t, http.MethodDelete, fmt.Sprintf("/api/v1/welds/%d", w.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.json(t, http.MethodGet, fmt.Sprintf("/api/v1/welds/%d", w.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.json(t, http.MethodDelete, fmt.Sprintf("/api/v1/welds/%d", w.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.json(t, http.MethodGet, "/api/v1/welds/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateWeldValidation(t *testing.T) {
	a := newTestAPI(t)

	rec := a.json(t, http.MethodPost, "/api/v1/welds", gin.H{
		"section":   "",
		"date":      "03/14/2024",
		"pass_fail": strings.Repeat("P", 21),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	decode(t, rec, &body)
	var fields []string
	for _, f := range body.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"section", "date", "pass_fail"}, fields)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/welds", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, a.do(t, req).Code)
	assert.Equal(t, 0, a.store.Count())
}

func TestListWelds(t *testing.T) {
	a := newTestAPI(t)
	a.createWeld(t, gin.H{"section": "S1", "weld_id4": "W1", "side": "A", "inspector": "Jane Roe", "report": 5})
	a.createWeld(t, gin.H{"section": "S1", "weld_id4": "W2", "side": "B", "inspector": "John Doe", "report": 5})
	a.createWeld(t, gin.H{"section": "S2", "weld_id4": "W1", "side": "A", "inspector": "Jane Smith", "report": 6})

	var list model.WeldListResponse
	rec := a.json(t, http.MethodGet, "/api/v1/welds?side=A&q=jane", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &list)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, model.DefaultListLimit, list.Limit)

	rec = a.json(t, http.MethodGet, "/api/v1/welds?report=5&limit=1&offset=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = model.WeldListResponse{}
	decode(t, rec, &list)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "W2", list.Items[0].WeldID4)

	rec = a.json(t, http.MethodGet, "/api/v1/welds?limit=9999", nil)
	list = model.WeldListResponse{}
	decode(t, rec, &list)
	assert.Equal(t, model.MaxListLimit, list.Limit)

	assert.Equal(t, http.StatusBadRequest, a.json(t, http.MethodGet, "/api/v1/welds?report=five", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.json(t, http.MethodGet, "/api/v1/welds?limit=x", nil).Code)
}

func TestPhotos(t *testing.T) {
	a := newTestAPI(t)
	w := a.createWeld(t, gin.H{"section": "S1", "weld_id4": "W1", "report": 5})

	rec := a.multipart(t, fmt.Sprintf("/api/v1/welds/%d/photos", w.ID), "photo", "crack.JPG", []byte("jpeg-bytes"),
		map[string]string{"caption": "toe crack"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var photo model.WeldPhoto
	decode(t, rec, &photo)
	assert.Equal(t, 5, photo.ReportNumber, "report number defaults to the weld's report")
	assert.Equal(t, "toe crack", photo.Caption)
	assert.True(t, strings.HasPrefix(photo.Photo, "weld_photos/"))
	assert.True(t, strings.HasSuffix(photo.Photo, ".jpg"))

	rec = a.multipart(t, fmt.Sprintf("/api/v1/welds/%d/photos", w.ID), "photo", "notes.txt", []byte("x"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.multipart(t, fmt.Sprintf("/api/v1/welds/%d/photos", w.ID), "photo", "a.png", []byte("x"),
		map[string]string{"report_number": "seven"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.multipart(t, "/api/v1/welds/999/photos", "photo", "a.png", []byte("x"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.json(t, http.MethodGet, fmt.Sprintf("/api/v1/welds/%d/photos", w.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []model.WeldPhoto `json:"items"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Items, 1)

	rec = a.json(t, http.MethodGet, fmt.Sprintf("/api/v1/photos/%d/content", photo.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

	rec = a.json(t, http.MethodDelete, fmt.Sprintf("/api/v1/welds/%d", w.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, a.objects.Keys(), "deleting a weld removes its photo objects")
	rec = a.json(t, http.MethodGet, fmt.Sprintf("/api/v1/photos/%d/content", photo.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePhoto(t *testing.T) {
	a := newTestAPI(t)
	w := a.createWeld(t, gin.H{"section": "S1", "weld_id4": "W1"})

	rec := a.multipart(t, fmt.Sprintf("/api/v1/welds/%d/photos", w.ID), "photo", "a.png", []byte("png"),
		map[string]string{"report_number": "3"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var photo model.WeldPhoto
	decode(t, rec, &photo)
	assert.Equal(t, 3, photo.ReportNumber)

	rec = a.json(t, http.MethodDelete, fmt.Sprintf("/api/v1/photos/%d", photo.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, a.objects.Keys())
	rec = a.json(t, http.MethodDelete, fmt.Sprintf("/api/v1/photos/%d", photo.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadImport(t *testing.T) {
	a := newTestAPI(t)

	rec := a.multipart(t, "/api/v1/imports", "file", "welds.xlsx", []byte("xlsx-bytes"), map[string]string{"sheet": "Sheet2"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var status model.ImportStatusResponse
	decode(t, rec, &status)
	assert.Equal(t, "UPLOADED", status.Status)
	assert.Equal(t, "welds.xlsx", status.FileName)

	require.Len(t, a.queue.jobs, 1)
	job := a.queue.jobs[0]
	assert.Equal(t, status.FileID, job.FileID)
	assert.Equal(t, "Sheet2", job.Sheet)
	ok, err := a.objects.Exists(context.Background(), job.StoragePath)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, a.store.UpdateFileStatus(context.Background(), job.FileID, model.FileStatusImported,
		model.ImportCounts{Created: 2, Updated: 1}, nil))
	rec = a.json(t, http.MethodGet, fmt.Sprintf("/api/v1/imports/%d", job.FileID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &status)
	assert.Equal(t, "IMPORTED", status.Status)
	assert.Equal(t, 3, status.Total)

	assert.Equal(t, http.StatusNotFound, a.json(t, http.MethodGet, "/api/v1/imports/999", nil).Code)
	rec = a.multipart(t, "/api/v1/imports", "file", "welds.csv", []byte("a,b"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadImportQueueFailure(t *testing.T) {
	a := newTestAPI(t)
	a.queue.err = fmt.Errorf("redis down")

	rec := a.multipart(t, "/api/v1/imports", "file", "welds.xlsx", []byte("xlsx-bytes"), nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	file, err := a.store.GetFile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.FileStatusFailed, file.Status)
	require.NotNil(t, file.ErrorMessage)
	assert.Contains(t, *file.ErrorMessage, "redis down")
}
