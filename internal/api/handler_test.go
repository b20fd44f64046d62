package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AHLJvanderPlas/Podfy-app/internal/brand"
	"github.com/AHLJvanderPlas/Podfy-app/internal/config"
	"github.com/AHLJvanderPlas/Podfy-app/internal/intake"
	"github.com/AHLJvanderPlas/Podfy-app/internal/mail"
	"github.com/AHLJvanderPlas/Podfy-app/internal/model"
	pkgerrors "github.com/AHLJvanderPlas/Podfy-app/pkg/errors"
)

type memRepo struct {
	records map[string]*model.Transaction
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[string]*model.Transaction)}
}

func (m *memRepo) Upsert(_ context.Context, rec *model.Transaction) error {
	cp := *rec
	if existing, ok := m.records[rec.RecordID]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.CreatedAt = time.Now()
	}
	m.records[rec.RecordID] = &cp
	return nil
}

func (m *memRepo) SetStatus(_ context.Context, recordID string, status model.ProcessStatus) error {
	if rec, ok := m.records[recordID]; ok {
		rec.ProcessStatus = status
	}
	return nil
}

func (m *memRepo) Finalize(_ context.Context, recordID string, shouldDeliver bool) error {
	if !shouldDeliver {
		return nil
	}
	if rec, ok := m.records[recordID]; ok {
		rec.ProcessStatus = model.StatusDelivered
	}
	return nil
}

func (m *memRepo) Get(_ context.Context, recordID string) (*model.Transaction, error) {
	rec, ok := m.records[recordID]
	if !ok {
		return nil, pkgerrors.ErrRecordNotFound
	}
	return rec, nil
}

func (m *memRepo) Exists(_ context.Context, recordID string) (bool, error) {
	_, ok := m.records[recordID]
	return ok, nil
}

func (m *memRepo) ListByDate(_ context.Context, date string) ([]model.Transaction, error) {
	var recs []model.Transaction
	for _, rec := range m.records {
		if rec.UploadDate == date {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}

type memStorage struct {
	objects map[string][]byte
	fail    bool
}

func (m *memStorage) Put(_ context.Context, key string, data []byte, _ string, _ map[string]string) error {
	if m.fail {
		return errors.New("bucket unreachable")
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = data
	return nil
}

func (m *memStorage) Get(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (m *memStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

type okNotifier struct{}

func (okNotifier) Notify(_ context.Context, _ *model.Transaction, _ brand.Brand, email string, _ *mail.Attachment) mail.Outcomes {
	return mail.Outcomes{
		Staff:    mail.Outcome{Required: true, Sent: true},
		Uploader: mail.Outcome{Required: email != "", Sent: email != ""},
	}
}

type noopStamper struct{}

func (noopStamper) StampPDF(data []byte, _ brand.Brand, _ string) []byte { return data }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "podfy"
	cfg.App.Version = "test"
	cfg.Intake.MaxUploadBytes = 25 << 20
	cfg.Intake.DefaultTimezone = "UTC"
	cfg.Intake.HoneypotField = "website"
	cfg.Intake.GeoLatHeader = "CloudFront-Viewer-Latitude"
	cfg.Intake.GeoLonHeader = "CloudFront-Viewer-Longitude"
	cfg.Brands = []config.BrandConfig{
		{Slug: "acme", DisplayName: "Acme Logistics", Recipients: []string{"pod@acme.example"}},
	}
	return cfg
}

func testRouter(repo *memRepo, store *memStorage) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	orchestrator := intake.NewOrchestrator(cfg, repo, store, okNotifier{}, brand.NewRegistry(cfg), noopStamper{})
	handler := NewHandler(repo, orchestrator, cfg)

	router := gin.New()
	router.Use(RequestIDMiddleware())
	SetupRoutes(router, handler)
	return router
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, data := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func jpegPayload() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
}

func TestUploadHappyPath(t *testing.T) {
	repo := newMemRepo()
	store := &memStorage{}
	router := testRouter(repo, store)

	body, contentType := multipartBody(t,
		map[string]string{
			"brand":    "acme",
			"lat":      "52.37",
			"lon":      "4.90",
			"accuracy": "15",
			"email":    "driver@example.com",
		},
		map[string][]byte{"pod.jpg": jpegPayload()},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pods", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []model.FileResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Accepted)
	assert.NotEmpty(t, resp.Results[0].RecordID)

	rec := repo.records[resp.Results[0].RecordID]
	require.NotNil(t, rec)
	assert.Equal(t, model.SourceGPS, rec.PresentedLabel)
	assert.Equal(t, model.StatusDelivered, rec.ProcessStatus)
}

func TestUploadHoneypotTrips(t *testing.T) {
	router := testRouter(newMemRepo(), &memStorage{})

	body, contentType := multipartBody(t,
		map[string]string{"brand": "acme", "website": "http://spam.example"},
		map[string][]byte{"pod.jpg": jpegPayload()},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pods", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadNoFiles(t *testing.T) {
	router := testRouter(newMemRepo(), &memStorage{})

	body, contentType := multipartBody(t, map[string]string{"brand": "acme"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pods", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadAllRejected(t *testing.T) {
	router := testRouter(newMemRepo(), &memStorage{})

	body, contentType := multipartBody(t,
		map[string]string{"brand": "acme"},
		map[string][]byte{"pod.jpg": []byte("definitely not an image")},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pods", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetTransaction(t *testing.T) {
	repo := newMemRepo()
	require.NoError(t, repo.Upsert(context.Background(), &model.Transaction{
		RecordID:   "7XK2M9PQ",
		GroupID:    "7XK2M9PQ",
		BrandSlug:  "acme",
		UploadDate: "2026-08-25",
	}))
	router := testRouter(repo, &memStorage{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pods/7XK2M9PQ", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var rec model.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "acme", rec.BrandSlug)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/pods/MISSING", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNetworkCoordinatesFromEdgeHeaders(t *testing.T) {
	repo := newMemRepo()
	store := &memStorage{}
	router := testRouter(repo, store)

	body, contentType := multipartBody(t,
		map[string]string{"brand": "acme"},
		map[string][]byte{"pod.jpg": jpegPayload()},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pods", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("CloudFront-Viewer-Latitude", "52.0")
	req.Header.Set("CloudFront-Viewer-Longitude", "5.0")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []model.FileResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rec := repo.records[resp.Results[0].RecordID]
	require.NotNil(t, rec)

	assert.Equal(t, model.SourceNetwork, rec.PresentedLabel)
	require.NotNil(t, rec.Location.Chosen)
	require.NotNil(t, rec.Location.Chosen.Accuracy)
	assert.Equal(t, 50000.0, *rec.Location.Chosen.Accuracy)
}
