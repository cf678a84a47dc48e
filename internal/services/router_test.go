package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/cache"
	"github.com/neuralblades/platinum-V1-sub000/internal/config"
	"github.com/neuralblades/platinum-V1-sub000/internal/database"
	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	"github.com/neuralblades/platinum-V1-sub000/internal/storage"
	"github.com/neuralblades/platinum-V1-sub000/internal/util"
)

func newTestServer(t *testing.T) (*gorm.DB, http.Handler) {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Uploads.Dir = t.TempDir()

	db, err := database.OpenTest()
	require.NoError(t, err)

	uploads, err := storage.NewLocal(cfg.Uploads.Dir)
	require.NoError(t, err)

	handler := NewRouter(cfg, RouterDeps{
		DB:      db,
		Cache:   cache.NewMemory(cache.DefaultMaxEntries),
		Uploads: uploads,
	})
	return db, handler
}

func createUser(t *testing.T, db *gorm.DB, email, role string) (*domain.User, string) {
	t.Helper()

	hashed, err := util.HashPassword("password123")
	require.NoError(t, err)

	user := &domain.User{
		Name:           "Test User",
		Email:          email,
		HashedPassword: hashed,
		Role:           role,
		IsActive:       true,
	}
	require.NoError(t, db.Create(user).Error)

	token, err := util.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func seedProperty(t *testing.T, db *gorm.DB, title string, mutate func(*domain.Property)) *domain.Property {
	t.Helper()

	property := &domain.Property{
		Title:        title,
		Description:  "A test listing",
		Price:        1_500_000,
		Location:     "Dubai Marina",
		City:         "Dubai",
		PropertyType: "apartment",
		Status:       domain.PropertyStatusForSale,
		Bedrooms:     2,
		Bathrooms:    2,
		Area:         1200,
		MainImage:    "/uploads/test.jpg",
		IsPublished:  true,
	}
	if mutate != nil {
		mutate(property)
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

func TestUnknownRouteReturns404(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/nope", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, "ok", envelope["status"])
	require.Equal(t, "connected", envelope["database"])
}
