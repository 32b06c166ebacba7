package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertydesk/internal/app"
	"propertydesk/internal/extract"
	"propertydesk/internal/model"
)

type stubProperties struct {
	err         error
	created     app.CreatePropertyInput
	updated     app.UpdatePropertyInput
	importName  string
	importBody  string
	queuedURLs  []string
	scannedURL  string
	deletedID   string
	listResult  []model.Property
	getProperty *model.Property
}

func (s *stubProperties) List(_ context.Context, _ string) ([]model.Property, error) {
	return s.listResult, s.err
}

func (s *stubProperties) Get(_ context.Context, _, _ string) (*model.Property, error) {
	return s.getProperty, s.err
}

func (s *stubProperties) Create(_ context.Context, input app.CreatePropertyInput) (*model.Property, error) {
	s.created = input
	if s.err != nil {
		return nil, s.err
	}
	return &model.Property{ID: "p1", UserID: input.UserID, City: input.City}, nil
}

func (s *stubProperties) Update(_ context.Context, input app.UpdatePropertyInput) (*model.Property, error) {
	s.updated = input
	if s.err != nil {
		return nil, s.err
	}
	return &model.Property{ID: input.ID}, nil
}

func (s *stubProperties) Delete(_ context.Context, _, id string) error {
	s.deletedID = id
	return s.err
}

func (s *stubProperties) ScrapeAndCreate(_ context.Context, userID, url string) (*model.Property, error) {
	s.scannedURL = url
	if s.err != nil {
		return nil, s.err
	}
	return &model.Property{ID: "p2", UserID: userID, Source: model.SourceURL, SourceURL: &url}, nil
}

func (s *stubProperties) ImportSpreadsheet(_ context.Context, _, filename string, r io.Reader) (*app.ImportResult, error) {
	raw, _ := io.ReadAll(r)
	s.importName = filename
	s.importBody = string(raw)
	if s.err != nil {
		return nil, s.err
	}
	return &app.ImportResult{Created: 1, Errors: []app.RowError{}}, nil
}

func (s *stubProperties) ImportPDF(_ context.Context, _ string, _ io.Reader) (*model.Property, error) {
	return &model.Property{ID: "p3", Source: model.SourcePDF}, s.err
}

func (s *stubProperties) EnqueueScrapes(_ context.Context, _ string, urls []string) (int, error) {
	s.queuedURLs = urls
	return len(urls), s.err
}

func propertyRouter(svc PropertyService, userID string) *gin.Engine {
	h := NewPropertyHandler(svc)
	r := gin.New()
	r.Use(asUser(userID))
	r.GET("/api/properties", h.List)
	r.POST("/api/properties", h.Create)
	r.POST("/api/properties/scan", h.Scan)
	r.POST("/api/properties/import", h.ImportSpreadsheet)
	r.PATCH("/api/properties/:id", h.Update)
	r.DELETE("/api/properties/:id", h.Delete)
	r.POST("/api/scrape-property/batch", h.EnqueueScrapes)
	return r
}

func TestCreateIgnoresClientOwner(t *testing.T) {
	svc := &stubProperties{}
	rec, body := doJSON(t, propertyRouter(svc, "u1"), http.MethodPost, "/api/properties",
		`{"user_id":"someone-else","address":"1 Rue A","city":"Lyon","type":"house","price":10,"surface":20}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u1", svc.created.UserID)
	assert.Equal(t, "u1", body["data"].(map[string]interface{})["user_id"])
}

func TestListReturnsEmptyArray(t *testing.T) {
	rec, body := doJSON(t, propertyRouter(&stubProperties{}, "u1"), http.MethodGet, "/api/properties", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["data"])
}

func TestPropertyErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   float64
	}{
		{name: "field", err: &app.FieldError{Field: "price", Message: "price must be a positive number"}, status: http.StatusBadRequest, code: 40003},
		{name: "not found", err: app.ErrNotFound, status: http.StatusNotFound, code: 40400},
		{name: "fetch", err: &extract.FetchError{Status: 403}, status: http.StatusBadGateway, code: 50200},
		{name: "validation", err: &extract.ValidationError{Field: "city", Message: "city not found"}, status: http.StatusUnprocessableEntity, code: 40004},
		{name: "persist", err: app.ErrPersistFailed, status: http.StatusInternalServerError, code: 50002},
		{name: "llm", err: app.ErrLLMConfig, status: http.StatusInternalServerError, code: 50001},
		{name: "other", err: errors.New("boom"), status: http.StatusInternalServerError, code: 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := doJSON(t, propertyRouter(&stubProperties{err: tt.err}, "u1"), http.MethodPost, "/api/properties/scan", `{"url":"https://x"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestUpdatePassesOnlyProvidedFields(t *testing.T) {
	svc := &stubProperties{}
	rec, _ := doJSON(t, propertyRouter(svc, "u1"), http.MethodPatch, "/api/properties/p9", `{"city":"Nice"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p9", svc.updated.ID)
	require.NotNil(t, svc.updated.City)
	assert.Equal(t, "Nice", *svc.updated.City)
	assert.Nil(t, svc.updated.Price)
}

func TestDeleteAndBatch(t *testing.T) {
	svc := &stubProperties{}
	rec, _ := doJSON(t, propertyRouter(svc, "u1"), http.MethodDelete, "/api/properties/p4", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p4", svc.deletedID)

	rec, body := doJSON(t, propertyRouter(svc, "u1"), http.MethodPost, "/api/scrape-property/batch", `{"urls":["https://a","https://b"]}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, float64(2), body["data"].(map[string]interface{})["queued"])

	rec, _ = doJSON(t, propertyRouter(svc, "u1"), http.MethodPost, "/api/scrape-property/batch", `{"urls":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportSpreadsheetUpload(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "listings.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("address,city\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	svc := &stubProperties{}
	req := httptest.NewRequest(http.MethodPost, "/api/properties/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	propertyRouter(svc, "u1").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "listings.csv", svc.importName)
	assert.Equal(t, "address,city\n", svc.importBody)
}

func TestImportSpreadsheetWithoutFile(t *testing.T) {
	rec, body := doJSON(t, propertyRouter(&stubProperties{}, "u1"), http.MethodPost, "/api/properties/import", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "file is required", body["error"])
}
