package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"propertydesk/internal/app"
	"propertydesk/internal/extract"
	"propertydesk/internal/model"
	"propertydesk/internal/transport/http/middleware"
	"propertydesk/internal/transport/http/response"
)

type PropertyService interface {
	List(ctx context.Context, userID string) ([]model.Property, error)
	Get(ctx context.Context, userID, id string) (*model.Property, error)
	Create(ctx context.Context, input app.CreatePropertyInput) (*model.Property, error)
	Update(ctx context.Context, input app.UpdatePropertyInput) (*model.Property, error)
	Delete(ctx context.Context, userID, id string) error
	ScrapeAndCreate(ctx context.Context, userID, url string) (*model.Property, error)
	ImportSpreadsheet(ctx context.Context, userID, filename string, r io.Reader) (*app.ImportResult, error)
	ImportPDF(ctx context.Context, userID string, r io.Reader) (*model.Property, error)
	EnqueueScrapes(ctx context.Context, userID string, urls []string) (int, error)
}

type PropertyHandler struct {
	propertyService PropertyService
}

// CreatePropertyRequest has no owner field; the owner is always the caller.
type CreatePropertyRequest struct {
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Surface     float64 `json:"surface"`
	Bedrooms    *int    `json:"bedrooms"`
	Description *string `json:"description"`
	Source      string  `json:"source"`
	SourceURL   *string `json:"source_url"`
}

type UpdatePropertyRequest struct {
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	Type        *string  `json:"type"`
	Price       *float64 `json:"price"`
	Surface     *float64 `json:"surface"`
	Bedrooms    *int     `json:"bedrooms"`
	Description *string  `json:"description"`
	SourceURL   *string  `json:"source_url"`
}

type ScanRequest struct {
	URL string `json:"url" binding:"required"`
}

type BatchScrapeRequest struct {
	URLs []string `json:"urls" binding:"required,min=1"`
}

func NewPropertyHandler(propertyService PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

func (h *PropertyHandler) List(c *gin.Context) {
	properties, err := h.propertyService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writePropertyError(c, err, "list properties failed")
		return
	}
	if properties == nil {
		properties = []model.Property{}
	}
	response.OK(c, properties)
}

func (h *PropertyHandler) Get(c *gin.Context) {
	property, err := h.propertyService.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writePropertyError(c, err, "fetch property failed")
		return
	}
	response.OK(c, property)
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), app.CreatePropertyInput{
		UserID:      middleware.UserID(c),
		Address:     req.Address,
		City:        req.City,
		Type:        req.Type,
		Price:       req.Price,
		Surface:     req.Surface,
		Bedrooms:    req.Bedrooms,
		Description: req.Description,
		Source:      req.Source,
		SourceURL:   req.SourceURL,
	})
	if err != nil {
		writePropertyError(c, err, "create property failed")
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{Success: true, Message: "ok", Data: property})
}

func (h *PropertyHandler) Update(c *gin.Context) {
	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	property, err := h.propertyService.Update(c.Request.Context(), app.UpdatePropertyInput{
		UserID:      middleware.UserID(c),
		ID:          c.Param("id"),
		Address:     req.Address,
		City:        req.City,
		Type:        req.Type,
		Price:       req.Price,
		Surface:     req.Surface,
		Bedrooms:    req.Bedrooms,
		Description: req.Description,
		SourceURL:   req.SourceURL,
	})
	if err != nil {
		writePropertyError(c, err, "update property failed")
		return
	}
	response.OK(c, property)
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	if err := h.propertyService.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writePropertyError(c, err, "delete property failed")
		return
	}
	response.OK(c, nil)
}

// Scan extracts a listing from a page and saves it for the caller.
func (h *PropertyHandler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "url is required")
		return
	}

	property, err := h.propertyService.ScrapeAndCreate(c.Request.Context(), middleware.UserID(c), req.URL)
	if err != nil {
		writePropertyError(c, err, "scan failed")
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{Success: true, Message: "ok", Data: property})
}

func (h *PropertyHandler) EnqueueScrapes(c *gin.Context) {
	var req BatchScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "urls is required")
		return
	}

	queued, err := h.propertyService.EnqueueScrapes(c.Request.Context(), middleware.UserID(c), req.URLs)
	if err != nil {
		writePropertyError(c, err, "enqueue failed")
		return
	}
	c.JSON(http.StatusAccepted, response.APIResponse{Success: true, Message: "ok", Data: gin.H{"queued": queued}})
}

func (h *PropertyHandler) ImportSpreadsheet(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file is required")
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "cannot read uploaded file")
		return
	}
	defer f.Close()

	result, err := h.propertyService.ImportSpreadsheet(c.Request.Context(), middleware.UserID(c), file.Filename, f)
	if err != nil {
		writePropertyError(c, err, "import failed")
		return
	}
	response.OK(c, result)
}

func (h *PropertyHandler) ImportPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file is required")
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "cannot read uploaded file")
		return
	}
	defer f.Close()

	property, err := h.propertyService.ImportPDF(c.Request.Context(), middleware.UserID(c), f)
	if err != nil {
		writePropertyError(c, err, "import failed")
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{Success: true, Message: "ok", Data: property})
}

func writePropertyError(c *gin.Context, err error, fallback string) {
	var fieldErr *app.FieldError
	var fetchErr *extract.FetchError
	switch {
	case errors.Is(err, app.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
	case errors.As(err, &fieldErr):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, fieldErr.Message)
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, extract.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.As(err, &fetchErr):
		response.Error(c, http.StatusBadGateway, response.CodeUpstream, fetchErr.Error())
	case extract.IsExtractionError(err):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeExtractionFailed, err.Error())
	case errors.Is(err, app.ErrLLMConfig):
		response.Error(c, http.StatusInternalServerError, response.CodeServerConfig, err.Error())
	case errors.Is(err, app.ErrPersistFailed):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodePersistFailed, app.ErrPersistFailed.Error())
	case errors.Is(err, app.ErrEnqueueFailed):
		_ = c.Error(err)
		response.Error(c, http.StatusServiceUnavailable, response.CodeEnqueueFailed, app.ErrEnqueueFailed.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
