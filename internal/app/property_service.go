package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"propertydesk/internal/ai"
	"propertydesk/internal/extract"
	"propertydesk/internal/model"
)

type PropertyStore interface {
	Create(ctx context.Context, property *model.Property) error
	CreateBatch(ctx context.Context, properties []model.Property) error
	ListByUserID(ctx context.Context, userID string) ([]model.Property, error)
	GetByIDAndUserID(ctx context.Context, id, userID string) (*model.Property, error)
	Update(ctx context.Context, id, userID string, updates map[string]interface{}) error
	DeleteByIDAndUserID(ctx context.Context, id, userID string) (bool, error)
}

type Extractor interface {
	Extract(ctx context.Context, url string) (*extract.ExtractedProperty, error)
	ExtractContent(ctx context.Context, content string) (*extract.ExtractedProperty, error)
}

// FieldError rejects one listing field supplied by a caller.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func (e *FieldError) Unwrap() error { return ErrInvalidInput }

type PropertyService struct {
	store     PropertyStore
	extractor Extractor
	publisher ScrapeJobPublisher
	logger    *zap.Logger
}

type CreatePropertyInput struct {
	UserID      string
	Address     string
	City        string
	Type        string
	Price       float64
	Surface     float64
	Bedrooms    *int
	Description *string
	Source      string
	SourceURL   *string
}

// UpdatePropertyInput only touches the non-nil fields.
type UpdatePropertyInput struct {
	UserID      string
	ID          string
	Address     *string
	City        *string
	Type        *string
	Price       *float64
	Surface     *float64
	Bedrooms    *int
	Description *string
	SourceURL   *string
}

func NewPropertyService(store PropertyStore, extractor Extractor, logger *zap.Logger) *PropertyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyService{store: store, extractor: extractor, logger: logger}
}

// WithPublisher enables EnqueueScrapes.
func (s *PropertyService) WithPublisher(publisher ScrapeJobPublisher) *PropertyService {
	s.publisher = publisher
	return s
}

func (s *PropertyService) List(ctx context.Context, userID string) ([]model.Property, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.store.ListByUserID(ctx, userID)
}

func (s *PropertyService) Get(ctx context.Context, userID, id string) (*model.Property, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	property, err := s.store.GetByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, ErrNotFound
	}
	return property, nil
}

// Create stores a listing owned by input.UserID. Any owner the client tried to
// supply is ignored by construction.
func (s *PropertyService) Create(ctx context.Context, input CreatePropertyInput) (*model.Property, error) {
	if input.UserID == "" {
		return nil, ErrUnauthorized
	}
	property, err := buildProperty(input)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

func (s *PropertyService) Update(ctx context.Context, input UpdatePropertyInput) (*model.Property, error) {
	if input.UserID == "" {
		return nil, ErrUnauthorized
	}
	existing, err := s.store.GetByIDAndUserID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	updates := map[string]interface{}{}
	if input.Address != nil {
		if strings.TrimSpace(*input.Address) == "" {
			return nil, &FieldError{Field: "address", Message: "address is required"}
		}
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.City != nil {
		if strings.TrimSpace(*input.City) == "" {
			return nil, &FieldError{Field: "city", Message: "city is required"}
		}
		updates["city"] = strings.TrimSpace(*input.City)
	}
	if input.Type != nil {
		if !model.IsValidPropertyType(*input.Type) {
			return nil, &FieldError{Field: "type", Message: "type must be apartment or house"}
		}
		updates["type"] = *input.Type
	}
	if input.Price != nil {
		if !isPositive(*input.Price) {
			return nil, &FieldError{Field: "price", Message: "price must be a positive number"}
		}
		updates["price"] = *input.Price
	}
	if input.Surface != nil {
		if !isPositive(*input.Surface) {
			return nil, &FieldError{Field: "surface", Message: "surface must be a positive number"}
		}
		updates["surface"] = *input.Surface
	}
	if input.Bedrooms != nil {
		if *input.Bedrooms < 0 {
			return nil, &FieldError{Field: "bedrooms", Message: "bedrooms cannot be negative"}
		}
		updates["bedrooms"] = *input.Bedrooms
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.SourceURL != nil {
		updates["source_url"] = *input.SourceURL
	}

	if err := s.store.Update(ctx, input.ID, input.UserID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, input.UserID, input.ID)
}

func (s *PropertyService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	deleted, err := s.store.DeleteByIDAndUserID(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// Scrape runs the extraction pipeline without persisting anything.
func (s *PropertyService) Scrape(ctx context.Context, url string) (*extract.ExtractedProperty, error) {
	record, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return nil, normalizeExtractError(err)
	}
	return record, nil
}

// ScrapeAndCreate extracts a listing from url and stores it for userID with
// source=url. A storage failure is reported as ErrPersistFailed so callers can
// tell it apart from an extraction failure.
func (s *PropertyService) ScrapeAndCreate(ctx context.Context, userID, url string) (*model.Property, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	record, err := s.Scrape(ctx, url)
	if err != nil {
		return nil, err
	}
	sourceURL := strings.TrimSpace(url)
	return s.persistExtracted(ctx, userID, record, model.SourceURL, &sourceURL)
}

// ImportPDFText extracts a listing from brochure text and stores it with source=pdf.
func (s *PropertyService) ImportPDFText(ctx context.Context, userID, text string) (*model.Property, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidInput
	}
	record, err := s.extractor.ExtractContent(ctx, text)
	if err != nil {
		return nil, normalizeExtractError(err)
	}
	return s.persistExtracted(ctx, userID, record, model.SourcePDF, nil)
}

func (s *PropertyService) persistExtracted(
	ctx context.Context,
	userID string,
	record *extract.ExtractedProperty,
	source string,
	sourceURL *string,
) (*model.Property, error) {
	property := &model.Property{
		UserID:      userID,
		Address:     record.Address,
		City:        record.City,
		Type:        record.Type,
		Price:       record.Price,
		Surface:     record.Surface,
		Bedrooms:    record.Bedrooms,
		Description: record.Description,
		Source:      source,
		SourceURL:   sourceURL,
	}
	if err := s.store.Create(ctx, property); err != nil {
		s.logger.Error("persist extracted property failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return property, nil
}

func buildProperty(input CreatePropertyInput) (*model.Property, error) {
	address := strings.TrimSpace(input.Address)
	city := strings.TrimSpace(input.City)
	switch {
	case address == "":
		return nil, &FieldError{Field: "address", Message: "address is required"}
	case city == "":
		return nil, &FieldError{Field: "city", Message: "city is required"}
	case !model.IsValidPropertyType(input.Type):
		return nil, &FieldError{Field: "type", Message: "type must be apartment or house"}
	case !isPositive(input.Price):
		return nil, &FieldError{Field: "price", Message: "price must be a positive number"}
	case !isPositive(input.Surface):
		return nil, &FieldError{Field: "surface", Message: "surface must be a positive number"}
	case input.Bedrooms != nil && *input.Bedrooms < 0:
		return nil, &FieldError{Field: "bedrooms", Message: "bedrooms cannot be negative"}
	}

	source := input.Source
	if source == "" {
		source = model.SourceURL
	}
	if !model.IsValidSource(source) {
		return nil, &FieldError{Field: "source", Message: "source must be url, csv or pdf"}
	}

	return &model.Property{
		UserID:      input.UserID,
		Address:     address,
		City:        city,
		Type:        input.Type,
		Price:       input.Price,
		Surface:     input.Surface,
		Bedrooms:    input.Bedrooms,
		Description: input.Description,
		Source:      source,
		SourceURL:   input.SourceURL,
	}, nil
}

func normalizeExtractError(err error) error {
	if errors.Is(err, ai.ErrMissingAPIKey) {
		return ErrLLMConfig
	}
	return err
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
