package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"propertydesk/internal/model"
	"propertydesk/internal/pkg/pdfextract"
	"propertydesk/internal/pkg/spreadsheet"
)

// ScrapeJob is one queued URL import.
type ScrapeJob struct {
	UserID string `json:"user_id"`
	URL    string `json:"url"`
}

type ScrapeJobPublisher interface {
	PublishScrapeJob(ctx context.Context, job ScrapeJob) error
}

type RowError struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type ImportResult struct {
	Created int        `json:"created"`
	Errors  []RowError `json:"errors"`
}

const maxBatchURLs = 50

// ImportSpreadsheet stores every valid row of a .csv/.xlsx upload with
// source=csv. Invalid rows are reported and skipped; valid rows are written in
// one batch.
func (s *PropertyService) ImportSpreadsheet(ctx context.Context, userID, filename string, r io.Reader) (*ImportResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	rows, err := spreadsheet.Read(filename, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	result := &ImportResult{Errors: []RowError{}}
	properties := make([]model.Property, 0, len(rows))
	for _, row := range rows {
		input, err := rowToInput(userID, row)
		if err == nil {
			var property *model.Property
			property, err = buildProperty(input)
			if err == nil {
				properties = append(properties, *property)
				continue
			}
		}
		rowErr := RowError{Line: row.Line, Message: err.Error()}
		var fieldErr *FieldError
		if errors.As(err, &fieldErr) {
			rowErr.Field = fieldErr.Field
		}
		result.Errors = append(result.Errors, rowErr)
	}

	if len(properties) > 0 {
		if err := s.store.CreateBatch(ctx, properties); err != nil {
			s.logger.Error("persist imported properties failed", zap.String("user_id", userID), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
		}
	}
	result.Created = len(properties)
	return result, nil
}

// ImportPDF reads the text layer of a listing brochure and runs it through
// the extraction prompt.
func (s *PropertyService) ImportPDF(ctx context.Context, userID string, r io.Reader) (*model.Property, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	text, err := pdfextract.ExtractText(r)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable pdf: %v", ErrInvalidInput, err)
	}
	return s.ImportPDFText(ctx, userID, text)
}

// EnqueueScrapes publishes one job per distinct non-empty URL and returns how
// many were queued.
func (s *PropertyService) EnqueueScrapes(ctx context.Context, userID string, urls []string) (int, error) {
	if userID == "" {
		return 0, ErrUnauthorized
	}
	seen := make(map[string]struct{}, len(urls))
	jobs := make([]ScrapeJob, 0, len(urls))
	for _, raw := range urls {
		url := strings.TrimSpace(raw)
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		jobs = append(jobs, ScrapeJob{UserID: userID, URL: url})
	}
	if len(jobs) == 0 || len(jobs) > maxBatchURLs {
		return 0, ErrInvalidInput
	}
	if s.publisher == nil {
		return 0, ErrEnqueueFailed
	}

	for i, job := range jobs {
		if err := s.publisher.PublishScrapeJob(ctx, job); err != nil {
			s.logger.Error("publish scrape job failed", zap.String("url", job.URL), zap.Error(err))
			return i, fmt.Errorf("%w: %v", ErrEnqueueFailed, err)
		}
	}
	return len(jobs), nil
}

func rowToInput(userID string, row spreadsheet.Row) (CreatePropertyInput, error) {
	input := CreatePropertyInput{
		UserID:  userID,
		Address: row.Fields["address"],
		City:    row.Fields["city"],
		Type:    strings.ToLower(strings.TrimSpace(row.Fields["type"])),
		Source:  model.SourceCSV,
	}

	price, err := parseDecimal(row.Fields["price"])
	if err != nil {
		return input, &FieldError{Field: "price", Message: "price must be a positive number"}
	}
	input.Price = price

	surface, err := parseDecimal(row.Fields["surface"])
	if err != nil {
		return input, &FieldError{Field: "surface", Message: "surface must be a positive number"}
	}
	input.Surface = surface

	if raw := strings.TrimSpace(row.Fields["bedrooms"]); raw != "" {
		bedrooms, err := strconv.Atoi(raw)
		if err != nil {
			return input, &FieldError{Field: "bedrooms", Message: "bedrooms must be a whole number"}
		}
		input.Bedrooms = &bedrooms
	}
	if description := strings.TrimSpace(row.Fields["description"]); description != "" {
		input.Description = &description
	}
	return input, nil
}

// parseDecimal accepts "250000", "250 000" and "72,5".
func parseDecimal(raw string) (float64, error) {
	cleaned := strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, ErrInvalidInput
	}
	return strconv.ParseFloat(cleaned, 64)
}
