package extract

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"propertydesk/internal/ai"
)

const systemPrompt = "You are a real estate data extraction expert. Extract property information from HTML and format it as JSON. Only include fields where you're confident about the extracted information."

const userPromptTemplate = `
Extract real estate property information from this HTML content and return it in this exact JSON format:
{
  "address": "street address",
  "city": "city name",
  "type": "apartment or house",
  "price": number in euros,
  "surface": number in square meters,
  "bedrooms": number of bedrooms (optional),
  "description": "property description" (optional)
}

Only extract information you're confident about. Required fields are: address, city, type, price, and surface.

HTML Content:
`

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Completer interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

// ResultCache stores successful extractions per URL. Implementations must
// treat their own failures as misses.
type ResultCache interface {
	Get(ctx context.Context, url string) (*ExtractedProperty, bool)
	Set(ctx context.Context, url string, record *ExtractedProperty)
}

type Options struct {
	StripNoise bool
	Cache      ResultCache
}

type Pipeline struct {
	fetcher   Fetcher
	completer Completer
	chat      ai.ChatConfig
	opts      Options
	logger    *zap.Logger
}

func NewPipeline(fetcher Fetcher, completer Completer, chat ai.ChatConfig, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	chat.Temperature = ai.Float64(0)
	return &Pipeline{
		fetcher:   fetcher,
		completer: completer,
		chat:      chat,
		opts:      opts,
		logger:    logger,
	}
}

// Extract fetches url and turns the page into a validated listing.
func (p *Pipeline) Extract(ctx context.Context, url string) (*ExtractedProperty, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(p.chat.APIKey) == "" {
		return nil, ai.ErrMissingAPIKey
	}

	if p.opts.Cache != nil {
		if cached, ok := p.opts.Cache.Get(ctx, url); ok {
			p.logger.Debug("extraction cache hit", zap.String("url", url))
			return cached, nil
		}
	}

	page, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if p.opts.StripNoise {
		page = StripNoise(page)
	}

	record, err := p.ExtractContent(ctx, page)
	if err != nil {
		return nil, err
	}
	if p.opts.Cache != nil {
		p.opts.Cache.Set(ctx, url, record)
	}
	p.logger.Info("property extracted",
		zap.String("url", url),
		zap.String("city", record.City),
		zap.String("type", record.Type),
	)
	return record, nil
}

// ExtractContent runs the model over already-fetched content.
func (p *Pipeline) ExtractContent(ctx context.Context, content string) (*ExtractedProperty, error) {
	if strings.TrimSpace(p.chat.APIKey) == "" {
		return nil, ai.ErrMissingAPIKey
	}
	messages := []ai.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPromptTemplate + content + "\n"},
	}
	answer, err := p.completer.Complete(ctx, p.chat, messages)
	if err != nil {
		return nil, err
	}

	block, ok := FirstJSONObject(answer)
	if !ok {
		return nil, ErrNoStructuredOutput
	}
	record, dropped, err := parseRecord(block)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			p.logger.Info("model output rejected", zap.String("field", validationErr.Field))
		}
		return nil, err
	}
	if len(dropped) > 0 {
		p.logger.Debug("optional fields dropped", zap.Strings("fields", dropped))
	}
	return record, nil
}
