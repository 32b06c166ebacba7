package extract

import (
	"encoding/json"
	"math"
	"strings"

	"propertydesk/internal/model"
)

// ExtractedProperty is the validated listing returned by the model.
// Optional fields are nil when the model did not provide them.
type ExtractedProperty struct {
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Surface     float64 `json:"surface"`
	Bedrooms    *int    `json:"bedrooms,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ParseRecord decodes a JSON object and validates it.
func ParseRecord(block string) (*ExtractedProperty, error) {
	record, _, err := parseRecord(block)
	return record, err
}

func parseRecord(block string) (*ExtractedProperty, []string, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return nil, nil, ErrMalformedOutput
	}
	return validate(raw)
}

// Validate checks the required fields in a fixed order and reports only the
// first violation. Price and surface must be JSON numbers; numeric strings
// are rejected.
func Validate(raw map[string]interface{}) (*ExtractedProperty, error) {
	record, _, err := validate(raw)
	return record, err
}

// validate also names the optional fields that were present but unusable and
// therefore left out of the record.
func validate(raw map[string]interface{}) (*ExtractedProperty, []string, error) {
	address, ok := nonEmptyString(raw["address"])
	if !ok {
		return nil, nil, &ValidationError{Field: "address", Message: "address not found"}
	}
	city, ok := nonEmptyString(raw["city"])
	if !ok {
		return nil, nil, &ValidationError{Field: "city", Message: "city not found"}
	}
	propertyType, _ := raw["type"].(string)
	if !model.IsValidPropertyType(propertyType) {
		return nil, nil, &ValidationError{Field: "type", Message: "invalid property type"}
	}
	price, ok := positiveNumber(raw["price"])
	if !ok {
		return nil, nil, &ValidationError{Field: "price", Message: "price not found or invalid"}
	}
	surface, ok := positiveNumber(raw["surface"])
	if !ok {
		return nil, nil, &ValidationError{Field: "surface", Message: "surface not found or invalid"}
	}

	record := &ExtractedProperty{
		Address: address,
		City:    city,
		Type:    propertyType,
		Price:   price,
		Surface: surface,
	}
	var dropped []string
	if n, ok := raw["bedrooms"].(float64); ok && n >= 0 && n == math.Trunc(n) {
		bedrooms := int(n)
		record.Bedrooms = &bedrooms
	} else if raw["bedrooms"] != nil {
		dropped = append(dropped, "bedrooms")
	}
	if d, ok := raw["description"].(string); ok && strings.TrimSpace(d) != "" {
		record.Description = &d
	} else if raw["description"] != nil {
		dropped = append(dropped, "description")
	}
	return record, dropped, nil
}

func nonEmptyString(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func positiveNumber(v interface{}) (float64, bool) {
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0, false
	}
	return n, true
}
