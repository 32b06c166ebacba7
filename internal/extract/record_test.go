package extract

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordRequiredOnly(t *testing.T) {
	record, err := ParseRecord(`{"address":"1 Rue A","city":"Paris","type":"apartment","price":250000,"surface":45}`)
	require.NoError(t, err)

	out, err := json.Marshal(record)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Len(t, fields, 5)
	assert.NotContains(t, fields, "bedrooms")
	assert.NotContains(t, fields, "description")
	assert.Equal(t, 250000.0, record.Price)
	assert.Equal(t, 45.0, record.Surface)
}

func TestParseRecordOptionalFields(t *testing.T) {
	record, err := ParseRecord(`{"address":"2 Rue B","city":"Lyon","type":"house","price":410000.5,"surface":120,"bedrooms":4,"description":"Garden"}`)
	require.NoError(t, err)
	require.NotNil(t, record.Bedrooms)
	assert.Equal(t, 4, *record.Bedrooms)
	require.NotNil(t, record.Description)
	assert.Equal(t, "Garden", *record.Description)
}

func TestParseRecordDropsUnusableOptionals(t *testing.T) {
	record, err := ParseRecord(`{"address":"a","city":"c","type":"house","price":1,"surface":1,"bedrooms":"3","description":42}`)
	require.NoError(t, err)
	assert.Nil(t, record.Bedrooms)
	assert.Nil(t, record.Description)

	_, dropped, err := parseRecord(`{"address":"a","city":"c","type":"house","price":1,"surface":1,"bedrooms":-1}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"bedrooms"}, dropped)

	_, dropped, err = parseRecord(`{"address":"a","city":"c","type":"house","price":1,"surface":1,"bedrooms":3}`)
	require.NoError(t, err)
	assert.Empty(t, dropped)
}

func TestValidateOrderReportsFirstFailure(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		field string
	}{
		{name: "everything missing", json: `{}`, field: "address"},
		{name: "city missing", json: `{"address":"a","type":"villa"}`, field: "city"},
		{name: "bad type", json: `{"address":"a","city":"c","type":"villa","price":"x"}`, field: "type"},
		{name: "price string", json: `{"address":"a","city":"c","type":"house","price":"250000","surface":45}`, field: "price"},
		{name: "price zero", json: `{"address":"a","city":"c","type":"house","price":0,"surface":45}`, field: "price"},
		{name: "price missing", json: `{"address":"a","city":"c","type":"house","surface":"45"}`, field: "price"},
		{name: "surface string", json: `{"address":"a","city":"c","type":"house","price":1,"surface":"45"}`, field: "surface"},
		{name: "surface negative", json: `{"address":"a","city":"c","type":"house","price":1,"surface":-3}`, field: "surface"},
		{name: "address not a string", json: `{"address":12,"city":"c","type":"house","price":1,"surface":1}`, field: "address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord(tt.json)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestParseRecordMalformed(t *testing.T) {
	_, err := ParseRecord(`{"address": "a",}`)
	assert.True(t, errors.Is(err, ErrMalformedOutput))
}

func TestValidationMessagesAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, in := range []string{
		`{}`,
		`{"address":"a"}`,
		`{"address":"a","city":"c"}`,
		`{"address":"a","city":"c","type":"house"}`,
		`{"address":"a","city":"c","type":"house","price":1}`,
	} {
		_, err := ParseRecord(in)
		require.Error(t, err)
		assert.False(t, seen[err.Error()], err.Error())
		seen[err.Error()] = true
	}
}
