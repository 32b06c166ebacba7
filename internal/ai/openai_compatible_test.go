package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSendsTemperatureAndParsesChoice(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(time.Second)
	out, err := client.Complete(context.Background(), ChatConfig{
		BaseURL:     srv.URL + "/v1/",
		APIKey:      "sk-test",
		Model:       "gpt-4",
		Temperature: Float64(0),
	}, []ChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, float64(0), got["temperature"])
	assert.Equal(t, "gpt-4", got["model"])
}

func TestCompleteOmitsTemperatureWhenUnset(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"x"}}]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAICompatibleClient(0).Complete(context.Background(), ChatConfig{BaseURL: srv.URL, APIKey: "k"}, nil)
	require.NoError(t, err)
	_, present := got["temperature"]
	assert.False(t, present)
}

func TestCompleteErrors(t *testing.T) {
	_, err := NewOpenAICompatibleClient(time.Second).Complete(context.Background(), ChatConfig{BaseURL: "http://unused"}, nil)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer srv.Close()
	_, err = NewOpenAICompatibleClient(time.Second).Complete(context.Background(), ChatConfig{BaseURL: srv.URL, APIKey: "k"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer empty.Close()
	_, err = NewOpenAICompatibleClient(time.Second).Complete(context.Background(), ChatConfig{BaseURL: empty.URL, APIKey: "k"}, nil)
	assert.Error(t, err)
}
