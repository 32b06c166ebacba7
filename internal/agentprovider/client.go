// Package agentprovider talks to the conversational-agent provider that hosts
// agents and their knowledge-base documents.
package agentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiKeyHeader = "xi-api-key"

var ErrMissingAPIKey = errors.New("agent provider api key is not configured")

// AgentConfig is the provider's nested agent configuration. It is kept as a
// generic document so fields this service does not know about survive a
// read-modify-write cycle.
type AgentConfig map[string]interface{}

// UpstreamError carries a non-2xx provider response.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("agent provider status %d: %s", e.Status, e.Message)
}

func IsNotFound(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream) && upstream.Status == http.StatusNotFound
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

func (c *Client) GetAgent(ctx context.Context, agentID string) (AgentConfig, error) {
	var cfg AgentConfig
	if err := c.do(ctx, http.MethodGet, "/agents/"+url.PathEscape(agentID), nil, &cfg, "error fetching agent configuration"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Client) UpdateAgent(ctx context.Context, agentID string, cfg AgentConfig) error {
	return c.do(ctx, http.MethodPatch, "/agents/"+url.PathEscape(agentID), cfg, nil, "error updating agent")
}

// GetDocument returns the provider's full description of a knowledge-base document.
func (c *Client) GetDocument(ctx context.Context, documentID string) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/knowledge-base/"+url.PathEscape(documentID), nil, &doc, "error fetching document"); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, failure string) error {
	if !c.Configured() {
		return ErrMissingAPIKey
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal provider request failed: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build provider request failed: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read provider response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{
			Status:  resp.StatusCode,
			Message: detailMessage(raw, fmt.Sprintf("%s: %s", failure, http.StatusText(resp.StatusCode))),
		}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &UpstreamError{Status: http.StatusBadGateway, Message: "malformed provider response"}
	}
	return nil
}

// detailMessage pulls "detail" out of an error body. The provider sends it
// either as a string or as an object with a message.
func detailMessage(raw []byte, fallback string) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return fallback
	}
	var text string
	if err := json.Unmarshal(body.Detail, &text); err == nil && text != "" {
		return text
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body.Detail, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return fallback
}
