package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskdesk/pkg/storage"
	"taskdesk/pkg/utils"
)

// DefaultBaseURL is used when no api_url is configured
const DefaultBaseURL = "http://localhost:3010/api/v1"

// CredentialReader is the slice of local storage the client needs
type CredentialReader interface {
	GetItem(key string) (string, bool, error)
}

// Request describes one outbound call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// Anonymous requests never carry the stored credential (login, register).
	Anonymous bool
}

// Client sends requests to the task backend
type Client struct {
	baseURL     string
	credentials CredentialReader
	httpClient  *http.Client
}

// NewClient creates a client for baseURL reading the bearer credential from credentials
func NewClient(baseURL string, credentials CredentialReader) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		credentials: credentials,
		httpClient:  &http.Client{},
	}
}

// BaseURL returns the endpoint every path is resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do dispatches req once and returns the parsed envelope with its status code.
// Only transport failures are returned as errors.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	fail := func(err error) (*Response, error) {
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fail(fmt.Errorf("encode request body: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return fail(err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	if !req.Anonymous && c.credentials != nil {
		token, ok, err := c.credentials.GetItem(storage.TokenKey)
		if err != nil {
			return fail(fmt.Errorf("read credential: %w", err))
		}
		if ok && token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		utils.Logger().Debug("api request failed",
			zap.String("request_id", requestID),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return fail(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("read response body: %w", err))
	}

	utils.Logger().Debug("api request",
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	result := &Response{StatusCode: resp.StatusCode, RequestID: requestID}
	if len(bytes.TrimSpace(raw)) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(raw, &result.Envelope); err != nil {
		return fail(fmt.Errorf("malformed response (status %d): %w", resp.StatusCode, err))
	}

	return result, nil
}
