// Package sparkpost is a client for the SparkPost suppression-list API.
package sparkpost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ignite/sparkpost-suppress/internal/config"
	"github.com/ignite/sparkpost-suppress/internal/pkg/httpretry"
)

const suppressionPath = "/suppression-list"

// Client is a SparkPost API client scoped to the suppression endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new SparkPost API client. Rate-limit snoozing is
// handled inside the transport so every endpoint shares one policy.
func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL: cfg.BaseURL(),
		apiKey:  cfg.APIKey,
		httpClient: httpretry.NewRateLimitClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, cfg.Snooze()),
	}
}

// doRequest makes an HTTP request to the SparkPost API. A subaccount
// greater than zero scopes the call via the X-MSYS-SUBACCOUNT header.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, body []byte, subaccount int) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subaccount > 0 {
		req.Header.Set("X-MSYS-SUBACCOUNT", strconv.Itoa(subaccount))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		var parsed errorResponse
		if json.Unmarshal(respBody, &parsed) == nil {
			for _, e := range parsed.Errors {
				apiErr.Messages = append(apiErr.Messages, e.Message)
			}
		}
		return nil, apiErr
	}

	return respBody, nil
}
