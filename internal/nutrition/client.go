package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "https://api.api-ninjas.com"

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a nutrition API client. Requests are neither retried nor cached.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Lookup queries the API for a food name. A non-200 response is not an error:
// it comes back as Result.Failure with the status code and body.
func (c *Client) Lookup(ctx context.Context, query string) (*Result, error) {
	u := fmt.Sprintf("%s/v1/nutrition?query=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create nutrition request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call nutrition API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read nutrition response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Warn().
			Str("query", query).
			Int("status", resp.StatusCode).
			Msg("Nutrition API returned non-success status")

		return &Result{Failure: &Failure{StatusCode: resp.StatusCode, Body: string(body)}}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse nutrition JSON: %w", err)
	}
	if records == nil {
		records = []Record{}
	}

	log.Debug().
		Str("query", query).
		Int("records", len(records)).
		Msg("Nutrition lookup complete")

	return &Result{Records: StripPremium(records)}, nil
}
