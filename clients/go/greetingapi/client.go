// Package greetingapi provides a client for the greeting card text API.
package greetingapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is a greeting API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Detail     string
	RetryAfter int // seconds, set on 429
}

func (e *APIError) Error() string {
	return fmt.Sprintf("greeting api error %d: %s", e.StatusCode, e.Detail)
}

// Item is a greeting in a page.
type Item struct {
	Message   string `json:"message"`
	Category  string `json:"category"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Page is a paginated response.
type Page struct {
	TotalCount  int    `json:"total_count"`
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	Items       []Item `json:"items"`
}

// RandomGreeting is a single greeting.
type RandomGreeting struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// CategoriesResponse lists categories present on the server.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// doRequest performs a GET request and decodes the JSON response into out.
func (c *Client) doRequest(path string, query url.Values, out interface{}) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		json.Unmarshal(body, &errResp)
		apiErr := &APIError{StatusCode: resp.StatusCode, Detail: errResp.Detail}
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			apiErr.RetryAfter, _ = strconv.Atoi(ra)
		}
		return apiErr
	}

	return json.Unmarshal(body, out)
}

func pageQuery(category string, limit, offset int) url.Values {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}

// List retrieves a page of greetings in a category.
func (c *Client) List(category string, limit, offset int) (*Page, error) {
	var page Page
	if err := c.doRequest("/greetings", pageQuery(category, limit, offset), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Random retrieves one random greeting in a category.
func (c *Client) Random(category string) (*RandomGreeting, error) {
	var g RandomGreeting
	if err := c.doRequest("/greetings/random", url.Values{"category": {category}}, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Categories lists the categories that have greetings.
func (c *Client) Categories() (*CategoriesResponse, error) {
	var resp CategoriesResponse
	if err := c.doRequest("/greetings/types", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search runs a full-text search, optionally within a category.
func (c *Client) Search(query, category string, limit, offset int) (*Page, error) {
	q := pageQuery(category, limit, offset)
	q.Set("query", query)

	var page Page
	if err := c.doRequest("/greetings/search", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Recent retrieves greetings added this month.
func (c *Client) Recent(category string, limit, offset int) (*Page, error) {
	var page Page
	if err := c.doRequest("/greetings/recent_greetings", pageQuery(category, limit, offset), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Health checks server health.
func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doRequest("/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
