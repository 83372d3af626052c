// Package notion publishes briefings as pages in a Notion database.
package notion

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

	"KBeautyBriefing/internal/config"
)

// Client talks to the Notion REST API.
type Client struct {
	endpoint string
	token    string
	version  string
	http     *http.Client
}

// NewClient creates a reusable HTTP client. A nil httpClient gets a 30s timeout.
func NewClient(cfg config.NotionConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = "https://api.notion.com/v1"
	}
	version := cfg.Version
	if version == "" {
		version = "2022-06-28"
	}
	return &Client{endpoint: endpoint, token: cfg.Token, version: version, http: httpClient}
}

// Page is a create-page request body.
type Page struct {
	Parent     Parent         `json:"parent"`
	Properties map[string]any `json:"properties"`
	Children   []Block        `json:"children,omitempty"`
}

// Parent points a page at its database.
type Parent struct {
	DatabaseID string `json:"database_id"`
}

// CreatedPage is the subset of the API response the sink needs.
type CreatedPage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// APIError is the error object Notion returns for non-2xx responses.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api %d %s: %s", e.Status, e.Code, e.Message)
}

// MaxChildren is the most blocks Notion accepts in one request.
const MaxChildren = 100

// CreatePage posts page and returns the created page id and url.
// Children beyond MaxChildren are appended in follow-up requests.
func (c *Client) CreatePage(ctx context.Context, page Page) (CreatedPage, error) {
	first, rest := splitChildren(page.Children)
	page.Children = first

	var created CreatedPage
	if err := c.send(ctx, http.MethodPost, "/pages", page, &created); err != nil {
		return CreatedPage{}, err
	}
	if len(rest) > 0 {
		if err := c.AppendChildren(ctx, created.ID, rest); err != nil {
			return created, fmt.Errorf("append blocks to page %s: %w", created.ID, err)
		}
	}
	return created, nil
}

// AppendChildren adds blocks to an existing page or block, MaxChildren per request.
func (c *Client) AppendChildren(ctx context.Context, blockID string, blocks []Block) error {
	for len(blocks) > 0 {
		var batch []Block
		batch, blocks = splitChildren(blocks)
		payload := struct {
			Children []Block `json:"children"`
		}{Children: batch}
		if err := c.send(ctx, http.MethodPatch, "/blocks/"+url.PathEscape(blockID)+"/children", payload, nil); err != nil {
			return err
		}
	}
	return nil
}

func splitChildren(blocks []Block) ([]Block, []Block) {
	if len(blocks) <= MaxChildren {
		return blocks, nil
	}
	return blocks[:MaxChildren], blocks[MaxChildren:]
}

func (c *Client) send(ctx context.Context, method, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", c.version)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
