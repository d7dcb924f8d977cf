// Package client is a typed HTTP client for the cookbook API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JaimeStill/cookbook/internal/counters"
	"github.com/JaimeStill/cookbook/internal/recipes"
)

// Client calls the API rooted at baseURL (e.g. "http://localhost:8080/api").
// When token is non-empty every request carries it as a Bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SignedIn reports whether the client sends a token.
func (c *Client) SignedIn() bool {
	return c.token != ""
}

func (c *Client) List(ctx context.Context, params recipes.Params, cursor string) (*recipes.Page, error) {
	var page recipes.Page
	path := "/recipes?" + params.Query(cursor).Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Find(ctx context.Context, id string) (*recipes.Recipe, error) {
	var r recipes.Recipe
	if err := c.doJSON(ctx, http.MethodGet, "/recipes/"+url.PathEscape(id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Create(ctx context.Context, cmd recipes.CreateCommand) (*recipes.Recipe, error) {
	var r recipes.Recipe
	if err := c.doJSON(ctx, http.MethodPost, "/recipes", cmd, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Update(ctx context.Context, id string, cmd recipes.UpdateCommand) (*recipes.Recipe, error) {
	var r recipes.Recipe
	if err := c.doJSON(ctx, http.MethodPatch, "/recipes/"+url.PathEscape(id), cmd, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/recipes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Counts(ctx context.Context) (*counters.Counts, error) {
	var counts counters.Counts
	if err := c.doJSON(ctx, http.MethodGet, "/counts", nil, &counts); err != nil {
		return nil, err
	}
	return &counts, nil
}

// UploadImage sends r as the multipart "image" file and returns the stored URL.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/recipes/images", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	return result.URL, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
