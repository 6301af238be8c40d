package dataclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client calls the hosted data service REST API.
// Row endpoints live under /rest/v1, auth endpoints under /auth/v1.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// APIError represents a data service error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a data service client authenticated by the service key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes one request. The apikey header always carries the service key;
// the bearer credential is the service key unless token overrides it with a
// user access token (row-level security scoped calls).
func (c *Client) do(method, path, token string, query url.Values, headers map[string]string, payload any, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(data)
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("apikey", c.apiKey)
	bearer := c.apiKey
	if token != "" {
		bearer = token
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return resp.StatusCode, decodeAPIError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// getRows fetches table rows matching the query.
func (c *Client) getRows(table, token string, q Query, out any) error {
	_, err := c.do(http.MethodGet, "/rest/v1/"+table, token, q.Values(), nil, nil, out)
	return err
}

// insertRows inserts one or more rows. When out is non-nil the created rows
// are requested back via Prefer: return=representation.
func (c *Client) insertRows(table, token string, payload any, out any) error {
	var headers map[string]string
	if out != nil {
		headers = map[string]string{"Prefer": "return=representation"}
	}
	_, err := c.do(http.MethodPost, "/rest/v1/"+table, token, nil, headers, payload, out)
	return err
}

// patchRows applies a partial update to rows matching the query.
// The service signals success with 204; anything else is an error.
func (c *Client) patchRows(table, token string, q Query, payload any) error {
	status, err := c.do(http.MethodPatch, "/rest/v1/"+table, token, q.Values(), nil, payload, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return &APIError{Status: status, Message: fmt.Sprintf("unexpected update status %d", status)}
	}
	return nil
}

// deleteRows removes rows matching the query.
func (c *Client) deleteRows(table, token string, q Query) error {
	_, err := c.do(http.MethodDelete, "/rest/v1/"+table, token, q.Values(), nil, nil, nil)
	return err
}

func decodeAPIError(resp *http.Response) error {
	var errResp struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &errResp)
	msg := errResp.Message
	if msg == "" {
		msg = errResp.Msg
	}
	if msg == "" {
		msg = errResp.ErrorDescription
	}
	if msg == "" {
		msg = errResp.Error
	}
	if msg == "" {
		msg = resp.Status
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
