// Package objstore uploads and removes objects in the data service's
// bucket storage. Objects are raw bytes addressed by bucket and path;
// reads go through public URLs, so no download client is needed.
package objstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// BucketVerification holds landlord identity documents.
	BucketVerification = "verification"
	// BucketProperties holds listing photos.
	BucketProperties = "properties"
)

// Client calls the storage REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// APIError represents a storage error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a storage client authenticated by the service key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores raw bytes at bucket/path, replacing any existing object.
// token scopes the write to the caller's own storage permissions; empty
// token falls back to the service key.
func (c *Client) Upload(token, bucket, path, contentType string, data []byte) error {
	req, err := http.NewRequest(http.MethodPost, c.objectURL(bucket, path), bytes.NewReader(data))
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")
	c.authorize(req, token)
	return c.send(req)
}

// Delete removes the object at bucket/path.
func (c *Client) Delete(token, bucket, path string) error {
	req, err := http.NewRequest(http.MethodDelete, c.objectURL(bucket, path), nil)
	if err != nil {
		return err
	}
	c.authorize(req, token)
	return c.send(req)
}

// PublicURL returns the unauthenticated read URL for an object.
func (c *Client) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, path)
}

func (c *Client) objectURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, bucket, path)
}

func (c *Client) authorize(req *http.Request, token string) {
	req.Header.Set("apikey", c.apiKey)
	bearer := c.apiKey
	if token != "" {
		bearer = token
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
}

func (c *Client) send(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(raw, &errResp)
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	return nil
}
