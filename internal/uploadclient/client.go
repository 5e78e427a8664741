package uploadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client talks to the trackjob API.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTP        *http.Client
}

// New returns a client with a bounded default timeout.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Ticket mirrors the upload-url response.
type Ticket struct {
	UploadURL string            `json:"uploadUrl"`
	FileKey   string            `json:"fileKey"`
	ExpiresIn int64             `json:"expiresIn"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
}

// Document mirrors the API document shape.
type Document struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	S3Key      string    `json:"s3Key"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// DownloadLink mirrors the download response.
type DownloadLink struct {
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

// RequestTicket asks for a signed upload URL.
func (c *Client) RequestTicket(ctx context.Context, userID, category, fileName, fileType string, size int64) (Ticket, error) {
	var out Ticket
	err := c.do(ctx, http.MethodPost, "/documents/upload-url", map[string]any{
		"userId":       userID,
		"documentType": category,
		"fileName":     fileName,
		"fileType":     fileType,
		"fileSize":     size,
	}, &out)
	return out, err
}

// Confirm records a finished upload.
func (c *Client) Confirm(ctx context.Context, userID, category, fileKey, fileName string, size int64) (Document, error) {
	var out Document
	err := c.do(ctx, http.MethodPost, "/documents/confirm", map[string]any{
		"userId":       userID,
		"documentType": category,
		"fileKey":      fileKey,
		"fileName":     fileName,
		"fileSize":     size,
	}, &out)
	return out, err
}

// List returns a user's documents, newest first.
func (c *Client) List(ctx context.Context, userID string) ([]Document, error) {
	var out []Document
	err := c.do(ctx, http.MethodGet, "/documents/"+userID, nil, &out)
	return out, err
}

// Download returns a signed GET link for a document.
func (c *Client) Download(ctx context.Context, id int64) (DownloadLink, error) {
	var out DownloadLink
	err := c.do(ctx, http.MethodGet, "/documents/download/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

// Delete removes a document and its stored object.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/documents/"+strconv.FormatInt(id, 10), nil, nil)
}

// Put sends body to a signed URL with the headers the ticket requires.
func (c *Client) Put(ctx context.Context, ticket Ticket, body io.Reader, size int64) error {
	method := ticket.Method
	if method == "" {
		method = http.MethodPut
	}
	req, err := http.NewRequestWithContext(ctx, method, ticket.UploadURL, body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = size
	for name, value := range ticket.Headers {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("upload to storage: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Status: resp.StatusCode, Code: "storage_rejected", Message: strings.TrimSpace(string(snippet))}
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) do(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "unreadable response"}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
