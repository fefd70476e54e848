// Package parserapi is the HTTP client for the remote resume parsing API.
// It is the only package that talks to that service.
package parserapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/resume-parser-web/internal/schemas"
	"github.com/jonathan/resume-parser-web/internal/types"
)

// DefaultUserAgent is the user agent string for API requests.
const DefaultUserAgent = "ResumeParserWeb/1.0"

// Operation names used in errors and logs.
const (
	OpUpload      = "upload"
	OpListResumes = "list resumes"
)

// Error represents a failed call to the parsing API.
// StatusCode is zero when no response was received.
type Error struct {
	Op         string
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsStatus reports whether err is a parsing API response with a non-success status.
func IsStatus(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode != 0
}

// Options configures the client.
type Options struct {
	// Timeout bounds each request. Zero means no timeout.
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// DefaultOptions returns the defaults: no timeout, default user agent.
func DefaultOptions() *Options {
	return &Options{
		UserAgent: DefaultUserAgent,
	}
}

// Client calls the parsing API. Every call is a single attempt.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	headers    map[string]string
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{
			Op:      "configure",
			URL:     baseURL,
			Message: "invalid base URL",
			Cause:   err,
		}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:    parsed,
		httpClient: httpClient,
		userAgent:  userAgent,
		headers:    opts.Headers,
	}, nil
}

// UploadInput is one file handed to the parsing API.
type UploadInput struct {
	Filename    string
	ContentType string
	UserID      string
	Body        io.Reader
}

// UploadResult is a successful upload: the parsed record and its raw JSON.
type UploadResult struct {
	Record *types.ResumeRecord
	Raw    json.RawMessage
}

// Upload posts the file as multipart form data to /upload.
// A 200 response must carry extracted_data; anything else is an *Error.
func (c *Client) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	endpoint := c.endpoint("/upload", nil)

	body, contentType, err := encodeUpload(in)
	if err != nil {
		return nil, &Error{Op: OpUpload, URL: endpoint, Message: "failed to encode multipart body", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, &Error{Op: OpUpload, URL: endpoint, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", contentType)

	status, data, err := c.do(req)
	if err != nil {
		return nil, &Error{Op: OpUpload, URL: endpoint, Message: "HTTP request failed", Cause: err}
	}

	var envelope types.UploadResponse
	decodeErr := json.Unmarshal(data, &envelope)

	if status != http.StatusOK {
		msg := http.StatusText(status)
		if decodeErr == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return nil, &Error{Op: OpUpload, URL: endpoint, StatusCode: status, Message: msg}
	}
	if decodeErr != nil {
		return nil, &Error{Op: OpUpload, URL: endpoint, Message: "invalid JSON response", Cause: decodeErr}
	}
	if len(envelope.ExtractedData) == 0 || string(envelope.ExtractedData) == "null" {
		msg := "response has no extracted_data"
		if envelope.Error != "" {
			msg = envelope.Error
		}
		return nil, &Error{Op: OpUpload, URL: endpoint, Message: msg}
	}

	if err := schemas.ValidateResumeRecord(envelope.ExtractedData); err != nil {
		log.Printf("[parserapi] extracted_data does not match resume schema: %v", err)
	}

	record, dropped, err := types.DecodeResumeRecord(envelope.ExtractedData)
	if err != nil {
		log.Printf("[parserapi] extracted_data kept as received: %v", err)
	} else if len(dropped) > 0 {
		log.Printf("[parserapi] extracted_data fields not shown: %s", strings.Join(dropped, ", "))
	}

	return &UploadResult{Record: &record, Raw: envelope.ExtractedData}, nil
}

// Scope selects which records ListResumes returns.
// An empty UserID asks for every user's records.
type Scope struct {
	UserID        string
	CurrentUserID string
}

// ListResumes fetches the records in scope from /resumes.
func (c *Client) ListResumes(ctx context.Context, scope Scope) ([]types.ResumeRecord, error) {
	query := url.Values{}
	query.Set("user_id", scope.UserID)
	query.Set("current_user_id", scope.CurrentUserID)
	endpoint := c.endpoint("/resumes", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Op: OpListResumes, URL: endpoint, Message: "failed to create request", Cause: err}
	}

	status, data, err := c.do(req)
	if err != nil {
		return nil, &Error{Op: OpListResumes, URL: endpoint, Message: "HTTP request failed", Cause: err}
	}
	if status != http.StatusOK {
		return nil, &Error{Op: OpListResumes, URL: endpoint, StatusCode: status, Message: fmt.Sprintf("HTTP status %d", status)}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, &Error{Op: OpListResumes, URL: endpoint, Message: "invalid JSON response", Cause: err}
	}

	records := make([]types.ResumeRecord, 0, len(elems))
	for i, elem := range elems {
		record, dropped, err := types.DecodeResumeRecord(elem)
		if err != nil {
			log.Printf("[parserapi] skipping resume %d: %v", i, err)
			continue
		}
		if len(dropped) > 0 {
			log.Printf("[parserapi] resume %d fields not shown: %s", i, strings.Join(dropped, ", "))
		}
		records = append(records, record)
	}
	return records, nil
}

// do executes req and reads the whole body.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// encodeUpload builds the multipart body with a file part and a user_id field.
func encodeUpload(in UploadInput) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(in.Filename)))
	header.Set("Content-Type", in.ContentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if in.Body != nil {
		if _, err := io.Copy(part, in.Body); err != nil {
			return nil, "", fmt.Errorf("failed to copy file: %w", err)
		}
	}

	if err := w.WriteField("user_id", in.UserID); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
