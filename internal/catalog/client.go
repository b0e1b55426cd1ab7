// Package catalog - HTTP client for the catalog admin API
package catalog

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/models"
	"go.uber.org/zap"
)

const (
	collectionPath = "/api/admin/{collection}"
	recordPath     = "/api/admin/{collection}/{id}"

	// maxBodyBytes caps how much of a response is read
	maxBodyBytes = 8 << 20
)

var pathParam = regexp.MustCompile(`\{(\w+)\}`)

// Options configures a Client
type Options struct {
	BaseURL            string
	Token              string
	Username           string
	Password           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Client talks to the catalog API. It does not retry and does not cache.
type Client struct {
	baseURL  string
	token    string
	username string
	password string
	http     *http.Client
	log      *zap.Logger
}

// NewClient creates a new catalog client
func NewClient(opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		token:    opts.Token,
		username: opts.Username,
		password: opts.Password,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		log: log,
	}
}

// List fetches GET /api/admin/{kind}s
func (c *Client) List(ctx context.Context, kind string) ([]models.Record, error) {
	path := resolvePath(collectionPath, map[string]string{"collection": kind + "s"})

	body, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	if err := decode(body, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

// Get fetches GET /api/admin/{kind}s/{id}
func (c *Client) Get(ctx context.Context, kind, id string) (models.Record, error) {
	path := resolvePath(recordPath, map[string]string{"collection": kind + "s", "id": id})

	body, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var record models.Record
	if err := decode(body, &record); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if record == nil {
		return nil, errors.NewNotFoundError(kind)
	}
	return record, nil
}

// Update sends PUT /api/admin/{kind}s/{id} with a flat JSON object
func (c *Client) Update(ctx context.Context, kind, id string, fields map[string]string) error {
	path := resolvePath(recordPath, map[string]string{"collection": kind + "s", "id": id})

	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	_, err = c.call(ctx, http.MethodPut, path, payload)
	return err
}

// Delete sends DELETE /api/admin/{kind}s/{id}
func (c *Client) Delete(ctx context.Context, kind, id string) error {
	path := resolvePath(recordPath, map[string]string{"collection": kind + "s", "id": id})
	_, err := c.call(ctx, http.MethodDelete, path, nil)
	return err
}

// call executes one request and returns the body of a 2xx answer.
// Other statuses become an UpstreamError holding the raw body.
func (c *Client) call(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	req, err := c.buildRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.log.Warn("catalog request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.Debug("catalog request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))

	if !isSuccessful(resp.StatusCode) {
		return nil, errors.NewUpstreamError(method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

// buildRequest constructs the HTTP request
func (c *Client) buildRequest(ctx context.Context, method, path string, payload []byte) (*http.Request, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	return req, nil
}

// setAuth sets authentication on the request. A bearer token wins over basic credentials.
func (c *Client) setAuth(req *http.Request) {
	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.username != "":
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.username+":"+c.password)))
	}
}

// resolvePath replaces path parameters like /users/{id} with actual values
func resolvePath(path string, params map[string]string) string {
	return pathParam.ReplaceAllStringFunc(path, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := params[name]; ok {
			return url.PathEscape(v)
		}
		return m
	})
}

func isSuccessful(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

func decode(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}
