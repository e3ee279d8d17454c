// Package tracker is the Azure DevOps Server / TFS REST adapter: it lists
// projects and teams, queries work items and creates new ones.
package tracker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL    = "http://tfs:8080/tfs"
	DefaultAPIVersion = "6.1-preview.2"
	DefaultTimeout    = 30 * time.Second

	contentTypeJSON      = "application/json"
	contentTypeJSONPatch = "application/json-patch+json"

	// maxErrorBody caps how much of a failed reply is kept in error messages.
	maxErrorBody = 512
)

// Config configures a Client.
type Config struct {
	BaseURL      string
	Organization string
	Token        string
	APIVersion   string
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client talks to one tracker organization (collection) with a personal
// access token.
type Client struct {
	baseURL    string
	org        string
	authHeader string
	apiVersion string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Organization) == "" {
		return nil, fmt.Errorf("tracker organization is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("tracker personal access token is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid tracker base URL %q: %w", baseURL, err)
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		org:        cfg.Organization,
		authHeader: BasicAuth(cfg.Token),
		apiVersion: apiVersion,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BasicAuth builds the Authorization header value for a personal access
// token: Basic auth with an empty user name.
func BasicAuth(token string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+token))
}

// Organization returns the organization the client is bound to.
func (c *Client) Organization() string {
	return c.org
}

// orgURL joins escaped path segments below the organization root.
func (c *Client) orgURL(segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, url.PathEscape(c.org))
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return c.baseURL + "/" + strings.Join(parts, "/")
}

// withQuery appends api-version and the given parameters.
func (c *Client) withQuery(raw string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api-version", c.apiVersion)
	return raw + "?" + params.Encode()
}

// do issues a request and decodes a JSON reply into out. Credential rejections
// come back as *AuthError, transport failures, 5xx replies and undecodable
// bodies as *UnavailableError, any other non-2xx reply as *statusError.
func (c *Client) do(ctx context.Context, op, method, rawURL, contentType string, body, out any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	c.logger.Debug("tracker request",
		"op", op,
		"method", method,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		drain(resp.Body)
		return nil, &AuthError{Op: op, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 500:
		return nil, &UnavailableError{Op: op, StatusCode: resp.StatusCode, Err: readStatusError(resp)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, readStatusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, &UnavailableError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return resp.Header, nil
}

func readStatusError(resp *http.Response) *statusError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &statusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxErrorBody))
}

// statusCode digs the HTTP status out of any tracker error.
func statusCode(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return 0
}
