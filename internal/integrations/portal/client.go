package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	tenantHeader = "X-TENANT-ID"
	loginPath    = "/login"
	statusOK     = "success"
)

// TokenSource supplies the persisted bearer token and forgets it when the backend rejects
// the session.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
	Clear(ctx context.Context) error
}

type Client struct {
	baseURL        string
	tenantID       string
	tokens         TokenSource
	onUnauthorized func(ctx context.Context, redirect string)
	httpc          *http.Client
}

type Option func(*Client)

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler is invoked after every 401 once auth state has been cleared. ctx is
// the context of the rejected call.
func WithUnauthorizedHandler(fn func(ctx context.Context, redirect string)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpc.Timeout = d
		}
	}
}

func New(baseURL, tenantID string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000/api/v1"
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tenantID: tenantID,
		httpc: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type envelope struct {
	Status  string          `json:"status"`
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", errors.Wrap(err, "parse url")
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(b)
	}
	u, err := c.endpoint(path, query)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(ctx, req, out)
}

// doMultipart streams a single file field. Content-Type comes from the multipart writer so
// the boundary is always right.
func (c *Client) doMultipart(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return errors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(fw, r); err != nil {
		return errors.Wrap(err, "copy file")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "close multipart")
	}
	u, err := c.endpoint(path, nil)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.tenantID != "" {
		req.Header.Set(tenantHeader, c.tenantID)
	}
	if c.tokens != nil {
		if tok, ok := c.tokens.Token(ctx); ok && tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		slog.Warn("portal request failed", "method", req.Method, "path", req.URL.Path, "error", err.Error())
		return &APIError{Status: 0, Message: networkErrorMessage}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: 0, Message: networkErrorMessage}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
		return &APIError{Status: resp.StatusCode, Code: CodeUnauthorized, Message: "Your session has expired. Please log in again."}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode/100 != 2 || decodeErr != nil || env.Status != statusOK {
		apiErr := c.toAPIError(resp.StatusCode, raw)
		slog.Warn("portal request rejected",
			"method", req.Method, "path", req.URL.Path,
			"status", apiErr.Status, "code", apiErr.Code, "message", apiErr.Message)
		return apiErr
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "decode data")
		}
	}
	return nil
}

func (c *Client) toAPIError(status int, raw []byte) *APIError {
	var b errorBody
	if err := json.Unmarshal(raw, &b); err != nil {
		return &APIError{Status: status, Message: genericErrorMessage}
	}
	return &APIError{
		Status:  status,
		Code:    extractCode(b),
		Message: extractMessage(b),
		Data:    b.Data,
	}
}

func (c *Client) handleUnauthorized(ctx context.Context) {
	if c.tokens != nil {
		if err := c.tokens.Clear(ctx); err != nil {
			slog.Error("clear auth state", "error", err.Error())
		}
	}
	slog.Info("session rejected, redirecting", "to", loginPath)
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx, loginPath)
	}
}
