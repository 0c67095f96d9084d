package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"photo-albums/internal"
	cl "photo-albums/pkg/catalog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/twitsprout/tools"
	httputils "github.com/twitsprout/tools/http"
	jsonutils "github.com/twitsprout/tools/json"
	"github.com/twitsprout/tools/requestid"
)

var (
	_ internal.AuthService    = (*Client)(nil)
	_ internal.AlbumService   = (*Client)(nil)
	_ internal.ImageService   = (*Client)(nil)
	_ internal.ProfileService = (*Client)(nil)
)

const (
	defaultUserAgent = "photo-albums/0.1"
	requestTimeout   = 30 * time.Second
	maxOpenConns     = 8
	maxErrorBody     = 64 << 10

	headerRequestID      = "X-Request-ID"
	headerIdempotencyKey = "Idempotency-Key"
)

// Client talks to the photo album HTTP API.
type Client struct {
	baseURL      *url.URL
	http         *http.Client
	tokens       internal.TokenSource
	logger       tools.Logger
	userAgent    string
	maxUploadDim uint
}

// Option modifies a Client during New.
type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithTimeout sets the total per-request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.http = httputils.NewClient(
			httputils.WithTimeout(d),
			httputils.WithMaxOpenConns(maxOpenConns),
		)
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l tools.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

// WithMaxUploadDimension downscales JPEG and PNG uploads whose width or
// height exceeds px. Zero disables downscaling.
func WithMaxUploadDimension(px uint) Option {
	return func(cl *Client) { cl.maxUploadDim = px }
}

// New builds a Client for the API at baseURL. tokens supplies the bearer
// token for every authenticated request; it may be nil for anonymous use.
func New(baseURL string, tokens internal.TokenSource, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: httputils.NewClient(
			httputils.WithTimeout(requestTimeout),
			httputils.WithMaxOpenConns(maxOpenConns),
		),
		tokens:    tokens,
		userAgent: defaultUserAgent,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// doJSON sends body (when non-nil) as JSON and decodes the reply into dest
// (when non-nil), authenticating with token.
func (c *Client) doJSON(ctx context.Context, method string, rel *url.URL, token string, body, dest interface{}) error {
	var r io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := jsonutils.Encode(&buf, body, ""); err != nil {
			return errors.Wrap(err, "encode request")
		}
		r = &buf
	}
	req, err := c.newRequest(ctx, method, rel, token, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, rel, dest)
}

func (c *Client) newRequest(ctx context.Context, method string, rel *url.URL, token string, body io.Reader) (*http.Request, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headerRequestID, requestid.New())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method != http.MethodGet && method != http.MethodHead {
		req.Header.Set(headerIdempotencyKey, uuid.NewString())
	}
	return req, nil
}

func (c *Client) send(req *http.Request, rel *url.URL, dest interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logError("[send] request failed", req, err)
		return &cl.NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := readError(resp, rel.Path)
		c.logError("[send] api returned an error", req, apiErr)
		return apiErr
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := jsonutils.Decode(resp.Body, dest); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func (c *Client) logError(msg string, req *http.Request, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg,
		"request_id", req.Header.Get(headerRequestID),
		"method", req.Method,
		"path", req.URL.Path,
		"details", err.Error(),
	)
}

// errorBody accepts both {"error":{"message":...}} and {"message":...}.
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func readError(resp *http.Response, path string) *cl.APIError {
	apiErr := &cl.APIError{Status: resp.StatusCode, Path: path}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var body errorBody
	if err := jsonutils.Unmarshal(raw, &body); err != nil {
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(body.Message)
	if apiErr.Message == "" && len(body.Error) > 0 {
		var nested httputils.JSONErr
		if err := jsonutils.Unmarshal(body.Error, &nested); err == nil {
			apiErr.Message = strings.TrimSpace(nested.Message)
		}
	}
	return apiErr
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("api url must be provided")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, errors.Wrapf(err, "parse api url %q", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/"
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// path builds a relative URL from escaped segments, e.g.
// path("albums", id, "images").
func path(segments ...string) *url.URL {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return &url.URL{
		Path:    strings.Join(segments, "/"),
		RawPath: strings.Join(escaped, "/"),
	}
}
