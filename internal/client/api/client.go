package api

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

	"github.com/dmitrijs2005/starterkit/internal/client/models"
	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/logging"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds every call, refreshes included.
const DefaultTimeout = 30 * time.Second

const refreshGroupKey = "refresh"

// TokenStore is the part of the credential store the client needs.
// *store.Store implements it.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SaveTokens(ctx context.Context, accessToken, refreshToken string) error
	ClearSession(ctx context.Context) error
}

// Client sends authenticated requests. On a 401 it refreshes the access
// token once and retries the request once; a failed refresh clears the
// stored session. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenStore
	logger     logging.Logger

	refreshGroup singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. with one from httptest.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, tokens TokenStore, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: expected http(s)://host", baseURL)
	}
	if tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tokens:     tokens,
		logger:     logging.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Response describes a successful call.
type Response struct {
	Status int
	// Message is the optional human-readable message of the envelope.
	Message string
}

type rawResponse struct {
	status int
	body   []byte
}

// Do sends req and decodes the data member of the response envelope into
// out, which may be nil when the payload is not needed. Every failure is
// returned as an *Error.
func (c *Client) Do(ctx context.Context, req *Request, out any) (*Response, error) {
	p, err := req.encode()
	if err != nil {
		if e, ok := AsError(err); ok {
			return nil, e
		}
		return nil, clientError(err)
	}

	token := ""
	if !req.anonymous {
		if token, err = c.tokens.AccessToken(ctx); err != nil {
			return nil, clientError(fmt.Errorf("failed to read access token: %w", err))
		}
	}

	resp, err := c.send(ctx, req, p, token)
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusUnauthorized && !req.SkipRefresh && !req.anonymous {
		if resp, err = c.refreshAndRetry(ctx, req, p, token, resp); err != nil {
			return nil, err
		}
	}

	return c.finish(ctx, req, resp, out)
}

func (c *Client) endpoint(req *Request) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}
	return u.String()
}

func (c *Client) send(ctx context.Context, req *Request, p payload, token string) (*rawResponse, error) {
	var body io.Reader
	if p.data != nil {
		body = bytes.NewReader(p.data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.endpoint(req), body)
	if err != nil {
		return nil, clientError(err)
	}
	httpReq.Header.Set("Content-Type", p.contentType)
	httpReq.Header.Set("Accept", common.ContentTypeJSON)
	if token != "" {
		httpReq.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	c.logger.Debug(ctx, "api request", "method", req.Method, "path", req.Path, "authenticated", token != "")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug(ctx, "api request failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, networkError(err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	c.logger.Debug(ctx, "api response", "method", req.Method, "path", req.Path, "status", httpResp.StatusCode)
	return &rawResponse{status: httpResp.StatusCode, body: data}, nil
}

// refreshAndRetry handles the first 401 of a request. The returned response
// is final: a second 401 is reported, never refreshed again.
func (c *Client) refreshAndRetry(ctx context.Context, req *Request, p payload, sentToken string, first *rawResponse) (*rawResponse, error) {
	refreshToken, err := c.tokens.RefreshToken(ctx)
	if err != nil {
		e := responseError(first.status, first.body)
		e.Err = fmt.Errorf("failed to read refresh token: %w", err)
		return nil, e
	}
	if refreshToken == "" {
		return first, nil
	}

	// Another request may have refreshed while this one was in flight.
	current, err := c.tokens.AccessToken(ctx)
	if err == nil && current != "" && current != sentToken {
		c.logger.Debug(ctx, "access token changed in flight, retrying", "path", req.Path)
		return c.send(ctx, req, p, current)
	}

	token, err := c.refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if token == "" {
		// The session ended while this request was waiting.
		return nil, responseError(first.status, first.body)
	}
	return c.send(ctx, req, p, token)
}

// refresh exchanges refreshToken for a new access token. All refreshes go
// through one singleflight key, and each starts by checking that
// refreshToken is still the stored one: a caller that read it before another
// refresh rotated it takes the stored access token instead of redeeming a
// spent token. An empty result means the session was cleared meanwhile.
// The call and its effect on the store run to completion even if ctx is
// cancelled.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	v, err, _ := c.refreshGroup.Do(refreshGroupKey, func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		stored, err := c.tokens.RefreshToken(ctx)
		if err == nil && stored != refreshToken {
			c.logger.Debug(ctx, "refresh token rotated by another request")
			if stored == "" {
				return "", nil
			}
			access, err := c.tokens.AccessToken(ctx)
			if err != nil {
				return nil, clientError(fmt.Errorf("failed to read access token: %w", err))
			}
			return access, nil
		}

		return c.doRefresh(ctx, refreshToken)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) doRefresh(ctx context.Context, refreshToken string) (string, error) {
	var out models.RefreshResponse
	_, err := c.Do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Body:        models.RefreshRequest{RefreshToken: refreshToken},
		SkipRefresh: true,
		anonymous:   true,
	}, &out)
	if err != nil {
		c.logger.Warn(ctx, "token refresh failed, clearing session", "error", err)
		if cerr := c.tokens.ClearSession(ctx); cerr != nil {
			c.logger.Error(ctx, "failed to clear session", "error", cerr)
		}
		return "", authFailure(err)
	}

	if err := c.tokens.SaveTokens(ctx, out.Token, out.RefreshToken); err != nil {
		return "", &Error{Kind: KindClient, Message: msgStoreFailed, Err: err}
	}

	c.logger.Info(ctx, "access token refreshed", "rotated", out.RefreshToken != "")
	return out.Token, nil
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Success *bool           `json:"success"`
}

func (c *Client) finish(ctx context.Context, req *Request, resp *rawResponse, out any) (*Response, error) {
	if resp.status < 200 || resp.status > 299 {
		e := responseError(resp.status, resp.body)
		c.logger.Debug(ctx, "api error", "method", req.Method, "path", req.Path, "status", e.Status, "message", e.Message)
		return nil, e
	}

	var env envelope
	if len(bytes.TrimSpace(resp.body)) > 0 {
		if err := json.Unmarshal(resp.body, &env); err != nil {
			return nil, malformedError(resp.status, err)
		}
	}
	if env.Success != nil && !*env.Success {
		return nil, responseError(resp.status, resp.body)
	}

	if out != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil, malformedError(resp.status, fmt.Errorf("response has no data"))
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, malformedError(resp.status, err)
		}
		if fields := validateValue(out); fields != nil {
			e := malformedError(resp.status, fmt.Errorf("response failed validation"))
			e.Errors = fields
			return nil, e
		}
	}

	return &Response{Status: resp.status, Message: env.Message}, nil
}

// Call is Do for a typed payload.
func Call[T any](ctx context.Context, c *Client, req *Request) (*T, error) {
	var out T
	if _, err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
