// Package client is the Go client of the pinboard REST API.
//
// Client sends authenticated requests through resty and turns failures
// back into apperror values. On top of it sit the pieces an interactive
// front-end needs:
//
//	Streams     follow-stream repository, writes through to the Store
//	FollowFlow  follow/unfollow state machine for one board
//	Aggregator  pins of every board in a stream
//	Store       shared cache that notifies subscribers of changes
//
// All types are safe for concurrent use. Nothing here starts goroutines;
// every call blocks on its context.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sakif/pinboard/internal/apperror"
)

const DefaultTimeout = 10 * time.Second

// errorBody mirrors the server's error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

// Client is the HTTP collaborator every other client type talks through.
type Client struct {
	http      *resty.Client
	session   *Session
	logger    *slog.Logger
	onExpired func()
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithOnExpired registers fn to run after the server rejects the session
// token. The session is already cleared when fn runs.
func WithOnExpired(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// New creates a client for the API rooted at baseURL, for example
// "http://localhost:8080/api". A nil session starts logged out.
func New(baseURL string, session *Session, opts ...Option) *Client {
	if session == nil {
		session = NewSession()
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(DefaultTimeout).
			SetHeader("Accept", "application/json"),
		session: session,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.OnBeforeRequest(c.authorize)
	c.http.OnAfterResponse(c.detectExpiry)
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

// authorize adds the session token to every outgoing request.
func (c *Client) authorize(_ *resty.Client, req *resty.Request) error {
	if token := c.session.Token(); token != "" {
		req.SetHeader("Authorization", "Token "+token)
	}
	return nil
}

// detectExpiry clears the session when an authenticated request comes back
// 401. Failed logins also answer 401 but are not a lost session.
func (c *Client) detectExpiry(_ *resty.Client, resp *resty.Response) error {
	if resp.StatusCode() != http.StatusUnauthorized {
		return nil
	}
	if resp.Request.Header.Get("Authorization") == "" || strings.Contains(resp.Request.URL, "/auth/") {
		return nil
	}

	c.logger.Warn("session rejected by server", slog.String("url", resp.Request.URL))
	if err := c.session.Clear(); err != nil {
		c.logger.Warn("failed to clear session", slog.String("error", err.Error()))
	}
	if c.onExpired != nil {
		c.onExpired()
	}
	return nil
}

// do sends one request. body and out may be nil. Non-2xx answers become
// apperror values; transport failures become apperror.ErrNetwork unless
// ctx itself was cancelled.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doQuery(ctx, method, path, nil, body, out)
}

func (c *Client) doQuery(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetError(&errorBody{})
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return apperror.Network(err)
	}
	if resp.IsError() {
		return responseError(resp)
	}
	return nil
}

// responseError rebuilds the server's apperror from the response body,
// falling back to the status code when the body is not an API error.
func responseError(resp *resty.Response) error {
	status := resp.StatusCode()

	var body errorBody
	if e, ok := resp.Error().(*errorBody); ok && e != nil {
		body = *e
	}

	sentinel := apperror.FromKind(body.Error)
	if sentinel == nil {
		sentinel = sentinelForStatus(status)
	}
	message := body.Message
	if message == "" {
		message = http.StatusText(status)
	}
	if sentinel == nil {
		return fmt.Errorf("client: server answered %d: %s", status, message)
	}
	return &apperror.AppError{Err: sentinel, Message: message, Field: body.Field}
}

func sentinelForStatus(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperror.ErrValidation
	case http.StatusUnauthorized:
		return apperror.ErrUnauthorized
	case http.StatusForbidden:
		return apperror.ErrForbidden
	case http.StatusNotFound:
		return apperror.ErrNotFound
	case http.StatusConflict:
		return apperror.ErrConflict
	case http.StatusTooManyRequests:
		return apperror.ErrRateLimited
	default:
		return nil
	}
}

// path joins escaped segments into an API path with the trailing slash the
// server's routes are documented with.
func path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	b.WriteByte('/')
	return b.String()
}

// isNotFound is shorthand used by callers that tolerate missing resources.
func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
