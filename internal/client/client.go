// Package client is the Go SDK for the Evently REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

// TokenSource returns the bearer token for the next request, or "" for none.
type TokenSource func() string

type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	Token      TokenSource
	Logger     *slog.Logger
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   TokenSource
	logger  *slog.Logger

	Users         *UsersClient
	Events        *EventsClient
	Spaces        *SpacesClient
	Services      *ServicesClient
	Bookings      *BookingsClient
	Notifications *NotificationsClient
	Conversations *ConversationsClient
	Wishlist      *WishlistClient
	Reviews       *ReviewsClient
	Payments      *PaymentsClient
}

// New returns a client for baseURL, e.g. "http://localhost:8080/api/v1".
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Client{baseURL: u, http: hc, token: opts.Token, logger: opts.Logger}
	c.Users = &UsersClient{c: c}
	c.Events = &EventsClient{c: c}
	c.Spaces = &SpacesClient{c: c}
	c.Services = &ServicesClient{c: c}
	c.Bookings = &BookingsClient{c: c}
	c.Notifications = &NotificationsClient{c: c}
	c.Conversations = &ConversationsClient{c: c}
	c.Wishlist = &WishlistClient{c: c}
	c.Reviews = &ReviewsClient{c: c}
	c.Payments = &PaymentsClient{c: c}
	return c, nil
}

// SetToken replaces the token source, e.g. after sign-in.
func (c *Client) SetToken(ts TokenSource) { c.token = ts }

// BaseURL is the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// envelope mirrors the server's ApiResponse.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Field   string          `json:"field"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Total   int             `json:"total"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int
}

// ListOptions are the common listing query parameters.
type ListOptions struct {
	Page    int
	Limit   int
	Status  string
	Filters map[string]string
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	for k, v := range o.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and decodes the envelope's data into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return nil, ctx.Err()
		}
		c.logger.Debug("Request failed", "method", method, "path", path, "error", err)
		return nil, classify(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 400 {
			return nil, fmt.Errorf("invalid response from %s %s: %w", method, path, err)
		}
	}
	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp.StatusCode, &env)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("invalid %s %s payload: %w", method, path, err)
		}
	}
	return &env, nil
}

func list[T any](ctx context.Context, c *Client, path string, opts ListOptions) (*Page[T], error) {
	var items []T
	env, err := c.do(ctx, http.MethodGet, path, opts.values(), nil, &items)
	if err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Page: env.Page, Limit: env.Limit, Total: env.Total}, nil
}

func pathEscape(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return strings.Join(escaped, "/")
}

var errEmptyID = errors.New("id is required")
