// Package client is a typed Go client for the storefront REST API. It keeps
// the signed-in session, a cart and a wishlist in a pluggable Store and
// refreshes expired access tokens transparently.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

const apiPrefix = "/api/v1"

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront api: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to one storefront deployment. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	store   Store

	Auth       *AuthAPI
	Products   *ProductsAPI
	Orders     *OrdersAPI
	Users      *UsersAPI
	Artworks   *ArtworksAPI
	Newsletter *NewsletterAPI
	Analytics  *AnalyticsAPI

	Cart     *Cart
	Wishlist *Wishlist
}

type options struct {
	store     Store
	transport http.RoundTripper
	jar       http.CookieJar
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*options)

// WithStore persists the session, cart and wishlist in s. The default is an
// in-memory store.
func WithStore(s Store) Option {
	return func(o *options) { o.store = s }
}

// WithTransport sets the underlying transport. Defaults to http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithCookieJar replaces the jar that holds the refresh cookie.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) { o.jar = jar }
}

// WithTimeout bounds every request, including uploads. Defaults to 3 minutes.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// New returns a Client for the API served at baseURL (scheme and host, with
// an optional path prefix in front of /api/v1).
func New(baseURL string, opts ...Option) (*Client, error) {
	o := options{timeout: 3 * time.Minute}
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = NewMemoryStore()
	}
	if o.transport == nil {
		o.transport = http.DefaultTransport
	}
	if o.jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		o.jar = jar
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("storefront client: invalid base url %q", baseURL)
	}

	session, err := loadSession(o.store)
	if err != nil {
		return nil, err
	}
	cart, err := NewCart(o.store)
	if err != nil {
		return nil, err
	}
	wishlist, err := NewWishlist(o.store)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:  strings.TrimRight(u.String(), "/") + apiPrefix,
		session:  session,
		store:    o.store,
		Cart:     cart,
		Wishlist: wishlist,
	}
	c.http = &http.Client{
		Jar:     o.jar,
		Timeout: o.timeout,
		Transport: &refreshTransport{
			base:    o.transport,
			session: session,
			refresh: c.refreshToken,
		},
	}

	c.Auth = &AuthAPI{c: c}
	c.Products = &ProductsAPI{c: c}
	c.Orders = &OrdersAPI{c: c}
	c.Users = &UsersAPI{c: c}
	c.Artworks = &ArtworksAPI{c: c}
	c.Newsletter = &NewsletterAPI{c: c}
	c.Analytics = &AnalyticsAPI{c: c}
	return c, nil
}

// Session returns the signed-in session state.
func (c *Client) Session() *Session { return c.session }

// File is an upload attached to a multipart request.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return http.NewRequestWithContext(ctx, method, target, body)
}

// do sends a JSON request and decodes a JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.send(req, out)
}

// upload sends fields and files as multipart/form-data.
func (c *Client) upload(ctx context.Context, method, path string, fields map[string]string, fileField string, files []File, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, f.Name))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, method, path, nil, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw, err = io.ReadAll(resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := http.StatusText(resp.StatusCode)
	if json.Unmarshal(raw, &envelope) == nil {
		switch {
		case envelope.Error != "":
			msg = envelope.Error
		case envelope.Message != "":
			msg = envelope.Message
		}
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// refreshToken exchanges the refresh cookie for a new access token and
// stores the new session. A failed refresh signs the client out.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, nil, &resp); err != nil {
		_ = c.session.Clear()
		return "", err
	}
	if err := c.session.Set(resp.AccessToken, resp.User); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}
