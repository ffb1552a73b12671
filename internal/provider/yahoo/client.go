// Package yahoo implements provider.MarketData against the Yahoo Finance web API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/qwlai/reit-tracker/internal/logger"
	"github.com/qwlai/reit-tracker/internal/provider"
)

const (
	userAgent        = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultCookieURL = "https://fc.yahoo.com"
	crumbPath        = "/v1/test/getcrumb"
)

// ErrNotFound is returned when the provider does not know the symbol.
var ErrNotFound = errors.New("yahoo: symbol not found")

// Options configures a Client.
//
// Fields:
//   - BaseURL: API root, e.g. "https://query2.finance.yahoo.com".
//   - CookieURL: page fetched once to obtain the session cookie; empty skips it.
//   - Timeout: per-request timeout of the underlying http.Client.
type Options struct {
	BaseURL   string
	CookieURL string
	Timeout   time.Duration
}

// Client is a Yahoo Finance session. It lazily obtains a cookie and crumb on
// first use and reuses them for every later call. Safe for concurrent use.
type Client struct {
	baseURL   string
	cookieURL string
	http      *http.Client

	mu    sync.Mutex
	crumb string

	now func() time.Time
}

var _ provider.MarketData = (*Client)(nil)

// New builds a Client. A zero Timeout falls back to 15 seconds.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		cookieURL: opts.CookieURL,
		http:      &http.Client{Jar: jar, Timeout: opts.Timeout},
		now:       time.Now,
	}
}

// NewDefault builds a Client for the public endpoint with the usual cookie page.
func NewDefault(baseURL string, timeout time.Duration) *Client {
	return New(Options{BaseURL: baseURL, CookieURL: defaultCookieURL, Timeout: timeout})
}

// session returns the crumb, fetching it on first use.
func (c *Client) session(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crumb != "" {
		return c.crumb, nil
	}

	if c.cookieURL != "" {
		// The cookie page usually answers 404; only the Set-Cookie header matters.
		resp, err := c.do(ctx, c.cookieURL)
		if err != nil {
			return "", fmt.Errorf("fetch cookie: %w", err)
		}
		_ = resp.Body.Close()
	}

	resp, err := c.do(ctx, c.baseURL+crumbPath)
	if err != nil {
		return "", fmt.Errorf("fetch crumb: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if resp.StatusCode != http.StatusOK || crumb == "" || strings.Contains(crumb, "<html") {
		return "", fmt.Errorf("invalid crumb (status %d)", resp.StatusCode)
	}
	c.crumb = crumb
	logger.L().Debug().Msg("yahoo session established")
	return crumb, nil
}

func (c *Client) do(ctx context.Context, addr string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

// getJSON performs an authenticated GET of path and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	crumb, err := c.session(ctx)
	if err != nil {
		return err
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("crumb", crumb)
	addr := c.baseURL + path + "?" + q.Encode()

	resp, err := c.do(ctx, addr)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("GET %s: %w", path, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("GET %s: status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// rawValue is Yahoo's {"raw": 1.5, "fmt": "1.50"} number envelope; an empty
// object means the provider has no value.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v rawValue) float() float64 {
	if v.Raw == nil {
		return 0
	}
	return *v.Raw
}

func (v rawValue) ptr() *float64 {
	if v.Raw == nil {
		return nil
	}
	f := *v.Raw
	return &f
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) err() error {
	if e == nil {
		return nil
	}
	if strings.EqualFold(e.Code, "Not Found") {
		return fmt.Errorf("%s: %w", e.Description, ErrNotFound)
	}
	return fmt.Errorf("yahoo: %s: %s", e.Code, e.Description)
}
