package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/havokzero/myrient-browser/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrEmptyURL is returned when no listing URL was given.
var ErrEmptyURL = errors.New("empty URL")

// StatusError is returned when the index server answers with a non-2xx status.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status: %s (%s)", e.Status, e.URL)
}

// Temporary reports whether the request is worth repeating.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Options configures an HTTPIndex. Zero values mean defaults.
type Options struct {
	// ProxyURL routes requests through an allorigins-style relay; the target
	// URL is query-escaped and appended. Empty means direct requests.
	ProxyURL string
	Timeout  time.Duration
	// Retries is the number of extra attempts after a failed fetch.
	Retries int
	// RequestsPerSecond throttles fetches; 0 disables throttling.
	RequestsPerSecond float64
	UserAgent         string
	Logger            *zap.Logger
}

// HTTPIndex fetches and parses simple HTML directory indexes (like Myrient).
type HTTPIndex struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewHTTPIndex(opts Options) *HTTPIndex {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &HTTPIndex{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		logger: logger,
	}
	if opts.RequestsPerSecond > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return h
}

// List returns all file/directory entries found at the given URL.
//
// A page without entries is a successful empty result; transport failures
// are returned as errors and never as an empty listing.
func (h *HTTPIndex) List(ctx context.Context, rawURL string) ([]domain.DirectoryEntry, error) {
	page, err := h.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	entries := ParseListing(page)
	h.logger.Debug("Parsed listing",
		zap.String("url", rawURL),
		zap.Int("entries", len(entries)))
	return entries, nil
}

// Fetch returns the raw HTML of the index page at rawURL, retrying network
// errors and 5xx responses.
func (h *HTTPIndex) Fetch(ctx context.Context, rawURL string) (string, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= h.opts.Retries; attempt++ {
		if attempt > 0 {
			h.logger.Info("Retrying listing fetch",
				zap.String("url", target),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))
		}
		page, err := h.fetchOnce(ctx, target)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}
	return "", lastErr
}

func (h *HTTPIndex) fetchOnce(ctx context.Context, target string) (string, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	reqURL := target
	if h.opts.ProxyURL != "" {
		reqURL = h.opts.ProxyURL + url.QueryEscape(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if h.opts.UserAgent != "" {
		req.Header.Set("User-Agent", h.opts.UserAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", &StatusError{URL: target, Code: resp.StatusCode, Status: resp.Status}
	}

	if h.opts.ProxyURL != "" {
		var relayed struct {
			Contents string `json:"contents"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&relayed); err != nil {
			return "", fmt.Errorf("decode proxy response: %w", err)
		}
		return relayed.Contents, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

func normalizeURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", ErrEmptyURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" {
		// "host/path" parses as a bare path; reparse with a scheme.
		u, err = url.Parse("https://" + rawURL)
		if err != nil {
			return "", fmt.Errorf("invalid url: %w", err)
		}
	}
	return u.String(), nil
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
