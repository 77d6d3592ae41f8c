package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/interfaces"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit caps requests per second against the content origin.
	DefaultRateLimit = 20
)

// HTTPSource fetches content from a static HTTP origin
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// HTTPOption configures the HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.httpClient = httpClient
	}
}

// WithTimeout sets the request timeout; zero keeps the default.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if timeout > 0 {
			s.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) HTTPOption {
	return func(s *HTTPSource) {
		s.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) HTTPOption {
	return func(s *HTTPSource) {
		s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewHTTPSource creates a source reading from baseURL
func NewHTTPSource(baseURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *HTTPSource) Root() string { return s.baseURL }

// Open issues a GET for path. The size is the Content-Length, -1 when the origin omits it.
func (s *HTTPSource) Open(ctx context.Context, p string) (io.ReadCloser, int64, error) {
	rel, err := cleanPath(p)
	if err != nil {
		return nil, 0, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL := s.baseURL + "/" + escapePath(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug().
			Str("url", reqURL).
			Msg("Content request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, 0, fmt.Errorf("%s: %w", p, interfaces.ErrContentNotFound)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, 0, fmt.Errorf("content request for %s failed with status %d", p, resp.StatusCode)
	}

	return resp.Body, resp.ContentLength, nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
