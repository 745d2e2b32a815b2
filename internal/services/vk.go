// VK audio API implementation of [Service]
//
// Responses are XML documents, see [ParseResponse].
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/shared"
	"golang.org/x/time/rate"
)

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 16 << 20

// VKOptions configures a [VKService].
type VKOptions struct {
	BaseURL    string        // defaults to [DefaultBaseURL]
	HTTPClient *http.Client  // defaults to [http.DefaultClient]
	RateLimit  float64       // requests per second; non-positive disables limiting
	Timeout    time.Duration // per request; non-positive means no timeout beyond ctx
}

// VKService implements [Service] for the VK audio API.
//
// Requests are rate limited and bounded by a timeout so a stalled request fails instead of hanging.
type VKService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration

	mu     sync.RWMutex
	tokens *models.TokenSet
}

// NewVKService creates a service with the given options.
func NewVKService(opts VKOptions) *VKService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &VKService{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, 1),
		timeout:    opts.Timeout,
	}
}

// Authenticate stores the tokens used by every subsequent request.
func (s *VKService) Authenticate(ctx context.Context, tokens models.TokenSet) error {
	if tokens.AccessToken == "" || tokens.UserID == "" {
		return fmt.Errorf("%w: access token and user id are required", shared.ErrMissingCredentials)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = &tokens
	return nil
}

// Tokens returns the stored tokens and whether [VKService.Authenticate] has been called.
func (s *VKService) Tokens() (models.TokenSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return models.TokenSet{}, false
	}
	return *s.tokens, true
}

func (s *VKService) Name() string {
	return "VK"
}

func (s *VKService) Genres() []Genre {
	return Genres()
}

// Playlist fetches and parses the playlist described by req.
func (s *VKService) Playlist(ctx context.Context, req models.Request) (*models.PlaylistExport, error) {
	tokens, ok := s.Tokens()
	if !ok {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	endpoint, err := RequestURL(s.baseURL, tokens, req)
	if err != nil {
		return nil, err
	}

	body, err := s.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	playlist, dropped, err := ParseResponse(io.LimitReader(body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	return &models.PlaylistExport{
		Request:   req,
		Name:      req.Name(),
		Items:     playlist,
		Dropped:   dropped,
		FetchedAt: time.Now(),
	}, nil
}

// cancelOnClose releases the request timeout once the body has been consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

// get waits for the rate limiter and performs a GET, returning the body of a 2xx response.
func (s *VKService) get(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	cancel := context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		cancel()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}
