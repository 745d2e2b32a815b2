// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
)

// MockService is a test double for [services.Service].
//
// Playlists are looked up by [models.Request.Name]; requests without an entry get [MockService.Default],
// or a generated three item playlist when that is nil. Errors maps request names to failures.
type MockService struct {
	Playlists map[string]models.Playlist
	Errors    map[string]error
	Default   models.Playlist
	AuthErr   error
	Delay     time.Duration

	mu       sync.Mutex
	tokens   *models.TokenSet
	requests []models.Request
}

func (m *MockService) Authenticate(ctx context.Context, tokens models.TokenSet) error {
	if m.AuthErr != nil {
		return m.AuthErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = &tokens
	return nil
}

func (m *MockService) Playlist(ctx context.Context, req models.Request) (*models.PlaylistExport, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", shared.ErrTimeout, ctx.Err())
		}
	}

	name := req.Name()
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}

	items, ok := m.Playlists[name]
	if !ok {
		items = m.Default
	}
	if items == nil {
		items = SamplePlaylist(name, 3)
	}

	return &models.PlaylistExport{Request: req, Name: name, Items: items, FetchedAt: time.Now()}, nil
}

func (m *MockService) Genres() []services.Genre { return services.Genres() }
func (m *MockService) Name() string { return "mock" }

// Requests returns every request received so far, in arrival order.
func (m *MockService) Requests() []models.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Request(nil), m.requests...)
}

// Tokens returns the tokens passed to Authenticate, if any.
func (m *MockService) Tokens() (models.TokenSet, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		return models.TokenSet{}, false
	}
	return *m.tokens, true
}

// SamplePlaylist builds n complete items whose titles are prefixed by prefix.
func SamplePlaylist(prefix string, n int) models.Playlist {
	items := make(models.Playlist, n)
	for i := range items {
		items[i] = models.PlaylistItem{
			Artist:   fmt.Sprintf("Artist %d", i+1),
			Title:    fmt.Sprintf("%s %d", prefix, i+1),
			Duration: fmt.Sprintf("%d", 180+i*15),
			URL:      fmt.Sprintf("https://cs1.vk.me/audio/%d.mp3", i+1),
		}
	}
	return items
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
