package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/shared"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *VKService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv := NewVKService(VKOptions{BaseURL: server.URL + "/method/", HTTPClient: server.Client()})
	if err := srv.Authenticate(context.Background(), testTokens); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	return srv
}

func TestVKService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			srv := NewVKService(VKOptions{})

			if srv.baseURL != DefaultBaseURL {
				t.Errorf("expected default baseURL, got %s", srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if srv.Name() != "VK" {
				t.Errorf("expected name VK, got %s", srv.Name())
			}
			if len(srv.Genres()) != len(Genres()) {
				t.Error("expected service genres to match genre list")
			}
		})

		t.Run("Rate Limit", func(t *testing.T) {
			srv := NewVKService(VKOptions{RateLimit: 3})
			if srv.limiter.Limit() != 3 {
				t.Errorf("expected limit 3, got %v", srv.limiter.Limit())
			}
		})
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv := NewVKService(VKOptions{})

		if _, ok := srv.Tokens(); ok {
			t.Error("expected no tokens before Authenticate")
		}

		err := srv.Authenticate(context.Background(), models.TokenSet{AccessToken: "x"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}

		if err := srv.Authenticate(context.Background(), testTokens); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tokens, ok := srv.Tokens()
		if !ok || tokens != testTokens {
			t.Errorf("expected stored tokens, got %+v", tokens)
		}
	})

	t.Run("Playlist", func(t *testing.T) {
		t.Run("Not Authenticated", func(t *testing.T) {
			srv := NewVKService(VKOptions{})
			_, err := srv.Playlist(context.Background(), models.Request{Kind: models.KindUser})
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("User Audio", func(t *testing.T) {
			var got *url.URL
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.URL
				w.Header().Set("Content-Type", "application/xml")
				fmt.Fprint(w, audioXML)
			})

			export, err := srv.Playlist(context.Background(), models.Request{Kind: models.KindUser})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if got.Path != "/method/audio.get.xml" {
				t.Errorf("unexpected path %s", got.Path)
			}
			if got.Query().Get("access_token") != "secret" {
				t.Error("expected access token to be sent")
			}
			if len(export.Items) != 2 || export.Dropped != 1 {
				t.Errorf("expected 2 items and 1 dropped, got %d and %d", len(export.Items), export.Dropped)
			}
			if export.Name != "My audio" {
				t.Errorf("expected name My audio, got %s", export.Name)
			}
			if export.FetchedAt.IsZero() {
				t.Error("expected FetchedAt to be set")
			}
		})

		t.Run("Search Escaping", func(t *testing.T) {
			var q url.Values
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				q = r.URL.Query()
				fmt.Fprint(w, "<response/>")
			})

			req := models.Request{Kind: models.KindSearch, Query: "rock & roll", ArtistOnly: true}
			export, err := srv.Playlist(context.Background(), req)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if q.Get("q") != "rock & roll" || q.Get("performer_only") != "1" {
				t.Errorf("unexpected query %v", q)
			}
			if len(export.Items) != 0 {
				t.Errorf("expected empty playlist, got %d", len(export.Items))
			}
		})

		t.Run("Error Envelope", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "<error><error_code>5</error_code><error_msg>User authorization failed</error_msg></error>")
			})

			_, err := srv.Playlist(context.Background(), models.Request{Kind: models.KindSuggested})

			var apiErr *APIError
			if !errors.As(err, &apiErr) || !apiErr.AuthorizationFailed() {
				t.Errorf("expected authorization APIError, got %v", err)
			}
		})

		t.Run("HTTP Status", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			})

			_, err := srv.Playlist(context.Background(), models.Request{Kind: models.KindUser})
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Timeout", func(t *testing.T) {
			release := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}))
			defer server.Close()
			defer close(release)

			srv := NewVKService(VKOptions{BaseURL: server.URL, HTTPClient: server.Client(), Timeout: 50 * time.Millisecond})
			_ = srv.Authenticate(context.Background(), testTokens)

			_, err := srv.Playlist(context.Background(), models.Request{Kind: models.KindUser})
			if !errors.Is(err, shared.ErrTimeout) {
				t.Errorf("expected ErrTimeout, got %v", err)
			}
		})

		t.Run("Invalid Request", func(t *testing.T) {
			calls := 0
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
			})

			_, err := srv.Playlist(context.Background(), models.Request{Kind: models.KindPopular, Genre: "Polka"})
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
			if calls != 0 {
				t.Errorf("expected no request, got %d", calls)
			}
		})
	})

	t.Run("Call", func(t *testing.T) {
		t.Run("Raw Body", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("owner_id") != "7" {
					t.Errorf("expected owner_id parameter, got %v", r.URL.Query())
				}
				fmt.Fprint(w, "<response><count>3</count></response>")
			})

			resp, err := srv.Call(context.Background(), "/audio.getCount.xml", url.Values{"owner_id": {"7"}})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.Method != "audio.getCount.xml" || !resp.IsXML {
				t.Errorf("unexpected response %+v", resp)
			}
			if !strings.Contains(string(resp.Body), "<count>3</count>") {
				t.Errorf("unexpected body %s", resp.Body)
			}
			if strings.Contains(resp.URL, "secret") || !strings.Contains(resp.URL, "REDACTED") {
				t.Errorf("expected token to be redacted, got %s", resp.URL)
			}
		})

		t.Run("Error Envelope", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "<error><error_code>6</error_code><error_msg>Too many requests per second</error_msg></error>")
			})

			resp, err := srv.Call(context.Background(), "audio.get.xml", nil)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if resp == nil || len(resp.Body) == 0 {
				t.Error("expected body alongside the error")
			}
		})

		t.Run("JSON Passthrough", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"error":{"error_code":5}}`)
			})

			resp, err := srv.Call(context.Background(), "users.get", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsXML {
				t.Error("expected non-XML response")
			}
		})

		t.Run("Missing Method", func(t *testing.T) {
			srv := NewVKService(VKOptions{})
			if _, err := srv.Call(context.Background(), " ", nil); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})
}
