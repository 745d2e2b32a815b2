package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Method Patterns", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "pong")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("expected pong, got %d %s", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle("", "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("Logging Omits Query", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		logger.SetLevel(log.DebugLevel)

		handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/token?access_token=secret", nil))

		out := buf.String()
		if !strings.Contains(out, "/token") || !strings.Contains(out, "418") {
			t.Errorf("expected path and status in log, got %s", out)
		}
		if strings.Contains(out, "secret") {
			t.Error("access token leaked into the log")
		}
	})

	t.Run("Recover", func(t *testing.T) {
		logger := log.New(io.Discard)
		handler := RecoverMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func receive(t *testing.T, h *TokenHandler) TokenResult {
	t.Helper()
	select {
	case res := <-h.Result():
		return res
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
		return TokenResult{}
	}
}

func TestTokenHandler(t *testing.T) {
	t.Run("Relay Page", func(t *testing.T) {
		h := NewTokenHandler("")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "location.hash") {
			t.Error("expected relay script")
		}

		select {
		case <-h.Result():
			t.Error("relay page should not deliver a result")
		default:
		}
	})

	t.Run("Token Delivered", func(t *testing.T) {
		h := NewTokenHandler("s1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?access_token=T&expires_in=0&user_id=U&state=s1", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		res := receive(t, h)
		if res.Error() != nil {
			t.Fatalf("expected no error, got %v", res.Error())
		}
		if res.Tokens.AccessToken != "T" || res.Tokens.UserID != "U" {
			t.Errorf("unexpected tokens %+v", res.Tokens)
		}
	})

	t.Run("Only Once", func(t *testing.T) {
		h := NewTokenHandler("")
		first := httptest.NewRecorder()
		h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/token?access_token=A&user_id=1", nil))
		second := httptest.NewRecorder()
		h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/token?access_token=B&user_id=1", nil))

		if second.Code != http.StatusBadRequest {
			t.Errorf("expected second redirect to be rejected, got %d", second.Code)
		}
		if res := receive(t, h); res.Tokens.AccessToken != "A" {
			t.Errorf("expected first token, got %s", res.Tokens.AccessToken)
		}
		if _, open := <-h.Result(); open {
			t.Error("expected channel to be closed")
		}
	})

	t.Run("Empty Request Does Not Complete", func(t *testing.T) {
		h := NewTokenHandler("s1")
		prefetch := httptest.NewRecorder()
		h.ServeHTTP(prefetch, httptest.NewRequest(http.MethodGet, "/token", nil))

		if prefetch.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for empty request, got %d", prefetch.Code)
		}
		select {
		case res := <-h.Result():
			t.Fatalf("expected no result yet, got %+v", res)
		default:
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?access_token=T&user_id=U&state=s1", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected real redirect to succeed, got %d", rec.Code)
		}
		if res := receive(t, h); res.Tokens.AccessToken != "T" {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("Error Redirect In Query", func(t *testing.T) {
		h := NewTokenHandler("")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?error=access_denied&error_description=User+denied", nil))

		res := receive(t, h)
		var authErr *services.AuthError
		if !errors.As(res.Error(), &authErr) {
			t.Fatalf("expected AuthError, got %v", res.Error())
		}
		if !strings.Contains(rec.Body.String(), "Authorization Failed") {
			t.Error("expected failure page")
		}
	})

	t.Run("State Mismatch", func(t *testing.T) {
		h := NewTokenHandler("expected")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?access_token=T&user_id=U&state=forged", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if res := receive(t, h); !errors.Is(res.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", res.Error())
		}
	})

	t.Run("Escapes Error Page", func(t *testing.T) {
		h := NewTokenHandler("")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?error=x&error_description=%3Cscript%3E", nil))
		if strings.Contains(rec.Body.String(), "<script>") {
			t.Error("error description must be escaped")
		}
	})
}

func TestListen(t *testing.T) {
	h := NewTokenHandler("")
	router := NewBasicRouter()
	router.Use(LoggingMiddleware(log.New(io.Discard)))
	router.Handler(h)

	srv, err := Listen("127.0.0.1:0", router)
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer srv.Shutdown(context.Background())

	resp, err := http.Get(srv.URL() + "/token?access_token=T&user_id=U")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if res := receive(t, h); res.Tokens.AccessToken != "T" {
		t.Errorf("expected token from live server, got %+v", res)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
	if err, ok := <-srv.Errors(); ok && err != nil {
		t.Errorf("unexpected serve error %v", err)
	}
}
