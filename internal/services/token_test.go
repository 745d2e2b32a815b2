package services

import (
	"errors"
	"testing"

	"github.com/desertthunder/flow/internal/shared"
)

func TestParseRedirect(t *testing.T) {
	t.Run("Tokens In Fragment", func(t *testing.T) {
		tokens, err := ParseRedirect("https://oauth.vk.com/blank.html#access_token=T&expires_in=E&user_id=U")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if tokens.AccessToken != "T" {
			t.Errorf("expected AccessToken T, got %s", tokens.AccessToken)
		}
		if tokens.ExpiresIn != "E" {
			t.Errorf("expected ExpiresIn E, got %s", tokens.ExpiresIn)
		}
		if tokens.UserID != "U" {
			t.Errorf("expected UserId U, got %s", tokens.UserID)
		}
	})

	t.Run("Reordered Parameters", func(t *testing.T) {
		tokens, err := ParseRedirect("http://127.0.0.1:3000/callback#user_id=42&access_token=abc123&expires_in=86400")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if tokens.AccessToken != "abc123" || tokens.ExpiresIn != "86400" || tokens.UserID != "42" {
			t.Errorf("unexpected tokens %+v", tokens)
		}
	})

	t.Run("Bare Parameter List", func(t *testing.T) {
		tokens, err := ParseRedirect("access_token=T&expires_in=0&user_id=U")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tokens.AccessToken != "T" || tokens.UserID != "U" {
			t.Errorf("unexpected tokens %+v", tokens)
		}
	})

	t.Run("Tokens In Query", func(t *testing.T) {
		tokens, err := ParseRedirect("http://127.0.0.1:3000/token?access_token=T&expires_in=10&user_id=U")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tokens.AccessToken != "T" || tokens.ExpiresIn != "10" {
			t.Errorf("unexpected tokens %+v", tokens)
		}
	})

	t.Run("Error Description", func(t *testing.T) {
		_, err := ParseRedirect("https://oauth.vk.com/blank.html#error=access_denied&error_reason=user_denied&error_description=denied")

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %v", err)
		}
		if authErr.Description != "denied" {
			t.Errorf("expected description denied, got %q", authErr.Description)
		}
		if authErr.Code != "access_denied" {
			t.Errorf("expected code access_denied, got %q", authErr.Code)
		}
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Error("expected error to wrap ErrAuthFailed")
		}
	})

	t.Run("Encoded Error Description", func(t *testing.T) {
		_, err := ParseRedirect("https://oauth.vk.com/blank.html#error=access_denied&error_description=User%20denied%20your%20request")

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %v", err)
		}
		if authErr.Description != "User denied your request" {
			t.Errorf("unexpected description %q", authErr.Description)
		}
	})

	t.Run("Error Without Description", func(t *testing.T) {
		_, err := ParseRedirect("http://localhost/callback?error=server_error")

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %v", err)
		}
		if authErr.Description != "" {
			t.Errorf("expected empty description, got %q", authErr.Description)
		}
	})

	t.Run("Error Alongside Token", func(t *testing.T) {
		tokens, err := ParseRedirect("https://oauth.vk.com/blank.html#access_token=T&expires_in=E&user_id=U&note=error")

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got tokens=%+v err=%v", tokens, err)
		}
		if tokens.AccessToken != "" {
			t.Errorf("expected no tokens, got %+v", tokens)
		}
	})

	t.Run("No Token", func(t *testing.T) {
		_, err := ParseRedirect("https://oauth.vk.com/blank.html")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Empty Token", func(t *testing.T) {
		_, err := ParseRedirect("https://oauth.vk.com/blank.html#access_token=&expires_in=0&user_id=1")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
