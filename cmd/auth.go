package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/server"
	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthURL prints the authorization page address for manual logins.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	oauth, err := services.NewOAuth(r.config.VK)
	if err != nil {
		return err
	}

	authURL := oauth.AuthURL(shared.GenerateID())
	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{"url": authURL, "redirect_uri": oauth.RedirectURL()}, false)
	}

	r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	r.writePlain("After granting access, copy the address you are redirected to and run:\n")
	r.writePlain("  flow auth token --url '<address>'\n")
	return nil
}

// AuthLogin performs the implicit grant flow with a local callback server.
//
// Starts the server, opens the browser at the authorization page and stores the
// tokens delivered to /callback as the new session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	timeout := cmd.Duration("timeout")
	state := shared.GenerateID()

	handler := server.NewTokenHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.RecoverMiddleware(r.logger), server.LoggingMiddleware(r.logger))
	router.Handler(handler)

	srv, err := server.Listen(r.config.Server.Addr(), router)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()
	r.logger.Info("callback server listening", "addr", srv.Addr())

	vk := r.config.VK
	if vk.RedirectURI == "" {
		vk.RedirectURI = srv.URL() + "/callback"
	}
	oauth, err := services.NewOAuth(vk)
	if err != nil {
		return err
	}
	authURL := oauth.AuthURL(state)

	r.writePlain("→ Opening browser for authorization...\n")
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.TokenResult
	select {
	case result = <-handler.Result():
	case err := <-srv.Errors():
		return fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := result.Error(); err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	return r.storeSession(ctx, result.Tokens)
}

// AuthToken stores the tokens carried by a redirect address pasted with --url.
func (r *Runner) AuthToken(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.String("url")
	if rawURL == "" {
		return fmt.Errorf("%w: --url flag is required", shared.ErrMissingArgument)
	}

	tokens, err := services.ParseRedirect(rawURL)
	if err != nil {
		return err
	}
	return r.storeSession(ctx, tokens)
}

func (r *Runner) storeSession(ctx context.Context, tokens models.TokenSet) error {
	if err := r.service.Authenticate(ctx, tokens); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	r.authed = true

	if err := r.ensureDatabase(); err != nil {
		return err
	}

	session := models.NewSession(tokens, time.Now())
	if err := r.sessions.Create(session); err != nil {
		return err
	}
	r.logger.Info("session stored", "user_id", tokens.UserID, "session", session.ID())

	r.writePlainln("✓ Authorization successful")
	r.writePlain("  User: %s\n", tokens.UserID)
	if d := tokens.Lifetime(); d > 0 {
		r.writePlain("  Expires: %s\n", session.Token().Expiry.Format(time.RFC3339))
	} else {
		r.writePlain("  Expires: never\n")
	}
	r.writePlain("\nYou can now use: flow playlist mine\n")
	return nil
}

type sessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	Source        string     `json:"source"`
	UserID        string     `json:"user_id,omitempty"`
	IssuedAt      *time.Time `json:"issued_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Valid         bool       `json:"valid"`
}

// AuthStatus reports the session that playlist commands would use.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	status := sessionStatus{Source: "none"}

	if r.config.VK.AccessToken != "" {
		status = sessionStatus{Authenticated: true, Source: "environment", UserID: r.config.VK.UserID, Valid: true}
	} else {
		session, err := r.latestSession()
		switch {
		case err == nil:
			token := session.Token()
			issued := session.IssuedAt()
			status = sessionStatus{
				Authenticated: true,
				Source:        "session",
				UserID:        session.Tokens().UserID,
				IssuedAt:      &issued,
				Valid:         token.Valid(),
			}
			if !token.Expiry.IsZero() {
				status.ExpiresAt = &token.Expiry
			}
		case !errors.Is(err, shared.ErrNotAuthenticated):
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, false)
	}

	if !status.Authenticated {
		r.writePlain("✗ Not authenticated\n")
		return r.writePlain("Run 'flow auth login' to authorize.\n")
	}

	r.writePlain("✓ Authenticated as %s (%s)\n", status.UserID, status.Source)
	if status.IssuedAt != nil {
		r.writePlain("  Issued: %s\n", status.IssuedAt.Format(time.RFC3339))
	}
	switch {
	case status.ExpiresAt == nil:
		r.writePlain("  Expires: never\n")
	case status.Valid:
		r.writePlain("  Expires: %s\n", status.ExpiresAt.Format(time.RFC3339))
	default:
		r.writePlain("  Expired: %s\n", status.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

// AuthLogout deletes every stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureDatabase(); err != nil {
		return err
	}

	sessions, err := r.sessions.List(nil)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		if err := r.sessions.Delete(s.ID()); err != nil {
			return err
		}
	}
	r.authed = false

	r.logger.Info("sessions removed", "count", len(sessions))
	return r.writePlain("✓ Removed %d stored session(s)\n", len(sessions))
}
