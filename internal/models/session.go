package models

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// TokenSet holds the values carried by an OAuth redirect. Set once per authorization; never refreshed.
type TokenSet struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
	UserID      string `json:"user_id"`
}

// Lifetime returns ExpiresIn as a duration. Zero means the token does not expire.
func (t TokenSet) Lifetime() time.Duration {
	n, err := strconv.Atoi(t.ExpiresIn)
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

// Token converts the set into an [oauth2.Token] issued at the given time.
func (t TokenSet) Token(issued time.Time) *oauth2.Token {
	token := &oauth2.Token{AccessToken: t.AccessToken, TokenType: "Bearer"}
	if d := t.Lifetime(); d > 0 {
		token.Expiry = issued.Add(d)
	}
	return token.WithExtra(map[string]any{"user_id": t.UserID})
}

// Session is a persisted [TokenSet].
type Session struct {
	id        string
	tokens    TokenSet
	issuedAt  time.Time
	createdAt time.Time
}

// NewSession creates a session for tokens issued at issuedAt.
func NewSession(tokens TokenSet, issuedAt time.Time) *Session {
	return &Session{tokens: tokens, issuedAt: issuedAt, createdAt: time.Now()}
}

// RestoreSession rebuilds a session read from storage.
func RestoreSession(id string, tokens TokenSet, issuedAt, createdAt time.Time) *Session {
	return &Session{id: id, tokens: tokens, issuedAt: issuedAt, createdAt: createdAt}
}

func (s *Session) ID() string { return s.id }
func (s *Session) SetID(id string) { s.id = id }
func (s *Session) Tokens() TokenSet { return s.tokens }
func (s *Session) IssuedAt() time.Time { return s.issuedAt }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) UpdatedAt() time.Time { return s.createdAt }

// Token returns the session as an [oauth2.Token]; its Valid method reports expiry.
func (s *Session) Token() *oauth2.Token {
	return s.tokens.Token(s.issuedAt)
}

// Validate requires an access token and a user id.
func (s *Session) Validate() error {
	if s.tokens.AccessToken == "" {
		return fmt.Errorf("access token is required")
	}
	if s.tokens.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	return nil
}
