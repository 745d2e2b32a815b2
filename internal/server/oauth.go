package server

import (
	"fmt"
	"html"
	"net/http"
	"sync"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
)

// TokenResult contains the result of an implicit grant redirect.
type TokenResult struct {
	Tokens models.TokenSet
	err    error
}

func (t *TokenResult) Error() error {
	return t.err
}

// TokenHandler receives the implicit grant redirect.
//
// The tokens arrive in the URL fragment, which browsers never send to a server. /callback therefore
// serves a page that forwards the fragment to /token as a query string; /token extracts the tokens
// with [services.ParseRedirect]. Implements the Handler interface for registration with a Router.
type TokenHandler struct {
	state      string
	resultChan chan TokenResult
	once       sync.Once
	tokenHit   bool
	mu         sync.Mutex
}

// NewTokenHandler creates a new token handler. When state is non-empty the redirect must echo it back.
func NewTokenHandler(state string) *TokenHandler {
	return &TokenHandler{
		state:      state,
		resultChan: make(chan TokenResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *TokenHandler) Routes() []string {
	return []string{"/callback", "/token"}
}

// ServeHTTP dispatches to the relay page or the token endpoint.
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/callback":
		q := r.URL.Query()
		if q.Has("access_token") || q.Has("error") {
			h.serveToken(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		fmt.Fprint(w, relayPage)
	case "/token":
		h.serveToken(w, r)
	default:
		http.NotFound(w, r)
	}
}

// serveToken extracts the tokens from the request URL. Only the first request carrying a token or
// an error is processed; anything else (a prefetch, a reload without parameters) is turned away
// without completing the flow.
func (h *TokenHandler) serveToken(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query(); !q.Has("access_token") && !q.Has("error") {
		writePage(w, http.StatusBadRequest, "Waiting For Authorization", "This address carries no authorization result.")
		return
	}

	h.mu.Lock()
	if h.tokenHit {
		h.mu.Unlock()
		http.Error(w, "Redirect already processed", http.StatusBadRequest)
		return
	}
	h.tokenHit = true
	h.mu.Unlock()

	if h.state != "" && r.URL.Query().Get("state") != h.state {
		h.Send(TokenResult{err: fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)})
		writePage(w, http.StatusBadRequest, "Authorization Failed", "Invalid state parameter.")
		return
	}

	tokens, err := services.ParseRedirect(r.URL.String())
	if err != nil {
		h.Send(TokenResult{err: err})
		writePage(w, http.StatusBadRequest, "Authorization Failed", err.Error())
		return
	}

	h.Send(TokenResult{Tokens: tokens})
	writePage(w, http.StatusOK, "✓ Authorization Successful", "You can close this window and return to the terminal.")
}

// Send sends the result through the channel (only once).
func (h *TokenHandler) Send(result TokenResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *TokenHandler) Result() <-chan TokenResult {
	return h.resultChan
}

const relayPage = `<!DOCTYPE html>
<html>
<head>
    <title>flow</title>
    <script>
        var params = window.location.hash.substring(1);
        window.location.replace("/token" + (params ? "?" + params : ""));
    </script>
</head>
<body>
    <noscript>Enable JavaScript, or paste this page's address into <code>flow auth token --url</code>.</noscript>
</body>
</html>
`

func writePage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>%[1]s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #4a76a8; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%[1]s</h1>
        <p>%[2]s</p>
    </div>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(message))
}
