// Package server provides HTTP routing, middleware, and the local OAuth redirect handler used by `flow auth login`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [LoggingMiddleware] and [RecoverMiddleware] log through charmbracelet/log.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Token Handler
//
// VK standalone apps use the implicit grant, so tokens come back in the redirect fragment. [TokenHandler]
// serves /callback, a page that forwards the fragment to /token, where the tokens are extracted and sent
// through a channel. It only processes one redirect per login attempt.
//
// # Lifecycle
//
// [Listen] starts a temporary server on the configured address (127.0.0.1:3000 by default); the CLI shuts it
// down once a result arrives or the login times out.
package server
