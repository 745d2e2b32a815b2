// Package services defines the [Service] interface for music providers and implements it for the VK audio API.
//
// # Service Interface
//
// A provider accepts the tokens of an authorization flow and serves playlists described by a [models.Request].
//
// # VK Implementation
//
// [VKService] fetches XML playlists from four methods: the user's own audio, recommendations,
// popular by genre and search. Requests go through a [rate.Limiter] and a per-request timeout.
// [VKService.Call] exposes raw method calls for debugging.
//
// # Authorization
//
// VK standalone apps use the OAuth implicit grant: [OAuth.AuthURL] builds the consent page URL
// and the tokens come back in the fragment of the redirect, which [ParseRedirect] reads by name.
//
// # Parsing
//
// [ParsePlaylist] walks the response document in order and keeps entries that carry artist,
// title, duration and url; incomplete entries are counted and dropped. [ParseResponse] also
// recognizes the API's error envelope.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called, or a redirect without a token
//   - [shared.ErrAuthFailed] : the redirect reported an error, see [AuthError]
//   - [shared.ErrAPIRequest] : HTTP failure or API error envelope, see [APIError]
//   - [shared.ErrTimeout] : the request did not finish in time
//   - [shared.ErrInvalidArgument] : unknown genre or playlist kind
package services
