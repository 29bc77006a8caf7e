// Package services implements the two Spotify clients used by epx.
//
// # Auth Client
//
// [AuthClient] wraps [oauth2.Config] for the Authorization Code flow: it builds the
// consent URL, exchanges the returned code and refreshes access tokens. Exchange
// sends client credentials in the request body; refresh uses HTTP Basic auth.
//
// # Resource Client
//
// [EpisodeService] calls the "Your Episodes" endpoints with [resty.Client]:
//   - [EpisodeService.AllSavedEpisodeIDs] : limit/offset pagination until next is null
//   - [EpisodeService.SavedEpisodes] : a single page
//   - [EpisodeService.RemoveEpisodes] : one DELETE of up to [MaxIDsPerRequest] ids, reported as a bool
//
// # Error Handling
//
// Every non-2xx response becomes a [shared.APIError] holding the status and body:
//   - [shared.ErrTokenExpired] : 401, the caller may refresh and retry once
//   - [shared.ErrAuthFailed] : any other token endpoint failure
//   - [shared.ErrAPIRequest] : any other Web API failure
package services
