// Package models defines the Spotify "Your Episodes" data transfer objects used across epx.
//
// Wire types mirror the Web API JSON:
//   - [EpisodePage] : one page of the saved-episodes collection, with the Next cursor
//   - [SavedEpisode] : an item of that page (added_at + episode)
//   - [SpotifyEpisode] and [Show] : episode and parent show metadata
//
// [Episode] is the flattened form shown to the user and exported by the formatter package.
// Deletion only ever needs [Episode.ID].
package models
