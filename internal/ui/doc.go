// Package ui implements the interactive episode browser using bubbletea's Elm architecture.
//
// The TUI walks through:
//  1. [LoadingView] : fetch every saved episode
//  2. [EpisodeListView] : browse, filter and select episodes (space, a)
//  3. [ConfirmView] : confirm deletion of the selection (y/n)
//  4. [PurgeView] : live batch progress from the purge engine
//  5. [ResultView] : removed count and failed batches; r reloads, q quits
//
// The [Model] talks to Spotify only through a [Backend], which owns tokens and re-authorization.
// Progress updates flow through a channel fed by [tasks.PurgeEngine].
package ui
