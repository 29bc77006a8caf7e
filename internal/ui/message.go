package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/epx/internal/models"
	"github.com/desertthunder/epx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var _ tea.Msg = Msg{}

const (
	MsgEpisodesLoaded MsgKind = iota
	MsgProgressUpdate
	MsgPurgeComplete
)

type episodesLoaded struct {
	episodes []models.Episode
	err      error
}

type purgeComplete struct {
	result *tasks.PurgeResult
	err    error
}

// episodesLoadedMsg is the constructor for [MsgEpisodesLoaded]
func episodesLoadedMsg(episodes []models.Episode, err error) Msg {
	return Msg{kind: MsgEpisodesLoaded, data: episodesLoaded{episodes, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// purgeCompleteMsg is the constructor for [MsgPurgeComplete]
func purgeCompleteMsg(result *tasks.PurgeResult, err error) Msg {
	return Msg{kind: MsgPurgeComplete, data: purgeComplete{result, err}}
}
