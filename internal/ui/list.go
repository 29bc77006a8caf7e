package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/epx/internal/models"
)

var _ list.Item = episodeItem{}

// episodeItem wraps [models.Episode] to implement [list.Item].
//
// selected is shared with the model so toggling never rebuilds the list.
type episodeItem struct {
	episode  models.Episode
	selected map[string]bool
}

func (i episodeItem) FilterValue() string { return i.episode.Name + " " + i.episode.ShowName }

func (i episodeItem) Title() string {
	mark := "[ ]"
	if i.selected[i.episode.ID] {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s", mark, i.episode.Name)
}

func (i episodeItem) Description() string {
	return fmt.Sprintf("%s • released %s", i.episode.ShowName, i.episode.ReleaseDate)
}
