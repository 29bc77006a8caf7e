// package models defines the data model for saved episodes
package models

// Show is the podcast an episode belongs to.
type Show struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
}

// SpotifyEpisode is the episode object returned by the Web API.
type SpotifyEpisode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	DurationMS  int    `json:"duration_ms"`
	URI         string `json:"uri"`
	Show        Show   `json:"show"`
}

// SavedEpisode is one item of the user's "Your Episodes" collection.
type SavedEpisode struct {
	AddedAt string         `json:"added_at"`
	Episode SpotifyEpisode `json:"episode"`
}

// EpisodePage is a single page of saved episodes.
//
// Next is nil on the last page.
type EpisodePage struct {
	Items    []SavedEpisode `json:"items"`
	Total    int            `json:"total"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
}

// Episode is the flattened reference used for display and deletion.
// Only ID is needed to delete.
type Episode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ShowName    string `json:"show"`
	ReleaseDate string `json:"release_date"`
	AddedAt     string `json:"added_at,omitempty"`
	DurationMS  int    `json:"duration_ms,omitempty"`
	URI         string `json:"uri,omitempty"`
}

// Flatten converts a saved item into an [Episode].
func (s SavedEpisode) Flatten() Episode {
	return Episode{
		ID:          s.Episode.ID,
		Name:        s.Episode.Name,
		ShowName:    s.Episode.Show.Name,
		ReleaseDate: s.Episode.ReleaseDate,
		AddedAt:     s.AddedAt,
		DurationMS:  s.Episode.DurationMS,
		URI:         s.Episode.URI,
	}
}

// Episodes flattens every item on the page.
func (p *EpisodePage) Episodes() []Episode {
	episodes := make([]Episode, 0, len(p.Items))
	for _, item := range p.Items {
		episodes = append(episodes, item.Flatten())
	}
	return episodes
}

// IDs returns the episode ids of the given episodes, in order.
func IDs(episodes []Episode) []string {
	ids := make([]string, 0, len(episodes))
	for _, e := range episodes {
		ids = append(ids, e.ID)
	}
	return ids
}
