package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/epx/internal/models"
	"github.com/desertthunder/epx/internal/tasks"
)

type fakeBackend struct {
	mu       sync.Mutex
	episodes []models.Episode
	loadErr  error
	loads    int
	purged   [][]string
	failed   bool
}

func (f *fakeBackend) LoadEpisodes(ctx context.Context) ([]models.Episode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.episodes, f.loadErr
}

func (f *fakeBackend) Purge(ctx context.Context, ids []string, progress chan<- tasks.ProgressUpdate) (*tasks.PurgeResult, error) {
	f.mu.Lock()
	f.purged = append(f.purged, ids)
	f.mu.Unlock()

	progress <- tasks.ProgressUpdate{Phase: tasks.DeleteBatch, Step: 1, Total: 1, Message: "[1/1] Deleting"}
	result := &tasks.PurgeResult{Total: len(ids), Batches: 1, Removed: len(ids)}
	if f.failed {
		result.Removed = 0
		result.Failed = []tasks.BatchFailure{{Index: 1, IDs: ids}}
	}
	return result, nil
}

func episodes(n int) []models.Episode {
	var out []models.Episode
	for i := range n {
		out = append(out, models.Episode{ID: fmt.Sprintf("ep%d", i), Name: fmt.Sprintf("Episode %d", i), ShowName: "Show", ReleaseDate: "2024-01-01"})
	}
	return out
}

func press(m *Model, keys string) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return cmd
}

// drain runs cmd and feeds resulting messages back until none remain.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 100 {
			t.Fatal("command loop did not settle")
		}
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func loaded(t *testing.T, backend *fakeBackend) *Model {
	t.Helper()
	m := NewModel(context.Background(), backend)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	drain(t, m, m.Init())
	return m
}

func TestModel(t *testing.T) {
	t.Run("loads episodes into the list", func(t *testing.T) {
		m := loaded(t, &fakeBackend{episodes: episodes(3)})

		if m.view != EpisodeListView {
			t.Fatalf("expected list view, got %v", m.view)
		}
		if len(m.list.Items()) != 3 {
			t.Errorf("expected 3 items, got %d", len(m.list.Items()))
		}
		if !strings.Contains(m.View(), "Episode 0") {
			t.Errorf("expected episode in view, got %q", m.View())
		}
	})

	t.Run("selection and confirmed delete", func(t *testing.T) {
		backend := &fakeBackend{episodes: episodes(3)}
		m := loaded(t, backend)

		press(m, "x")
		press(m, "j")
		press(m, "j")
		press(m, "x")

		if got := m.SelectedIDs(); fmt.Sprint(got) != "[ep0 ep2]" {
			t.Fatalf("expected [ep0 ep2] selected, got %v", got)
		}
		if item := m.list.Items()[0].(episodeItem); !strings.HasPrefix(item.Title(), "[x]") {
			t.Errorf("expected selected marker, got %q", item.Title())
		}

		press(m, "d")
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "Delete 2 episodes") {
			t.Errorf("unexpected confirm view %q", m.View())
		}

		drain(t, m, press(m, "y"))

		if m.view != ResultView {
			t.Fatalf("expected result view, got %v", m.view)
		}
		if len(backend.purged) != 1 || fmt.Sprint(backend.purged[0]) != "[ep0 ep2]" {
			t.Errorf("unexpected purge calls %v", backend.purged)
		}
		if !strings.Contains(m.View(), "All selected episodes deleted") {
			t.Errorf("unexpected result view %q", m.View())
		}
	})

	t.Run("declining returns to the list", func(t *testing.T) {
		backend := &fakeBackend{episodes: episodes(2)}
		m := loaded(t, backend)

		press(m, "a")
		press(m, "d")
		press(m, "n")

		if m.view != EpisodeListView {
			t.Errorf("expected list view, got %v", m.view)
		}
		if len(backend.purged) != 0 {
			t.Error("nothing should be deleted")
		}
	})

	t.Run("delete without selection does nothing", func(t *testing.T) {
		m := loaded(t, &fakeBackend{episodes: episodes(2)})

		press(m, "d")
		if m.view != EpisodeListView {
			t.Errorf("expected list view, got %v", m.view)
		}
	})

	t.Run("select all toggles", func(t *testing.T) {
		m := loaded(t, &fakeBackend{episodes: episodes(4)})

		press(m, "a")
		if len(m.SelectedIDs()) != 4 {
			t.Errorf("expected all selected, got %v", m.SelectedIDs())
		}
		press(m, "a")
		if len(m.SelectedIDs()) != 0 {
			t.Errorf("expected none selected, got %v", m.SelectedIDs())
		}
	})

	t.Run("failed batches are reported and r reloads", func(t *testing.T) {
		backend := &fakeBackend{episodes: episodes(2), failed: true}
		m := loaded(t, backend)

		press(m, "a")
		press(m, "d")
		drain(t, m, press(m, "y"))

		if !strings.Contains(m.View(), "Failed to delete batch 1") {
			t.Errorf("expected failure in view, got %q", m.View())
		}

		drain(t, m, press(m, "r"))
		if m.view != EpisodeListView || backend.loads != 2 {
			t.Errorf("expected reload, got view %v after %d loads", m.view, backend.loads)
		}
		if len(m.SelectedIDs()) != 0 {
			t.Error("selection should reset after reload")
		}
	})

	t.Run("load error", func(t *testing.T) {
		m := loaded(t, &fakeBackend{loadErr: errors.New("boom")})

		if m.view != ResultView || !strings.Contains(m.View(), "boom") {
			t.Errorf("expected error view, got %q", m.View())
		}
	})

	t.Run("q quits from the list", func(t *testing.T) {
		m := loaded(t, &fakeBackend{episodes: episodes(1)})

		cmd := press(m, "q")
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}
