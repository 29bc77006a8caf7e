package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/epx/internal/models"
	"github.com/desertthunder/epx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	EpisodeListView
	ConfirmView
	PurgeView
	ResultView
)

// Backend is the authorized session the browser works through.
type Backend interface {
	LoadEpisodes(ctx context.Context) ([]models.Episode, error)
	Purge(ctx context.Context, ids []string, progress chan<- tasks.ProgressUpdate) (*tasks.PurgeResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	backend  Backend
	width    int
	height   int
	list     list.Model
	episodes []models.Episode
	selected map[string]bool
	progress tasks.ProgressUpdate
	updates  chan tasks.ProgressUpdate
	done     chan purgeComplete
	result   *tasks.PurgeResult
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model over backend.
func NewModel(ctx context.Context, backend Backend) *Model {
	return &Model{
		ctx:      ctx,
		view:     LoadingView,
		backend:  backend,
		selected: map[string]bool{},
		list:     list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, backend Backend, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(NewModel(ctx, backend), opts...).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// Init loads the saved episodes.
func (m *Model) Init() tea.Cmd {
	return m.loadEpisodes()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case EpisodeListView:
			return m.handleListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		default:
			if key.Matches(msg, m.keys.quit) && m.view != PurgeView {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	if m.view == EpisodeListView {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgEpisodesLoaded:
		data := msg.data.(episodesLoaded)
		if data.err != nil {
			m.err = data.err
			m.view = ResultView
			return m, nil
		}
		m.setEpisodes(data.episodes)
		m.view = EpisodeListView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgPurgeComplete:
		data := msg.data.(purgeComplete)
		m.result = data.result
		m.err = data.err
		m.updates, m.done = nil, nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

func (m *Model) setEpisodes(episodes []models.Episode) {
	m.episodes = episodes
	m.selected = map[string]bool{}

	items := make([]list.Item, len(episodes))
	for i, e := range episodes {
		items[i] = episodeItem{episode: e, selected: m.selected}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Your Episodes (%d)", len(episodes))
}

// SelectedIDs returns the selected episode ids in library order.
func (m *Model) SelectedIDs() []string {
	var ids []string
	for _, e := range m.episodes {
		if m.selected[e.ID] {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.list.SelectedItem().(episodeItem); ok {
			id := item.episode.ID
			if m.selected[id] {
				delete(m.selected, id)
			} else {
				m.selected[id] = true
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.all):
		if len(m.selected) == len(m.episodes) {
			clear(m.selected)
		} else {
			for _, e := range m.episodes {
				m.selected[e.ID] = true
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if len(m.selected) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = PurgeView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startPurge(m.SelectedIDs())
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = EpisodeListView
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		m.view = LoadingView
		m.result, m.err = nil, nil
		return m, m.loadEpisodes()
	}
	return m, nil
}

func (m *Model) loadEpisodes() tea.Cmd {
	return func() tea.Msg {
		episodes, err := m.backend.LoadEpisodes(m.ctx)
		return episodesLoadedMsg(episodes, err)
	}
}

// startPurge runs the deletion on its own goroutine. The outcome is parked in
// done before updates is closed, so the reader always finds it.
func (m *Model) startPurge(ids []string) tea.Cmd {
	updates := make(chan tasks.ProgressUpdate, 50)
	done := make(chan purgeComplete, 1)
	m.updates, m.done = updates, done

	go func() {
		result, err := m.backend.Purge(m.ctx, ids, updates)
		done <- purgeComplete{result, err}
		close(updates)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	updates, done := m.updates, m.done
	return func() tea.Msg {
		if updates == nil {
			return purgeCompleteMsg(nil, nil)
		}
		update, ok := <-updates
		if !ok {
			outcome := <-done
			return purgeCompleteMsg(outcome.result, outcome.err)
		}
		return progressUpdateMsg(update)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return styles.title.Render("Loading saved episodes...")
	case EpisodeListView:
		return m.renderList()
	case ConfirmView:
		return m.renderConfirm()
	case PurgeView:
		return m.renderPurge()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderList() string {
	status := styles.help.Render(fmt.Sprintf("%d selected", len(m.selected)))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.all, m.keys.remove, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", m.list.View(), status, helpView)
}

func (m *Model) renderConfirm() string {
	n := len(m.selected)
	title := styles.warn.Render(fmt.Sprintf("Delete %d episodes from 'My Episodes'?", n))
	info := fmt.Sprintf("\nThis sends %d request(s) and cannot be undone.\n", (n+49)/50)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderPurge() string {
	title := styles.title.Render("Deleting episodes")

	var phase string
	switch m.progress.Phase {
	case tasks.DeleteBatch:
		phase = fmt.Sprintf("Batch %d of %d", m.progress.Step, m.progress.Total)
	case tasks.BatchFailed:
		phase = styles.warn.Render(m.progress.Message)
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.reload, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Error: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	var b strings.Builder
	if m.result.Succeeded() {
		b.WriteString(styles.ok.Render("✓ All selected episodes deleted from 'My Episodes'."))
	} else {
		b.WriteString(styles.warn.Render(fmt.Sprintf("Deleted %d of %d episodes", m.result.Removed, m.result.Total)))
		for _, f := range m.result.Failed {
			fmt.Fprintf(&b, "\n  • Failed to delete batch %d (%d episodes).", f.Index, len(f.IDs))
		}
	}
	fmt.Fprintf(&b, "\n\n%s", helpView)
	return b.String()
}
