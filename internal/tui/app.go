// Package tui is the terminal browser over the cached library: a
// folders column, a tracks column, and a status bar surfacing cache
// occupancy. All store access goes through the two caches.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonehaus/aria/internal/artwork"
	"github.com/tonehaus/aria/internal/domain"
	"github.com/tonehaus/aria/internal/metadata"
	"github.com/tonehaus/aria/internal/search"
	"github.com/tonehaus/aria/internal/tui/styles"
)

type focusArea int

const (
	focusFolders focusArea = iota
	focusTracks
	focusFilter
)

// Model is the bubbletea model for the library browser
type Model struct {
	library  *metadata.Cache
	art      *artwork.Cache
	searcher *search.Service
	logger   *slog.Logger
	keys     KeyMap

	artSize int

	width  int
	height int
	focus  focusArea

	spinner spinner.Model
	filter  textinput.Model
	loading bool
	lastErr error

	folders      []domain.Folder
	folderCursor int

	tracks      []domain.Track
	trackCursor int

	filtered  []search.Result
	filtering bool

	artInfo string
	stats   *domain.LibraryStats
}

// NewModel creates the browser model
func NewModel(library *metadata.Cache, art *artwork.Cache, searcher *search.Service, artSize int, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	if artSize <= 0 {
		artSize = 160
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	ti := textinput.New()
	ti.Placeholder = "filter tracks"
	ti.CharLimit = 64

	return Model{
		library:  library,
		art:      art,
		searcher: searcher,
		logger:   logger,
		keys:     DefaultKeyMap(),
		artSize:  artSize,
		spinner:  sp,
		filter:   ti,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadFoldersCmd(false), m.loadStatsCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case foldersLoadedMsg:
		m.loading = false
		m.folders = msg.folders
		if m.folderCursor >= len(m.folders) {
			m.folderCursor = 0
		}
		if len(m.folders) > 0 {
			return m, m.loadTracksCmd(m.folders[m.folderCursor], false)
		}
		return m, nil

	case tracksLoadedMsg:
		m.loading = false
		m.tracks = msg.tracks
		if m.trackCursor >= len(m.tracks) {
			m.trackCursor = 0
		}
		return m, m.artworkCmdForCursor()

	case artworkLoadedMsg:
		if t := m.selectedTrack(); t != nil && t.ID == msg.trackID {
			if msg.img == nil {
				m.artInfo = "no artwork"
			} else {
				m.artInfo = fmt.Sprintf("%dx%d (%d KB)", msg.img.Width, msg.img.Height, msg.img.Cost/1024)
			}
		}
		return m, nil

	case preloadDoneMsg:
		m.logger.Debug("preload finished", "count", msg.count)
		return m, nil

	case statsMsg:
		m.stats = msg.stats
		return m, nil

	case errMsg:
		m.loading = false
		m.lastErr = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == focusFilter {
		switch msg.String() {
		case "esc":
			m.focus = focusTracks
			m.filtering = false
			m.filter.Blur()
			m.filter.SetValue("")
			m.filtered = nil
			return m, nil
		case "enter":
			m.focus = focusTracks
			return m, nil
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.filtered = m.searcher.Filter(m.filter.Value())
			m.filtering = m.filter.Value() != ""
			m.trackCursor = 0
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, m.artworkCmdForCursor()

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, m.artworkCmdForCursor()

	case key.Matches(msg, m.keys.Select):
		if m.focus == focusFolders && len(m.folders) > 0 {
			m.focus = focusTracks
			m.loading = true
			return m, m.loadTracksCmd(m.folders[m.folderCursor], false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.focus = focusFolders
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		m.focus = focusFilter
		m.filter.Focus()
		return m, m.rebuildIndexCmd()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		if m.focus == focusFolders {
			return m, m.loadFoldersCmd(true)
		}
		if len(m.folders) > 0 {
			return m, m.loadTracksCmd(m.folders[m.folderCursor], true)
		}
		return m, m.loadFoldersCmd(true)

	case key.Matches(msg, m.keys.Preload):
		return m, m.preloadCmd()
	}

	return m, nil
}

func (m *Model) moveCursor(delta int) {
	if m.focus == focusFolders {
		m.folderCursor = clamp(m.folderCursor+delta, 0, len(m.folders)-1)
		return
	}
	m.trackCursor = clamp(m.trackCursor+delta, 0, m.visibleTrackCount()-1)
}

func (m Model) visibleTrackCount() int {
	if m.filtering {
		return len(m.filtered)
	}
	return len(m.tracks)
}

func (m Model) selectedTrack() *domain.Track {
	if m.filtering {
		if m.trackCursor < len(m.filtered) {
			t := m.filtered[m.trackCursor].Track
			return &t
		}
		return nil
	}
	if m.trackCursor < len(m.tracks) {
		t := m.tracks[m.trackCursor]
		return &t
	}
	return nil
}

// === Commands ===

func (m Model) loadFoldersCmd(force bool) tea.Cmd {
	return func() tea.Msg {
		folders, err := m.library.GetFolders(context.Background(), force)
		if err != nil {
			return errMsg{err}
		}
		return foldersLoadedMsg{folders}
	}
}

func (m Model) loadTracksCmd(folder domain.Folder, force bool) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.library.GetTracks(context.Background(), folder, force)
		if err != nil {
			return errMsg{err}
		}
		return tracksLoadedMsg{folderID: folder.ID, tracks: tracks}
	}
}

func (m Model) loadStatsCmd() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.library.GetLibraryStats(context.Background(), false)
		if err != nil {
			return errMsg{err}
		}
		return statsMsg{stats}
	}
}

func (m Model) artworkCmdForCursor() tea.Cmd {
	track := m.selectedTrack()
	if track == nil {
		return nil
	}
	id := track.ID
	return func() tea.Msg {
		img, err := m.art.Get(context.Background(), domain.EntityTrack, id, m.artSize)
		if err != nil {
			return errMsg{err}
		}
		return artworkLoadedMsg{trackID: id, img: img}
	}
}

func (m Model) preloadCmd() tea.Cmd {
	ids := make([]string, 0, len(m.tracks))
	for _, t := range m.tracks {
		ids = append(ids, t.ID)
	}
	size := m.artSize
	return func() tea.Msg {
		m.art.Preload(context.Background(), ids, size, 4)
		return preloadDoneMsg{count: len(ids)}
	}
}

func (m Model) rebuildIndexCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.searcher.Rebuild(context.Background()); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// === View ===

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	folderWidth := m.width / 3
	trackWidth := m.width - folderWidth - 6
	listHeight := m.height - 5

	foldersView := m.renderFolders(folderWidth, listHeight)
	tracksView := m.renderTracks(trackWidth, listHeight)

	columns := lipgloss.JoinHorizontal(lipgloss.Top, foldersView, tracksView)

	var b strings.Builder
	b.WriteString(columns)
	b.WriteString("\n")
	if m.focus == focusFilter {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString(m.statusBar())
	return b.String()
}

func (m Model) renderFolders(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Folders"))
	b.WriteString("\n")

	for i, f := range m.folders {
		if i >= height {
			break
		}
		line := f.Name
		if f.TrackCount > 0 {
			line = fmt.Sprintf("%s (%d)", f.Name, f.TrackCount)
		}
		if i == m.folderCursor {
			line = styles.SelectedStyle.Render(line)
		} else {
			line = styles.SubtitleStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	border := styles.InactiveBorder
	if m.focus == focusFolders {
		border = styles.ActiveBorder
	}
	return border.Width(width).Height(height).Render(b.String())
}

func (m Model) renderTracks(width, height int) string {
	var b strings.Builder
	title := "Tracks"
	if m.filtering {
		title = fmt.Sprintf("Tracks (filtered: %d)", len(m.filtered))
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")

	count := m.visibleTrackCount()
	for i := 0; i < count && i < height; i++ {
		var t domain.Track
		if m.filtering {
			t = m.filtered[i].Track
		} else {
			t = m.tracks[i]
		}
		line := fmt.Sprintf("%s • %s  %s", t.DisplayTitle(), t.Artist, t.FormattedDuration())
		if i == m.trackCursor {
			line = styles.SelectedStyle.Render(line)
		} else {
			line = styles.SubtitleStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	border := styles.InactiveBorder
	if m.focus == focusTracks {
		border = styles.ActiveBorder
	}
	return border.Width(width).Height(height).Render(b.String())
}

func (m Model) statusBar() string {
	var parts []string

	if m.loading {
		parts = append(parts, m.spinner.View())
	}
	if m.stats != nil {
		parts = append(parts, fmt.Sprintf("%d tracks / %s", m.stats.TrackCount, m.stats.FormattedTotalSize()))
	}
	if m.artInfo != "" {
		parts = append(parts, "art: "+m.artInfo)
	}

	cs := m.library.Stats()
	as := m.art.Stats()
	parts = append(parts, fmt.Sprintf("cache: %d idx, %d+%d art (%d KB)",
		cs.IndexedTracks,
		as.Thumbnails.ItemCount, as.FullSize.ItemCount,
		(as.Thumbnails.Bytes+as.FullSize.Bytes)/1024))

	if m.lastErr != nil {
		parts = append(parts, styles.ErrorStyle.Render(m.lastErr.Error()))
	}

	return styles.StatusBarStyle.Width(m.width).Render(strings.Join(parts, "  |  "))
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
