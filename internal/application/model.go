// Package application is the terminal collection browser: three panes for
// folders, artists and albums over a details view, driven by bubbletea.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/recordviewer/internal/admin"
	"github.com/JonMunkholm/recordviewer/internal/core"
	"github.com/JonMunkholm/recordviewer/internal/lookup"
)

type pane int

const (
	paneFolders pane = iota
	paneArtists
	paneAlbums
	paneCount
)

// lookupTimeout bounds one Wikipedia request from the browser.
const lookupTimeout = 15 * time.Second

type (
	loadedMsg struct {
		res *core.LoadResult
		err error
	}
	articleMsg struct {
		article lookup.Article
		err     error
	}
	selectionChangedMsg struct{}
	menuClosedMsg       struct{}
)

// Loaded reports a load that happened outside the browser, such as a reload
// triggered by a file change.
func Loaded(res *core.LoadResult, err error) tea.Msg {
	return loadedMsg{res: res, err: err}
}

// Model is the bubbletea model of the browser. It holds view state only; the
// collection and folder selection live in the service's store.
type Model struct {
	svc     *core.Service
	wiki    *lookup.Wikipedia
	exports *admin.Exports

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	details viewport.Model

	focus  pane
	cursor [paneCount]int

	folders []core.FolderCount
	sel     core.Selection
	artists []string
	albums  []core.Record

	menu       *Menu
	menuRoot   *Menu
	menuCursor int
	menuOpen   bool

	loading bool
	status  string
	err     error

	width, height int
}

// NewModel creates the browser. wiki may be nil.
func NewModel(svc *core.Service, wiki *lookup.Wikipedia) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleTitle

	m := &Model{
		svc:     svc,
		wiki:    wiki,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		details: viewport.New(80, 10),
	}
	m.menuRoot = buildMenuTree(m)
	m.menu = m.menuRoot
	m.refresh()
	return m
}

// WithExports adds stored-export maintenance to the actions menu.
func (m *Model) WithExports(a *admin.Exports) *Model {
	m.exports = a
	m.menuRoot = buildMenuTree(m)
	m.menu = m.menuRoot
	return m
}

// Init loads the collection unless one is already in the store.
func (m *Model) Init() tea.Cmd {
	if m.svc.Store().Loaded() {
		return nil
	}
	return m.reload()
}

// reload starts a load through the service.
func (m *Model) reload() tea.Cmd {
	m.loading = true
	m.status = "Loading collection..."
	load := func() tea.Msg {
		res, err := m.svc.Load(context.Background())
		return loadedMsg{res: res, err: err}
	}
	return tea.Batch(m.spinner.Tick, load)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.details.Width = max(msg.Width-4, 20)
		m.details.Height = max(msg.Height/3, 5)
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.status = core.MapError(msg.err).Message
		} else {
			m.err = nil
			m.status = fmt.Sprintf("Loaded %d records from %s", len(msg.res.Records), msg.res.Source)
			m.cursor = [paneCount]int{}
			m.albums = nil
			m.details.SetContent("")
		}
		m.refresh()
		return m, nil

	case articleMsg:
		if msg.err != nil {
			text := core.MapError(msg.err).Message
			var nf *lookup.NotFoundError
			if errors.As(msg.err, &nf) {
				text += "\n\nSearch by hand: " + nf.SearchURL
			}
			m.details.SetContent(m.recordDetails() + "\n\n" + styleMuted.Render(text))
			return m, nil
		}
		m.details.SetContent(m.recordDetails() + "\n\n" + styleTitle.Render(msg.article.Title) +
			"\n" + htmlToText(msg.article.HTML) + "\n\n" + styleMuted.Render(msg.article.PageURL))
		m.details.GotoTop()
		return m, nil

	case admin.DoneMsg:
		m.err = nil
		m.status = string(msg)
		return m, nil

	case admin.ListMsg:
		m.details.SetContent(string(msg))
		m.details.GotoTop()
		return m, nil

	case admin.ErrMsg:
		m.err = msg.Err
		m.status = msg.Error()
		return m, nil

	case selectionChangedMsg:
		m.refresh()
		return m, nil

	case menuClosedMsg:
		m.closeMenu()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.menuOpen {
			return m, m.updateMenu(msg)
		}
		return m, m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Menu):
		m.menuOpen = true
		m.menu = m.menuRoot
		m.menuCursor = 0
	case key.Matches(msg, m.keys.NextPane):
		m.focus = (m.focus + 1) % paneCount
	case key.Matches(msg, m.keys.PrevPane):
		m.focus = (m.focus + paneCount - 1) % paneCount
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.details, cmd = m.details.Update(msg)
		return cmd
	case key.Matches(msg, m.keys.Toggle):
		if m.focus == paneFolders {
			m.toggleFolder()
		}
	case key.Matches(msg, m.keys.Clear):
		m.svc.ClearFolders()
		m.refresh()
	case key.Matches(msg, m.keys.All):
		m.svc.SelectAllFolders()
		m.refresh()
	case key.Matches(msg, m.keys.Reload):
		if !m.loading {
			return m.reload()
		}
	case key.Matches(msg, m.keys.Back):
		if m.focus > paneFolders {
			m.focus--
		}
	case key.Matches(msg, m.keys.Enter):
		return m.enter()
	}
	return nil
}

func (m *Model) enter() tea.Cmd {
	switch m.focus {
	case paneFolders:
		m.toggleFolder()
	case paneArtists:
		if len(m.artists) == 0 {
			return nil
		}
		artist := m.artists[m.cursor[paneArtists]]
		m.svc.Store().SelectArtist(artist)
		m.albums = m.svc.Albums(artist)
		m.cursor[paneAlbums] = 0
		m.focus = paneAlbums
		m.details.SetContent("")
	case paneAlbums:
		if len(m.albums) == 0 {
			return nil
		}
		m.svc.Store().SelectAlbum(m.albums[m.cursor[paneAlbums]])
		m.details.SetContent(m.recordDetails())
		m.details.GotoTop()
		return m.albumArticleCmd()
	}
	return nil
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Menu):
		m.closeMenu()
	case key.Matches(msg, m.keys.Back):
		if m.menu.Parent == nil {
			m.closeMenu()
		} else {
			m.menu = m.menu.Parent
			m.menuCursor = 0
		}
	case key.Matches(msg, m.keys.Up):
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.menuCursor < len(m.menu.Items)-1 {
			m.menuCursor++
		}
	case key.Matches(msg, m.keys.Enter):
		item := m.menu.Items[m.menuCursor]
		switch {
		case item.Submenu != nil:
			m.menu = item.Submenu
			m.menuCursor = 0
		case item.Label == "Back":
			// Back at the root has no parent to return to.
			m.closeMenu()
		case item.Action != nil:
			m.closeMenu()
			return item.Action()
		}
	}
	return nil
}

func (m *Model) closeMenu() {
	m.menuOpen = false
	m.menu = m.menuRoot
	m.menuCursor = 0
}

// toggleFolder flips the folder under the cursor. An unset selection counts
// every folder as selected.
func (m *Model) toggleFolder() {
	if len(m.folders) == 0 {
		return
	}
	name := m.folders[m.cursor[paneFolders]].Folder
	selected := !m.sel.IsSet() || m.sel.Contains(name)
	m.svc.SetFolderSelected(name, !selected)
	m.refresh()
}

// move shifts the cursor of the focused pane, clamped to its length.
func (m *Model) move(delta int) {
	n := m.paneLen(m.focus)
	if n == 0 {
		m.cursor[m.focus] = 0
		return
	}
	m.cursor[m.focus] = min(max(m.cursor[m.focus]+delta, 0), n-1)
}

func (m *Model) paneLen(p pane) int {
	switch p {
	case paneFolders:
		return len(m.folders)
	case paneArtists:
		return len(m.artists)
	default:
		return len(m.albums)
	}
}

// refresh re-reads the facet and the artist list from the service. The
// album list follows the artist cursor in the store and ignores the filter.
func (m *Model) refresh() {
	m.folders = m.svc.Folders()
	m.sel = m.svc.Selection()
	m.artists = m.svc.Artists()
	if artist, _ := m.svc.Store().Cursors(); artist != "" {
		m.albums = m.svc.Albums(artist)
	}
	for p := paneFolders; p < paneCount; p++ {
		if n := m.paneLen(p); m.cursor[p] >= n {
			m.cursor[p] = max(n-1, 0)
		}
	}
}

func (m *Model) artistArticleCmd() tea.Cmd {
	artist, _ := m.svc.Store().Cursors()
	if m.wiki == nil || artist == "" {
		return nil
	}
	wiki := m.wiki
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()
		a, err := wiki.Artist(ctx, artist)
		return articleMsg{article: a, err: err}
	}
}

func (m *Model) albumArticleCmd() tea.Cmd {
	artist, album := m.svc.Store().Cursors()
	if m.wiki == nil || album == nil {
		return nil
	}
	wiki, title := m.wiki, album.Title()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()
		a, err := wiki.Album(ctx, artist, title)
		return articleMsg{article: a, err: err}
	}
}

// recordDetails lists the selected album's columns in header order.
func (m *Model) recordDetails() string {
	_, album := m.svc.Store().Cursors()
	if album == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(styleTitle.Render(album.Title()))
	seen := make(map[string]bool)
	for _, col := range m.svc.Store().Header() {
		v := album.Get(col)
		if v == "" || seen[col] {
			continue
		}
		seen[col] = true
		fmt.Fprintf(&b, "\n%s %s", styleMuted.Render(col+":"), v)
	}
	return b.String()
}
