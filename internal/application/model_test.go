package application

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/recordviewer/internal/admin"
	"github.com/JonMunkholm/recordviewer/internal/core"
	"github.com/JonMunkholm/recordviewer/internal/database"
)

const fixture = `Artist,Title,Released,CollectionFolder
Miles Davis,Kind of Blue,1959,Jazz
Pink Floyd,Animals,1977,Rock
Pink Floyd,The Dark Side of the Moon,1973,Rock
Pink Floyd,Meddle,,Rock
`

func newTestModel(t *testing.T) *Model {
	t.Helper()
	svc := core.NewService(core.NewLoader(core.LoaderConfig{Sources: []core.Source{
		core.StaticSource{Label: "fixture", Text: fixture},
	}}))
	m := NewModel(svc, nil)

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init() should start a load for an empty store")
	}
	// Run the load directly instead of through the batch.
	m.Update(m.loadForTest())
	return m
}

func (m *Model) loadForTest() tea.Msg {
	return Loaded(m.svc.Load(context.Background()))
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestModel_Loads(t *testing.T) {
	m := newTestModel(t)

	if m.loading {
		t.Error("still loading after loadedMsg")
	}
	if len(m.folders) != 2 || len(m.artists) != 2 {
		t.Fatalf("folders=%v artists=%v", m.folders, m.artists)
	}
	if !strings.Contains(m.status, "Loaded 4 records") {
		t.Errorf("status = %q", m.status)
	}
	view := m.View()
	for _, want := range []string{"Found 2 artists, 4 total records", "[x] Jazz (1)", "Pink Floyd"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_ToggleAndClear(t *testing.T) {
	m := newTestModel(t)

	// Cursor starts on Jazz.
	press(m, " ")
	if got := m.artists; len(got) != 1 || got[0] != "Pink Floyd" {
		t.Errorf("artists after excluding Jazz = %v", got)
	}
	press(m, " ")
	if len(m.artists) != 2 {
		t.Errorf("artists after re-including Jazz = %v", m.artists)
	}

	press(m, "c")
	if len(m.artists) != 0 {
		t.Errorf("artists after clear = %v", m.artists)
	}
	if !strings.Contains(m.View(), "[ ] Rock") {
		t.Error("cleared folder still checked")
	}

	press(m, "a")
	if len(m.artists) != 2 {
		t.Errorf("artists after select all = %v", m.artists)
	}
}

func TestModel_SelectArtistAndAlbum(t *testing.T) {
	m := newTestModel(t)

	// Folders -> Artists, move to Pink Floyd, select it.
	press(m, "tab", "down", "enter")
	artist, _ := m.svc.Store().Cursors()
	if artist != "Pink Floyd" {
		t.Fatalf("artist cursor = %q", artist)
	}
	if m.focus != paneAlbums {
		t.Errorf("focus = %v, want albums", m.focus)
	}

	titles := make([]string, len(m.albums))
	for i, r := range m.albums {
		titles[i] = r.Title()
	}
	want := []string{"The Dark Side of the Moon", "Animals", "Meddle"}
	if strings.Join(titles, "|") != strings.Join(want, "|") {
		t.Errorf("albums = %v, want %v", titles, want)
	}

	cmd := press(m, "down", "enter")
	if cmd != nil {
		t.Error("no lookup command expected without a Wikipedia client")
	}
	_, album := m.svc.Store().Cursors()
	if album.Title() != "Animals" {
		t.Errorf("album cursor = %q", album.Title())
	}
	if !strings.Contains(m.details.View(), "Released:") {
		t.Errorf("details = %q", m.details.View())
	}

	// Albums ignore the folder filter.
	m.svc.ClearFolders()
	m.Update(selectionChangedMsg{})
	if len(m.albums) != 3 {
		t.Errorf("albums after clear = %d, want 3", len(m.albums))
	}
}

func TestModel_Menu(t *testing.T) {
	m := newTestModel(t)

	press(m, "m")
	if !m.menuOpen || m.menu.Title != "Actions" {
		t.Fatalf("menu not open: %+v", m.menu)
	}

	// Actions -> Folders -> Clear folders.
	press(m, "down", "enter")
	if m.menu.Title != "Folders" {
		t.Fatalf("submenu = %q", m.menu.Title)
	}
	cmd := press(m, "down", "enter")
	if m.menuOpen {
		t.Error("menu should close after an action")
	}
	if cmd == nil {
		t.Fatal("action returned no command")
	}
	m.Update(cmd())
	if len(m.artists) != 0 {
		t.Errorf("artists after menu clear = %v", m.artists)
	}

	// Back from a submenu returns to its parent.
	press(m, "m", "down", "enter", "esc")
	if m.menu.Title != "Actions" {
		t.Errorf("after esc menu = %q", m.menu.Title)
	}
	press(m, "esc")
	if m.menuOpen {
		t.Error("esc at root should close the menu")
	}
}

type fakeExports struct{ deleted bool }

func (f *fakeExports) List(ctx context.Context, limit int) ([]database.ExportSummary, error) {
	return []database.ExportSummary{{FileName: "upload.csv", Records: 4}}, nil
}

func (f *fakeExports) DeleteAll(ctx context.Context) (int64, error) {
	f.deleted = true
	return 1, nil
}

func TestModel_ExportsMenu(t *testing.T) {
	store := &fakeExports{}
	m := newTestModel(t).WithExports(&admin.Exports{Store: store})

	// Actions -> Stored exports -> List recent.
	cmd := press(m, "m", "down", "down", "down", "enter", "enter")
	if cmd == nil {
		t.Fatal("list returned no command")
	}
	m.Update(cmd())
	if !strings.Contains(m.details.View(), "upload.csv") {
		t.Errorf("details = %q", m.details.View())
	}

	cmd = press(m, "m", "down", "down", "down", "enter", "down", "enter")
	m.Update(cmd())
	if !store.deleted {
		t.Error("exports not deleted")
	}
	if m.status != "Deleted 1 stored exports" {
		t.Errorf("status = %q", m.status)
	}
}

func TestModel_QuitAndReload(t *testing.T) {
	m := newTestModel(t)

	if cmd := press(m, "r"); cmd == nil || !m.loading {
		t.Error("reload should start a load")
	}
	m.Update(m.loadForTest())

	cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestHTMLToText(t *testing.T) {
	in := `<p><b>Kind of Blue</b> is a studio album<sup>[1]</sup> by <a href="/wiki/Miles">Miles Davis</a>.</p>
<style>.x{}</style><table><tr><td>Released</td><td>1959</td></tr></table>`
	got := htmlToText(in)

	want := "Kind of Blue is a studio album by Miles Davis."
	if !strings.HasPrefix(got, want) {
		t.Errorf("htmlToText() = %q, want prefix %q", got, want)
	}
	if strings.Contains(got, "[1]") || strings.Contains(got, ".x{}") {
		t.Errorf("references or styles kept: %q", got)
	}
	if !strings.Contains(got, "Released 1959") {
		t.Errorf("table cells lost: %q", got)
	}
}
