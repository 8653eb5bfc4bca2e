package application

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.menuOpen {
		return m.menuView()
	}

	width := m.width
	if width == 0 {
		width = 120
	}
	paneWidth := max(width/3-4, 16)
	rows := 12
	if m.height > 0 {
		rows = max(m.height-m.details.Height-10, 5)
	}

	folders := make([]string, len(m.folders))
	for i, f := range m.folders {
		box := "[ ]"
		if !m.sel.IsSet() || m.sel.Contains(f.Folder) {
			box = "[x]"
		}
		folders[i] = fmt.Sprintf("%s %s (%d)", box, f.Folder, f.Count)
	}
	if len(folders) == 0 {
		folders = []string{styleMuted.Render("No collection folders found")}
	}

	albums := make([]string, len(m.albums))
	for i, r := range m.albums {
		year := r.Released()
		if year == "" {
			year = "Unknown Year"
		}
		albums[i] = fmt.Sprintf("%s %s", r.Title(), styleMuted.Render(year))
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.paneView(paneFolders, "Folders", folders, paneWidth, rows),
		m.paneView(paneArtists, "Artists", m.artists, paneWidth, rows),
		m.paneView(paneAlbums, "Albums", albums, paneWidth, rows),
	)

	var b strings.Builder
	b.WriteString(styleTitle.Render("Record Collection"))
	b.WriteString("  ")
	b.WriteString(styleMuted.Render(m.svc.Stats().String()))
	b.WriteString("\n")
	b.WriteString(panes)
	b.WriteString("\n")
	b.WriteString(stylePane.Width(max(width-4, 20)).Render(m.details.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine(width))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// paneView renders one list, scrolled so the cursor stays visible.
func (m *Model) paneView(p pane, title string, items []string, width, rows int) string {
	style := stylePane
	if m.focus == p {
		style = stylePaneFocused
	}

	cur := m.cursor[p]
	start := 0
	if cur >= rows {
		start = cur - rows + 1
	}
	end := min(start+rows, len(items))

	lines := []string{styleTitle.Render(title)}
	for i := start; i < end; i++ {
		prefix := "  "
		line := truncate(items[i], width-2)
		if i == cur && m.focus == p {
			prefix = cursorMark
			line = styleCursor.Render(line)
		}
		lines = append(lines, prefix+line)
	}
	return style.Width(width).Height(rows + 1).Render(strings.Join(lines, "\n"))
}

func (m *Model) statusLine(width int) string {
	text := m.status
	if m.loading {
		text = m.spinner.View() + " " + text
	}
	if m.err != nil {
		text = styleError.Render(text)
	}
	return styleStatusBar.Width(width).Render(text)
}

func (m *Model) menuView() string {
	lines := []string{styleTitle.Render(m.menu.Title), ""}
	for i, item := range m.menu.Items {
		prefix := "  "
		label := item.Label
		if i == m.menuCursor {
			prefix = cursorMark
			label = styleCursor.Render(label)
		}
		lines = append(lines, prefix+label)
	}
	lines = append(lines, "", styleMuted.Render("enter select · esc back · m close"))
	return styleMenu.Render(strings.Join(lines, "\n"))
}

// truncate shortens s to at most n display cells.
func truncate(s string, n int) string {
	if n <= 1 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// htmlToText flattens article HTML for the terminal: text nodes are kept,
// block elements become line breaks, scripts, styles and reference
// superscripts are dropped.
func htmlToText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return b.String()
			}
			return collapseBlankLines(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "sup":
				if tt == html.StartTagToken {
					skip++
				}
			case "p", "div", "br", "tr", "li", "h1", "h2", "h3", "h4", "table":
				b.WriteString("\n")
			case "td", "th":
				b.WriteString(" ")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "sup":
				if skip > 0 {
					skip--
				}
			case "p", "tr", "li", "h1", "h2", "h3", "h4":
				b.WriteString("\n")
			}
		case html.TextToken:
			if skip == 0 {
				b.WriteString(squash(string(z.Text())))
			}
		}
	}
}

// squash collapses whitespace runs to one space, keeping a space at either
// edge so adjacent inline elements stay apart.
func squash(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(words, " ")
	if strings.TrimLeft(s, " \t\n\r") != s {
		out = " " + out
	}
	if strings.TrimRight(s, " \t\n\r") != s {
		out += " "
	}
	return out
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
