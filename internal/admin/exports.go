// Package admin provides administrative operations on stored exports for the
// terminal browser.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/recordviewer/internal/database"
)

// Timeout is the maximum duration for one admin operation.
const Timeout = 30 * time.Second

// ListLimit is how many exports ListRecent shows.
const ListLimit = 10

// Store is the part of database.ExportStore admin needs.
type Store interface {
	List(ctx context.Context, limit int) ([]database.ExportSummary, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// DoneMsg reports a finished operation.
type DoneMsg string

// ErrMsg reports a failed operation.
type ErrMsg struct{ Err error }

func (e ErrMsg) Error() string { return e.Err.Error() }

// ListMsg carries a rendered export listing.
type ListMsg string

// Exports runs export maintenance as bubbletea commands.
type Exports struct {
	Store Store
}

// ListRecent lists the newest stored exports.
func (a *Exports) ListRecent() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), Timeout)
		defer cancel()

		items, err := a.Store.List(ctx, ListLimit)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return ListMsg(formatExports(items))
	}
}

// DeleteAll removes every stored export. The loaded collection is not
// affected.
func (a *Exports) DeleteAll() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), Timeout)
		defer cancel()

		n, err := a.Store.DeleteAll(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg(fmt.Sprintf("Deleted %d stored exports", n))
	}
}

func formatExports(items []database.ExportSummary) string {
	if len(items) == 0 {
		return "No stored exports"
	}
	var b strings.Builder
	b.WriteString("Stored exports (newest first):")
	for _, e := range items {
		fmt.Fprintf(&b, "\n%s  %-30s %6d records", e.UploadedAt.Local().Format("2006-01-02 15:04"), e.FileName, e.Records)
	}
	return b.String()
}
