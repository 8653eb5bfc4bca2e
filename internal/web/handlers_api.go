package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/recordviewer/internal/core"
	"github.com/JonMunkholm/recordviewer/internal/web/templates"
)

// FolderResponse is one folder of the facet.
type FolderResponse struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// FoldersResponse is returned by the folder endpoints.
type FoldersResponse struct {
	Folders []FolderResponse `json:"folders"`
	Stats   core.Stats       `json:"stats"`
	Summary string           `json:"summary"`
}

// ArtistsResponse is returned by GET /api/artists.
type ArtistsResponse struct {
	Artists []string   `json:"artists"`
	Stats   core.Stats `json:"stats"`
	Summary string     `json:"summary"`
}

// AlbumsResponse is returned by GET /api/artists/{artist}/albums.
type AlbumsResponse struct {
	Artist string        `json:"artist"`
	Albums []core.Record `json:"albums"`
}

func (s *Server) foldersResponse() FoldersResponse {
	data := s.browseData()
	out := FoldersResponse{
		Folders: make([]FolderResponse, len(data.Folders)),
		Stats:   data.Stats,
		Summary: data.Stats.String(),
	}
	for i, f := range data.Folders {
		out.Folders[i] = FolderResponse{Name: f.Name, Count: f.Count, Selected: f.Selected}
	}
	return out
}

// respondBrowse answers a browse-state change: the browser partial for HTMX,
// a redirect home for plain form posts, JSON otherwise.
func (s *Server) respondBrowse(w http.ResponseWriter, r *http.Request) {
	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.Browser(s.browseData()).Render(r.Context(), w)
	case isFormPost(r):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		writeJSON(w, http.StatusOK, s.foldersResponse())
	}
}

// handleListFolders returns the folder facet with selection state.
func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.foldersResponse())
}

// handleSetFolder includes or excludes one folder. The "included" form or
// query value is required.
func (s *Server) handleSetFolder(w http.ResponseWriter, r *http.Request) {
	folder := pathParam(r, "folder")

	raw := r.FormValue("included")
	included, err := strconv.ParseBool(raw)
	if err != nil {
		respondErrorJSON(w, core.UserMessage{
			Message: fmt.Sprintf("Invalid value for included: %q", raw),
			Action:  "Use true or false",
			Code:    "ERR000",
		}, http.StatusBadRequest)
		return
	}

	s.service.SetFolderSelected(folder, included)
	s.respondBrowse(w, r)
}

// handleClearFolders deselects every folder.
func (s *Server) handleClearFolders(w http.ResponseWriter, r *http.Request) {
	s.service.ClearFolders()
	s.respondBrowse(w, r)
}

// handleSelectAllFolders selects every folder again.
func (s *Server) handleSelectAllFolders(w http.ResponseWriter, r *http.Request) {
	s.service.SelectAllFolders()
	s.respondBrowse(w, r)
}

// handleListArtists returns the artists passing the folder filter.
func (s *Server) handleListArtists(w http.ResponseWriter, r *http.Request) {
	stats := s.service.Stats()
	writeJSON(w, http.StatusOK, ArtistsResponse{
		Artists: s.service.Artists(),
		Stats:   stats,
		Summary: stats.String(),
	})
}

// handleListAlbums returns the albums of an artist ordered by year.
func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	artist := pathParam(r, "artist")
	writeJSON(w, http.StatusOK, AlbumsResponse{
		Artist: artist,
		Albums: s.service.Albums(artist),
	})
}

// handleStatus reports the current load state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

// handleReload re-runs the loader against the configured sources. On failure
// the previous collection stays in place.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if _, err := s.service.Load(r.Context()); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if isFormPost(r) && !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, s.service.Status())
}

// isFormPost reports a browser form submission expecting a page back.
func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return r.Method == http.MethodPost &&
		strings.HasPrefix(ct, "application/x-www-form-urlencoded") &&
		strings.Contains(r.Header.Get("Accept"), "text/html")
}
