package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/recordviewer/internal/core"
	"github.com/JonMunkholm/recordviewer/internal/lookup"
	"github.com/JonMunkholm/recordviewer/internal/web/templates"
)

// browseData snapshots everything the index page shows.
func (s *Server) browseData() templates.BrowseData {
	source, _ := s.service.Store().Source()
	return templates.NewBrowseData(
		s.service.Folders(),
		s.service.Selection(),
		s.service.Artists(),
		s.service.Stats(),
		source,
	)
}

// handleIndex renders the folder filter and artist list.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Index(s.browseData()).Render(r.Context(), w)
}

// handleArtist renders the albums of one artist. An unknown artist is an
// empty list, not an error.
func (s *Server) handleArtist(w http.ResponseWriter, r *http.Request) {
	artist := pathParam(r, "artist")
	s.service.Store().SelectArtist(artist)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Artist(templates.ArtistData{
		Artist: artist,
		Albums: s.service.Albums(artist),
	}).Render(r.Context(), w)
}

// handleAlbum renders one album with its Wikipedia article.
func (s *Server) handleAlbum(w http.ResponseWriter, r *http.Request) {
	artist := pathParam(r, "artist")
	albums := s.service.Albums(artist)

	index, err := strconv.Atoi(pathParam(r, "index"))
	if err != nil || index < 0 || index >= len(albums) {
		http.NotFound(w, r)
		return
	}
	record := albums[index]

	store := s.service.Store()
	store.SelectArtist(artist)
	store.SelectAlbum(record)

	data := templates.AlbumData{
		Artist: artist,
		Header: store.Header(),
		Record: record,
	}
	if s.lookups.Wikipedia != nil {
		article, err := s.lookups.Wikipedia.Album(r.Context(), artist, record.Title())
		if err != nil {
			data.LookupMessage = core.MapError(err).Message
			var nf *lookup.NotFoundError
			if errors.As(err, &nf) {
				data.SearchURL = nf.SearchURL
			}
			logLookupError(r, "album", err)
		} else {
			data.Article = &article
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Album(data).Render(r.Context(), w)
}

// handleHealth reports that the process is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyResponse is returned by /readyz.
type ReadyResponse struct {
	Ready   bool     `json:"ready"`
	Pending []string `json:"pending,omitempty"`
}

// handleReady reports whether data has loaded and the view is serving.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	pending := s.service.Gate().Pending()
	if len(pending) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Pending: pending})
		return
	}
	writeJSON(w, http.StatusOK, ReadyResponse{Ready: true})
}
