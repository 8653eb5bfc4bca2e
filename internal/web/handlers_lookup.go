package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/recordviewer/internal/core"
	"github.com/JonMunkholm/recordviewer/internal/lookup"
)

// LookupErrorResponse adds a manual search link to a failed lookup.
type LookupErrorResponse struct {
	ErrorResponse
	SearchURL string `json:"search_url,omitempty"`
}

// handleLookupAlbum returns the Wikipedia article of ?artist=&title=.
func (s *Server) handleLookupAlbum(w http.ResponseWriter, r *http.Request) {
	artist, title := r.URL.Query().Get("artist"), r.URL.Query().Get("title")
	if artist == "" || title == "" {
		s.respondError(w, r, errors.New("artist and title are required"), http.StatusBadRequest)
		return
	}
	if s.lookups.Wikipedia == nil {
		s.respondError(w, r, fmt.Errorf("wikipedia: %w", lookup.ErrDisabled), http.StatusServiceUnavailable)
		return
	}

	article, err := s.lookups.Wikipedia.Album(r.Context(), artist, title)
	if err != nil {
		s.respondLookupError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// handleLookupArtist returns the Wikipedia article of ?artist=.
func (s *Server) handleLookupArtist(w http.ResponseWriter, r *http.Request) {
	artist := r.URL.Query().Get("artist")
	if artist == "" {
		s.respondError(w, r, errors.New("artist is required"), http.StatusBadRequest)
		return
	}
	if s.lookups.Wikipedia == nil {
		s.respondError(w, r, fmt.Errorf("wikipedia: %w", lookup.ErrDisabled), http.StatusServiceUnavailable)
		return
	}

	article, err := s.lookups.Wikipedia.Artist(r.Context(), artist)
	if err != nil {
		s.respondLookupError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// handleLookupDiscogs returns the Discogs discography of ?artist=.
func (s *Server) handleLookupDiscogs(w http.ResponseWriter, r *http.Request) {
	artist := r.URL.Query().Get("artist")
	if artist == "" {
		s.respondError(w, r, errors.New("artist is required"), http.StatusBadRequest)
		return
	}
	if s.lookups.Discogs == nil {
		s.respondError(w, r, fmt.Errorf("discogs: %w", lookup.ErrDisabled), http.StatusServiceUnavailable)
		return
	}

	disc, err := s.lookups.Discogs.Discography(r.Context(), artist)
	if err != nil {
		s.respondLookupError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, disc)
}

// respondLookupError is respondError plus the manual search URL for JSON
// clients when the lookup found nothing.
func (s *Server) respondLookupError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *lookup.NotFoundError
	if !errors.As(err, &nf) || isHTMX(r) {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logLookupError(r, nf.Service, err)
	msg := core.MapError(err)
	writeJSON(w, http.StatusNotFound, LookupErrorResponse{
		ErrorResponse: ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		},
		SearchURL: nf.SearchURL,
	})
}
