package setlist

import (
	"strings"

	"github.com/desertthunder/setlistx/internal/models"
)

// setlist.fm API response types based on https://api.setlist.fm/docs/1.0/index.html

type searchResponse struct {
	Type         string          `json:"type"`
	ItemsPerPage int             `json:"itemsPerPage"`
	Page         int             `json:"page"`
	Total        int             `json:"total"`
	Setlist      []setlistRecord `json:"setlist"`
}

type setlistRecord struct {
	ID        string `json:"id"`
	EventDate string `json:"eventDate"`
	URL       string `json:"url"`
	Artist    *struct {
		MBID           string `json:"mbid"`
		Name           string `json:"name"`
		Disambiguation string `json:"disambiguation"`
	} `json:"artist"`
	Venue *struct {
		Name string `json:"name"`
		City *struct {
			Name    string `json:"name"`
			Country *struct {
				Code string `json:"code"`
				Name string `json:"name"`
			} `json:"country"`
		} `json:"city"`
	} `json:"venue"`
	Tour *struct {
		Name string `json:"name"`
	} `json:"tour"`
	Sets *struct {
		Set []setGroup `json:"set"`
	} `json:"sets"`
}

// setGroup is one set of a show; encores are separate groups.
type setGroup struct {
	Name   string `json:"name"`
	Encore int    `json:"encore"`
	Song   []song `json:"song"`
}

type song struct {
	Name string `json:"name"`
	Tape bool   `json:"tape"`
	Info string `json:"info"`
}

// songNames flattens set groups in group order then in-group order, skipping unnamed entries.
func (r setlistRecord) songNames() []string {
	if r.Sets == nil {
		return nil
	}

	var songs []string
	for _, group := range r.Sets.Set {
		for _, s := range group.Song {
			if name := strings.TrimSpace(s.Name); name != "" {
				songs = append(songs, name)
			}
		}
	}
	return songs
}

func (r setlistRecord) toModel(query string, songs []string) *models.Setlist {
	sl := &models.Setlist{
		ArtistQuery: query,
		EventDate:   r.EventDate,
		URL:         r.URL,
		Songs:       songs,
	}

	if r.Artist != nil {
		sl.ArtistName = r.Artist.Name
		sl.Disambiguation = r.Artist.Disambiguation
	}
	if r.Venue != nil {
		sl.VenueName = r.Venue.Name
		if r.Venue.City != nil {
			sl.City = r.Venue.City.Name
			if r.Venue.City.Country != nil {
				sl.Country = r.Venue.City.Country.Name
			}
		}
	}
	if r.Tour != nil {
		sl.Tour = r.Tour.Name
	}
	return sl
}
