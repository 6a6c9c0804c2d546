package models

import (
	"strconv"
	"strings"
	"time"
)

// NoValue is the sentinel OMDb uses for absent fields (poster, rating, ...).
const NoValue = "N/A"

// Summary is the short-form record a keyword search returns.
type Summary struct {
	ImdbID string `json:"imdbID"`
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// Movie is the full-form catalog record, fetched by imdbID. After aggregation
// it may also hold summary-only data when the detail fetch was skipped or
// failed; the detail fields then carry their zero value or the N/A sentinel.
//
// Genre and Country keep the comma-joined source form; use Genres/Countries
// for list access.
type Movie struct {
	ImdbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre,omitempty"`
	Country    string `json:"Country,omitempty"`
	Runtime    string `json:"Runtime,omitempty"`
	Director   string `json:"Director,omitempty"`
	Actors     string `json:"Actors,omitempty"`
	Plot       string `json:"Plot,omitempty"`
	Poster     string `json:"Poster,omitempty"`
	ImdbRating string `json:"imdbRating,omitempty"`
	Type       string `json:"Type,omitempty"`
}

// FromSummary builds a summary-only Movie.
func FromSummary(s Summary) Movie {
	return Movie{
		ImdbID: s.ImdbID,
		Title:  s.Title,
		Year:   s.Year,
		Type:   s.Type,
		Poster: s.Poster,
	}
}

// Merge overlays detail fields onto m. Detail values win on every field they
// define; empty and N/A detail fields leave the existing value in place.
func (m Movie) Merge(detail Movie) Movie {
	override := func(dst *string, src string) {
		if src != "" && src != NoValue {
			*dst = src
		}
	}
	override(&m.Title, detail.Title)
	override(&m.Year, detail.Year)
	override(&m.Genre, detail.Genre)
	override(&m.Country, detail.Country)
	override(&m.Runtime, detail.Runtime)
	override(&m.Director, detail.Director)
	override(&m.Actors, detail.Actors)
	override(&m.Plot, detail.Plot)
	override(&m.Poster, detail.Poster)
	override(&m.ImdbRating, detail.ImdbRating)
	override(&m.Type, detail.Type)
	return m
}

// Genres splits the comma-joined genre field.
func (m Movie) Genres() []string {
	return splitList(m.Genre)
}

// Countries splits the comma-joined country field.
func (m Movie) Countries() []string {
	return splitList(m.Country)
}

// YearInt parses the leading year out of the Year field. Series use spans
// like "2008–2013", which parse to the first year. Returns false when no
// year can be read.
func (m Movie) YearInt() (int, bool) {
	s := strings.TrimSpace(m.Year)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	y, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return y, true
}

// Rating parses the imdbRating field. The N/A sentinel and malformed values
// return false.
func (m Movie) Rating() (float64, bool) {
	s := strings.TrimSpace(m.ImdbRating)
	if s == "" || s == NoValue {
		return 0, false
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return r, true
}

func splitList(joined string) []string {
	if joined == "" || joined == NoValue {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FilterCriteria holds the optional browse constraints. Zero values mean
// "no constraint on this field"; both range bounds are inclusive.
type FilterCriteria struct {
	Genre      string
	Country    string
	Type       string
	YearFrom   int
	YearTo     int
	RatingFrom float64
	RatingTo   float64
}

// BrowseInput is the validated input for listing the collection.
type BrowseInput struct {
	Genre      string  `query:"genre"`
	Country    string  `query:"country"`
	Type       string  `query:"type"`
	YearFrom   int     `query:"yearFrom" validate:"min=0"`
	YearTo     int     `query:"yearTo" validate:"min=0"`
	RatingFrom float64 `query:"ratingFrom" validate:"min=0,max=10"`
	RatingTo   float64 `query:"ratingTo" validate:"min=0,max=10"`
	Sort       string  `query:"sort"`
	Page       int     `query:"page" validate:"min=1"`
	Limit      int     `query:"limit" validate:"min=1,max=100"`
}

// Criteria converts the input's filter fields.
func (in BrowseInput) Criteria() FilterCriteria {
	return FilterCriteria{
		Genre:      in.Genre,
		Country:    in.Country,
		Type:       in.Type,
		YearFrom:   in.YearFrom,
		YearTo:     in.YearTo,
		RatingFrom: in.RatingFrom,
		RatingTo:   in.RatingTo,
	}
}

// MovieCard is one browse result: the record plus its favorite membership.
type MovieCard struct {
	Movie
	Favorite bool `json:"favorite"`
}

// PaginatedMovies is one page of browse results.
type PaginatedMovies struct {
	Results    []MovieCard `json:"results"`
	Page       int         `json:"page"`
	Count      int         `json:"count"`
	TotalPages int         `json:"totalPages"`
}

// Snapshot is the pre-generated movies.json document. A present, non-empty
// snapshot is preferred over live aggregation.
type Snapshot struct {
	LastUpdated time.Time `json:"lastUpdated"`
	TotalCount  int       `json:"totalCount"`
	Movies      []Movie   `json:"movies"`
}
