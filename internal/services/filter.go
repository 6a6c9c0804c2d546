package services

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/avoronin/kinogrid/internal/models"
)

// SortKey selects the browse ordering.
type SortKey string

const (
	SortNone       SortKey = "none"
	SortYearAsc    SortKey = "year_asc"
	SortYearDesc   SortKey = "year_desc"
	SortRatingAsc  SortKey = "rating_asc"
	SortRatingDesc SortKey = "rating_desc"
	SortTitleAsc   SortKey = "title_asc"
	SortTitleDesc  SortKey = "title_desc"
)

// ParseSortKey maps a request parameter to a SortKey, defaulting to none.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortYearAsc, SortYearDesc, SortRatingAsc, SortRatingDesc, SortTitleAsc, SortTitleDesc:
		return SortKey(strings.ToLower(strings.TrimSpace(s)))
	default:
		return SortNone
	}
}

// ApplyFilter returns the ordered subset of movies matching the criteria,
// sorted by the given key. It is pure: the input slice is never modified,
// identical inputs yield identical output, and ties keep their input order.
//
// All criteria are AND-combined; a zero-valued criterion is a no-op. Range
// bounds are inclusive. An item whose year or rating cannot be parsed is
// excluded when the corresponding range is constrained.
func ApplyFilter(movies []models.Movie, c models.FilterCriteria, key SortKey) []models.Movie {
	out := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		if matches(m, c) {
			out = append(out, m)
		}
	}
	sortMovies(out, key)
	return out
}

func matches(m models.Movie, c models.FilterCriteria) bool {
	if c.Genre != "" && !containsFold(m.Genres(), c.Genre) {
		return false
	}
	if c.Country != "" && !containsFold(m.Countries(), c.Country) {
		return false
	}
	if c.Type != "" && !strings.EqualFold(m.Type, c.Type) {
		return false
	}
	if c.YearFrom > 0 || c.YearTo > 0 {
		year, ok := m.YearInt()
		if !ok {
			return false
		}
		if c.YearFrom > 0 && year < c.YearFrom {
			return false
		}
		if c.YearTo > 0 && year > c.YearTo {
			return false
		}
	}
	if c.RatingFrom > 0 || c.RatingTo > 0 {
		rating, ok := m.Rating()
		if !ok {
			return false
		}
		if c.RatingFrom > 0 && rating < c.RatingFrom {
			return false
		}
		if c.RatingTo > 0 && rating > c.RatingTo {
			return false
		}
	}
	return true
}

// containsFold reports whether any list member contains the value,
// case-insensitively. Substring matching lets "sci" find "Sci-Fi".
func containsFold(list []string, value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, item := range list {
		if strings.Contains(strings.ToLower(item), value) {
			return true
		}
	}
	return false
}

func sortMovies(movies []models.Movie, key SortKey) {
	if key == SortNone {
		return
	}

	// A Collator is not safe for concurrent use, so build one per call.
	col := collate.New(language.English, collate.IgnoreCase)

	less := func(a, b models.Movie) bool { return false }
	switch key {
	case SortYearAsc:
		less = func(a, b models.Movie) bool { return yearRank(a) < yearRank(b) }
	case SortYearDesc:
		less = func(a, b models.Movie) bool { return yearRank(a) > yearRank(b) }
	case SortRatingAsc:
		less = func(a, b models.Movie) bool { return ratingRank(a) < ratingRank(b) }
	case SortRatingDesc:
		less = func(a, b models.Movie) bool { return ratingRank(a) > ratingRank(b) }
	case SortTitleAsc:
		less = func(a, b models.Movie) bool { return col.CompareString(a.Title, b.Title) < 0 }
	case SortTitleDesc:
		less = func(a, b models.Movie) bool { return col.CompareString(a.Title, b.Title) > 0 }
	}

	sort.SliceStable(movies, func(i, j int) bool {
		return less(movies[i], movies[j])
	})
}

// yearRank and ratingRank rank unparsable values as 0. That only affects
// ordering; range filtering excludes them outright.
func yearRank(m models.Movie) int {
	y, _ := m.YearInt()
	return y
}

func ratingRank(m models.Movie) float64 {
	r, _ := m.Rating()
	return r
}
