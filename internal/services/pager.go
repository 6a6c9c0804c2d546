package services

import "github.com/avoronin/kinogrid/internal/models"

// Page returns the pageNumber-th slice of size pageSize from movies.
// pageNumber is 1-based; a page past the end is empty, not an error.
func Page(movies []models.Movie, pageSize, pageNumber int) []models.Movie {
	if pageSize < 1 || pageNumber < 1 {
		return nil
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(movies) {
		return nil
	}
	end := min(start+pageSize, len(movies))
	return movies[start:end]
}

// PageCount returns how many pages of pageSize are needed for total items.
func PageCount(total, pageSize int) int {
	if total < 1 || pageSize < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
