package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// errNotFound forces a transaction rollback when the primary record of a
// cascading update is missing.
var errNotFound = errors.New("record not found")

const (
	defaultPage  = 1
	defaultLimit = 10
)

// parsePagination reads page/limit query parameters with the same defaults
// for every list endpoint.
func parsePagination(c echo.Context) (page, limit, offset int) {
	page = defaultPage
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v >= 1 {
		page = v
	}
	limit = defaultLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v >= 1 {
		limit = v
	}
	return page, limit, (page - 1) * limit
}

// totalPages returns ceil(total/limit).
func totalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// searchPattern builds a case-insensitive LIKE pattern. LOWER(col) LIKE is
// used instead of ILIKE so the clause works on the sqlite test driver too.
func searchPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// insertUnordered inserts records one at a time, skipping individual
// failures, and returns the number actually inserted. This mirrors an
// unordered bulk insert: one duplicate does not abort the batch.
func insertUnordered[T any](db *gorm.DB, records []T) int64 {
	var inserted int64
	for i := range records {
		if err := db.Create(&records[i]).Error; err != nil {
			continue
		}
		inserted++
	}
	return inserted
}
