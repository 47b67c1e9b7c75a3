package pagination

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Bounds describes the accepted limit range for one listing.
type Bounds struct {
	DefaultLimit int
	MaxLimit     int
}

var (
	// Search bounds claim search listings.
	Search = Bounds{DefaultLimit: 50, MaxLimit: 500}
	// Ranking bounds the ranked opportunity listing.
	Ranking = Bounds{DefaultLimit: 50, MaxLimit: 100}
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// Parse validates raw limit and offset values. A missing or unparsable limit
// takes the default; a parsed limit is clamped to [1, MaxLimit]. A missing,
// unparsable or negative offset becomes 0. Offset has no upper bound.
func Parse(rawLimit, rawOffset string, b Bounds) Params {
	limit := b.DefaultLimit
	if n, err := strconv.Atoi(strings.TrimSpace(rawLimit)); err == nil {
		limit = n
	}
	if limit < 1 {
		limit = 1
	}
	if limit > b.MaxLimit {
		limit = b.MaxLimit
	}

	offset, err := strconv.Atoi(strings.TrimSpace(rawOffset))
	if err != nil || offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// FromContext extracts pagination parameters from the echo context.
func FromContext(c echo.Context, b Bounds) Params {
	return Parse(c.QueryParam("limit"), c.QueryParam("offset"), b)
}

// Window returns the page of items selected by p. A non-positive limit means
// no upper bound.
func Window[T any](items []T, p Params) []T {
	if p.Offset >= len(items) {
		return items[:0]
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}
