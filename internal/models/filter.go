package models

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	defaultPage  = 1
	defaultLimit = 10

	// maxLimit is a hard ceiling so a caller cannot request unbounded pages.
	maxLimit = 10

	maxSearchLength = 100
	maxPriceBound   = 999_999_999
)

// searchDisallowed blocks characters commonly used in injection attempts.
var (
	searchDisallowed = regexp.MustCompile(`['";\\%_*$#@!&]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// ProductFilter narrows a product list query. Price bounds are pointers so a
// minPrice of 0 stays distinguishable from "no bound".
type ProductFilter struct {
	Page     int
	Limit    int
	Search   string
	MinPrice *float64
	MaxPrice *float64
}

// FilterInput is the raw query-string form of a ProductFilter.
type FilterInput struct {
	Page     string
	Limit    string
	Search   string
	MinPrice string
	MaxPrice string
}

// NewProductFilter normalizes and validates raw query parameters. Page and
// limit values that are non-numeric or out of range are silently reset to
// their defaults; an invalid search term or price bound fails the whole
// request instead of being dropped.
func NewProductFilter(in FilterInput) (*ProductFilter, error) {
	f := &ProductFilter{Page: defaultPage, Limit: defaultLimit}

	if page, err := strconv.Atoi(strings.TrimSpace(in.Page)); err == nil && page >= 1 {
		f.Page = page
	}
	if limit, err := strconv.Atoi(strings.TrimSpace(in.Limit)); err == nil && limit >= 1 && limit <= maxLimit {
		f.Limit = limit
	}

	if in.Search != "" {
		if err := validateSearch(in.Search); err != nil {
			return nil, err
		}
		f.Search = whitespaceRun.ReplaceAllString(strings.TrimSpace(in.Search), " ")
	}

	minPrice, err := parsePriceBound("minPrice", "invalid minimum price", in.MinPrice)
	if err != nil {
		return nil, err
	}
	f.MinPrice = minPrice

	maxPrice, err := parsePriceBound("maxPrice", "invalid maximum price", in.MaxPrice)
	if err != nil {
		return nil, err
	}
	f.MaxPrice = maxPrice

	return f, nil
}

// Offset returns the row offset for the current page. Pages large enough to
// overflow the multiplication are pinned past the end of any result set, so
// they yield an empty page rather than a negative offset.
func (f *ProductFilter) Offset() int {
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

func validateSearch(search string) error {
	if utf8.RuneCountInString(search) > maxSearchLength {
		return newValidationError("search", "search term must be at most 100 characters")
	}
	if markupPattern.MatchString(search) || searchDisallowed.MatchString(search) {
		return newValidationError("search", "search term contains invalid characters")
	}
	return nil
}

func parsePriceBound(field, message, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > maxPriceBound {
		return nil, newValidationError(field, message)
	}
	return &v, nil
}
