package greetings

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	DefaultLimit   = 10
	MaxLimit       = 100
	MaxOffset      = math.MaxInt32
	MaxQueryLength = 100 // characters
)

// Params holds raw query-string values as received by a handler.
// Empty strings mean the parameter was absent.
type Params struct {
	Category string
	Query    string
	Limit    string
	Offset   string
}

// PageRequest is a validated request for a page of greetings.
type PageRequest struct {
	Category *Category // nil when no category filter applies
	Query    string
	Limit    int
	Offset   int
}

// CategoryToken returns the request's category token, or "" without a filter.
func (r PageRequest) CategoryToken() string {
	if r.Category == nil {
		return ""
	}
	return r.Category.Token
}

// CategoryValue returns the storage value to filter on, or "".
func (r PageRequest) CategoryValue() string {
	if r.Category == nil {
		return ""
	}
	return r.Category.Value
}

// ParseListRequest validates parameters for the category listing.
func ParseListRequest(p Params) (PageRequest, error) {
	return parsePageRequest(p, true, false)
}

// ParseSearchRequest validates parameters for full-text search.
func ParseSearchRequest(p Params) (PageRequest, error) {
	return parsePageRequest(p, false, true)
}

// ParseRecentRequest validates parameters for the recency listing.
func ParseRecentRequest(p Params) (PageRequest, error) {
	return parsePageRequest(p, false, false)
}

func parsePageRequest(p Params, categoryRequired, queryRequired bool) (PageRequest, error) {
	limit, err := parseInt("limit", p.Limit, DefaultLimit)
	if err != nil {
		return PageRequest{}, err
	}
	if limit < 1 || limit > MaxLimit {
		return PageRequest{}, errOutOfRange(fmt.Sprintf(
			"limit must be greater than or equal to 1 and less than or equal to %d, got %d", MaxLimit, limit))
	}

	offset, err := parseInt("offset", p.Offset, 0)
	if err != nil {
		return PageRequest{}, err
	}
	if offset < 0 {
		return PageRequest{}, errOutOfRange(fmt.Sprintf("offset cannot be negative, got %d", offset))
	}
	if offset > MaxOffset {
		return PageRequest{}, errOutOfRange(fmt.Sprintf("offset must be less than or equal to %d, got %d", MaxOffset, offset))
	}

	query := strings.TrimSpace(p.Query)
	if queryRequired && query == "" {
		return PageRequest{}, errInvalidParameter("The 'query' query parameter is required.")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return PageRequest{}, errInvalidParameter(fmt.Sprintf("query too long (max %d chars)", MaxQueryLength))
	}

	category, err := ParseCategory(p.Category, categoryRequired)
	if err != nil {
		return PageRequest{}, err
	}

	return PageRequest{
		Category: category,
		Query:    query,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// ParseCategory resolves an optional category token. A nil category means no filter.
func ParseCategory(token string, required bool) (*Category, error) {
	if token == "" {
		if required {
			return nil, errInvalidParameter("The 'category' query parameter is required.")
		}
		return nil, nil
	}
	c, err := Resolve(token)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func parseInt(name, raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errInvalidParameter(fmt.Sprintf("%s must be an integer, got %q", name, raw))
	}
	return n, nil
}
