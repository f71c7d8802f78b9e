package query

import (
	"strconv"
	"strings"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20000
)

// Reserved query keys. Every other key is a property filter.
const (
	ParamPage     = "page"
	ParamPageSize = "pageSize"
	ParamField    = "field"
	ParamOrder    = "order"
)

type Request struct {
	Page      int
	PageSize  int
	SortField string
	// SortOrder is 1 ascending, -1 descending, 0 unsorted.
	SortOrder int
	Filters   map[string]string
}

// ParseRequest turns query-string values into a Request. Malformed or
// non-positive page and pageSize fall back to their defaults instead of
// failing; a malformed order disables sorting.
func ParseRequest(params map[string]string, defaultPageSize int) Request {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}

	req := Request{
		Page:     DefaultPage,
		PageSize: defaultPageSize,
		Filters:  make(map[string]string),
	}

	for key, val := range params {
		switch key {
		case ParamPage:
			req.Page = positiveInt(val, DefaultPage)
		case ParamPageSize:
			req.PageSize = positiveInt(val, defaultPageSize)
		case ParamField:
			req.SortField = strings.TrimSpace(val)
		case ParamOrder:
			req.SortOrder = sortOrder(val)
		default:
			req.Filters[key] = val
		}
	}

	return req
}

func positiveInt(val string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func sortOrder(val string) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	switch {
	case err != nil:
		return 0
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
