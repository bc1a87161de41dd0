package reviewserver

import (
	"fmt"
	"strings"
)

type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// SortParams describe ordering and limit of a store listing.
type SortParams struct {
	Limit int
	By    string
	Order SortOrder
}

func (p SortParams) Empty() bool {
	return p.Limit == 0 && p.By == "" && p.Order == ""
}

// SQL renders the params as an order by / limit suffix. By is expected to
// be one of the store's own column references, never user input.
func (p SortParams) SQL() string {
	var s string

	if p.By != "" {
		s += fmt.Sprintf(" order by %s", p.By)
		if p.Order != "" {
			s += " " + strings.ToLower(string(p.Order))
		}
	}

	if p.Limit > 0 {
		s += fmt.Sprintf(" limit %d", p.Limit)
	}

	return s
}
