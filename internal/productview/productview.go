// Package productview derives filtered and sorted views of an already
// fetched page of products. Nothing here touches the store.
package productview

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/tuanvumaihuynh/stock-manager/internal/model"
)

type SortOrder uint8

const (
	SortNone SortOrder = iota
	SortAsc
	SortDesc
)

// Next cycles none -> asc -> desc -> none.
func (o SortOrder) Next() SortOrder {
	switch o {
	case SortNone:
		return SortAsc
	case SortAsc:
		return SortDesc
	default:
		return SortNone
	}
}

func (o SortOrder) String() string {
	switch o {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return ""
	}
}

// ParseSortOrder accepts "", "asc" and "desc", case-insensitively.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SortNone, nil
	case "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	default:
		return SortNone, fmt.Errorf("unknown sort order %q", s)
	}
}

// Filter keeps products whose title or content contains query, compared
// with Unicode case folding. An empty query returns products as is.
func Filter(products []model.Product, query string) []model.Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return products
	}

	folder := cases.Fold()
	needle := folder.String(query)

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(folder.String(p.Title), needle) ||
			strings.Contains(folder.String(p.Content), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders a copy of products by quantity. Products with equal quantity
// keep their relative order. SortNone returns products as is.
func Sort(products []model.Product, order SortOrder) []model.Product {
	if order == SortNone {
		return products
	}

	out := slices.Clone(products)
	slices.SortStableFunc(out, func(a, b model.Product) int {
		if order == SortDesc {
			return compareInt64(b.Quantity, a.Quantity)
		}
		return compareInt64(a.Quantity, b.Quantity)
	})
	return out
}

// Apply filters then sorts.
func Apply(products []model.Product, query string, order SortOrder) []model.Product {
	return Sort(Filter(products, query), order)
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
