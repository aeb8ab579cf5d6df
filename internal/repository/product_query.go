package repository

import (
	"strings"
)

// SortField is a product column the catalog can be ordered by
type SortField int

const (
	SortByName SortField = iota
	SortByPrice
	SortByStock
	SortByCategory
	SortByID
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// Sort is a validated ordering for product listings
type Sort struct {
	Field SortField
	Order SortOrder
}

// DefaultSort orders products by name, ascending
var DefaultSort = Sort{Field: SortByName, Order: SortOrderAsc}

var sortFieldNames = map[string]SortField{
	"nome":      SortByName,
	"name":      SortByName,
	"preco":     SortByPrice,
	"price":     SortByPrice,
	"estoque":   SortByStock,
	"stock":     SortByStock,
	"categoria": SortByCategory,
	"category":  SortByCategory,
	"id":        SortByID,
}

// ParseSort reads a "field:direction" spec such as "preco:desc".
// Anything it does not recognize yields DefaultSort.
func ParseSort(raw string) Sort {
	fieldName, direction, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return DefaultSort
	}

	field, ok := sortFieldNames[strings.ToLower(strings.TrimSpace(fieldName))]
	if !ok {
		return DefaultSort
	}

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "asc":
		return Sort{Field: field, Order: SortOrderAsc}
	case "desc":
		return Sort{Field: field, Order: SortOrderDesc}
	default:
		return DefaultSort
	}
}

func (f SortField) column() string {
	switch f {
	case SortByPrice:
		return "preco"
	case SortByStock:
		return "estoque"
	case SortByCategory:
		return "categoria"
	case SortByID:
		return "id"
	case SortByName:
		return "nome"
	default:
		return "nome"
	}
}

// orderBy renders the ORDER BY clause; id breaks ties so pages are stable
func (s Sort) orderBy() string {
	order := s.Order
	if order != SortOrderAsc && order != SortOrderDesc {
		order = SortOrderAsc
	}
	if s.Field == SortByID {
		return "id " + string(order)
	}
	return s.Field.column() + " " + string(order) + ", id ASC"
}

// ProductFilter selects and orders products for List
type ProductFilter struct {
	Search   string // substring of name or description, case-insensitive
	Category string // exact category match
	Sort     Sort
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps a user search term as a literal ILIKE substring pattern
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
