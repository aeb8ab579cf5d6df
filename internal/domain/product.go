package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product name bounds, in characters
const (
	ProductNameMinLen = 3
	ProductNameMaxLen = 60
)

// Product represents a school supply item in the catalog
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"nome" db:"nome"`
	Description *string         `json:"descricao" db:"descricao"`
	Price       decimal.Decimal `json:"preco" db:"preco"`
	Stock       int             `json:"estoque" db:"estoque"`
	Category    string          `json:"categoria" db:"categoria"`
	SKU         *string         `json:"sku" db:"sku"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductPatch carries the fields of a partial update; nil means unchanged
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
	SKU         *string
}

// Apply copies every provided field onto p
func (patch ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.SKU != nil {
		p.SKU = patch.SKU
	}
}
