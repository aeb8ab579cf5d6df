package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a confirmed sale. Total is always Subtotal minus Discount.
type Order struct {
	ID         int64           `json:"id" db:"id"`
	Subtotal   decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount   decimal.Decimal `json:"desconto" db:"desconto"`
	Total      decimal.Decimal `json:"total" db:"total"`
	CouponCode *string         `json:"cupom" db:"cupom"`
	Items      []OrderItem     `json:"itens"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// OrderItem is one line of an order with the unit price captured at sale time
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"pedido_id" db:"pedido_id"`
	ProductID int64           `json:"produto_id" db:"produto_id"`
	Quantity  int             `json:"quantidade" db:"quantidade"`
	UnitPrice decimal.Decimal `json:"preco_unitario" db:"preco_unitario"`
}

// LineTotal is the unit price times the quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// MaxItemQuantity is the largest quantity an INTEGER column holds
const MaxItemQuantity = math.MaxInt32

// CartItem is a requested product and quantity at checkout
type CartItem struct {
	ProductID int64
	Quantity  int
}
