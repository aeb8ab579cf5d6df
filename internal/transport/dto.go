package transport

import (
	"strconv"
	"time"

	"vendas-escolares/internal/domain"

	"github.com/shopspring/decimal"
)

type Money = domain.Money

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name        string          `json:"nome" validate:"required,min=3,max=60"`
	Description *string         `json:"descricao"`
	Price       decimal.Decimal `json:"preco" validate:"required,gt=0"`
	Stock       *int            `json:"estoque" validate:"omitempty,gte=0"`
	Category    string          `json:"categoria" validate:"required,max=60"`
	SKU         *string         `json:"sku" validate:"omitempty,max=64"`
}

func (req CreateProductRequest) toDomain() domain.Product {
	product := domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		SKU:         req.SKU,
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	return product
}

// UpdateProductRequest represents a partial product update; absent fields are kept.
// An empty descricao or sku clears it.
type UpdateProductRequest struct {
	Name        *string          `json:"nome" validate:"omitempty,min=3,max=60"`
	Description *string          `json:"descricao"`
	Price       *decimal.Decimal `json:"preco" validate:"omitempty,gt=0"`
	Stock       *int             `json:"estoque" validate:"omitempty,gte=0"`
	Category    *string          `json:"categoria" validate:"omitempty,min=1,max=60"`
	SKU         *string          `json:"sku" validate:"omitempty,max=64"`
}

func (req UpdateProductRequest) toPatch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		SKU:         req.SKU,
	}
}

// ProductResponse represents a catalog product
type ProductResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nome"`
	Description *string `json:"descricao"`
	Price       Money   `json:"preco"`
	Stock       int     `json:"estoque"`
	Category    string  `json:"categoria"`
	SKU         *string `json:"sku"`
}

func newProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       Money(p.Price),
		Stock:       p.Stock,
		Category:    p.Category,
		SKU:         p.SKU,
	}
}

func newProductListResponse(products []*domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	return out
}

// CartItemRequest is one cart line
type CartItemRequest struct {
	ProductID int64 `json:"produto_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantidade" validate:"gt=0,lte=2147483647"`
}

// CheckoutRequest represents the cart confirmation payload
type CheckoutRequest struct {
	Items  []CartItemRequest `json:"itens" validate:"required,min=1,dive"`
	Coupon *string           `json:"cupom"`
}

func (req CheckoutRequest) cartItems() []domain.CartItem {
	items := make([]domain.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return items
}

// CheckoutResponse represents a confirmed sale
type CheckoutResponse struct {
	ID       int64   `json:"id"`
	Subtotal Money   `json:"subtotal"`
	Discount Money   `json:"desconto"`
	Total    Money   `json:"total"`
	Coupon   *string `json:"cupom"`
}

func newCheckoutResponse(o *domain.Order) CheckoutResponse {
	return CheckoutResponse{
		ID:       o.ID,
		Subtotal: Money(o.Subtotal),
		Discount: Money(o.Discount),
		Total:    Money(o.Total),
		Coupon:   o.CouponCode,
	}
}

// OrderItemResponse represents one sold line with its sale-time price
type OrderItemResponse struct {
	ProductID int64 `json:"produto_id"`
	Quantity  int   `json:"quantidade"`
	UnitPrice Money `json:"preco_unitario"`
	Total     Money `json:"total"`
}

// OrderResponse represents a stored order with its items
type OrderResponse struct {
	CheckoutResponse
	Items     []OrderItemResponse `json:"itens"`
	CreatedAt time.Time           `json:"created_at"`
}

func newOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: Money(item.UnitPrice),
			Total:     Money(item.LineTotal()),
		})
	}
	return OrderResponse{
		CheckoutResponse: newCheckoutResponse(o),
		Items:            items,
		CreatedAt:        o.CreatedAt,
	}
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
