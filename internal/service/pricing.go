package service

import (
	"strings"

	"vendas-escolares/internal/domain"

	"github.com/shopspring/decimal"
)

// CouponAluno10 grants 10% off the subtotal
const CouponAluno10 = "ALUNO10"

// maxCouponLength matches the width of pedidos.cupom
const maxCouponLength = 32

// couponRates is the complete coupon table; codes are stored normalized
var couponRates = map[string]decimal.Decimal{
	CouponAluno10: decimal.RequireFromString("0.10"),
}

// Totals is the priced result of a cart
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// NormalizeCoupon trims and upper-cases a coupon code
func NormalizeCoupon(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponDiscount is the discount a coupon grants on subtotal, rounded to cents.
// Unknown and empty codes grant nothing.
func CouponDiscount(subtotal decimal.Decimal, code string) decimal.Decimal {
	rate, ok := couponRates[NormalizeCoupon(code)]
	if !ok {
		return decimal.Zero
	}
	return subtotal.Mul(rate).Round(2)
}

// CalculateTotals prices items and applies the coupon
func CalculateTotals(items []domain.OrderItem, coupon string) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	subtotal = subtotal.Round(2)

	discount := CouponDiscount(subtotal, coupon)

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount).Round(2),
	}
}
