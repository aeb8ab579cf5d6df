package service

import (
	"context"
	"errors"
	"fmt"

	"vendas-escolares/internal/apperror"
	"vendas-escolares/internal/domain"
	"vendas-escolares/internal/repository"

	"go.uber.org/zap"
)

// maxOrderAmount is the largest value the NUMERIC(10,2) order columns hold
var maxOrderAmount = maxPrice

// CheckoutRequest is a cart to confirm
type CheckoutRequest struct {
	Items  []domain.CartItem
	Coupon *string
}

// CheckoutService confirms carts and reads back confirmed orders
type CheckoutService interface {
	// Checkout validates stock, prices the cart, stores the order and
	// decrements stock as one transaction.
	Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
}

type checkoutService struct {
	tx       repository.Transactor
	products repository.ProductRepository
	orders   repository.OrderRepository
	events   EventPublisher
	logger   *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService.
// events may be nil, in which case no order events are published.
func NewCheckoutService(
	tx repository.Transactor,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	events EventPublisher,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		tx:       tx,
		products: products,
		orders:   orders,
		events:   events,
		logger:   logger,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	lines, err := mergeCartItems(req.Items)
	if err != nil {
		return nil, err
	}

	coupon, err := normalizeCouponInput(req.Coupon)
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ids := make([]int64, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ProductID)
		}

		// Row locks serialize concurrent checkouts of the same products
		locked, err := s.products.FindByIDsForUpdate(ctx, ids)
		if err != nil {
			return err
		}

		byID := make(map[int64]*domain.Product, len(locked))
		for _, p := range locked {
			byID[p.ID] = p
		}

		for _, line := range lines {
			if _, ok := byID[line.ProductID]; !ok {
				return apperror.NotFound(fmt.Sprintf("produto %d não encontrado", line.ProductID), repository.ErrProductNotFound)
			}
		}

		items := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			product := byID[line.ProductID]
			if line.Quantity > product.Stock {
				return apperror.InsufficientStock(product.Name, line.Quantity, product.Stock)
			}
			items = append(items, domain.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
			})
		}

		totals := CalculateTotals(items, couponCode(coupon))
		if totals.Subtotal.GreaterThan(maxOrderAmount) {
			return apperror.Validationf("valor do pedido excede o limite de %s", maxOrderAmount.StringFixed(2))
		}
		order = &domain.Order{
			Subtotal:   totals.Subtotal,
			Discount:   totals.Discount,
			Total:      totals.Total,
			CouponCode: coupon,
			Items:      items,
		}

		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}

		for _, item := range items {
			if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}
		}

		return nil
	})
	if err != nil {
		appErr := apperror.From(err)
		if appErr.Kind == apperror.KindInternal {
			s.logger.Error("Checkout failed, transaction rolled back", zap.Error(err))
		}
		return nil, appErr
	}

	s.logger.Info("Order confirmed",
		zap.Int64("order_id", order.ID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("items", len(order.Items)),
	)

	if s.events != nil {
		if err := publishOrderCreated(ctx, s.events, order); err != nil {
			s.logger.Warn("Failed to publish order created event", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}

	return order, nil
}

func (s *checkoutService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.NotFound("pedido não encontrado", err)
		}
		s.logger.Error("Failed to find order", zap.Int64("order_id", id), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	return order, nil
}

// mergeCartItems rejects empty carts and quantities outside
// 1..MaxItemQuantity, and folds repeated products into one line, keeping
// first-seen order.
func mergeCartItems(items []domain.CartItem) ([]domain.CartItem, error) {
	if len(items) == 0 {
		return nil, apperror.Validation("o carrinho está vazio")
	}

	merged := make([]domain.CartItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 || item.Quantity > domain.MaxItemQuantity {
			return nil, apperror.Validationf("quantidade inválida para o produto %d", item.ProductID)
		}
		if i, ok := index[item.ProductID]; ok {
			if item.Quantity > domain.MaxItemQuantity-merged[i].Quantity {
				return nil, apperror.Validationf("quantidade inválida para o produto %d", item.ProductID)
			}
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	return merged, nil
}

// normalizeCouponInput returns the normalized code, or nil when none was given
func normalizeCouponInput(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	code := NormalizeCoupon(*raw)
	if code == "" {
		return nil, nil
	}
	if len(code) > maxCouponLength {
		return nil, apperror.Validationf("cupom deve ter no máximo %d caracteres", maxCouponLength)
	}
	return &code, nil
}

func couponCode(coupon *string) string {
	if coupon == nil {
		return ""
	}
	return *coupon
}
