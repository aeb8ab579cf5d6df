package service

import (
	"context"
	"encoding/json"
	"time"

	"vendas-escolares/internal/domain"
	"vendas-escolares/pkg/rabbitmq"
)

// EventPublisher delivers domain events to a broker
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// OrderCreatedEvent is published once a checkout commits
type OrderCreatedEvent struct {
	OrderID   int64                   `json:"pedido_id"`
	Subtotal  domain.Money            `json:"subtotal"`
	Discount  domain.Money            `json:"desconto"`
	Total     domain.Money            `json:"total"`
	Coupon    *string                 `json:"cupom"`
	Items     []OrderCreatedEventItem `json:"itens"`
	CreatedAt time.Time               `json:"created_at"`
}

type OrderCreatedEventItem struct {
	ProductID int64        `json:"produto_id"`
	Quantity  int          `json:"quantidade"`
	UnitPrice domain.Money `json:"preco_unitario"`
}

func newOrderCreatedEvent(order *domain.Order) OrderCreatedEvent {
	items := make([]OrderCreatedEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderCreatedEventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: domain.Money(item.UnitPrice),
		})
	}

	return OrderCreatedEvent{
		OrderID:   order.ID,
		Subtotal:  domain.Money(order.Subtotal),
		Discount:  domain.Money(order.Discount),
		Total:     domain.Money(order.Total),
		Coupon:    order.CouponCode,
		Items:     items,
		CreatedAt: order.CreatedAt,
	}
}

func publishOrderCreated(ctx context.Context, publisher EventPublisher, order *domain.Order) error {
	body, err := json.Marshal(newOrderCreatedEvent(order))
	if err != nil {
		return err
	}
	return publisher.Publish(ctx, rabbitmq.OrderCreatedKey, body)
}
