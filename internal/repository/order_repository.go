package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vendas-escolares/internal/domain"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Create inserts the order header and all of its items atomically,
	// joining the caller's transaction when there is one.
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
	tx Transactor
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db, tx: NewTransactor(db)}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.db)

		err := q.QueryRowContext(
			ctx,
			`INSERT INTO pedidos (subtotal, desconto, total, cupom) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
			order.Subtotal,
			order.Discount,
			order.Total,
			order.CouponCode,
		).Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID

			err := q.QueryRowContext(
				ctx,
				`INSERT INTO pedido_itens (pedido_id, produto_id, quantidade, preco_unitario) VALUES ($1, $2, $3, $4) RETURNING id`,
				item.OrderID,
				item.ProductID,
				item.Quantity,
				item.UnitPrice,
			).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("failed to create order item for product %d: %w", item.ProductID, err)
			}
		}

		return nil
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	q := conn(ctx, r.db)

	order := &domain.Order{}
	err := q.QueryRowContext(
		ctx,
		`SELECT id, subtotal, desconto, total, cupom, created_at FROM pedidos WHERE id = $1`,
		id,
	).Scan(&order.ID, &order.Subtotal, &order.Discount, &order.Total, &order.CouponCode, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	rows, err := q.QueryContext(
		ctx,
		`SELECT id, pedido_id, produto_id, quantidade, preco_unitario FROM pedido_itens WHERE pedido_id = $1 ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	order.Items = []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, nil
}
