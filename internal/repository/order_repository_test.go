package repository

import (
	"context"
	"errors"
	"testing"

	"vendas-escolares/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_CreateAndFind(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(testDB)

	coupon := "ALUNO10"
	order := &domain.Order{
		Subtotal:   decimal.RequireFromString("39.80"),
		Discount:   decimal.RequireFromString("3.98"),
		Total:      decimal.RequireFromString("35.82"),
		CouponCode: &coupon,
		Items: []domain.OrderItem{
			{ProductID: 7, Quantity: 2, UnitPrice: decimal.RequireFromString("19.90")},
		},
	}

	require.NoError(t, orders.Create(ctx, order))
	require.NotZero(t, order.ID)
	assert.False(t, order.CreatedAt.IsZero())
	assert.Equal(t, order.ID, order.Items[0].OrderID)
	assert.NotZero(t, order.Items[0].ID)

	found, err := orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, found.Total.Equal(order.Total))
	assert.True(t, found.Discount.Equal(order.Discount))
	require.NotNil(t, found.CouponCode)
	assert.Equal(t, "ALUNO10", *found.CouponCode)
	require.Len(t, found.Items, 1)
	assert.Equal(t, int64(7), found.Items[0].ProductID)
	assert.True(t, found.Items[0].UnitPrice.Equal(decimal.RequireFromString("19.90")))

	_, err = orders.FindByID(ctx, order.ID+1000)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderRepository_CreateIsAtomic(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(testDB)

	// The second item violates quantidade >= 1, so the header must not survive
	order := &domain.Order{
		Subtotal: decimal.RequireFromString("10.00"),
		Discount: decimal.Zero,
		Total:    decimal.RequireFromString("10.00"),
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
			{ProductID: 2, Quantity: 0, UnitPrice: decimal.RequireFromString("1.00")},
		},
	}

	require.Error(t, orders.Create(ctx, order))

	var count int
	require.NoError(t, testDB.QueryRow(`SELECT COUNT(*) FROM pedidos`).Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, testDB.QueryRow(`SELECT COUNT(*) FROM pedido_itens`).Scan(&count))
	assert.Zero(t, count)
}

func TestOrderRepository_JoinsOuterTransaction(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(testDB)
	tx := NewTransactor(testDB)

	abort := errors.New("abort")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		order := &domain.Order{
			Subtotal: decimal.RequireFromString("2.50"),
			Discount: decimal.Zero,
			Total:    decimal.RequireFromString("2.50"),
			Items:    []domain.OrderItem{{ProductID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("2.50")}},
		}
		if err := orders.Create(ctx, order); err != nil {
			return err
		}
		return abort
	})
	assert.ErrorIs(t, err, abort)

	var count int
	require.NoError(t, testDB.QueryRow(`SELECT COUNT(*) FROM pedidos`).Scan(&count))
	assert.Zero(t, count)
}
