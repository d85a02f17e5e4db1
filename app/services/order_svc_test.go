package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/storefront/app/models"
)

func TestUpdateOrderStatus(t *testing.T) {
	orders := newFakeOrderRepo(nil)
	orders.orders = []models.Order{
		{ID: "o1", UserID: "u1", OrderStatus: models.OrderStatusProcessing},
		{ID: "o2", UserID: "u2", OrderStatus: models.OrderStatusDelivered},
	}
	svc := NewOrderService(orders)
	ctx := context.Background()

	updated, err := svc.UpdateStatus(ctx, "o1", models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.OrderStatus)

	_, err = svc.UpdateStatus(ctx, "o2", models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = svc.UpdateStatus(ctx, "o1", "Lost")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)

	_, err = svc.UpdateStatus(ctx, "missing", models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	mine, err := svc.ListUserOrders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.OrderStatusShipped, mine[0].OrderStatus)
}
