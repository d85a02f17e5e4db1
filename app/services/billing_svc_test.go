package services

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/storefront/app/models"
)

func TestComputeBill(t *testing.T) {
	totals := ComputeBill([]models.StoreSaleItem{
		{Category: "Shirts", ProductName: "Oxford", Price: dec("499.50"), Quantity: 2},
		{Category: "Caps", ProductName: "Cap", Price: dec("-10"), Quantity: 1},
	})
	assert.True(t, totals.Subtotal.Equal(dec("999")))
	assert.True(t, totals.Tax.Equal(dec("179.82")))
	assert.True(t, totals.Total.Equal(dec("1178.82")))
	assert.True(t, totals.TaxPercent.Equal(dec("18")))
}

func TestCreateSale(t *testing.T) {
	sales := &fakeSaleRepo{}
	svc := NewBillingService(sales, validator.New())

	sale, err := svc.CreateSale(context.Background(), BillingInput{
		Items: []models.StoreSaleItem{{Category: "Denim", ProductName: "Jeans", Price: dec("1000"), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.WalkInCustomerName, sale.CustomerName)
	assert.Equal(t, models.UnknownCustomerPhone, sale.CustomerMobile)
	assert.True(t, sale.Total.Equal(dec("1180")))

	listed, err := svc.ListSales(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestCreateSaleValidation(t *testing.T) {
	svc := NewBillingService(&fakeSaleRepo{}, validator.New())

	_, err := svc.CreateSale(context.Background(), BillingInput{})
	assert.ErrorIs(t, err, ErrEmptyBill)

	_, err = svc.CreateSale(context.Background(), BillingInput{
		Items: []models.StoreSaleItem{{Category: "Denim", ProductName: "", Price: dec("10"), Quantity: 1}},
	})
	assert.Error(t, err)

	_, err = svc.CreateSale(context.Background(), BillingInput{
		Items: []models.StoreSaleItem{{Category: "Denim", ProductName: "Jeans", Price: dec("10"), Quantity: 0}},
	})
	assert.Error(t, err)
}
