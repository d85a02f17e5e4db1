package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/models"
	"github.com/threadline/storefront/app/repositories"
	"github.com/threadline/storefront/app/utils/calc"
)

var ErrEmptyBill = errors.New("a bill needs at least one item")

type BillingInput struct {
	CustomerName   string                 `json:"customerName" validate:"max=100"`
	CustomerMobile string                 `json:"customerMobile" validate:"omitempty,max=20"`
	Items          []models.StoreSaleItem `json:"items" validate:"required,min=1,dive"`
}

type BillTotals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxPercent decimal.Decimal `json:"tax_percent"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
}

// ComputeBill sums the items and adds GST. Negative prices are clamped to zero.
func ComputeBill(items []models.StoreSaleItem) BillTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		price := item.Price
		if price.IsNegative() {
			price = decimal.Zero
		}
		subtotal = subtotal.Add(calc.LineTotal(price, item.Quantity))
	}
	tax := calc.CalculateTax(subtotal)
	return BillTotals{
		Subtotal:   subtotal,
		TaxPercent: calc.GetTaxPercent(),
		Tax:        tax,
		Total:      calc.CalculateGrandTotal(subtotal, tax),
	}
}

type BillingService struct {
	saleRepo  repositories.StoreSaleRepository
	validator *validator.Validate
}

func NewBillingService(saleRepo repositories.StoreSaleRepository, validate *validator.Validate) *BillingService {
	return &BillingService{saleRepo: saleRepo, validator: validate}
}

func (s *BillingService) CreateSale(ctx context.Context, in BillingInput) (*models.StoreSale, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyBill
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	totals := ComputeBill(in.Items)
	sale := &models.StoreSale{
		CustomerName:   strings.TrimSpace(in.CustomerName),
		CustomerMobile: strings.TrimSpace(in.CustomerMobile),
		Items:          in.Items,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Total:          totals.Total,
	}
	if sale.CustomerName == "" {
		sale.CustomerName = models.WalkInCustomerName
	}
	if sale.CustomerMobile == "" {
		sale.CustomerMobile = models.UnknownCustomerPhone
	}

	if err := s.saleRepo.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to save store sale: %w", err)
	}
	log.Printf("BillingService.CreateSale: bill %s for %s, total %s", sale.ID, sale.CustomerName, sale.Total)
	return sale, nil
}

func (s *BillingService) ListSales(ctx context.Context) ([]models.StoreSale, error) {
	return s.saleRepo.GetAll(ctx)
}
