package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/models"
	"github.com/threadline/storefront/app/repositories"
	"github.com/threadline/storefront/app/utils/calc"
)

var (
	ErrAddressRequired          = errors.New("shipping address is required")
	ErrEmptyCart                = errors.New("cart is empty")
	ErrUnknownPaymentMethod     = errors.New("unknown payment method")
	ErrProductUnavailable       = errors.New("product is no longer available")
	ErrInsufficientStock        = errors.New("insufficient product stock")
	ErrCODLimitExceeded         = errors.New("cash on delivery is not available for this order total")
	ErrPaymentReferenceRequired = errors.New("payment reference is required for prepaid orders")
	ErrPaymentNotConfirmed      = errors.New("payment was not confirmed")
	ErrPaymentAmountMismatch    = errors.New("paid amount does not match the order total")
	ErrOrderNotRecorded         = errors.New("payment received but the order could not be recorded")
	ErrPaymentReferenceInUse    = errors.New("payment reference belongs to another order")
)

type PlaceOrderInput struct {
	UserID           string
	Address          string
	Method           string
	PaymentReference string
}

type PlaceOrderResult struct {
	Order *models.Order
	// Existing is true when the payment already had an order and that order was returned.
	Existing bool
}

type ReconcileSummary struct {
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

type CheckoutService struct {
	productRepo  repositories.ProductRepositoryImpl
	orderRepo    repositories.OrderRepository
	reconRepo    repositories.ReconciliationRepository
	gateway      PaymentGateway
	publisher    OrderPublisher
	codThreshold decimal.Decimal
	now          func() time.Time
}

func NewCheckoutService(
	productRepo repositories.ProductRepositoryImpl,
	orderRepo repositories.OrderRepository,
	reconRepo repositories.ReconciliationRepository,
	gateway PaymentGateway,
	publisher OrderPublisher,
	codThreshold decimal.Decimal,
) *CheckoutService {
	return &CheckoutService{
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		reconRepo:    reconRepo,
		gateway:      gateway,
		publisher:    publisher,
		codThreshold: codThreshold,
		now:          time.Now,
	}
}

// CODAvailable applies the cash-on-delivery risk limit; the threshold itself is excluded.
func (s *CheckoutService) CODAvailable(total decimal.Decimal) bool {
	return calc.BelowThreshold(total, s.codThreshold)
}

func (s *CheckoutService) CODThreshold() decimal.Decimal {
	return s.codThreshold
}

type pricedCart struct {
	snapshot models.OrderSnapshot
	lines    []repositories.StockLine
	products map[string]models.Product
}

// priceCart re-reads every cart product from the catalog and checks stock. The snapshot is built
// from a copy of the cart carrying the current effective prices; the cart itself is not touched.
func (s *CheckoutService) priceCart(ctx context.Context, cart *CartStore) (*pricedCart, error) {
	current := cart.Cart()
	if current.IsEmpty() {
		return nil, ErrEmptyCart
	}

	ids := make([]string, 0, len(current.Items))
	for _, item := range current.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]repositories.StockLine, 0, len(current.Items))
	for i, item := range current.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, item.ProductID)
		}
		if product.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: '%s' has %d left, %d requested",
				ErrInsufficientStock, product.Title, product.Stock, item.Quantity)
		}
		current.Items[i].Product = &product
		lines = append(lines, repositories.StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	return &pricedCart{snapshot: models.SnapshotFromCart(current), lines: lines, products: byID}, nil
}

// existingOrder resolves a payment reference that already has an order. Only the buyer who placed
// it gets it back; anyone else is refused and keeps their cart.
func (s *CheckoutService) existingOrder(existing *models.Order, userID string, cart *CartStore) (*PlaceOrderResult, error) {
	if existing.UserID != userID {
		log.Printf("❌ CheckoutService.PlaceOrder: user %s submitted payment %s owned by order %s",
			userID, existing.PaymentID, existing.ID)
		return nil, ErrPaymentReferenceInUse
	}
	log.Printf("CheckoutService.PlaceOrder: payment %s already recorded as order %s", existing.PaymentID, existing.ID)
	cart.ClearCart()
	return &PlaceOrderResult{Order: existing, Existing: true}, nil
}

// InitiatePayment opens a gateway payment for the current cart total. The returned reference is
// what the shopper sends back to PlaceOrder once the gateway reports success.
func (s *CheckoutService) InitiatePayment(ctx context.Context, user models.User, cart *CartStore) (*PaymentSession, error) {
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}

	priced, err := s.priceCart(ctx, cart)
	if err != nil {
		return nil, err
	}
	snapshot := priced.snapshot

	reference := fmt.Sprintf("ORD-%s-%s", s.now().Format("20060102"), uuid.New().String()[:8])
	session, err := s.gateway.Initiate(ctx, PaymentRequest{
		Reference:     reference,
		Amount:        snapshot.Total(),
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		CustomerPhone: user.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initiate payment: %w", err)
	}
	cart.RefreshProducts(priced.products)
	log.Printf("CheckoutService.InitiatePayment: %s payment %s opened for user %s (total %s)",
		session.Provider, session.Reference, user.ID, snapshot.Total())
	return session, nil
}

// PlaceOrder validates the cart against the chosen payment method and records the order.
// Payment is confirmed before the order is written, and the cart is cleared only after.
func (s *CheckoutService) PlaceOrder(ctx context.Context, in PlaceOrderInput, cart *CartStore) (*PlaceOrderResult, error) {
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, ErrAddressRequired
	}
	method := strings.ToLower(strings.TrimSpace(in.Method))
	if method != models.PaymentMethodCOD && method != models.PaymentMethodPrepaid {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, in.Method)
	}
	if method == models.PaymentMethodPrepaid && strings.TrimSpace(in.PaymentReference) == "" {
		return nil, ErrPaymentReferenceRequired
	}

	// A retried prepaid submission returns the order already recorded for that payment.
	if method == models.PaymentMethodPrepaid {
		reference := strings.TrimSpace(in.PaymentReference)
		existing, err := s.orderRepo.FindByPaymentID(ctx, reference)
		if err != nil {
			return nil, fmt.Errorf("failed to look up payment %s: %w", reference, err)
		}
		if existing != nil {
			return s.existingOrder(existing, in.UserID, cart)
		}
	}

	priced, err := s.priceCart(ctx, cart)
	if err != nil {
		return nil, err
	}
	total := priced.snapshot.Total()

	products, err := models.EncodeSnapshot(priced.snapshot)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:        in.UserID,
		Products:      products,
		TotalAmount:   total,
		PaymentMethod: method,
		OrderStatus:   models.OrderStatusCreated,
		Address:       address,
	}

	switch method {
	case models.PaymentMethodCOD:
		if !s.CODAvailable(total) {
			return nil, fmt.Errorf("%w: total %s, limit %s", ErrCODLimitExceeded, total, s.codThreshold)
		}
		order.PaymentID = fmt.Sprintf("COD_%d_%s", s.now().UnixMilli(), uuid.New().String()[:8])
		order.PaymentStatus = models.PaymentStatusPendingCOD

	case models.PaymentMethodPrepaid:
		reference := strings.TrimSpace(in.PaymentReference)
		if s.gateway == nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentNotConfirmed, ErrPaymentUnavailable)
		}
		confirmation, err := s.gateway.Confirm(ctx, reference)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentNotConfirmed, err)
		}
		if !confirmation.Paid {
			return nil, fmt.Errorf("%w: gateway status %q", ErrPaymentNotConfirmed, confirmation.Status)
		}

		order.PaymentID = reference
		order.PaymentStatus = confirmation.Status

		if expected := s.gateway.ChargeAmount(total); !confirmation.Amount.Equal(expected) {
			s.recordReconciliation(ctx, order, models.ReconcileAmountMismatch, confirmation.Amount,
				fmt.Sprintf("paid %s, expected %s for cart total %s", confirmation.Amount, expected, total))
			return nil, fmt.Errorf("%w: paid %s, expected %s", ErrPaymentAmountMismatch, confirmation.Amount, expected)
		}
	}

	if err := s.orderRepo.CreateWithStock(ctx, order, priced.lines); err != nil {
		if errors.Is(err, repositories.ErrDuplicatePayment) {
			existing, findErr := s.orderRepo.FindByPaymentID(ctx, order.PaymentID)
			if findErr == nil && existing != nil {
				return s.existingOrder(existing, in.UserID, cart)
			}
		}

		if method == models.PaymentMethodPrepaid {
			log.Printf("❌ CheckoutService.PlaceOrder: payment %s captured but order failed: %v", order.PaymentID, err)
			s.recordReconciliation(ctx, order, models.ReconcileOrderNotRecorded, order.TotalAmount, err.Error())
			return nil, fmt.Errorf("%w: %v", ErrOrderNotRecorded, err)
		}
		if errors.Is(err, repositories.ErrStockConflict) {
			return nil, fmt.Errorf("%w: %v", ErrInsufficientStock, err)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	cart.ClearCart()
	log.Printf("✅ CheckoutService.PlaceOrder: order %s placed by user %s (%s, %s)", order.ID, order.UserID, method, total)
	s.publish(ctx, *order)

	return &PlaceOrderResult{Order: order}, nil
}

func (s *CheckoutService) publish(ctx context.Context, order models.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		log.Printf("CheckoutService: order %s created, event publishing failed: %v", order.ID, err)
	}
}

func (s *CheckoutService) recordReconciliation(ctx context.Context, order *models.Order, kind string, paid decimal.Decimal, reason string) {
	rec := &models.PaymentReconciliation{
		PaymentID:      order.PaymentID,
		UserID:         order.UserID,
		PaymentMethod:  order.PaymentMethod,
		PaymentStatus:  order.PaymentStatus,
		Amount:         paid,
		ExpectedAmount: order.TotalAmount,
		Address:        order.Address,
		Products:       order.Products,
		Kind:           kind,
		Reason:         reason,
	}
	if err := s.reconRepo.Record(ctx, rec); err != nil {
		log.Printf("❌ CheckoutService: CRITICAL failed to record reconciliation for payment %s: %v", order.PaymentID, err)
		return
	}
	log.Printf("CheckoutService: reconciliation %s recorded for payment %s", kind, order.PaymentID)
}

// ReconcilePending retries every captured payment that still has no order. The order is keyed on
// the payment id, so a retry never creates a second order for the same payment.
func (s *CheckoutService) ReconcilePending(ctx context.Context) (ReconcileSummary, error) {
	var summary ReconcileSummary

	recs, err := s.reconRepo.ListUnresolved(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list pending reconciliations: %w", err)
	}

	for _, rec := range recs {
		if !rec.Retryable() {
			summary.Skipped++
			continue
		}

		orderID, err := s.reconcileOne(ctx, rec)
		if err != nil {
			summary.Failed++
			log.Printf("❌ CheckoutService.ReconcilePending: payment %s still unresolved: %v", rec.PaymentID, err)
			if attemptErr := s.reconRepo.RecordAttempt(ctx, rec.ID, err.Error()); attemptErr != nil {
				log.Printf("CheckoutService.ReconcilePending: %v", attemptErr)
			}
			continue
		}

		if err := s.reconRepo.MarkResolved(ctx, rec.ID, orderID); err != nil {
			summary.Failed++
			log.Printf("❌ CheckoutService.ReconcilePending: order %s created but reconciliation %s not marked: %v", orderID, rec.ID, err)
			continue
		}
		summary.Resolved++
		log.Printf("✅ CheckoutService.ReconcilePending: payment %s recorded as order %s", rec.PaymentID, orderID)
	}

	return summary, nil
}

func (s *CheckoutService) reconcileOne(ctx context.Context, rec models.PaymentReconciliation) (string, error) {
	existing, err := s.orderRepo.FindByPaymentID(ctx, rec.PaymentID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}

	snapshot, err := models.DecodeSnapshot([]byte(rec.Products))
	if err != nil {
		return "", err
	}

	order := &models.Order{
		UserID:        rec.UserID,
		Products:      rec.Products,
		TotalAmount:   rec.ExpectedAmount,
		PaymentID:     rec.PaymentID,
		PaymentStatus: models.PaymentStatusPaid,
		PaymentMethod: models.PaymentMethodPrepaid,
		OrderStatus:   models.OrderStatusCreated,
		Address:       rec.Address,
	}

	lines := make([]repositories.StockLine, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		lines = append(lines, repositories.StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	err = s.orderRepo.CreateWithStock(ctx, order, lines)
	if errors.Is(err, repositories.ErrStockConflict) {
		// The shopper has paid; record the order and leave the stock shortfall to staff.
		log.Printf("CheckoutService.ReconcilePending: stock short for payment %s, recording order without decrement", rec.PaymentID)
		err = s.orderRepo.CreateWithStock(ctx, order, nil)
	}
	if errors.Is(err, repositories.ErrDuplicatePayment) {
		existing, findErr := s.orderRepo.FindByPaymentID(ctx, rec.PaymentID)
		if findErr == nil && existing != nil {
			return existing.ID, nil
		}
	}
	if err != nil {
		return "", err
	}

	s.publish(ctx, *order)
	return order.ID, nil
}
