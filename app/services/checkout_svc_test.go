package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/storefront/app/models"
)

type checkoutFixture struct {
	products  *fakeProductRepo
	orders    *fakeOrderRepo
	recons    *fakeReconRepo
	gateway   *fakeGateway
	publisher *recordingPublisher
	svc       *CheckoutService
}

func newCheckoutFixture(products ...models.Product) *checkoutFixture {
	f := &checkoutFixture{
		products:  newFakeProductRepo(products...),
		recons:    &fakeReconRepo{},
		gateway:   &fakeGateway{},
		publisher: &recordingPublisher{},
	}
	f.orders = newFakeOrderRepo(f.products)
	f.svc = NewCheckoutService(f.products, f.orders, f.recons, f.gateway, f.publisher, decimal.NewFromInt(400))
	f.svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func singleItemCart(t *testing.T, p models.Product, qty int) *CartStore {
	t.Helper()
	store := OpenCartStore(NewMemorySnapshotStore(nil))
	require.NoError(t, store.AddToCart(p, qty))
	return store
}

func TestCODBelowThresholdPlacesOrder(t *testing.T) {
	tee := product("tee", "Tee", "175")
	f := newCheckoutFixture(tee)
	cart := singleItemCart(t, tee, 2)

	res, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: "u1", Address: "12 MG Road, Pune", Method: models.PaymentMethodCOD,
	}, cart)
	require.NoError(t, err)

	order := res.Order
	assert.Equal(t, models.PaymentStatusPendingCOD, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, order.OrderStatus)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(350)))
	assert.True(t, strings.HasPrefix(order.PaymentID, "COD_"))

	snapshot, err := order.Snapshot()
	require.NoError(t, err)
	require.Len(t, snapshot.Items, 1)
	assert.True(t, snapshot.Total().Equal(order.TotalAmount))

	assert.True(t, cart.Cart().IsEmpty())
	assert.Equal(t, 8, f.products.stock("tee"))
	assert.Len(t, f.publisher.orders, 1)
}

func TestCODAtOrAboveThresholdIsRefused(t *testing.T) {
	for _, price := range []string{"400", "450"} {
		t.Run(price, func(t *testing.T) {
			p := product("p", "Jacket", price)
			f := newCheckoutFixture(p)
			cart := singleItemCart(t, p, 1)

			_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
				UserID: "u1", Address: "Somewhere", Method: models.PaymentMethodCOD,
			}, cart)
			assert.ErrorIs(t, err, ErrCODLimitExceeded)
			assert.Zero(t, f.orders.count())
			assert.False(t, cart.Cart().IsEmpty())
		})
	}
}

func TestRefusedCODLeavesCartSnapshotUntouched(t *testing.T) {
	jacket := product("jacket", "Jacket", "450")
	snapshots := NewMemorySnapshotStore(nil)
	cart := OpenCartStore(snapshots)
	require.NoError(t, cart.AddToCart(jacket, 1))
	before, err := snapshots.Load()
	require.NoError(t, err)

	renamed := jacket
	renamed.Title = "Quilted Jacket"
	f := newCheckoutFixture(renamed)

	_, err = f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: "u1", Address: "Somewhere", Method: models.PaymentMethodCOD,
	}, cart)
	assert.ErrorIs(t, err, ErrCODLimitExceeded)

	after, err := snapshots.Load()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, "Jacket", cart.Items()[0].Product.Title)
}

func TestCODAvailable(t *testing.T) {
	f := newCheckoutFixture()
	assert.True(t, f.svc.CODAvailable(dec("399.99")))
	assert.False(t, f.svc.CODAvailable(dec("400")))
}

func TestPlaceOrderValidation(t *testing.T) {
	tee := product("tee", "Tee", "100")

	t.Run("blank address", func(t *testing.T) {
		f := newCheckoutFixture(tee)
		cart := singleItemCart(t, tee, 1)
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{UserID: "u1", Address: "   ", Method: "cod"}, cart)
		assert.ErrorIs(t, err, ErrAddressRequired)
		assert.Zero(t, f.orders.count())
		assert.Len(t, cart.Items(), 1)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newCheckoutFixture(tee)
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{UserID: "u1", Address: "x", Method: "cod"},
			OpenCartStore(NewMemorySnapshotStore(nil)))
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("unknown method", func(t *testing.T) {
		f := newCheckoutFixture(tee)
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{UserID: "u1", Address: "x", Method: "barter"},
			singleItemCart(t, tee, 1))
		assert.ErrorIs(t, err, ErrUnknownPaymentMethod)
	})

	t.Run("deleted product", func(t *testing.T) {
		f := newCheckoutFixture()
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{UserID: "u1", Address: "x", Method: "cod"},
			singleItemCart(t, tee, 1))
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		low := tee
		low.Stock = 1
		f := newCheckoutFixture(low)
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{UserID: "u1", Address: "x", Method: "cod"},
			singleItemCart(t, low, 2))
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, 1, f.products.stock("tee"))
	})
}

func TestPlaceOrderRepricesFromCatalog(t *testing.T) {
	tee := product("tee", "Tee", "100")
	cart := singleItemCart(t, tee, 3)

	current := tee
	current.DiscountPrice = decimal.NewNullDecimal(dec("90"))
	f := newCheckoutFixture(current)

	res, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{UserID: "u1", Address: "x", Method: "cod"}, cart)
	require.NoError(t, err)
	assert.True(t, res.Order.TotalAmount.Equal(decimal.NewFromInt(270)))
}

func TestPrepaidOrder(t *testing.T) {
	jacket := product("jacket", "Jacket", "1200")

	t.Run("paid creates order", func(t *testing.T) {
		f := newCheckoutFixture(jacket)
		f.gateway.confirmation = &PaymentConfirmation{Paid: true, Status: models.PaymentStatusPaid, Amount: dec("1200")}
		cart := singleItemCart(t, jacket, 1)

		res, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: "u1", Address: "x", Method: models.PaymentMethodPrepaid, PaymentReference: "ORD-1",
		}, cart)
		require.NoError(t, err)
		assert.Equal(t, "ORD-1", res.Order.PaymentID)
		assert.Equal(t, models.PaymentStatusPaid, res.Order.PaymentStatus)
		assert.True(t, cart.Cart().IsEmpty())
	})

	t.Run("retry returns the same order", func(t *testing.T) {
		f := newCheckoutFixture(jacket)
		f.gateway.confirmation = &PaymentConfirmation{Paid: true, Status: models.PaymentStatusPaid, Amount: dec("1200")}
		in := PlaceOrderInput{UserID: "u1", Address: "x", Method: models.PaymentMethodPrepaid, PaymentReference: "ORD-2"}

		first, err := f.svc.PlaceOrder(context.Background(), in, singleItemCart(t, jacket, 1))
		require.NoError(t, err)
		second, err := f.svc.PlaceOrder(context.Background(), in, OpenCartStore(NewMemorySnapshotStore(nil)))
		require.NoError(t, err)

		assert.True(t, second.Existing)
		assert.Equal(t, first.Order.ID, second.Order.ID)
		assert.Equal(t, 1, f.orders.count())
	})

	t.Run("reference owned by another buyer is refused", func(t *testing.T) {
		f := newCheckoutFixture(jacket)
		f.gateway.confirmation = &PaymentConfirmation{Paid: true, Status: models.PaymentStatusPaid, Amount: dec("1200")}

		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: "buyer", Address: "1 Linking Road, Mumbai", Method: models.PaymentMethodPrepaid, PaymentReference: "ORD-V",
		}, singleItemCart(t, jacket, 1))
		require.NoError(t, err)

		other := singleItemCart(t, jacket, 1)
		res, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: "someone-else", Address: "x", Method: models.PaymentMethodPrepaid, PaymentReference: "ORD-V",
		}, other)
		assert.ErrorIs(t, err, ErrPaymentReferenceInUse)
		assert.Nil(t, res)
		assert.Len(t, other.Items(), 1)
		assert.Equal(t, 1, f.orders.count())
	})

	t.Run("reference claimed concurrently by another buyer is refused", func(t *testing.T) {
		f := newCheckoutFixture(jacket)
		f.gateway.confirmation = &PaymentConfirmation{Paid: true, Status: models.PaymentStatusPaid, Amount: dec("1200")}

		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: "buyer", Address: "x", Method: models.PaymentMethodPrepaid, PaymentReference: "ORD-W",
		}, singleItemCart(t, jacket, 1))
		require.NoError(t, err)

		f.orders.staleLookups = 1
		other := singleItemCart(t, jacket, 1)
		_, err = f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: "someone-else", Address: "x", Method: models.PaymentMethodPrepaid, PaymentReference: "ORD-W",
		}, other)
		assert.ErrorIs(t, err, ErrPaymentReferenceInUse)
		assert.Len(t, other.Items(), 1)
		assert.Equal(t, 1, f.orders.count())
		assert.Empty(t, f.recons.recs)
	})

	t.Run("gateway failure creates nothing", func(t *testing.T) {
		f := newCheckoutFixture(jacket)
		f.gateway.confirmErr = errors.New("gateway timeout")
		cart := singleItemCart(t, jacket, 1)

		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: "u1", Address: "x", Method: models.PaymentMethodPrepaid, PaymentReference: "ORD-3",
		}, cart)
		assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
		assert.Zero(t, f.orders.count())
		assert.False(t, cart.Cart().IsEmpty())
	})

	t.Run("unpaid creates nothing", func(t *testing.T) {
		f := newCheckoutFixture(jacket)
		f.gateway.confirmation = &PaymentConfirmation{Paid: false, Status: "pending", Amount: dec("1200")}

		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: "u1", Address: "x", Method: models.PaymentMethodPrepaid, PaymentReference: "ORD-4",
		}, singleItemCart(t, jacket, 1))
		assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
		assert.Zero(t, f.orders.count())
	})

	t.Run("missing reference", func(t *testing.T) {
		f := newCheckoutFixture(jacket)
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: "u1", Address: "x", Method: models.PaymentMethodPrepaid,
		}, singleItemCart(t, jacket, 1))
		assert.ErrorIs(t, err, ErrPaymentReferenceRequired)
	})

	t.Run("amount mismatch is recorded", func(t *testing.T) {
		f := newCheckoutFixture(jacket)
		f.gateway.confirmation = &PaymentConfirmation{Paid: true, Status: models.PaymentStatusPaid, Amount: dec("1000")}

		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: "u1", Address: "x", Method: models.PaymentMethodPrepaid, PaymentReference: "ORD-5",
		}, singleItemCart(t, jacket, 1))
		assert.ErrorIs(t, err, ErrPaymentAmountMismatch)
		assert.Zero(t, f.orders.count())
		require.Len(t, f.recons.recs, 1)
		assert.Equal(t, models.ReconcileAmountMismatch, f.recons.recs[0].Kind)
	})
}

func TestCapturedPaymentWithoutOrderIsReconciled(t *testing.T) {
	jacket := product("jacket", "Jacket", "1200")
	f := newCheckoutFixture(jacket)
	f.gateway.confirmation = &PaymentConfirmation{Paid: true, Status: models.PaymentStatusPaid, Amount: dec("1200")}
	f.orders.createErr = errors.New("connection reset")
	cart := singleItemCart(t, jacket, 1)

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: "u1", Address: "x", Method: models.PaymentMethodPrepaid, PaymentReference: "ORD-9",
	}, cart)
	assert.ErrorIs(t, err, ErrOrderNotRecorded)
	assert.False(t, cart.Cart().IsEmpty())
	require.Len(t, f.recons.recs, 1)
	assert.Equal(t, models.ReconcileOrderNotRecorded, f.recons.recs[0].Kind)
	assert.True(t, f.recons.recs[0].ExpectedAmount.Equal(dec("1200")))

	f.orders.createErr = nil
	summary, err := f.svc.ReconcilePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Resolved)

	order, err := f.orders.FindByPaymentID(context.Background(), "ORD-9")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.True(t, f.recons.recs[0].Resolved())

	summary, err = f.svc.ReconcilePending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Resolved)
	assert.Equal(t, 1, f.orders.count())
}

func TestReconcileSkipsAmountMismatch(t *testing.T) {
	f := newCheckoutFixture()
	f.recons.recs = append(f.recons.recs, models.PaymentReconciliation{
		ID: "r1", PaymentID: "ORD-7", Kind: models.ReconcileAmountMismatch,
	})

	summary, err := f.svc.ReconcilePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, f.orders.count())
}

func TestInitiatePayment(t *testing.T) {
	tee := product("tee", "Tee", "250")
	f := newCheckoutFixture(tee)
	cart := singleItemCart(t, tee, 2)

	session, err := f.svc.InitiatePayment(context.Background(), models.User{ID: "u1", Email: "a@b.in"}, cart)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(session.Reference, "ORD-20260301-"))
	require.Len(t, f.gateway.initiated, 1)
	assert.True(t, f.gateway.initiated[0].Amount.Equal(decimal.NewFromInt(500)))
	assert.Len(t, cart.Items(), 1)
}
