package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/threadline/storefront/app/configs"
	"github.com/threadline/storefront/app/models"
)

// Stripe amounts are in paise.
const stripeMinorUnitExp = -2

type StripeGateway struct {
	newIntent func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	getIntent func(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{
		newIntent: paymentintent.New,
		getIntent: paymentintent.Get,
	}
}

func (g *StripeGateway) Name() string { return configs.PaymentProviderStripe }

func (g *StripeGateway) ChargeAmount(total decimal.Decimal) decimal.Decimal {
	return total.Round(2)
}

// Initiate creates a PaymentIntent. The intent id becomes the reference the shopper sends back.
func (g *StripeGateway) Initiate(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(g.ChargeAmount(req.Amount).Shift(-stripeMinorUnitExp).IntPart()),
		Currency: stripe.String(string(stripe.CurrencyINR)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("reference", req.Reference)
	params.SetIdempotencyKey(req.Reference)

	intent, err := g.newIntent(params)
	if err != nil {
		log.Printf("❌ StripeGateway.Initiate: failed to create payment intent for %s: %v", req.Reference, err)
		return nil, fmt.Errorf("failed to create stripe payment intent: %w", err)
	}

	return &PaymentSession{
		Provider:     g.Name(),
		Reference:    intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (g *StripeGateway) Confirm(ctx context.Context, reference string) (*PaymentConfirmation, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := g.getIntent(reference, params)
	if err != nil {
		log.Printf("❌ StripeGateway.Confirm: failed to fetch payment intent %s: %v", reference, err)
		return nil, fmt.Errorf("failed to verify stripe payment intent: %w", err)
	}
	if intent == nil {
		return nil, errors.New("stripe returned no payment intent")
	}

	paid := intent.Status == stripe.PaymentIntentStatusSucceeded
	confirmation := &PaymentConfirmation{
		Reference:     reference,
		TransactionID: intent.ID,
		Paid:          paid,
		Status:        string(intent.Status),
		Amount:        decimal.New(intent.AmountReceived, stripeMinorUnitExp),
	}
	if paid {
		confirmation.Status = models.PaymentStatusPaid
	}
	return confirmation, nil
}
