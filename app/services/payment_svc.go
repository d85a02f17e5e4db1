package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/configs"
	"github.com/threadline/storefront/app/models"
)

var ErrPaymentUnavailable = errors.New("no payment gateway is configured")

type PaymentRequest struct {
	Reference     string
	Amount        decimal.Decimal
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// PaymentSession is what the shopper needs to complete payment on the gateway side.
type PaymentSession struct {
	Provider     string `json:"provider"`
	Reference    string `json:"reference"`
	Token        string `json:"token,omitempty"`
	RedirectURL  string `json:"redirect_url,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

type PaymentConfirmation struct {
	Reference     string
	TransactionID string
	Paid          bool
	Status        string
	Amount        decimal.Decimal
}

type PaymentGateway interface {
	Name() string
	// ChargeAmount is the amount the gateway actually collects for an order total.
	ChargeAmount(total decimal.Decimal) decimal.Decimal
	Initiate(ctx context.Context, req PaymentRequest) (*PaymentSession, error)
	Confirm(ctx context.Context, reference string) (*PaymentConfirmation, error)
}

// NewPaymentGateway picks the gateway named by PAYMENT_PROVIDER. It returns ErrPaymentUnavailable
// when the provider has no credentials, so the store can still run cash-on-delivery only.
func NewPaymentGateway(env configs.ENV) (PaymentGateway, error) {
	switch env.PaymentProvider {
	case configs.PaymentProviderStripe:
		if err := configs.InitStripe(env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
		}
		return NewStripeGateway(), nil
	case configs.PaymentProviderMidtrans, "":
		clients, err := configs.InitMidtransClients(env)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
		}
		return NewMidtransGateway(&clients.Snap, &clients.Core), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", env.PaymentProvider)
	}
}

type snapTransactionCreator interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type coreTransactionChecker interface {
	CheckTransaction(param string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

type MidtransGateway struct {
	snapClient snapTransactionCreator
	coreClient coreTransactionChecker
}

func NewMidtransGateway(snapClient snapTransactionCreator, coreClient coreTransactionChecker) *MidtransGateway {
	return &MidtransGateway{snapClient: snapClient, coreClient: coreClient}
}

func (g *MidtransGateway) Name() string { return configs.PaymentProviderMidtrans }

// ChargeAmount rounds to whole units; Snap rejects fractional gross amounts.
func (g *MidtransGateway) ChargeAmount(total decimal.Decimal) decimal.Decimal {
	return total.Round(0)
}

func (g *MidtransGateway) Initiate(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.Reference,
			GrossAmt: g.ChargeAmount(req.Amount).IntPart(),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
	}

	resp, midtransErr := g.snapClient.CreateTransaction(snapReq)
	if midtransErr != nil {
		log.Printf("❌ MidtransGateway.Initiate: failed to create Snap transaction for %s: %v", req.Reference, midtransErr.Error())
		return nil, fmt.Errorf("failed to create midtrans transaction: %s", midtransErr.Error())
	}
	if resp == nil || resp.Token == "" {
		return nil, errors.New("midtrans returned an empty snap token")
	}

	return &PaymentSession{
		Provider:    g.Name(),
		Reference:   req.Reference,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// Confirm asks the Core API for the transaction status. Only capture or settlement with an
// accepted (or absent) fraud verdict counts as paid.
func (g *MidtransGateway) Confirm(ctx context.Context, reference string) (*PaymentConfirmation, error) {
	status, midtransErr := g.coreClient.CheckTransaction(reference)
	if midtransErr != nil {
		log.Printf("❌ MidtransGateway.Confirm: failed to check transaction %s: %v", reference, midtransErr.Error())
		return nil, fmt.Errorf("failed to verify transaction with midtrans: %s", midtransErr.Error())
	}
	if status == nil {
		return nil, errors.New("invalid transaction status from midtrans (nil response)")
	}
	if status.StatusCode == "404" {
		return nil, fmt.Errorf("transaction %s not found at midtrans", reference)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(status.GrossAmount))
	if err != nil {
		amount = decimal.Zero
	}

	paid := (status.TransactionStatus == "capture" || status.TransactionStatus == "settlement") &&
		(status.FraudStatus == "" || status.FraudStatus == "accept")

	confirmation := &PaymentConfirmation{
		Reference:     reference,
		TransactionID: status.TransactionID,
		Paid:          paid,
		Status:        status.TransactionStatus,
		Amount:        amount,
	}
	if paid {
		confirmation.Status = models.PaymentStatusPaid
	}
	return confirmation, nil
}
