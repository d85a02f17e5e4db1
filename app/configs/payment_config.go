package configs

import (
	"fmt"
	"log"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stripe/stripe-go/v81"
)

const (
	PaymentProviderMidtrans = "midtrans"
	PaymentProviderStripe   = "stripe"
)

type MidtransClients struct {
	Snap snap.Client
	Core coreapi.Client
}

func (e ENV) midtransEnvironment() midtrans.EnvironmentType {
	if e.IsProduction() {
		return midtrans.Production
	}
	return midtrans.Sandbox
}

func InitMidtransClients(env ENV) (*MidtransClients, error) {
	if env.MidtransServerKey == "" {
		return nil, fmt.Errorf("MIDTRANS_SERVER_KEY environment variable not set")
	}

	clients := &MidtransClients{}
	clients.Snap.New(env.MidtransServerKey, env.midtransEnvironment())
	clients.Core.New(env.MidtransServerKey, env.midtransEnvironment())

	midtrans.ClientKey = env.MidtransClientKey
	midtrans.ServerKey = env.MidtransServerKey
	midtrans.Environment = env.midtransEnvironment()

	log.Println("✅ Midtrans Snap and Core API clients initialized.")
	return clients, nil
}

func InitStripe(env ENV) error {
	if env.StripeSecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY environment variable not set")
	}
	stripe.Key = env.StripeSecretKey
	log.Println("✅ Stripe client key configured.")
	return nil
}
