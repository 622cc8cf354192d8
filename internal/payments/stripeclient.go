package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/payouts"
)

// StripeClient wraps the Stripe API for the two money movements this service
// makes: charging customers (payment intents) and paying mechanics
// (transfers to connected accounts).
type StripeClient struct {
	api *client.API
}

func NewStripeClient(secretKey string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api}
}

var _ payouts.TransferClient = (*StripeClient)(nil)

// CreateTransfer sends a payout batch transfer. The idempotency key makes a
// same-day retry a no-op on Stripe's side.
func (c *StripeClient) CreateTransfer(ctx context.Context, req payouts.TransferRequest) (string, error) {
	params := &stripe.TransferParams{
		Params: stripe.Params{
			Context: ctx,
			Metadata: map[string]string{
				"mechanic_id": req.MechanicID.String(),
				"job_count":   strconv.Itoa(req.JobCount),
			},
		},
		Amount:      stripe.Int64(req.AmountCents),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Destination: stripe.String(req.DestinationAccount),
	}
	params.SetIdempotencyKey(req.IdempotencyKey)

	transfer, err := c.api.Transfers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe transfer: %w", err)
	}
	return transfer.ID, nil
}

// CreatePaymentIntent opens a customer charge for a locked invoice and
// returns the intent id and client secret.
func (c *StripeClient) CreatePaymentIntent(ctx context.Context, amountCents int64, jobID, paymentID string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
			Metadata: map[string]string{
				"job_id":     jobID,
				"payment_id": paymentID,
			},
		},
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe payment intent: %w", err)
	}
	return intent.ID, intent.ClientSecret, nil
}
