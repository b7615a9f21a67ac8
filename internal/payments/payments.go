// Package payments charges cancellation and no-show fees against stored
// payment methods.
package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

// FeeCharger collects a fee off-session from a stored payment method and
// returns the processor's charge reference.
type FeeCharger interface {
	ChargeFee(ctx context.Context, customerRef, paymentMethodRef string, amountCents int64, description string) (string, error)
}

// StripeFeeCharger charges fees as confirmed off-session PaymentIntents. The
// API key is the package-global stripe.Key set at startup.
type StripeFeeCharger struct {
	Currency string
}

// NewStripeFeeCharger creates a charger billing in the given currency,
// defaulting to USD.
func NewStripeFeeCharger(currency string) *StripeFeeCharger {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeFeeCharger{Currency: currency}
}

// ChargeFee creates and confirms a PaymentIntent against the stored payment
// method. The customer is not present, so the charge runs off-session.
func (c *StripeFeeCharger) ChargeFee(ctx context.Context, customerRef, paymentMethodRef string, amountCents int64, description string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(c.Currency),
		Customer:      stripe.String(customerRef),
		PaymentMethod: stripe.String(paymentMethodRef),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
		Description:   stripe.String(description),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("payments: charge fee: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return pi.ID, fmt.Errorf("payments: fee charge %s in status %s", pi.ID, pi.Status)
	}
	return pi.ID, nil
}
