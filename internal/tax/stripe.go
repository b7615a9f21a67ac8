package tax

import (
	"context"
	"fmt"
	"math"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/tax/calculation"

	"github.com/hairloft/salon-platform/internal/branch"
)

// StripeCalculator quotes tax via the Stripe Tax calculation API. The API key
// is the package-global stripe.Key set at startup.
type StripeCalculator struct {
	Currency string
}

// NewStripeCalculator creates a calculator quoting in the given currency,
// defaulting to USD.
func NewStripeCalculator(currency string) *StripeCalculator {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeCalculator{Currency: currency}
}

// Quote computes tax for one line item delivered at the branch address.
func (c *StripeCalculator) Quote(ctx context.Context, addr branch.Address, item LineItem) (*Quote, error) {
	line := &stripe.TaxCalculationLineItemParams{
		Amount:    stripe.Int64(item.AmountCents),
		Reference: stripe.String(item.Reference),
	}
	if item.TaxCode != "" {
		line.TaxCode = stripe.String(item.TaxCode)
	}
	params := &stripe.TaxCalculationParams{
		Currency:  stripe.String(c.Currency),
		LineItems: []*stripe.TaxCalculationLineItemParams{line},
		CustomerDetails: &stripe.TaxCalculationCustomerDetailsParams{
			Address: &stripe.AddressParams{
				Line1:      stripe.String(addr.Line1),
				Line2:      stripe.String(addr.Line2),
				City:       stripe.String(addr.City),
				State:      stripe.String(addr.State),
				PostalCode: stripe.String(addr.PostalCode),
				Country:    stripe.String(addr.Country),
			},
			AddressSource: stripe.String(string(stripe.TaxCalculationCustomerDetailsAddressSourceShipping)),
		},
	}
	params.Context = ctx

	calc, err := calculation.New(params)
	if err != nil {
		return nil, fmt.Errorf("tax: stripe calculation: %w", err)
	}
	return &Quote{
		TaxCents:      calc.TaxAmountExclusive,
		EffectiveRate: EffectiveRate(calc.TaxAmountExclusive, item.AmountCents),
		TotalCents:    calc.AmountTotal,
	}, nil
}

// EffectiveRate derives the applied percentage from tax and base amounts,
// rounded to two decimal places. Zero base yields zero.
func EffectiveRate(taxCents, amountCents int64) float64 {
	if amountCents == 0 {
		return 0
	}
	return math.Round(float64(taxCents)/float64(amountCents)*100*100) / 100
}
