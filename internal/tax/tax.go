// Package tax quotes sales tax for a service at a branch address through the
// payment processor's tax API.
package tax

import (
	"context"

	"github.com/hairloft/salon-platform/internal/branch"
)

// LineItem is one taxable charge, amount in cents before tax.
type LineItem struct {
	AmountCents int64
	// Reference labels the line in processor dashboards.
	Reference string
	// TaxCode is the processor's product tax code; empty falls back to the
	// account default.
	TaxCode string
}

// Quote is a computed tax amount for a line item.
type Quote struct {
	TaxCents int64 `json:"tax_cents"`
	// EffectiveRate is the applied percentage, derived from the amounts.
	EffectiveRate float64 `json:"effective_rate"`
	TotalCents    int64   `json:"total_cents"`
}

// Calculator quotes tax synchronously. Failures are transient; callers retry
// the whole enclosing request.
type Calculator interface {
	Quote(ctx context.Context, addr branch.Address, item LineItem) (*Quote, error)
}
