package money

import (
	"github.com/shopspring/decimal"
)

// Provenance records where an effective transaction amount came from:
// computed from pre-tax + tax fields, or taken from the legacy flat amount.
type Provenance string

const (
	ProvenanceComputed   Provenance = "computed-pretax-tax"
	ProvenanceLegacyFlat Provenance = "legacy-flat"
)

// GST rate applied when an invoice is flagged GST-applicable.
var gstRate = decimal.NewFromInt(18).Div(decimal.NewFromInt(100))

// Resolved is an effective money value with its provenance, resolved once at
// read time. Aggregations must consume Resolved values rather than re-deriving
// from raw fields.
type Resolved struct {
	Value      decimal.Decimal
	Provenance Provenance
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeTax returns the GST portion for a pre-tax amount, rounded to 2
// places. Zero when the invoice is not GST-applicable.
func ComputeTax(preTax decimal.Decimal, hasGSTInvoice bool) decimal.Decimal {
	if !hasGSTInvoice {
		return decimal.Zero
	}
	return Round2(preTax.Mul(gstRate))
}

// PostTax derives the post-tax amount from its components.
func PostTax(preTax, tax decimal.Decimal) decimal.Decimal {
	return Round2(preTax.Add(tax))
}

// Resolve picks the effective amount for a transaction. Pre/post-tax fields
// win when present; otherwise the legacy flat amount is used verbatim. The two
// must never be summed together.
func Resolve(postTax, legacy *decimal.Decimal) Resolved {
	if postTax != nil {
		return Resolved{Value: *postTax, Provenance: ProvenanceComputed}
	}
	if legacy != nil {
		return Resolved{Value: *legacy, Provenance: ProvenanceLegacyFlat}
	}
	return Resolved{Value: decimal.Zero, Provenance: ProvenanceLegacyFlat}
}

// IsPositive reports whether d is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero)
}
