package transaction

import (
	"github.com/shopspring/decimal"

	"github.com/Poorani-S/pettycash-backend/internal/core/common/money"
	transactionDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/transaction"
)

// committableFrom lists, per target status, the statuses a transition may
// start from.
var committableFrom = map[string][]string{
	transactionDatamodel.StatusApproved: {
		transactionDatamodel.StatusPending,
		transactionDatamodel.StatusPendingApproval,
	},
	transactionDatamodel.StatusRejected: {
		transactionDatamodel.StatusPending,
		transactionDatamodel.StatusPendingApproval,
	},
	transactionDatamodel.StatusInfoRequested: {
		transactionDatamodel.StatusPendingApproval,
	},
	transactionDatamodel.StatusPendingApproval: {
		transactionDatamodel.StatusDraft,
		transactionDatamodel.StatusPending,
		transactionDatamodel.StatusInfoRequested,
	},
	transactionDatamodel.StatusPaid: {
		transactionDatamodel.StatusApproved,
	},
}

// CanTransition reports whether a transaction in the given status may move
// to the target status.
func CanTransition(from, to string) bool {
	for _, allowed := range committableFrom[to] {
		if from == allowed {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed. Paid is
// terminal but re-recording payment on a paid transaction is a no-op success,
// handled at the service layer.
func IsTerminal(status string) bool {
	return status == transactionDatamodel.StatusRejected ||
		status == transactionDatamodel.StatusPaid
}

// EffectiveAmount resolves the amount a transaction commits against the
// ledger.
func EffectiveAmount(t *transactionDatamodel.Transaction) money.Resolved {
	return money.Resolve(t.PostTaxAmount, t.Amount)
}

// deriveAmounts fills the computed money fields from submitted values. When a
// pre-tax amount is present the post-tax amount is always recomputed; the
// legacy flat amount is only carried when no pre-tax amount exists.
func deriveAmounts(t *transactionDatamodel.Transaction, preTax, tax, legacy *decimal.Decimal) {
	if preTax != nil {
		pre := money.Round2(*preTax)
		var taxAmount decimal.Decimal
		if tax != nil {
			taxAmount = money.Round2(*tax)
		} else {
			taxAmount = money.ComputeTax(pre, t.HasGSTInvoice)
		}
		post := money.PostTax(pre, taxAmount)

		t.PreTaxAmount = &pre
		t.TaxAmount = &taxAmount
		t.PostTaxAmount = &post
		t.Amount = nil
		return
	}

	if legacy != nil {
		flat := money.Round2(*legacy)
		t.Amount = &flat
		t.PreTaxAmount = nil
		t.TaxAmount = nil
		t.PostTaxAmount = nil
	}
}
