package report

import (
	"fmt"
	"strings"

	"github.com/jgoulah/hashfuture/pkg/models"
)

// kindKeywords is checked in order against the lowercased message
var kindKeywords = []struct {
	keyword string
	kind    models.Kind
}{
	{"maintenance", models.KindMaintenance},
	{"payout", models.KindPayout},
	{"allocation", models.KindAllocation},
	{"purchased", models.KindPurchased},
}

// Classify derives kind, product, transaction reference and currency from a
// ledger message.
func Classify(message string, txs map[string]models.Transaction) (models.Classification, error) {
	c := models.Classification{
		Kind:    detectKind(message),
		Product: detectProduct(message),
	}

	switch c.Kind {
	case models.KindPurchased:
		_, after, found := strings.Cut(message, "#")
		if !found {
			return c, fmt.Errorf("%w: purchase without transaction reference: %q", ErrMalformedRow, message)
		}
		// a second '#' ends the reference
		ref, _, _ := strings.Cut(after, "#")
		ref = strings.TrimSpace(ref)
		if _, ok := txs[ref]; !ok {
			return c, fmt.Errorf("%w: %q", ErrUnknownTransactionReference, ref)
		}
		c.TransactionRef = ref

	case models.KindPayout, models.KindMaintenance:
		_, after, found := strings.Cut(message, "(")
		if !found {
			return c, fmt.Errorf("%w: no currency in %q", ErrMalformedRow, message)
		}
		currency, _, found := strings.Cut(after, ")")
		currency = strings.TrimSpace(currency)
		if !found || currency == "" {
			return c, fmt.Errorf("%w: no currency in %q", ErrMalformedRow, message)
		}
		c.Currency = currency
	}

	return c, nil
}

func detectKind(message string) models.Kind {
	lower := strings.ToLower(message)
	for _, k := range kindKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.kind
		}
	}
	return models.KindUnknown
}

func detectProduct(message string) models.Product {
	for _, p := range models.Products {
		if strings.Contains(message, string(p)) {
			return p
		}
	}
	return ""
}
