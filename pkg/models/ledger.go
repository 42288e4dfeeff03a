package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product identifies a mining contract family
type Product string

const (
	SHA256 Product = "SHA-256"
	Scrypt Product = "Scrypt"
	Ethash Product = "ETHASH"
	X11    Product = "X11"
)

// Products lists every product in detection order
var Products = []Product{SHA256, Ethash, Scrypt, X11}

// ParseProduct matches a product name case-insensitively
func ParseProduct(name string) (Product, bool) {
	for _, p := range Products {
		if strings.EqualFold(string(p), strings.TrimSpace(name)) {
			return p, true
		}
	}
	return "", false
}

// Kind is the category of a ledger event
type Kind string

const (
	KindMaintenance Kind = "maintenance"
	KindPayout      Kind = "payout"
	KindAllocation  Kind = "allocation"
	KindPurchased   Kind = "purchased"
	KindUnknown     Kind = "unknown"
)

// Transaction is one row of the purchase table
type Transaction struct {
	ID       string          `json:"id"`
	Product  Product         `json:"product"`
	Quantity float64         `json:"quantity"` // H/s
	Total    decimal.Decimal `json:"total"`
	Method   string          `json:"method"`
	Time     time.Time       `json:"time"`
	Status   string          `json:"status"`
}

// Classification is what the message column of a ledger row tells us
type Classification struct {
	Kind           Kind    `json:"kind"`
	Product        Product `json:"product,omitempty"`
	TransactionRef string  `json:"transaction_ref,omitempty"` // only for purchased
	Currency       string  `json:"currency,omitempty"`        // only for payout and maintenance
}

// USDAmounts holds the converted side of a ledger row
type USDAmounts struct {
	Delta   decimal.Decimal `json:"delta"`
	Balance decimal.Decimal `json:"balance"`
}

// LogEntry is one ledger row
type LogEntry struct {
	Message        string          `json:"message"`
	Time           time.Time       `json:"time"`
	Delta          decimal.Decimal `json:"delta"`
	Balance        decimal.Decimal `json:"balance"`
	Classification Classification  `json:"classification"`
	USD            USDAmounts      `json:"usd"`
}

// Log is a parsed history report. Entries are ordered most recent first.
type Log struct {
	Entries      []LogEntry             `json:"entries"`
	Transactions map[string]Transaction `json:"transactions"`
}

// Transaction resolves the purchase an entry refers to
func (l *Log) Transaction(e LogEntry) (Transaction, bool) {
	if e.Classification.TransactionRef == "" {
		return Transaction{}, false
	}
	tx, ok := l.Transactions[e.Classification.TransactionRef]
	return tx, ok
}
