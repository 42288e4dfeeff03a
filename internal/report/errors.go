package report

import "errors"

var (
	// ErrMalformedReport means the document lacks the expected tables
	ErrMalformedReport = errors.New("malformed report")

	// ErrMalformedRow means a table row is missing a cell or a cell does not parse
	ErrMalformedRow = errors.New("malformed row")

	// ErrUnknownCurrency means a ledger row names a currency absent from the rate table
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrUnknownTransactionReference means a purchase row points at no known transaction
	ErrUnknownTransactionReference = errors.New("unknown transaction reference")
)
