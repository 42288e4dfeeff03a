// Package report extracts the transaction table and the balance ledger from
// a saved Hashflare "History" page.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/jgoulah/hashfuture/internal/rates"
	"github.com/jgoulah/hashfuture/pkg/models"
)

// Table positions within the history page
const (
	transactionsTable = 1
	ledgerTable       = 3
	minTables         = 4
)

// timeLayout matches "day.month.yy hour:minute"; day, month and hour may be unpadded
const timeLayout = "2.1.06 15:04"

// Parse reads a history page and returns the normalized log, newest entry first
func Parse(html []byte, table rates.Table) (*models.Log, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}

	tables := doc.Find("table")
	if tables.Length() < minTables {
		return nil, fmt.Errorf("%w: found %d tables, need at least %d", ErrMalformedReport, tables.Length(), minTables)
	}

	txs, err := ParseTransactions(tables.Eq(transactionsTable))
	if err != nil {
		return nil, fmt.Errorf("transactions table: %w", err)
	}

	entries, err := ParseLedger(tables.Eq(ledgerTable), txs, table)
	if err != nil {
		return nil, fmt.Errorf("ledger table: %w", err)
	}

	return &models.Log{
		Entries:      entries,
		Transactions: txs,
	}, nil
}

// rows returns the body rows of a table, skipping rows of nested tables
func rows(table *goquery.Selection) *goquery.Selection {
	return table.ChildrenFiltered("tbody").ChildrenFiltered("tr")
}

func cellText(cells *goquery.Selection, i int) string {
	return strings.TrimSpace(cells.Eq(i).Text())
}

// leadingNumber parses the first whitespace-separated token of s
func leadingNumber(s string) (decimal.Decimal, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(fields[0])
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, strings.Join(strings.Fields(s), " "), time.UTC)
}
