package report

import (
	"fmt"
	"sort"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/jgoulah/hashfuture/internal/rates"
	"github.com/jgoulah/hashfuture/pkg/models"
)

const (
	ledgerCells = 4
	dangerClass = "text-danger"
)

// ParseLedger reads the balance ledger. Rows of unknown kind are dropped and
// the result is sorted newest first.
func ParseLedger(table *goquery.Selection, txs map[string]models.Transaction, rt rates.Table) ([]models.LogEntry, error) {
	var entries []models.LogEntry

	var rowErr error
	rows(table).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		entry, err := parseLedgerRow(tr.ChildrenFiltered("td"), txs, rt)
		if err != nil {
			rowErr = fmt.Errorf("row %d: %w", i+1, err)
			return false
		}
		if entry.Classification.Kind != models.KindUnknown {
			entries = append(entries, entry)
		}
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.After(entries[j].Time)
	})

	return entries, nil
}

func parseLedgerRow(cells *goquery.Selection, txs map[string]models.Transaction, rt rates.Table) (models.LogEntry, error) {
	if cells.Length() < ledgerCells {
		return models.LogEntry{}, fmt.Errorf("%w: %d cells, need %d", ErrMalformedRow, cells.Length(), ledgerCells)
	}

	message := cellText(cells, 0)
	class, err := Classify(message, txs)
	if err != nil {
		return models.LogEntry{}, err
	}

	at, err := parseTime(cellText(cells, 1))
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("%w: time: %v", ErrMalformedRow, err)
	}

	deltaCell := cells.Eq(2)
	delta, err := leadingNumber(deltaCell.Text())
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("%w: delta: %v", ErrMalformedRow, err)
	}
	if isDanger(deltaCell) {
		delta = delta.Neg()
	}

	balance, err := leadingNumber(cellText(cells, 3))
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("%w: balance: %v", ErrMalformedRow, err)
	}

	rate := decimal.NewFromInt(1)
	if class.Currency != "" {
		r, ok := rt.Lookup(class.Currency)
		if !ok {
			return models.LogEntry{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, class.Currency)
		}
		rate = decimal.NewFromFloat(r)
	}

	return models.LogEntry{
		Message:        message,
		Time:           at,
		Delta:          delta,
		Balance:        balance,
		Classification: class,
		USD: models.USDAmounts{
			Delta:   rate.Mul(delta),
			Balance: rate.Mul(balance),
		},
	}, nil
}

// isDanger reports whether the cell, or an element inside it, carries the
// style that marks an outgoing amount
func isDanger(cell *goquery.Selection) bool {
	return cell.HasClass(dangerClass) || cell.Find("."+dangerClass).Length() > 0
}
