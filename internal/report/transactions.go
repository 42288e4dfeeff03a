package report

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jgoulah/hashfuture/internal/quantity"
	"github.com/jgoulah/hashfuture/pkg/models"
)

const transactionCells = 7

// ParseTransactions reads the purchase table into a map keyed by transaction ID.
// Any row that fails to parse aborts the whole table.
func ParseTransactions(table *goquery.Selection) (map[string]models.Transaction, error) {
	txs := make(map[string]models.Transaction)

	var rowErr error
	rows(table).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		tx, err := parseTransactionRow(tr.ChildrenFiltered("td"))
		if err != nil {
			rowErr = fmt.Errorf("row %d: %w", i+1, err)
			return false
		}
		txs[tx.ID] = tx
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return txs, nil
}

func parseTransactionRow(cells *goquery.Selection) (models.Transaction, error) {
	if cells.Length() < transactionCells {
		return models.Transaction{}, fmt.Errorf("%w: %d cells, need %d", ErrMalformedRow, cells.Length(), transactionCells)
	}

	id := cellText(cells, 0)
	if id == "" {
		return models.Transaction{}, fmt.Errorf("%w: empty transaction id", ErrMalformedRow)
	}

	description := strings.Fields(cellText(cells, 1))
	if len(description) == 0 {
		return models.Transaction{}, fmt.Errorf("%w: transaction %s: empty product", ErrMalformedRow, id)
	}

	qty, err := quantity.Parse(cellText(cells, 2))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: transaction %s: %w", ErrMalformedRow, id, err)
	}

	total, err := leadingNumber(cellText(cells, 3))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: transaction %s: total: %v", ErrMalformedRow, id, err)
	}

	at, err := parseTime(cellText(cells, 5))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: transaction %s: time: %v", ErrMalformedRow, id, err)
	}

	return models.Transaction{
		ID:       id,
		Product:  models.Product(description[0]),
		Quantity: qty,
		Total:    total,
		Method:   cellText(cells, 4),
		Time:     at,
		Status:   cellText(cells, 6),
	}, nil
}
