// Package projector estimates when a mining contract pays for itself.
package projector

import (
	"errors"
	"fmt"

	"github.com/jgoulah/hashfuture/pkg/models"
)

// ErrUnresolvedPurchase is returned when a purchase entry refers to a
// transaction missing from the log
var ErrUnresolvedPurchase = errors.New("purchase refers to missing transaction")

// Project walks the log oldest first and accumulates investment, power and
// profit for one product. A product with no payouts yields a projection
// flagged InsufficientData.
func Project(log *models.Log, product models.Product) (*models.Projection, error) {
	p := &models.Projection{Product: product}

	var perHS float64
	for i := len(log.Entries) - 1; i >= 0; i-- {
		e := log.Entries[i]
		if e.Classification.Product != product {
			continue
		}

		if e.Classification.Kind == models.KindPurchased {
			tx, ok := log.Transaction(e)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnresolvedPurchase, e.Classification.TransactionRef)
			}
			p.InvestedUSD += tx.Total.InexactFloat64()
			p.PowerHS += tx.Quantity
		}

		delta := e.USD.Delta.InexactFloat64()
		p.CumulativeProfitUSD += delta

		if e.Classification.Kind == models.KindPayout {
			p.PayoutCycles++
		}

		if p.PowerHS > 0 {
			perHS += delta / p.PowerHS
			p.ProfitPerHS = append(p.ProfitPerHS, models.Point{Day: p.PayoutCycles, Value: perHS})
			p.Investment = append(p.Investment, models.Point{Day: p.PayoutCycles, Value: p.InvestedUSD})
		}

		p.ReferenceTime = e.Time
	}

	if p.PayoutCycles == 0 {
		p.InsufficientData = true
		return p, nil
	}

	p.AverageProfitPerDayUSD = perHS / float64(p.PayoutCycles) * p.PowerHS
	if p.PowerHS == 0 || len(p.ProfitPerHS) == 0 {
		return p, nil
	}

	if days, ok := AverageDaysLeft(p.ProfitPerHS, (p.InvestedUSD-p.CumulativeProfitUSD)/p.PowerHS); ok {
		p.Average = breakEven(p, days)
	}
	if days, ok := ExtrapolatedDaysLeft(p.ProfitPerHS, p.InvestedUSD/p.PowerHS); ok {
		p.Extrapolated = breakEven(p, days)
	}

	return p, nil
}

func breakEven(p *models.Projection, days int) *models.BreakEven {
	return &models.BreakEven{
		DaysLeft: days,
		FixDate:  p.ReferenceTime.AddDate(0, 0, days),
	}
}

// Timeline lays out the product's entries oldest first with running power
func Timeline(log *models.Log, product models.Product) []models.TimelinePoint {
	var (
		points []models.TimelinePoint
		power  float64
	)
	for i := len(log.Entries) - 1; i >= 0; i-- {
		e := log.Entries[i]
		if e.Classification.Product != product {
			continue
		}

		pt := models.TimelinePoint{Time: e.Time}
		switch e.Classification.Kind {
		case models.KindPurchased:
			if tx, ok := log.Transaction(e); ok {
				power += tx.Quantity
			}
		case models.KindPayout:
			pt.PayoutUSD = e.USD.Delta.InexactFloat64()
		case models.KindMaintenance:
			pt.FeeUSD = -e.USD.Delta.InexactFloat64()
		}
		pt.PowerHS = power
		points = append(points, pt)
	}
	return points
}
