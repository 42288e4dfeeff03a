package models

import "time"

// Point is one sample of a payout-cycle series
type Point struct {
	Day   int     `json:"day"`
	Value float64 `json:"value"`
}

// Series is ordered by Day, oldest first
type Series []Point

// BreakEven is an estimate of when profit covers the investment
type BreakEven struct {
	DaysLeft int       `json:"days_left"`
	FixDate  time.Time `json:"fix_date"`
}

// Projection is the break-even outlook for one product
type Projection struct {
	Product                Product   `json:"product"`
	InvestedUSD            float64   `json:"invested_usd"`
	PowerHS                float64   `json:"power_hs"`
	CumulativeProfitUSD    float64   `json:"cumulative_profit_usd"`
	AverageProfitPerDayUSD float64   `json:"average_profit_per_day_usd"`
	ReferenceTime          time.Time `json:"reference_time"`
	PayoutCycles           int       `json:"payout_cycles"`

	// InsufficientData is set when the log holds no payout for the product.
	// Both estimates are nil in that case.
	InsufficientData bool `json:"insufficient_data"`

	Average      *BreakEven `json:"average,omitempty"`
	Extrapolated *BreakEven `json:"extrapolated,omitempty"`

	ProfitPerHS Series `json:"profit_per_hs"`
	Investment  Series `json:"investment"`
}

// TimelinePoint is one ledger event of a product, laid out for charting
type TimelinePoint struct {
	Time      time.Time `json:"time"`
	PayoutUSD float64   `json:"payout_usd"`
	FeeUSD    float64   `json:"fee_usd"`
	PowerHS   float64   `json:"power_hs"`
}
