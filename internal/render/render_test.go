package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/jgoulah/hashfuture/pkg/models"
)

var ref = time.Date(2017, 12, 4, 0, 5, 0, 0, time.UTC)

func sample() *models.Projection {
	return &models.Projection{
		Product:                models.SHA256,
		InvestedUSD:            1250,
		PowerHS:                1.5e12,
		CumulativeProfitUSD:    3.5,
		AverageProfitPerDayUSD: 1.75,
		ReferenceTime:          ref,
		PayoutCycles:           2,
		Average:                &models.BreakEven{DaysLeft: 56, FixDate: ref.AddDate(0, 0, 56)},
	}
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$116,802.19", FormatUSD(116802.19))
	assert.Equal(t, "$0.50", FormatUSD(0.5))
	assert.Equal(t, "-$1,000.00", FormatUSD(-1000))
}

func TestText(t *testing.T) {
	got := Text(sample())
	assert.Equal(t, "Your future for SHA-256:\n"+
		"Invested: $1,250.00\n"+
		"Power: 1.5 TH/s\n"+
		"Profit: $3.50\n"+
		"Per day: $1.75\n"+
		"Days left: 56 (average), n/a (trend)\n"+
		"Fix date: 2018-01-29 (average), n/a (trend)", got)
}

func TestTextInsufficientData(t *testing.T) {
	got := Text(&models.Projection{Product: models.Ethash, InsufficientData: true})
	assert.Contains(t, got, "ETHASH")
	assert.Contains(t, got, "no payouts")
}

func TestPrint(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	Print(&buf, sample(), ref)

	out := buf.String()
	assert.Contains(t, out, "Future of SHA-256")
	assert.Contains(t, out, "$1,250.00")
	assert.Contains(t, out, "56 days left, fix date 2018-01-29 (1 month from now)")
	assert.Contains(t, out, "no break-even in sight")
}
