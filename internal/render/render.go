// Package render formats projections for chat replies and terminals.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jgoulah/hashfuture/internal/quantity"
	"github.com/jgoulah/hashfuture/pkg/models"
)

const dateLayout = "2006-01-02"

var (
	colorTitle = color.New(color.FgCyan, color.Bold)
	colorLabel = color.New(color.FgHiBlack)
	colorGain  = color.New(color.FgGreen)
	colorLoss  = color.New(color.FgRed)
	colorDate  = color.New(color.FgYellow)
)

// FormatUSD formats a float with thousands separators and two decimals, like $116,802.19
func FormatUSD(v float64) string {
	p := message.NewPrinter(language.English)
	if v < 0 {
		return p.Sprintf("-$%0.2f", -v)
	}
	return p.Sprintf("$%0.2f", v)
}

// Text is the plain reply used by the bot and the API
func Text(p *models.Projection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your future for %s:\n", p.Product)
	if p.InsufficientData {
		b.WriteString("Not enough data yet: no payouts in this report.")
		return b.String()
	}

	fmt.Fprintf(&b, "Invested: %s\n", FormatUSD(p.InvestedUSD))
	fmt.Fprintf(&b, "Power: %s\n", quantity.Format(p.PowerHS))
	fmt.Fprintf(&b, "Profit: %s\n", FormatUSD(p.CumulativeProfitUSD))
	fmt.Fprintf(&b, "Per day: %s\n", FormatUSD(p.AverageProfitPerDayUSD))
	fmt.Fprintf(&b, "Days left: %s (average), %s (trend)\n", daysText(p.Average), daysText(p.Extrapolated))
	fmt.Fprintf(&b, "Fix date: %s (average), %s (trend)", dateText(p.Average), dateText(p.Extrapolated))
	return b.String()
}

func daysText(be *models.BreakEven) string {
	if be == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", be.DaysLeft)
}

func dateText(be *models.BreakEven) string {
	if be == nil {
		return "n/a"
	}
	return be.FixDate.Format(dateLayout)
}

// Print writes a colored multi-line summary. Relative dates are measured from now.
func Print(w io.Writer, p *models.Projection, now time.Time) {
	colorTitle.Fprintf(w, "Future of %s\n", p.Product)
	if p.InsufficientData {
		colorLoss.Fprintln(w, "  not enough data: no payouts yet")
		return
	}

	line(w, "Investment", FormatUSD(p.InvestedUSD))
	line(w, "Power", quantity.Format(p.PowerHS))

	profit := colorGain
	if p.CumulativeProfitUSD < 0 {
		profit = colorLoss
	}
	line(w, "Profit", profit.Sprint(FormatUSD(p.CumulativeProfitUSD)))
	line(w, "Profit/day", FormatUSD(p.AverageProfitPerDayUSD))
	line(w, "Payouts", fmt.Sprintf("%d (last %s)", p.PayoutCycles, p.ReferenceTime.Format("2006-01-02 15:04")))

	estimate(w, "Average", p.Average, now)
	estimate(w, "Trend", p.Extrapolated, now)
}

func line(w io.Writer, label, value string) {
	colorLabel.Fprintf(w, "  %-12s", label+":")
	fmt.Fprintln(w, value)
}

func estimate(w io.Writer, label string, be *models.BreakEven, now time.Time) {
	if be == nil {
		line(w, label, "no break-even in sight")
		return
	}
	when := humanize.RelTime(be.FixDate, now, "ago", "from now")
	line(w, label, fmt.Sprintf("%d days left, fix date %s (%s)",
		be.DaysLeft, colorDate.Sprint(be.FixDate.Format(dateLayout)), when))
}
