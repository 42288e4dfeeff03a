// Package chart draws payout, fee and power history as a PNG.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/jgoulah/hashfuture/internal/quantity"
	"github.com/jgoulah/hashfuture/pkg/models"
)

// ErrNoData is returned when the product has no ledger entries
var ErrNoData = errors.New("nothing to chart")

var (
	payoutColor = color.RGBA{R: 46, G: 160, B: 67, A: 255}
	feeColor    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	powerColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
)

// Default image size in points
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// RenderPNG draws two stacked plots: USD payouts and fees on top, allocated power below
func RenderPNG(w io.Writer, product models.Product, timeline []models.TimelinePoint, width, height vg.Length) error {
	if len(timeline) == 0 {
		return fmt.Errorf("%w for %s", ErrNoData, product)
	}

	money, err := moneyPlot(product, timeline)
	if err != nil {
		return err
	}
	power, err := powerPlot(timeline)
	if err != nil {
		return err
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
		PadY:      vg.Millimeter * 4,
	}
	canvases := plot.Align([][]*plot.Plot{{money}, {power}}, tiles, dc)
	money.Draw(canvases[0][0])
	power.Draw(canvases[1][0])

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

func timeAxis(p *plot.Plot) {
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())
}

func moneyPlot(product models.Product, timeline []models.TimelinePoint) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s payouts and fees", product)
	p.Y.Label.Text = "USD"
	timeAxis(p)

	var payouts, fees plotter.XYs
	for _, pt := range timeline {
		x := float64(pt.Time.Unix())
		if pt.PayoutUSD != 0 {
			payouts = append(payouts, plotter.XY{X: x, Y: pt.PayoutUSD})
		}
		if pt.FeeUSD != 0 {
			fees = append(fees, plotter.XY{X: x, Y: pt.FeeUSD})
		}
	}

	if err := addSeries(p, "payouts", payouts, payoutColor); err != nil {
		return nil, err
	}
	if err := addSeries(p, "fees", fees, feeColor); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	return p, nil
}

func powerPlot(timeline []models.TimelinePoint) (*plot.Plot, error) {
	maxPower := 0.0
	for _, pt := range timeline {
		if pt.PowerHS > maxPower {
			maxPower = pt.PowerHS
		}
	}
	unit, factor := quantity.Unit(maxPower)

	p := plot.New()
	p.Title.Text = "Allocated power"
	p.Y.Label.Text = unit
	p.Y.Min = 0
	timeAxis(p)

	xys := make(plotter.XYs, 0, len(timeline))
	for _, pt := range timeline {
		xys = append(xys, plotter.XY{X: float64(pt.Time.Unix()), Y: pt.PowerHS / factor})
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("power line: %w", err)
	}
	line.StepStyle = plotter.PostStep
	line.Color = powerColor
	line.Width = vg.Points(1.5)
	p.Add(line)
	return p, nil
}

func addSeries(p *plot.Plot, name string, xys plotter.XYs, c color.Color) error {
	if len(xys) == 0 {
		return nil
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("%s line: %w", name, err)
	}
	line.Color = c
	points.Color = c
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)
	p.Legend.Add(name, line, points)
	return nil
}
