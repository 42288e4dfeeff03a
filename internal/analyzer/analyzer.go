// Package analyzer runs the full pipeline from raw history page to projections.
package analyzer

import (
	"context"
	"fmt"

	"github.com/jgoulah/hashfuture/internal/projector"
	"github.com/jgoulah/hashfuture/internal/rates"
	"github.com/jgoulah/hashfuture/internal/report"
	"github.com/jgoulah/hashfuture/pkg/models"
)

// Pipeline steps, as shown to users when one fails
const (
	StepRates   = "fetching rates"
	StepParse   = "parsing report"
	StepProject = "projecting"
)

// StepError names the pipeline step that failed
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result holds the parsed log and one projection per requested product
type Result struct {
	Log         *models.Log
	Projections []*models.Projection
}

// Projection returns the projection for product, if it was requested
func (r *Result) Projection(product models.Product) (*models.Projection, bool) {
	for _, p := range r.Projections {
		if p.Product == product {
			return p, true
		}
	}
	return nil, false
}

// Analyzer turns history pages into projections
type Analyzer struct {
	source rates.Source
}

// New creates an analyzer that takes a fresh rate snapshot on every call
func New(source rates.Source) *Analyzer {
	return &Analyzer{source: source}
}

// Analyze parses html and projects each product
func (a *Analyzer) Analyze(ctx context.Context, html []byte, products []models.Product) (*Result, error) {
	table, err := a.source.Rates(ctx)
	if err != nil {
		return nil, &StepError{Step: StepRates, Err: err}
	}

	log, err := report.Parse(html, table)
	if err != nil {
		return nil, &StepError{Step: StepParse, Err: err}
	}

	result := &Result{Log: log}
	for _, product := range products {
		p, err := projector.Project(log, product)
		if err != nil {
			return nil, &StepError{Step: fmt.Sprintf("%s %s", StepProject, product), Err: err}
		}
		result.Projections = append(result.Projections, p)
	}

	return result, nil
}
