package analyzer

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/hashfuture/internal/rates"
	"github.com/jgoulah/hashfuture/internal/report"
	"github.com/jgoulah/hashfuture/pkg/models"
)

type failingSource struct{}

func (failingSource) Rates(ctx context.Context) (rates.Table, error) {
	return nil, errors.New("connection refused")
}

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../report/testdata/history.html")
	require.NoError(t, err)
	return data
}

func TestAnalyze(t *testing.T) {
	a := New(rates.Static{"BTC": 10000, "LTC": 100})

	res, err := a.Analyze(context.Background(), fixture(t), models.Products)
	require.NoError(t, err)
	require.Len(t, res.Projections, len(models.Products))

	sha, ok := res.Projection(models.SHA256)
	require.True(t, ok)
	require.NotNil(t, sha.Average)
	assert.Equal(t, 56, sha.Average.DaysLeft)

	eth, ok := res.Projection(models.Ethash)
	require.True(t, ok)
	assert.True(t, eth.InsufficientData)
}

func TestAnalyzeStepErrors(t *testing.T) {
	t.Run("rates", func(t *testing.T) {
		_, err := New(failingSource{}).Analyze(context.Background(), fixture(t), models.Products)

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, StepRates, stepErr.Step)
		assert.Contains(t, err.Error(), "fetching rates: connection refused")
	})

	t.Run("parse", func(t *testing.T) {
		_, err := New(rates.Static{"BTC": 1}).Analyze(context.Background(), fixture(t), models.Products)

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, StepParse, stepErr.Step)
		assert.ErrorIs(t, err, report.ErrUnknownCurrency)
	})

	t.Run("not a report", func(t *testing.T) {
		_, err := New(rates.Static{}).Analyze(context.Background(), []byte("<p>hello</p>"), models.Products)
		assert.ErrorIs(t, err, report.ErrMalformedReport)
	})
}
