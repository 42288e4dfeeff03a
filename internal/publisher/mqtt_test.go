package publisher

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/hashfuture/internal/config"
	"github.com/jgoulah/hashfuture/pkg/models"
)

var ref = time.Date(2017, 12, 4, 0, 5, 0, 0, time.UTC)

func projection() *models.Projection {
	return &models.Projection{
		Product:                models.SHA256,
		InvestedUSD:            100,
		PowerHS:                1e12,
		CumulativeProfitUSD:    3.5,
		AverageProfitPerDayUSD: 1.754,
		ReferenceTime:          ref,
		PayoutCycles:           2,
		Average:                &models.BreakEven{DaysLeft: 56, FixDate: ref.AddDate(0, 0, 56)},
	}
}

func TestNewState(t *testing.T) {
	s := NewState(projection())

	assert.Equal(t, 1.75, s.ProfitPerDayUSD)
	require.NotNil(t, s.DaysLeft)
	assert.Equal(t, 56, *s.DaysLeft)
	assert.Equal(t, "2018-01-29", s.FixDate)
	assert.Nil(t, s.DaysLeftTrend)
	assert.Equal(t, "2017-12-04T00:05:00Z", s.LastPayout)

	empty := NewState(&models.Projection{Product: models.X11, InsufficientData: true})
	assert.True(t, empty.InsufficientData)
	assert.Empty(t, empty.LastPayout)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "sha_256", Slug(models.SHA256))
	assert.Equal(t, "ethash", Slug(models.Ethash))
}

func TestNewRequiresTarget(t *testing.T) {
	_, err := New(&config.Config{})
	assert.Error(t, err)

	_, err = New(&config.Config{HomeAssistant: config.HAConfig{Enabled: true, URL: "http://ha"}})
	assert.ErrorContains(t, err, "token")
}

func TestPublishHomeAssistant(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody HAState
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	pub, err := New(&config.Config{HomeAssistant: config.HAConfig{Enabled: true, URL: srv.URL + "/", Token: "secret"}})
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.Publish(projection()))

	assert.Equal(t, "/api/states/sensor.hashflare_sha_256_days_left", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "56", gotBody.State)
	assert.Equal(t, "2018-01-29", gotBody.Attributes["fix_date"])
}

func TestPublishHomeAssistantError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	pub, err := New(&config.Config{HomeAssistant: config.HAConfig{Enabled: true, URL: srv.URL, Token: "bad"}})
	require.NoError(t, err)

	err = pub.Publish(projection())
	assert.ErrorContains(t, err, "status 401")
}
