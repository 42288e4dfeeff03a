package quantity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.5 TH/s", 1.5e12},
		{"100 GH/s", 1e11},
		{"10 MH/s", 1e7},
		{"3 KH/s", 3000},
		{"42 H/s", 42},
		{"  2 TH/s ", 2e12},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.want*1e-12)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{"", "1.5", "1.5 PH/s", "abc TH/s", "1 TH/s extra", "1 th/s"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1.5 TH/s", Format(1.5e12))
	assert.Equal(t, "1 TH/s", Format(1e12))
	assert.Equal(t, "999 GH/s", Format(999e9))
	assert.Equal(t, "250 MH/s", Format(250e6))
	assert.Equal(t, "1 KH/s", Format(1000))
	assert.Equal(t, "999 H/s", Format(999))
	assert.Equal(t, "0 H/s", Format(0))
}

func TestFormatParsesBack(t *testing.T) {
	for _, v := range []float64{0, 1, 999, 1000, 12345, 7.5e8, 1e9, 3.25e12, 4e15} {
		got, err := Parse(Format(v))
		require.NoError(t, err)
		assert.InDelta(t, v, got, v*1e-9+1e-9)
	}
}

func TestUnit(t *testing.T) {
	name, factor := Unit(5e6)
	assert.Equal(t, "MH/s", name)
	assert.Equal(t, 1e6, factor)

	name, factor = Unit(-3)
	assert.Equal(t, "H/s", name)
	assert.Equal(t, 1.0, factor)
}
