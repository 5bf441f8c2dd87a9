package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"1.6", "1.6"},
		{"16.8", "16.8"},
		{"1.005", "1.01"},
		{"2.004", "2"},
		{"0.4792", "0.48"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, MustParse(tt.expected).Equal(Round(MustParse(tt.in))))
		})
	}
}

func TestInCents(t *testing.T) {
	assert.True(t, InCents(MustParse("19.99")))
	assert.True(t, InCents(MustParse("20")))
	assert.True(t, InCents(MustParse("1.500")))
	assert.False(t, InCents(MustParse("1.005")))
	assert.False(t, InCents(MustParse("0.001")))
}

func TestParse(t *testing.T) {
	d, err := Parse(" 5.99 ")
	require.NoError(t, err)
	assert.Equal(t, "5.99", d.String())

	_, err = Parse("")
	assert.Error(t, err)

	_, err = Parse("five")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "226.80 USD", Format(MustParse("226.8"), "USD"))
	assert.Equal(t, "27.59", Format(MustParse("27.59"), ""))
}

func TestJSONEncodesBareNumbers(t *testing.T) {
	data, err := json.Marshal(map[string]decimal.Decimal{"price": MustParse("12.50")})
	require.NoError(t, err)

	assert.JSONEq(t, `{"price": 12.5}`, string(data))
}
