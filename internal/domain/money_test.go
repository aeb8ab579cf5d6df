package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_MarshalJSON(t *testing.T) {
	cases := map[string]string{
		"19.9":   "19.90",
		"35.82":  "35.82",
		"0":      "0.00",
		"3.985":  "3.99",
		"100.00": "100.00",
	}
	for in, want := range cases {
		out, err := json.Marshal(Money(decimal.RequireFromString(in)))
		require.NoError(t, err)
		assert.Equal(t, want, string(out))
	}
}

func TestMoney_UnmarshalJSON(t *testing.T) {
	for _, in := range []string{`39.80`, `"39.8"`} {
		var m Money
		require.NoError(t, json.Unmarshal([]byte(in), &m))
		assert.True(t, m.Decimal().Equal(decimal.RequireFromString("39.8")), in)
	}

	var m Money
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
}
