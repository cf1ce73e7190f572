package models

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount(" 1000000000000000000000 ")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000", amount.String())

	_, err = ParseAmount("12.5")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseAmount("-3")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseFormattedAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		decimals int
		expected string
		wantErr  bool
	}{
		{name: "whole tokens", input: "12", decimals: 6, expected: "12000000"},
		{name: "fractional", input: "12.5", decimals: 18, expected: "12500000000000000000"},
		{name: "zero decimals", input: "7", decimals: 0, expected: "7"},
		{name: "too precise", input: "0.0000001", decimals: 6, wantErr: true},
		{name: "negative", input: "-1", decimals: 6, wantErr: true},
		{name: "not a number", input: "ten", decimals: 6, wantErr: true},
		{name: "bad decimals", input: "1", decimals: -2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := ParseFormattedAmount(tt.input, tt.decimals)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, amount.String())
		})
	}
}

func TestAmountFormatting(t *testing.T) {
	amount := NewAmount(big.NewInt(12_500_000))
	assert.Equal(t, "12.5", amount.Formatted(6))
	assert.Equal(t, 12.5, amount.Float(6))
	assert.False(t, amount.IsZero())
	assert.True(t, Amount{}.IsZero())
	assert.Equal(t, "0", Amount{}.String())
}

func TestNewAmountCopies(t *testing.T) {
	source := big.NewInt(10)
	amount := NewAmount(source)
	source.SetInt64(99)
	assert.Equal(t, "10", amount.String())
}

func TestAmountJSON(t *testing.T) {
	data, err := json.Marshal(NewAmount(big.NewInt(42)))
	require.NoError(t, err)
	assert.JSONEq(t, `"42"`, string(data))

	var fromString, fromNumber Amount
	require.NoError(t, json.Unmarshal([]byte(`"123456789012345678901234567890"`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`77`), &fromNumber))
	assert.Equal(t, "123456789012345678901234567890", fromString.String())
	assert.Equal(t, "77", fromNumber.String())
}
