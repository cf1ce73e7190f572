package models

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxDecimals is the largest decimal precision accepted for a token (ERC-20 decimals is a uint8)
const MaxDecimals = 255

// Amount is a token quantity held in the token's smallest unit
type Amount struct {
	Unformatted *big.Int
}

// NewAmount wraps a smallest-unit integer. The value is copied.
func NewAmount(v *big.Int) Amount {
	if v == nil {
		return Amount{Unformatted: new(big.Int)}
	}
	return Amount{Unformatted: new(big.Int).Set(v)}
}

// ParseAmount parses a base-10 smallest-unit integer
func ParseAmount(s string) (Amount, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: amount %q is not an integer", ErrInvalidInput, s)
	}
	if v.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: amount %q is negative", ErrInvalidInput, s)
	}
	return Amount{Unformatted: v}, nil
}

// ParseFormattedAmount converts a human-readable decimal string (e.g. "12.5") into smallest units
func ParseFormattedAmount(s string, decimals int) (Amount, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return Amount{}, fmt.Errorf("%w: decimals %d out of range", ErrInvalidInput, decimals)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("%w: amount %q is not a decimal: %v", ErrInvalidInput, s, err)
	}
	if d.IsNegative() {
		return Amount{}, fmt.Errorf("%w: amount %q is negative", ErrInvalidInput, s)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return Amount{}, fmt.Errorf("%w: amount %q has more than %d fractional digits", ErrInvalidInput, s, decimals)
	}
	return Amount{Unformatted: scaled.BigInt()}, nil
}

// IsZero reports whether the amount is zero or unset
func (a Amount) IsZero() bool {
	return a.Unformatted == nil || a.Unformatted.Sign() == 0
}

// Decimal returns the amount scaled by 10^-decimals
func (a Amount) Decimal(decimals int) decimal.Decimal {
	if a.Unformatted == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.Unformatted, -int32(decimals))
}

// Formatted renders the amount as a human-readable decimal string
func (a Amount) Formatted(decimals int) string {
	return a.Decimal(decimals).String()
}

// Float returns the scaled amount as the nearest float64
func (a Amount) Float(decimals int) float64 {
	f, _ := a.Decimal(decimals).Float64()
	return f
}

// String returns the smallest-unit integer in base 10
func (a Amount) String() string {
	if a.Unformatted == nil {
		return "0"
	}
	return a.Unformatted.String()
}

// MarshalJSON encodes the amount as a base-10 string so no precision is lost
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts either a JSON string or a JSON integer
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
