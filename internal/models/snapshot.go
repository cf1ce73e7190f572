package models

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
)

var snapshotValidator = validator.New()

// OddsDataSnapshot is the aggregate state of a pool as of its last successful refresh.
// A snapshot is never mutated once accepted by a store; the next refresh supersedes it.
type OddsDataSnapshot struct {
	PoolID         string    `json:"pool_id" validate:"required"`
	NumberOfPrizes int       `json:"number_of_prizes" validate:"gte=0"`
	TotalSupply    *big.Int  `json:"-"`
	Decimals       int       `json:"decimals" validate:"gte=0,lte=255"`
	Version        uint64    `json:"version"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// NewOddsDataSnapshot builds an unversioned snapshot. TotalSupply is copied.
func NewOddsDataSnapshot(poolID string, numberOfPrizes int, totalSupply *big.Int, decimals int) *OddsDataSnapshot {
	var supply *big.Int
	if totalSupply != nil {
		supply = new(big.Int).Set(totalSupply)
	}
	return &OddsDataSnapshot{
		PoolID:         poolID,
		NumberOfPrizes: numberOfPrizes,
		TotalSupply:    supply,
		Decimals:       decimals,
	}
}

// Validate checks field constraints, including the ones a struct tag cannot express on big.Int
func (s *OddsDataSnapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	if err := snapshotValidator.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if s.TotalSupply == nil {
		return fmt.Errorf("%w: total supply is required", ErrInvalidSnapshot)
	}
	if s.TotalSupply.Sign() < 0 {
		return fmt.Errorf("%w: total supply is negative", ErrInvalidSnapshot)
	}
	return nil
}

// WithVersion returns a copy stamped with a store version and fetch time
func (s *OddsDataSnapshot) WithVersion(version uint64, fetchedAt time.Time) *OddsDataSnapshot {
	clone := NewOddsDataSnapshot(s.PoolID, s.NumberOfPrizes, s.TotalSupply, s.Decimals)
	clone.Version = version
	clone.FetchedAt = fetchedAt
	return clone
}

// Supply returns the total supply as an Amount
func (s *OddsDataSnapshot) Supply() Amount {
	return NewAmount(s.TotalSupply)
}

// MarshalJSON includes total supply as a base-10 string
func (s *OddsDataSnapshot) MarshalJSON() ([]byte, error) {
	type alias OddsDataSnapshot
	return json.Marshal(struct {
		*alias
		TotalSupply          Amount `json:"total_supply"`
		TotalSupplyFormatted string `json:"total_supply_formatted"`
	}{
		alias:                (*alias)(s),
		TotalSupply:          s.Supply(),
		TotalSupplyFormatted: s.Supply().Formatted(s.Decimals),
	})
}
