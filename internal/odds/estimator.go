// Package odds computes a depositor's chance of winning at least one prize in a draw.
package odds

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/yourusername/prize-odds/internal/models"
)

// EstimateOdds projects the requested action onto amount and totalSupply and returns the
// resulting odds. A nil change is treated as zero. A withdrawal larger than either balance
// fails with models.ErrInvalidProjection.
func EstimateOdds(
	amount *big.Int,
	totalSupply *big.Int,
	numberOfPrizes int,
	decimals int,
	action models.EstimateAction,
	change *big.Int,
) (models.EstimationResult, error) {
	if err := validateInputs(amount, totalSupply, numberOfPrizes, decimals, action, change); err != nil {
		return models.EstimationResult{}, err
	}

	projectedAmount, projectedSupply, err := Project(amount, totalSupply, action, change)
	if err != nil {
		return models.EstimationResult{}, err
	}

	odds := CalculateOdds(projectedAmount, projectedSupply, decimals, numberOfPrizes)
	return models.EstimationResult{
		Odds:        odds,
		OneOverOdds: 1 / odds,
	}, nil
}

// Project applies a hypothetical deposit or withdrawal to both the user's balance and the
// pool's total supply. The inputs are not modified.
func Project(amount, totalSupply *big.Int, action models.EstimateAction, change *big.Int) (*big.Int, *big.Int, error) {
	if change == nil {
		change = new(big.Int)
	}

	switch action.Normalize() {
	case models.EstimateActionNone:
		return new(big.Int).Set(amount), new(big.Int).Set(totalSupply), nil
	case models.EstimateActionDeposit:
		return new(big.Int).Add(amount, change), new(big.Int).Add(totalSupply, change), nil
	case models.EstimateActionWithdraw:
		if change.Cmp(amount) > 0 {
			return nil, nil, fmt.Errorf("%w: withdrawal of %s exceeds balance of %s", models.ErrInvalidProjection, change, amount)
		}
		if change.Cmp(totalSupply) > 0 {
			return nil, nil, fmt.Errorf("%w: withdrawal of %s exceeds total supply of %s", models.ErrInvalidProjection, change, totalSupply)
		}
		return new(big.Int).Sub(amount, change), new(big.Int).Sub(totalSupply, change), nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown action %q", models.ErrInvalidInput, action)
	}
}

// CalculateOdds returns the probability of winning at least one of numberOfPrizes independent
// draws, each won with probability amount/totalSupply: 1 - (1 - share)^numberOfPrizes.
// Both quantities are scaled by 10^-decimals before the float conversion.
func CalculateOdds(amount, totalSupply *big.Int, decimals int, numberOfPrizes int) float64 {
	if amount == nil || totalSupply == nil || amount.Sign() <= 0 || totalSupply.Sign() <= 0 || numberOfPrizes <= 0 {
		return 0
	}
	if amount.Cmp(totalSupply) >= 0 {
		return 1
	}

	usersBalance := toFloat(amount, decimals)
	supply := toFloat(totalSupply, decimals)

	remaining := (supply - usersBalance) / supply
	if math.IsInf(supply, 0) {
		// Beyond float64 range; the scaling cancels in the ratio.
		remaining = ratio(new(big.Int).Sub(totalSupply, amount), totalSupply)
	}

	odds := 1 - math.Pow(remaining, float64(numberOfPrizes))
	switch {
	case math.IsNaN(odds) || odds < 0:
		return 0
	case odds > 1:
		return 1
	}
	return odds
}

func toFloat(v *big.Int, decimals int) float64 {
	f, _ := decimal.NewFromBigInt(v, -int32(decimals)).Float64()
	return f
}

func ratio(numerator, denominator *big.Int) float64 {
	r, _ := decimal.NewFromBigInt(numerator, 0).DivRound(decimal.NewFromBigInt(denominator, 0), 34).Float64()
	return r
}

func validateInputs(amount, totalSupply *big.Int, numberOfPrizes, decimals int, action models.EstimateAction, change *big.Int) error {
	switch {
	case numberOfPrizes < 0:
		return fmt.Errorf("%w: number of prizes %d is negative", models.ErrInvalidInput, numberOfPrizes)
	case decimals < 0 || decimals > models.MaxDecimals:
		return fmt.Errorf("%w: decimals %d out of range", models.ErrInvalidInput, decimals)
	case amount == nil:
		return fmt.Errorf("%w: amount is required", models.ErrInvalidInput)
	case amount.Sign() < 0:
		return fmt.Errorf("%w: amount is negative", models.ErrInvalidInput)
	case totalSupply == nil:
		return fmt.Errorf("%w: total supply is required", models.ErrInvalidInput)
	case totalSupply.Sign() < 0:
		return fmt.Errorf("%w: total supply is negative", models.ErrInvalidInput)
	case change != nil && change.Sign() < 0:
		return fmt.Errorf("%w: change amount is negative", models.ErrInvalidInput)
	case !action.IsValid():
		return fmt.Errorf("%w: unknown action %q", models.ErrInvalidInput, action)
	}
	return nil
}
