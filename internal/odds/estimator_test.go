package odds

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prize-odds/internal/models"
)

func bi(v int64) *big.Int {
	return big.NewInt(v)
}

func TestEstimateOddsReferenceValue(t *testing.T) {
	result, err := EstimateOdds(bi(100), bi(10000), 4, 18, models.EstimateActionNone, nil)
	require.NoError(t, err)

	// Runtime float arithmetic, not constant folding, is the reference.
	usersBalance, supply := 1e-16, 1e-14
	expected := 1 - math.Pow((supply-usersBalance)/supply, 4)

	assert.Equal(t, expected, result.Odds)
	assert.InDelta(t, 0.03940399, result.Odds, 1e-9)
	assert.Equal(t, 1/expected, result.OneOverOdds)
	assert.True(t, result.HasOdds())
}

func TestEstimateOddsZeroTotalSupply(t *testing.T) {
	for _, amount := range []int64{0, 1, 500, 1_000_000} {
		result, err := EstimateOdds(bi(amount), bi(0), 4, 18, models.EstimateActionNone, nil)
		require.NoError(t, err)
		assert.Zero(t, result.Odds, "amount %d", amount)
		assert.True(t, math.IsInf(result.OneOverOdds, 1))
		assert.False(t, result.HasOdds())
	}
}

func TestEstimateOddsZeroAmount(t *testing.T) {
	for _, supply := range []int64{1, 10000, 1 << 40} {
		result, err := EstimateOdds(bi(0), bi(supply), 10, 6, models.EstimateActionNone, nil)
		require.NoError(t, err)
		assert.Zero(t, result.Odds)
		assert.False(t, result.HasOdds())
	}
}

func TestEstimateOddsZeroPrizes(t *testing.T) {
	result, err := EstimateOdds(bi(500), bi(1000), 0, 18, models.EstimateActionNone, nil)
	require.NoError(t, err)
	assert.Zero(t, result.Odds)
}

func TestEstimateOddsMonotonicInAmount(t *testing.T) {
	supply := bi(1_000_000)
	previous := -1.0
	for amount := int64(0); amount <= 1_000_000; amount += 12_345 {
		result, err := EstimateOdds(bi(amount), supply, 7, 6, models.EstimateActionNone, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Odds, previous, "amount %d", amount)
		assert.GreaterOrEqual(t, result.Odds, 0.0)
		assert.LessOrEqual(t, result.Odds, 1.0)
		previous = result.Odds
	}
}

func TestEstimateOddsWholePool(t *testing.T) {
	result, err := EstimateOdds(bi(1000), bi(1000), 3, 18, models.EstimateActionNone, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Odds)
	assert.Equal(t, 1.0, result.OneOverOdds)
}

func TestEstimateOddsBalanceAboveSupplyClamps(t *testing.T) {
	result, err := EstimateOdds(bi(2000), bi(1000), 3, 18, models.EstimateActionNone, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Odds)
}

func TestEstimateOddsLargeAmounts(t *testing.T) {
	amount, ok := new(big.Int).SetString("250000000000000000000000", 10)
	require.True(t, ok)
	supply, ok := new(big.Int).SetString("1000000000000000000000000", 10)
	require.True(t, ok)

	result, err := EstimateOdds(amount, supply, 2, 18, models.EstimateActionNone, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1-0.75*0.75, result.Odds, 1e-12)
}

func TestEstimateOddsSupplyBeyondFloatRange(t *testing.T) {
	supply := new(big.Int).Exp(big.NewInt(10), big.NewInt(320), nil)
	amount := new(big.Int).Exp(big.NewInt(10), big.NewInt(319), nil)

	result, err := EstimateOdds(amount, supply, 1, 0, models.EstimateActionNone, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, result.Odds, 1e-12)

	result, err = EstimateOdds(amount, supply, 2, 0, models.EstimateActionNone, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1-0.9*0.9, result.Odds, 1e-12)
}

func TestEstimateOddsActionSymmetry(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		supply int64
		change int64
	}{
		{name: "small deposit", amount: 100, supply: 10000, change: 50},
		{name: "first deposit", amount: 0, supply: 10000, change: 1000},
		{name: "empty pool", amount: 0, supply: 0, change: 1000},
		{name: "partial withdrawal", amount: 5000, supply: 80000, change: 2500},
		{name: "full withdrawal", amount: 5000, supply: 80000, change: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deposit, err := EstimateOdds(bi(tt.amount), bi(tt.supply), 4, 18, models.EstimateActionDeposit, bi(tt.change))
			require.NoError(t, err)
			preDeposit, err := EstimateOdds(bi(tt.amount+tt.change), bi(tt.supply+tt.change), 4, 18, models.EstimateActionNone, nil)
			require.NoError(t, err)
			assert.Equal(t, preDeposit.Odds, deposit.Odds)

			if tt.change > tt.amount {
				return
			}
			withdraw, err := EstimateOdds(bi(tt.amount), bi(tt.supply), 4, 18, models.EstimateActionWithdraw, bi(tt.change))
			require.NoError(t, err)
			preWithdraw, err := EstimateOdds(bi(tt.amount-tt.change), bi(tt.supply-tt.change), 4, 18, models.EstimateActionNone, bi(0))
			require.NoError(t, err)
			assert.Equal(t, preWithdraw.Odds, withdraw.Odds)
		})
	}
}

func TestEstimateOddsDefaultAction(t *testing.T) {
	explicit, err := EstimateOdds(bi(100), bi(10000), 4, 18, models.EstimateActionNone, nil)
	require.NoError(t, err)
	implicit, err := EstimateOdds(bi(100), bi(10000), 4, 18, "", nil)
	require.NoError(t, err)
	assert.Equal(t, explicit, implicit)
}

func TestEstimateOddsNoneIgnoresChange(t *testing.T) {
	withChange, err := EstimateOdds(bi(100), bi(10000), 4, 18, models.EstimateActionNone, bi(9999))
	require.NoError(t, err)
	without, err := EstimateOdds(bi(100), bi(10000), 4, 18, models.EstimateActionNone, nil)
	require.NoError(t, err)
	assert.Equal(t, without, withChange)
}

func TestEstimateOddsWithdrawBeyondBalance(t *testing.T) {
	_, err := EstimateOdds(bi(100), bi(10000), 4, 18, models.EstimateActionWithdraw, bi(101))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidProjection)
}

func TestEstimateOddsDoesNotMutateInputs(t *testing.T) {
	amount, supply, change := bi(100), bi(10000), bi(40)
	_, err := EstimateOdds(amount, supply, 4, 18, models.EstimateActionWithdraw, change)
	require.NoError(t, err)
	_, err = EstimateOdds(amount, supply, 4, 18, models.EstimateActionDeposit, change)
	require.NoError(t, err)

	assert.Equal(t, int64(100), amount.Int64())
	assert.Equal(t, int64(10000), supply.Int64())
	assert.Equal(t, int64(40), change.Int64())
}

func TestEstimateOddsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		amount   *big.Int
		supply   *big.Int
		prizes   int
		decimals int
		action   models.EstimateAction
		change   *big.Int
	}{
		{name: "negative prizes", amount: bi(1), supply: bi(10), prizes: -1, decimals: 18},
		{name: "negative decimals", amount: bi(1), supply: bi(10), prizes: 1, decimals: -1},
		{name: "decimals too large", amount: bi(1), supply: bi(10), prizes: 1, decimals: 256},
		{name: "nil amount", amount: nil, supply: bi(10), prizes: 1, decimals: 18},
		{name: "negative amount", amount: bi(-1), supply: bi(10), prizes: 1, decimals: 18},
		{name: "nil supply", amount: bi(1), supply: nil, prizes: 1, decimals: 18},
		{name: "negative supply", amount: bi(1), supply: bi(-10), prizes: 1, decimals: 18},
		{name: "negative change", amount: bi(1), supply: bi(10), prizes: 1, decimals: 18, action: models.EstimateActionDeposit, change: bi(-5)},
		{name: "unknown action", amount: bi(1), supply: bi(10), prizes: 1, decimals: 18, action: "STAKE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EstimateOdds(tt.amount, tt.supply, tt.prizes, tt.decimals, tt.action, tt.change)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestProjectWithdrawBeyondSupply(t *testing.T) {
	_, _, err := Project(bi(100), bi(50), models.EstimateActionWithdraw, bi(75))
	assert.ErrorIs(t, err, models.ErrInvalidProjection)
}

func TestCalculateOddsDecimalsOnlyScale(t *testing.T) {
	six := CalculateOdds(bi(250), bi(1000), 6, 1)
	eighteen := CalculateOdds(bi(250), bi(1000), 18, 1)
	assert.InDelta(t, 0.25, six, 1e-12)
	assert.InDelta(t, six, eighteen, 1e-12)
}
