package models

import (
	"math"
	"math/big"
)

// SnapshotState is the readiness of a pool's odds data
type SnapshotState string

const (
	SnapshotStateAwaiting SnapshotState = "AWAITING_SNAPSHOT"
	SnapshotStateReady    SnapshotState = "READY"
)

// EstimationRequest identifies one odds estimation against a pool.
// Amount nil means the user has not entered an amount yet.
// Action defaults to NONE and Change defaults to zero when unset.
type EstimationRequest struct {
	Amount *big.Int
	Action EstimateAction
	Change *big.Int
}

// NormalizedAction returns the request action with the NONE default applied
func (r EstimationRequest) NormalizedAction() EstimateAction {
	return r.Action.Normalize()
}

// NormalizedChange returns the change amount with the zero default applied
func (r EstimationRequest) NormalizedChange() *big.Int {
	if r.Change == nil {
		return new(big.Int)
	}
	return r.Change
}

// EstimationResult is a user's chance of winning at least one prize in the next draw
type EstimationResult struct {
	Odds        float64 `json:"odds"`
	OneOverOdds float64 `json:"-"`
}

// HasOdds reports whether OneOverOdds is finite and fit for "1 in N" display
func (r EstimationResult) HasOdds() bool {
	return r.Odds > 0 && !math.IsInf(r.OneOverOdds, 0) && !math.IsNaN(r.OneOverOdds)
}

// Estimation is the orchestrated outcome: Data is nil until IsFetched is true
type Estimation struct {
	IsFetched bool
	Data      *EstimationResult
}
