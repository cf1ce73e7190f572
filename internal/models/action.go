package models

import (
	"fmt"
	"strings"
)

// EstimateAction is the hypothetical balance change modelled before a transaction is confirmed
type EstimateAction string

const (
	EstimateActionNone     EstimateAction = "NONE"
	EstimateActionWithdraw EstimateAction = "WITHDRAW"
	EstimateActionDeposit  EstimateAction = "DEPOSIT"
)

// Normalize returns NONE for the zero value and the action unchanged otherwise
func (a EstimateAction) Normalize() EstimateAction {
	if a == "" {
		return EstimateActionNone
	}
	return a
}

// IsValid reports whether the action is one of the known actions (after normalization)
func (a EstimateAction) IsValid() bool {
	switch a.Normalize() {
	case EstimateActionNone, EstimateActionWithdraw, EstimateActionDeposit:
		return true
	default:
		return false
	}
}

// String returns the action name
func (a EstimateAction) String() string {
	return string(a.Normalize())
}

// ParseEstimateAction parses an action name case-insensitively. An empty string yields NONE.
func ParseEstimateAction(s string) (EstimateAction, error) {
	action := EstimateAction(strings.ToUpper(strings.TrimSpace(s))).Normalize()
	if !action.IsValid() {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, s)
	}
	return action, nil
}
