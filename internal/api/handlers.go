package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prize-odds/internal/display"
	"github.com/yourusername/prize-odds/internal/models"
)

// OddsData is the JSON form of an estimation result. OneOverOdds is null when the odds are zero.
type OddsData struct {
	Odds        float64  `json:"odds"`
	OneOverOdds *float64 `json:"one_over_odds"`
}

// OddsResponse is returned by GET /v1/pools/{poolID}/odds
type OddsResponse struct {
	RequestID string               `json:"request_id"`
	PoolID    string               `json:"pool_id"`
	IsFetched bool                 `json:"is_fetched"`
	State     models.SnapshotState `json:"state"`
	Data      *OddsData            `json:"data"`
	Display   display.Display      `json:"display"`
}

// PoolStatus is one entry of GET /v1/pools
type PoolStatus struct {
	PoolID          string               `json:"pool_id"`
	State           models.SnapshotState `json:"state"`
	SnapshotVersion uint64               `json:"snapshot_version,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

func (s *Server) handleListPools(w http.ResponseWriter, r *http.Request) {
	pools := make([]PoolStatus, 0)
	for _, poolID := range s.store.Pools() {
		status := PoolStatus{PoolID: poolID, State: s.store.State(poolID)}
		if snapshot, ok := s.store.Snapshot(poolID); ok {
			status.SnapshotVersion = snapshot.Version
		}
		pools = append(pools, status)
	}

	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"request_id": RequestID(r.Context()),
		"pools":      pools,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	poolID := mux.Vars(r)["poolID"]
	if !s.store.Knows(poolID) {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("%w: %s", models.ErrUnknownPool, poolID))
		return
	}

	snapshot, ok := s.store.Snapshot(poolID)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("%w: %s", models.ErrSnapshotNotFound, poolID))
		return
	}

	s.writeJSON(w, r, http.StatusOK, snapshot)
}

func (s *Server) handleOdds(w http.ResponseWriter, r *http.Request) {
	poolID := mux.Vars(r)["poolID"]
	if !s.store.Knows(poolID) {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("%w: %s", models.ErrUnknownPool, poolID))
		return
	}

	req, err := s.parseEstimationRequest(r, poolID)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	estimation, err := s.estimator.Estimate(poolID, req)
	switch {
	case errors.Is(err, models.ErrInvalidProjection):
		s.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	case errors.Is(err, models.ErrInvalidInput):
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	case err != nil:
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	query := r.URL.Query()
	formatter := display.NewFormatter(s.cfg.EmptyString, query.Get("locale"), r.Header.Get("Accept-Language"), s.cfg.Locale)

	resp := OddsResponse{
		RequestID: RequestID(r.Context()),
		PoolID:    poolID,
		IsFetched: estimation.IsFetched,
		State:     s.store.State(poolID),
		Display:   formatter.Format(estimation),
	}
	if estimation.IsFetched && estimation.Data != nil {
		resp.Data = &OddsData{Odds: estimation.Data.Odds}
		if estimation.Data.HasOdds() {
			oneOverOdds := estimation.Data.OneOverOdds
			resp.Data.OneOverOdds = &oneOverOdds
		}
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

// parseEstimationRequest reads amount, action and change from the query. Formatted
// amounts need the pool's decimals, so they stay unset until a snapshot exists.
func (s *Server) parseEstimationRequest(r *http.Request, poolID string) (models.EstimationRequest, error) {
	query := r.URL.Query()

	action, err := models.ParseEstimateAction(query.Get("action"))
	if err != nil {
		return models.EstimationRequest{}, err
	}

	decimals := -1
	if snapshot, ok := s.store.Snapshot(poolID); ok {
		decimals = snapshot.Decimals
	}

	amount, err := parseQueryAmount(query.Get("amount"), query.Get("amount_formatted"), decimals, "amount")
	if err != nil {
		return models.EstimationRequest{}, err
	}
	change, err := parseQueryAmount(query.Get("change"), query.Get("change_formatted"), decimals, "change")
	if err != nil {
		return models.EstimationRequest{}, err
	}

	return models.EstimationRequest{Amount: amount, Action: action, Change: change}, nil
}

func parseQueryAmount(raw, formatted string, decimals int, name string) (*big.Int, error) {
	switch {
	case raw != "" && formatted != "":
		return nil, fmt.Errorf("%w: pass either %s or %s_formatted", models.ErrInvalidInput, name, name)
	case raw != "":
		amount, err := models.ParseAmount(raw)
		if err != nil {
			return nil, err
		}
		return amount.Unformatted, nil
	case formatted != "" && decimals >= 0:
		amount, err := models.ParseFormattedAmount(formatted, decimals)
		if err != nil {
			return nil, err
		}
		return amount.Unformatted, nil
	default:
		return nil, nil
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.writeJSON(w, r, status, ErrorResponse{
		RequestID: RequestID(r.Context()),
		Error:     err.Error(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": RequestID(r.Context()),
			"path":       r.URL.Path,
		}).Warn("Failed to write response body")
	}
}
