package datasource

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/yourusername/prize-odds/internal/config"
	"github.com/yourusername/prize-odds/internal/models"
)

// FieldPaths locates snapshot fields in a provider JSON document (gjson path syntax)
type FieldPaths struct {
	NumberOfPrizes string
	Decimals       string
	TotalSupply    string
}

// DefaultFieldPaths matches a flat {"numberOfPrizes", "decimals", "totalSupply"} document
func DefaultFieldPaths() FieldPaths {
	return FieldPaths{
		NumberOfPrizes: "numberOfPrizes",
		Decimals:       "decimals",
		TotalSupply:    "totalSupply",
	}
}

// FieldPathsFromConfig fills unset paths with the defaults
func FieldPathsFromConfig(cfg config.FieldsConfig) FieldPaths {
	paths := DefaultFieldPaths()
	if cfg.NumberOfPrizes != "" {
		paths.NumberOfPrizes = cfg.NumberOfPrizes
	}
	if cfg.Decimals != "" {
		paths.Decimals = cfg.Decimals
	}
	if cfg.TotalSupply != "" {
		paths.TotalSupply = cfg.TotalSupply
	}
	return paths
}

// ParseSnapshot extracts an unversioned snapshot from a provider JSON document.
// Integer fields may be JSON numbers or base-10 strings; totalSupply keeps full precision.
func ParseSnapshot(data []byte, poolID string, paths FieldPaths) (*models.OddsDataSnapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrInvalidData)
	}
	doc := gjson.ParseBytes(data)

	numberOfPrizes, err := smallIntField(doc, paths.NumberOfPrizes)
	if err != nil {
		return nil, err
	}
	decimals, err := smallIntField(doc, paths.Decimals)
	if err != nil {
		return nil, err
	}
	totalSupply, err := bigIntField(doc, paths.TotalSupply)
	if err != nil {
		return nil, err
	}

	snapshot := models.NewOddsDataSnapshot(poolID, numberOfPrizes, totalSupply, decimals)
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return snapshot, nil
}

func bigIntField(doc gjson.Result, path string) (*big.Int, error) {
	result := doc.Get(path)
	if !result.Exists() {
		return nil, fmt.Errorf("%w: field %q missing", ErrInvalidData, path)
	}

	var raw string
	switch result.Type {
	case gjson.String:
		raw = strings.TrimSpace(result.Str)
	case gjson.Number:
		raw = result.Raw
	default:
		return nil, fmt.Errorf("%w: field %q is not a number", ErrInvalidData, path)
	}

	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is not an integer: %s", ErrInvalidData, path, raw)
	}
	return v, nil
}

func smallIntField(doc gjson.Result, path string) (int, error) {
	v, err := bigIntField(doc, path)
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() || v.Int64() > math.MaxInt32 || v.Int64() < math.MinInt32 {
		return 0, fmt.Errorf("%w: field %q out of range", ErrInvalidData, path)
	}
	return int(v.Int64()), nil
}
