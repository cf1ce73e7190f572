package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/yourusername/prize-odds/internal/datasource"
	"github.com/yourusername/prize-odds/internal/display"
	"github.com/yourusername/prize-odds/internal/logger"
	"github.com/yourusername/prize-odds/internal/models"
	"github.com/yourusername/prize-odds/internal/odds"
)

type estimateOptions struct {
	amount          string
	amountFormatted string
	supply          string
	prizes          int
	decimals        int
	action          string
	change          string
	changeFormatted string
	pool            string
	locale          string
	jsonOutput      bool
}

func newEstimateCmd() *cobra.Command {
	opts := &estimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate odds from pool statistics",
		Long: `Estimates odds from pool statistics given as flags, or fetched once from the
configured provider when --pool is set.`,
		Example: `  prize-odds estimate --amount 100 --supply 10000 --prizes 4 --decimals 18
  prize-odds estimate --pool usdc-mainnet --amount-formatted 250 --action deposit --change-formatted 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.amount, "amount", "", "User balance in smallest token units")
	flags.StringVar(&opts.amountFormatted, "amount-formatted", "", "User balance in whole tokens, e.g. 12.5")
	flags.StringVar(&opts.supply, "supply", "", "Pool total supply in smallest token units")
	flags.IntVar(&opts.prizes, "prizes", 0, "Number of prizes in the draw")
	flags.IntVar(&opts.decimals, "decimals", 18, "Token decimals")
	flags.StringVar(&opts.action, "action", "none", "Projected action: none, deposit or withdraw")
	flags.StringVar(&opts.change, "change", "", "Deposit or withdrawal amount in smallest token units")
	flags.StringVar(&opts.changeFormatted, "change-formatted", "", "Deposit or withdrawal amount in whole tokens")
	flags.StringVar(&opts.pool, "pool", "", "Fetch pool statistics for this configured pool instead of using flags")
	flags.StringVar(&opts.locale, "locale", "", "Locale for the rendered odds")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print JSON instead of text")
	cmd.MarkFlagsMutuallyExclusive("amount", "amount-formatted")
	cmd.MarkFlagsMutuallyExclusive("change", "change-formatted")
	cmd.MarkFlagsMutuallyExclusive("pool", "supply")

	return cmd
}

func runEstimate(cmd *cobra.Command, opts *estimateOptions) error {
	snapshot, err := estimateSnapshot(cmd, opts)
	if err != nil {
		return err
	}

	action, err := models.ParseEstimateAction(opts.action)
	if err != nil {
		return err
	}
	amount, err := flagAmount(opts.amount, opts.amountFormatted, snapshot.Decimals)
	if err != nil {
		return err
	}
	if amount == nil {
		return fmt.Errorf("one of --amount or --amount-formatted is required")
	}
	change, err := flagAmount(opts.change, opts.changeFormatted, snapshot.Decimals)
	if err != nil {
		return err
	}

	result, err := odds.EstimateOdds(amount, snapshot.TotalSupply, snapshot.NumberOfPrizes, snapshot.Decimals, action, change)
	if err != nil {
		return err
	}

	rendered := display.NewFormatter("", opts.locale).Format(models.Estimation{IsFetched: true, Data: &result})
	out := cmd.OutOrStdout()

	if opts.jsonOutput {
		var oneOverOdds *float64
		if result.HasOdds() {
			oneOverOdds = &result.OneOverOdds
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"pool_id":       snapshot.PoolID,
			"action":        action,
			"odds":          result.Odds,
			"one_over_odds": oneOverOdds,
			"display":       rendered,
		})
	}

	fmt.Fprintf(out, "%s: %s (odds %.8f)\n", rendered.Label, rendered.Text, result.Odds)
	return nil
}

// estimateSnapshot builds the pool statistics from flags or fetches them from the provider
func estimateSnapshot(cmd *cobra.Command, opts *estimateOptions) (*models.OddsDataSnapshot, error) {
	if opts.pool == "" {
		if opts.supply == "" {
			return nil, fmt.Errorf("--supply is required unless --pool is set")
		}
		supply, err := models.ParseAmount(opts.supply)
		if err != nil {
			return nil, err
		}
		snapshot := models.NewOddsDataSnapshot("cli", opts.prizes, supply.Unformatted, opts.decimals)
		if err := snapshot.Validate(); err != nil {
			return nil, err
		}
		return snapshot, nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	factory := datasource.NewFactory(cfg, appLog)
	client := factory.NewHTTPClient()
	defer client.Close()

	fetcher, err := factory.NewFetcher(client)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ProviderTimeout()*2)
	defer cancel()

	snapshot, err := factory.NewStore(fetcher).Refresh(ctx, opts.pool)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func flagAmount(raw, formatted string, decimals int) (*big.Int, error) {
	switch {
	case raw != "":
		amount, err := models.ParseAmount(raw)
		if err != nil {
			return nil, err
		}
		return amount.Unformatted, nil
	case formatted != "":
		amount, err := models.ParseFormattedAmount(formatted, decimals)
		if err != nil {
			return nil, err
		}
		return amount.Unformatted, nil
	default:
		return nil, nil
	}
}
