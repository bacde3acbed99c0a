package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "bot",
		Short:        "Raydium CLMM position rebalancer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	positionsCmd := &cobra.Command{
		Use:   "positions",
		Short: "List a pool's positions with amounts and pending fees",
		RunE:  runPositions,
	}

	positionsCmd.Flags().String("rpc", "", "Solana RPC URL")
	positionsCmd.Flags().String("pool", "", "CLMM pool address")
	positionsCmd.Flags().String("network", "mainnet", "cluster (mainnet, devnet)")
	positionsCmd.Flags().String("commitment", "confirmed", "commitment level")
	positionsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(positionsCmd)

	rebalanceCmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Open a narrow position, swap, and remove the old one",
		RunE:  runRebalance,
	}

	rebalanceCmd.Flags().String("rpc", "", "Solana RPC URL")
	rebalanceCmd.Flags().String("pool", "", "CLMM pool address")
	rebalanceCmd.Flags().String("network", "mainnet", "cluster (mainnet, devnet)")
	rebalanceCmd.Flags().String("commitment", "confirmed", "commitment level")
	rebalanceCmd.Flags().String("remove-nft-mint", "", "NFT mint of the position to retire (empty skips removal)")
	rebalanceCmd.Flags().Float64("share", 0.8, "target share of post-deposit per-tick depth, in (0, 1)")
	rebalanceCmd.Flags().Float64("slippage", 0.01, "slippage tolerance for deposits and swaps")
	rebalanceCmd.Flags().Uint64("swap-lamports", 1_000_000_000, "exact SOL input of the swap leg")
	rebalanceCmd.Flags().Bool("atomic", true, "bundle open/swap/remove into one transaction")
	rebalanceCmd.Flags().String("report", "./data/rebalance_report.jsonl", "reconciliation report JSONL path (empty disables)")
	rebalanceCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(rebalanceCmd)

	createPoolCmd := &cobra.Command{
		Use:   "create-pool",
		Short: "Create a CLMM pool for a mint pair",
		RunE:  runCreatePool,
	}

	createPoolCmd.Flags().String("rpc", "", "Solana RPC URL")
	createPoolCmd.Flags().String("network", "devnet", "cluster (mainnet, devnet)")
	createPoolCmd.Flags().String("commitment", "confirmed", "commitment level")
	createPoolCmd.Flags().String("amm-config", "", "fee tier amm config address")
	createPoolCmd.Flags().String("mint-a", "", "token A mint")
	createPoolCmd.Flags().String("mint-b", "", "token B mint")
	createPoolCmd.Flags().Uint("decimals-a", 9, "token A decimals")
	createPoolCmd.Flags().Uint("decimals-b", 9, "token B decimals")
	createPoolCmd.Flags().String("price", "", "initial price of token A in token B")
	createPoolCmd.Flags().Uint64("open-time", 0, "pool open time (unix seconds, 0 means immediately)")
	createPoolCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(createPoolCmd)

	createTokenCmd := &cobra.Command{
		Use:   "create-token",
		Short: "Create a devnet test token and mint its supply to the wallet",
		RunE:  runCreateToken,
	}

	createTokenCmd.Flags().String("rpc", "", "Solana RPC URL")
	createTokenCmd.Flags().String("commitment", "confirmed", "commitment level")
	createTokenCmd.Flags().Uint("decimals", 9, "mint decimals")
	createTokenCmd.Flags().Uint64("supply", 1_000_000_000_000_000, "raw supply minted to the wallet")
	createTokenCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(createTokenCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
