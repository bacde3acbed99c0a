package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BilalMir135/raydium-test-bot/internal/chain"
	"github.com/BilalMir135/raydium-test-bot/internal/config"
	"github.com/BilalMir135/raydium-test-bot/internal/mutate"
	"github.com/BilalMir135/raydium-test-bot/internal/position"
	"github.com/BilalMir135/raydium-test-bot/internal/rebalance"
	"github.com/BilalMir135/raydium-test-bot/internal/report"
	"github.com/BilalMir135/raydium-test-bot/internal/txn"
)

func runRebalance(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRebalance(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.WalletKey == "" {
		return fmt.Errorf("wallet key is required (REBALANCER_WALLET_KEY or config file)")
	}
	wallet, err := solana.PrivateKeyFromBase58(cfg.WalletKey)
	if err != nil {
		return fmt.Errorf("wallet key: %w", err)
	}
	poolAddress, err := solana.PublicKeyFromBase58(cfg.Pool)
	if err != nil {
		return fmt.Errorf("pool address: %w", err)
	}
	programID, err := config.ProgramID(cfg.Network)
	if err != nil {
		return err
	}

	var removeNftMint solana.PublicKey
	if cfg.RemoveNftMint != "" {
		removeNftMint, err = solana.PublicKeyFromBase58(cfg.RemoveNftMint)
		if err != nil {
			return fmt.Errorf("remove nft mint: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient := chain.NewClient(cfg.RPCURL, rpc.CommitmentType(cfg.Commitment))
	ticks := position.NewTickCache(chainClient)
	reader := position.NewReader(chainClient, ticks, logger)
	planner := rebalance.NewPlanner(decimal.NewFromFloat(cfg.Share), logger)
	orch := txn.New(chainClient, logger)
	mutator := mutate.NewMutator(chainClient, ticks, orch, wallet, cfg.Slippage, logger)

	var sink *report.JsonlSink
	if cfg.Report != "" {
		sink = report.NewJsonlSink(cfg.Report)
	}
	reporter := report.NewReporter(chainClient, sink, logger)

	executor := rebalance.NewExecutor(chainClient, reader, planner, mutator, orch, reporter, wallet, cfg.SwapLamports, logger)

	mode := rebalance.Sequential
	if cfg.Atomic {
		mode = rebalance.AtomicBundle
	}

	logger.Info("rebalance start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("pool", poolAddress.String()),
		zap.String("wallet", wallet.PublicKey().String()),
		zap.String("mode", mode.String()),
		zap.Float64("share", cfg.Share),
		zap.Float64("slippage", cfg.Slippage),
		zap.Uint64("swap_lamports", cfg.SwapLamports),
	)

	_, err = executor.Run(ctx, programID, poolAddress, removeNftMint, mode)
	return err
}
