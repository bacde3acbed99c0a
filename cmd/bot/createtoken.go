package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BilalMir135/raydium-test-bot/internal/chain"
	"github.com/BilalMir135/raydium-test-bot/internal/config"
	"github.com/BilalMir135/raydium-test-bot/internal/mutate"
	"github.com/BilalMir135/raydium-test-bot/internal/position"
	"github.com/BilalMir135/raydium-test-bot/internal/txn"
)

func runCreateToken(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCreateToken(cfgFile, cmd.Flags())
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient := chain.NewClient(cfg.RPCURL, rpc.CommitmentType(cfg.Commitment))
	orch := txn.New(chainClient, logger)
	mutator := mutate.NewMutator(chainClient, position.NewTickCache(chainClient), orch, wallet, 0, logger)

	sig, mint, err := mutator.CreateToken(ctx, cfg.Decimals, cfg.Supply)
	if err != nil {
		return err
	}

	logger.Info("token created",
		zap.String("mint", mint.String()),
		zap.String("signature", sig.String()),
	)
	return nil
}
