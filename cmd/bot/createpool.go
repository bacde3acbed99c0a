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
	"github.com/BilalMir135/raydium-test-bot/internal/txn"
)

func runCreatePool(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCreatePool(cfgFile, cmd.Flags())
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
	programID, err := config.ProgramID(cfg.Network)
	if err != nil {
		return err
	}
	ammConfig, err := solana.PublicKeyFromBase58(cfg.AmmConfig)
	if err != nil {
		return fmt.Errorf("amm config: %w", err)
	}
	mintA, err := solana.PublicKeyFromBase58(cfg.MintA)
	if err != nil {
		return fmt.Errorf("mint a: %w", err)
	}
	mintB, err := solana.PublicKeyFromBase58(cfg.MintB)
	if err != nil {
		return fmt.Errorf("mint b: %w", err)
	}
	price, err := decimal.NewFromString(cfg.Price)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient := chain.NewClient(cfg.RPCURL, rpc.CommitmentType(cfg.Commitment))
	orch := txn.New(chainClient, logger)
	mutator := mutate.NewMutator(chainClient, position.NewTickCache(chainClient), orch, wallet, 0, logger)

	sig, pool, err := mutator.CreatePool(ctx, programID, ammConfig, mintA, mintB, cfg.DecimalsA, cfg.DecimalsB, price, cfg.OpenTime)
	if err != nil {
		return err
	}

	logger.Info("pool created",
		zap.String("pool", pool.String()),
		zap.String("signature", sig.String()),
	)
	return nil
}
