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
	"github.com/BilalMir135/raydium-test-bot/internal/position"
)

func runPositions(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPositions(cfgFile, cmd.Flags())
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
	poolAddress, err := solana.PublicKeyFromBase58(cfg.Pool)
	if err != nil {
		return fmt.Errorf("pool address: %w", err)
	}
	programID, err := config.ProgramID(cfg.Network)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient := chain.NewClient(cfg.RPCURL, rpc.CommitmentType(cfg.Commitment))
	reader := position.NewReader(chainClient, position.NewTickCache(chainClient), logger)

	logger.Info("positions start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("pool", poolAddress.String()),
		zap.String("network", cfg.Network),
	)

	pool, err := reader.Pool(ctx, programID, poolAddress)
	if err != nil {
		return err
	}
	_, err = reader.Positions(ctx, pool)
	return err
}
