package report

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/BilalMir135/raydium-test-bot/internal/model"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const solDecimals = 9

// balanceReader is the slice of the chain client the reporter needs.
type balanceReader interface {
	Balance(ctx context.Context, address solana.PublicKey) (uint64, error)
	TokenBalance(ctx context.Context, tokenAccount solana.PublicKey) (*big.Int, error)
}

// Reporter takes wallet snapshots around a mutation sequence and reconciles
// the deltas. It only reads; failures propagate to the caller unmodified.
type Reporter struct {
	chain balanceReader
	sink  *JsonlSink
	log   *zap.Logger
}

// NewReporter creates a reporter. sink may be nil to log only.
func NewReporter(c balanceReader, sink *JsonlSink, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{chain: c, sink: sink, log: logger}
}

// Snapshot reads the wallet's SOL and pool-asset balances. The two reads are
// issued concurrently and joined.
func (r *Reporter) Snapshot(ctx context.Context, owner, assetMint solana.PublicKey, assetDecimals uint8) (model.WalletSnapshot, error) {
	tokenAccount, _, err := solana.FindAssociatedTokenAddress(owner, assetMint)
	if err != nil {
		return model.WalletSnapshot{}, fmt.Errorf("derive asset token account: %w", err)
	}

	var (
		lamports uint64
		assetRaw *big.Int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lamports, err = r.chain.Balance(gctx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		assetRaw, err = r.chain.TokenBalance(gctx, tokenAccount)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.WalletSnapshot{}, fmt.Errorf("snapshot wallet %s: %w", owner, err)
	}

	snap := model.WalletSnapshot{
		TakenAt:  time.Now().UTC(),
		Lamports: lamports,
		SOL:      clmm.FromRaw(new(big.Int).SetUint64(lamports), solDecimals),
		AssetRaw: assetRaw,
		Asset:    clmm.FromRaw(assetRaw, assetDecimals),
	}
	r.log.Info("wallet snapshot",
		zap.String("owner", owner.String()),
		zap.String("sol", snap.SOL.String()),
		zap.String("asset", snap.Asset.String()),
	)
	return snap, nil
}

// PositionDeltas compares two position books, matching positions by NFT
// mint. Positions absent from the earlier book count entirely as additions.
func PositionDeltas(before, after *model.Book) []model.PositionDelta {
	prior := make(map[solana.PublicKey]*model.Position, len(before.Positions))
	for _, pos := range before.Positions {
		prior[pos.NftMint] = pos
	}

	totalLiquidity := decimal.Zero
	if after.InRangeLiquidity.Sign() > 0 {
		totalLiquidity = decimal.NewFromBigInt(after.InRangeLiquidity, 0)
	}

	deltas := make([]model.PositionDelta, 0, len(after.Positions))
	for _, pos := range after.Positions {
		delta := model.PositionDelta{
			NftMint: pos.NftMint.String(),
			Status:  pos.Status,
		}

		old, ok := prior[pos.NftMint]
		amountA, amountB := pos.AmountA, pos.AmountB
		if ok {
			amountA = amountA.Sub(old.AmountA)
			amountB = amountB.Sub(old.AmountB)
		}
		if amountA.Sign() >= 0 {
			delta.AmountAAdded = amountA
		} else {
			delta.AmountARemoved = amountA.Neg()
		}
		if amountB.Sign() >= 0 {
			delta.AmountBAdded = amountB
		} else {
			delta.AmountBRemoved = amountB.Neg()
		}

		if pos.Status == model.InRange && totalLiquidity.Sign() > 0 {
			delta.LiquidityShare = decimal.NewFromBigInt(pos.Liquidity, 0).Div(totalLiquidity)
		}
		deltas = append(deltas, delta)
	}
	return deltas
}

// Reconcile assembles the run report from the pre and post snapshots and
// books, logs it, and appends it to the sink when one is configured.
func (r *Reporter) Reconcile(pool solana.PublicKey, before, after model.WalletSnapshot, beforeBook, afterBook *model.Book, sigs []solana.Signature) (*model.RebalanceReport, error) {
	report := &model.RebalanceReport{
		Pool:        pool.String(),
		Before:      before,
		After:       after,
		SOLDelta:    after.SOL.Sub(before.SOL),
		AssetDelta:  after.Asset.Sub(before.Asset),
		CompletedAt: time.Now().UTC(),
	}
	if beforeBook != nil && afterBook != nil {
		report.Positions = PositionDeltas(beforeBook, afterBook)
	}
	for _, sig := range sigs {
		report.Signatures = append(report.Signatures, sig.String())
	}

	r.log.Info("rebalance reconciled",
		zap.String("pool", report.Pool),
		zap.String("sol_delta", report.SOLDelta.String()),
		zap.String("asset_delta", report.AssetDelta.String()),
		zap.Int("positions", len(report.Positions)),
	)

	if r.sink != nil {
		if err := r.sink.Append(report); err != nil {
			return report, fmt.Errorf("persist report: %w", err)
		}
	}
	return report, nil
}
