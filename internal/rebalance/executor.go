package rebalance

import (
	"context"
	"fmt"

	"github.com/BilalMir135/raydium-test-bot/internal/chain"
	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/BilalMir135/raydium-test-bot/internal/model"
	"github.com/BilalMir135/raydium-test-bot/internal/mutate"
	"github.com/BilalMir135/raydium-test-bot/internal/position"
	"github.com/BilalMir135/raydium-test-bot/internal/report"
	"github.com/BilalMir135/raydium-test-bot/internal/txn"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Atomicity selects how the open/swap/remove sequence reaches the chain.
type Atomicity int

const (
	// AtomicBundle builds all three instruction sets up front and submits
	// them as one transaction; any build failure aborts before submission.
	AtomicBundle Atomicity = iota
	// Sequential submits and confirms each step on its own. A mid-sequence
	// failure is terminal and can leave the freshly opened position behind.
	Sequential
)

func (a Atomicity) String() string {
	if a == AtomicBundle {
		return "atomic"
	}
	return "sequential"
}

// Executor runs a full rebalance: read the book, plan the replacement
// range, open/swap/remove, and reconcile the wallet afterwards.
type Executor struct {
	chain    *chain.Client
	reader   *position.Reader
	planner  *Planner
	mutator  *mutate.Mutator
	orch     *txn.Orchestrator
	reporter *report.Reporter

	wallet       solana.PrivateKey
	swapLamports uint64
	log          *zap.Logger
}

// NewExecutor wires the rebalance collaborators together. swapLamports is
// the exact SOL input of the swap leg.
func NewExecutor(
	c *chain.Client,
	reader *position.Reader,
	planner *Planner,
	mutator *mutate.Mutator,
	orch *txn.Orchestrator,
	reporter *report.Reporter,
	wallet solana.PrivateKey,
	swapLamports uint64,
	logger *zap.Logger,
) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		chain:        c,
		reader:       reader,
		planner:      planner,
		mutator:      mutator,
		orch:         orch,
		reporter:     reporter,
		wallet:       wallet,
		swapLamports: swapLamports,
		log:          logger,
	}
}

// assetMint returns the non-SOL side of the pool and its decimals.
func assetMint(pool *clmm.PoolState) (solana.PublicKey, uint8) {
	if pool.MintA.Equals(clmm.WSOLMint) {
		return pool.MintB, pool.MintDecimalsB
	}
	return pool.MintA, pool.MintDecimalsA
}

// Run executes one rebalance pass against the pool. removeNftMint names the
// position to retire; a zero mint skips the removal leg.
func (e *Executor) Run(ctx context.Context, programID, poolAddress, removeNftMint solana.PublicKey, mode Atomicity) (*model.RebalanceReport, error) {
	if epoch, err := e.chain.EpochInfo(ctx); err != nil {
		e.log.Warn("epoch info unavailable", zap.Error(err))
	} else {
		e.log.Info("epoch",
			zap.Uint64("epoch", epoch.Epoch),
			zap.Uint64("slot", epoch.AbsoluteSlot),
		)
	}

	pool, err := e.reader.Pool(ctx, programID, poolAddress)
	if err != nil {
		return nil, err
	}
	beforeBook, err := e.reader.Positions(ctx, pool)
	if err != nil {
		return nil, err
	}

	mint, decimals := assetMint(pool)
	owner := e.wallet.PublicKey()
	before, err := e.reporter.Snapshot(ctx, owner, mint, decimals)
	if err != nil {
		return nil, err
	}

	plan, err := e.planner.Plan(pool, beforeBook)
	if err != nil {
		return nil, err
	}

	// The swap leg sells SOL for the pool asset to fund future deposits.
	swapAToB := pool.MintA.Equals(clmm.WSOLMint)

	sigs, err := e.execute(ctx, pool, plan, swapAToB, removeNftMint, mode)
	if err != nil {
		return nil, err
	}

	// Re-read through a fresh tick cache so the post state reflects the
	// mutations instead of the memoized pre-state arrays.
	afterReader := position.NewReader(e.chain, position.NewTickCache(e.chain), e.log)
	afterBook, err := afterReader.Positions(ctx, pool)
	if err != nil {
		return nil, err
	}
	after, err := e.reporter.Snapshot(ctx, owner, mint, decimals)
	if err != nil {
		return nil, err
	}

	return e.reporter.Reconcile(pool.Address, before, after, beforeBook, afterBook, sigs)
}

func (e *Executor) execute(ctx context.Context, pool *clmm.PoolState, plan *Plan, swapAToB bool, removeNftMint solana.PublicKey, mode Atomicity) ([]solana.Signature, error) {
	e.log.Info("executing rebalance", zap.String("mode", mode.String()))

	switch mode {
	case AtomicBundle:
		open, err := e.mutator.OpenPositionIx(ctx, pool, plan.Range, plan.DepositA)
		if err != nil {
			return nil, err
		}
		swap, err := e.mutator.SwapIx(ctx, pool, swapAToB, e.swapLamports)
		if err != nil {
			return nil, err
		}
		sets := []*mutate.Prepared{&open.Prepared, &swap.Prepared}
		if !removeNftMint.IsZero() {
			remove, err := e.mutator.RemovePositionIx(ctx, pool, removeNftMint, nil)
			if err != nil {
				return nil, err
			}
			sets = append(sets, remove)
		}

		combined := mutate.Concat(sets...)
		sig, err := e.orch.Execute(ctx, combined.Instructions, e.wallet, combined.Signers...)
		if err != nil {
			return nil, fmt.Errorf("atomic rebalance: %w", err)
		}
		return []solana.Signature{sig}, nil

	case Sequential:
		var sigs []solana.Signature

		sig, open, err := e.mutator.OpenPosition(ctx, pool, plan.Range, plan.DepositA)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
		e.log.Info("position opened", zap.String("nft_mint", open.NftMint.String()))

		sig, _, err = e.mutator.Swap(ctx, pool, swapAToB, e.swapLamports)
		if err != nil {
			e.log.Warn("swap failed after open; new position left in place",
				zap.String("nft_mint", open.NftMint.String()))
			return nil, err
		}
		sigs = append(sigs, sig)

		if !removeNftMint.IsZero() {
			sig, err = e.mutator.RemovePosition(ctx, pool, removeNftMint, nil)
			if err != nil {
				e.log.Warn("remove failed after open and swap",
					zap.String("remove_nft_mint", removeNftMint.String()))
				return nil, err
			}
			sigs = append(sigs, sig)
		}
		return sigs, nil

	default:
		return nil, fmt.Errorf("unknown atomicity mode %d", mode)
	}
}
