package mutate

import (
	"context"
	"errors"
	"fmt"

	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/BilalMir135/raydium-test-bot/internal/position"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// maxSwapTickArrays bounds how far ahead of the current price tick arrays
// are gathered before quoting.
const maxSwapTickArrays = 5

// gatherTickArrays collects the consecutive tick arrays a swap can traverse,
// starting from the array covering the current tick and walking in the swap
// direction. The current array must exist; later arrays may be absent when
// no tick in their span was ever initialized.
func (m *Mutator) gatherTickArrays(ctx context.Context, pool *clmm.PoolState, aToB bool) ([]clmm.KeyedTickArray, error) {
	ticksPerArray := int32(pool.TickSpacing) * clmm.TickArraySize
	start := clmm.TickArrayStartIndex(pool.TickCurrent, pool.TickSpacing)

	arrays := make([]clmm.KeyedTickArray, 0, maxSwapTickArrays)
	for i := int32(0); i < maxSwapTickArrays; i++ {
		idx := start + i*ticksPerArray
		if aToB {
			idx = start - i*ticksPerArray
		}

		address, err := clmm.TickArrayAddress(pool.ProgramID, pool.Address, idx)
		if err != nil {
			return nil, fmt.Errorf("derive tick array at %d: %w", idx, err)
		}

		arr, err := m.ticks.Array(ctx, address)
		if err != nil {
			if errors.Is(err, position.ErrTickArrayNotFound) {
				if i == 0 {
					return nil, fmt.Errorf("current tick array at %d: %w", idx, err)
				}
				continue
			}
			return nil, err
		}
		arrays = append(arrays, clmm.KeyedTickArray{Address: address, State: arr})
	}
	return arrays, nil
}

// SwapPrepared is a built swap instruction set with its quote.
type SwapPrepared struct {
	Prepared
	Quote *clmm.SwapQuote
}

// SwapIx builds an exact-input swap instruction. aToB selects the direction:
// true sells token A for token B, false sells token B for token A.
func (m *Mutator) SwapIx(ctx context.Context, pool *clmm.PoolState, aToB bool, amountIn uint64) (*SwapPrepared, error) {
	cfgAcc, err := m.chain.GetAccount(ctx, pool.AmmConfig)
	if err != nil {
		return nil, fmt.Errorf("fetch amm config %s: %w", pool.AmmConfig, err)
	}
	cfg, err := clmm.DecodeAmmConfig(cfgAcc.Data)
	if err != nil {
		return nil, fmt.Errorf("decode amm config %s: %w", pool.AmmConfig, err)
	}

	arrays, err := m.gatherTickArrays(ctx, pool, aToB)
	if err != nil {
		return nil, err
	}

	quote, err := clmm.ComputeSwapQuote(pool, cfg, arrays, aToB, amountIn, m.slippage)
	if err != nil {
		return nil, fmt.Errorf("quote swap: %w", err)
	}

	inputMint, outputMint := pool.MintA, pool.MintB
	inputVault, outputVault := pool.VaultA, pool.VaultB
	sqrtPriceLimit := clmm.MinSqrtPriceX64
	if !aToB {
		inputMint, outputMint = pool.MintB, pool.MintA
		inputVault, outputVault = pool.VaultB, pool.VaultA
		sqrtPriceLimit = clmm.MaxSqrtPriceX64
	}

	owner := m.wallet.PublicKey()
	inputAccount, _, err := solana.FindAssociatedTokenAddress(owner, inputMint)
	if err != nil {
		return nil, fmt.Errorf("derive input token account: %w", err)
	}
	outputAccount, _, err := solana.FindAssociatedTokenAddress(owner, outputMint)
	if err != nil {
		return nil, fmt.Errorf("derive output token account: %w", err)
	}

	ix := clmm.NewSwapInstruction(
		pool.ProgramID,
		clmm.SwapAccounts{
			Payer:         owner,
			AmmConfig:     pool.AmmConfig,
			Pool:          pool.Address,
			InputAccount:  inputAccount,
			OutputAccount: outputAccount,
			InputVault:    inputVault,
			OutputVault:   outputVault,
			Observation:   pool.ObservationKey,
			InputMint:     inputMint,
			OutputMint:    outputMint,
		},
		quote.AmountIn, quote.MinAmountOut,
		sqrtPriceLimit,
		true,
		quote.TickArrays,
	)

	m.log.Info("swap prepared",
		zap.Bool("a_to_b", aToB),
		zap.Uint64("amount_in", quote.AmountIn),
		zap.Uint64("expected_out", quote.ExpectedAmountOut),
		zap.Uint64("min_out", quote.MinAmountOut),
		zap.Int("tick_arrays", len(quote.TickArrays)),
	)

	return &SwapPrepared{
		Prepared: Prepared{Instructions: []solana.Instruction{ix}},
		Quote:    quote,
	}, nil
}

// Swap builds, submits, and confirms an exact-input swap.
func (m *Mutator) Swap(ctx context.Context, pool *clmm.PoolState, aToB bool, amountIn uint64) (solana.Signature, *SwapPrepared, error) {
	prepared, err := m.SwapIx(ctx, pool, aToB, amountIn)
	if err != nil {
		return solana.Signature{}, nil, err
	}
	sig, err := m.orch.Execute(ctx, prepared.Instructions, m.wallet)
	if err != nil {
		return sig, prepared, fmt.Errorf("swap: %w", err)
	}
	return sig, prepared, nil
}
