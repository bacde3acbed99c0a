package mutate

import (
	"context"
	"fmt"
	"math/big"

	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// lookupPosition resolves a position record by its NFT mint through a
// program-accounts scan.
func (m *Mutator) lookupPosition(ctx context.Context, programID, nftMint solana.PublicKey) (*clmm.PersonalPosition, error) {
	accounts, err := m.chain.ProgramAccounts(ctx,
		programID,
		clmm.PersonalPositionSize,
		clmm.PersonalPositionNftMintOffset,
		nftMint.Bytes(),
	)
	if err != nil {
		return nil, fmt.Errorf("lookup position by mint %s: %w", nftMint, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("mint %s: %w", nftMint, ErrPositionNotFound)
	}
	return clmm.DecodePersonalPosition(accounts[0].Data)
}

// RemovePositionIx builds the instruction set withdrawing a position's full
// liquidity and closing its record. The target is the explicitly supplied
// state when given, otherwise it is looked up by NFT mint; failing both is
// ErrPositionNotFound.
func (m *Mutator) RemovePositionIx(ctx context.Context, pool *clmm.PoolState, nftMint solana.PublicKey, explicit *clmm.PersonalPosition) (*Prepared, error) {
	record := explicit
	if record == nil {
		var err error
		record, err = m.lookupPosition(ctx, pool.ProgramID, nftMint)
		if err != nil {
			return nil, err
		}
	}

	owner := m.wallet.PublicKey()
	nftAccount, _, err := solana.FindAssociatedTokenAddress(owner, record.NftMint)
	if err != nil {
		return nil, fmt.Errorf("derive nft token account: %w", err)
	}
	personalPosition, err := clmm.PersonalPositionAddress(pool.ProgramID, record.NftMint)
	if err != nil {
		return nil, fmt.Errorf("derive personal position: %w", err)
	}
	protocolPosition, err := clmm.ProtocolPositionAddress(pool.ProgramID, pool.Address, record.TickLower, record.TickUpper)
	if err != nil {
		return nil, fmt.Errorf("derive protocol position: %w", err)
	}
	tickArrayLower, err := clmm.TickArrayAddressByTick(pool.ProgramID, pool.Address, record.TickLower, pool.TickSpacing)
	if err != nil {
		return nil, fmt.Errorf("derive lower tick array: %w", err)
	}
	tickArrayUpper, err := clmm.TickArrayAddressByTick(pool.ProgramID, pool.Address, record.TickUpper, pool.TickSpacing)
	if err != nil {
		return nil, fmt.Errorf("derive upper tick array: %w", err)
	}
	recipientA, _, err := solana.FindAssociatedTokenAddress(owner, pool.MintA)
	if err != nil {
		return nil, fmt.Errorf("derive recipient a: %w", err)
	}
	recipientB, _, err := solana.FindAssociatedTokenAddress(owner, pool.MintB)
	if err != nil {
		return nil, fmt.Errorf("derive recipient b: %w", err)
	}

	liquidity := record.Liquidity.Big()
	minA, minB := removeMinAmounts(pool, record, m.slippage)

	decrease := clmm.NewDecreaseLiquidityInstruction(
		pool.ProgramID,
		clmm.DecreaseLiquidityAccounts{
			NftOwner:         owner,
			NftAccount:       nftAccount,
			PersonalPosition: personalPosition,
			Pool:             pool.Address,
			ProtocolPosition: protocolPosition,
			VaultA:           pool.VaultA,
			VaultB:           pool.VaultB,
			TickArrayLower:   tickArrayLower,
			TickArrayUpper:   tickArrayUpper,
			RecipientA:       recipientA,
			RecipientB:       recipientB,
			MintA:            pool.MintA,
			MintB:            pool.MintB,
		},
		liquidity, minA, minB,
	)
	closeIx := clmm.NewClosePositionInstruction(pool.ProgramID, owner, record.NftMint, nftAccount, personalPosition)

	m.log.Info("remove position prepared",
		zap.String("nft_mint", record.NftMint.String()),
		zap.String("liquidity", liquidity.String()),
		zap.Uint64("min_amount_a", minA),
		zap.Uint64("min_amount_b", minB),
	)

	return &Prepared{Instructions: []solana.Instruction{decrease, closeIx}}, nil
}

// removeMinAmounts bounds the withdrawal by the expected amounts shrunk by
// the slippage tolerance.
func removeMinAmounts(pool *clmm.PoolState, record *clmm.PersonalPosition, slippage float64) (uint64, uint64) {
	sqrtLower := clmm.SqrtPriceX64FromTick(record.TickLower)
	sqrtUpper := clmm.SqrtPriceX64FromTick(record.TickUpper)
	amountA, amountB := clmm.AmountsFromLiquidity(pool.SqrtPriceX64.Big(), sqrtLower, sqrtUpper, record.Liquidity.Big(), false)

	scale := big.NewInt(int64((1 - slippage) * 1e6))
	denom := big.NewInt(1e6)
	minA := new(big.Int).Mul(amountA, scale)
	minA.Quo(minA, denom)
	minB := new(big.Int).Mul(amountB, scale)
	minB.Quo(minB, denom)

	if !minA.IsUint64() || !minB.IsUint64() {
		return 0, 0
	}
	return minA.Uint64(), minB.Uint64()
}

// RemovePosition builds, submits, and confirms a full-liquidity removal.
func (m *Mutator) RemovePosition(ctx context.Context, pool *clmm.PoolState, nftMint solana.PublicKey, explicit *clmm.PersonalPosition) (solana.Signature, error) {
	prepared, err := m.RemovePositionIx(ctx, pool, nftMint, explicit)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := m.orch.Execute(ctx, prepared.Instructions, m.wallet)
	if err != nil {
		return sig, fmt.Errorf("remove position: %w", err)
	}
	return sig, nil
}
