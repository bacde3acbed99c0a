package mutate

import (
	"context"
	"fmt"

	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/BilalMir135/raydium-test-bot/internal/model"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OpenPrepared is a built open-position instruction set together with the
// freshly generated position NFT mint and the sized deposit.
type OpenPrepared struct {
	Prepared
	NftMint solana.PublicKey
	Deposit *clmm.DepositAmounts
}

// OpenPositionIx builds the instruction set opening a position over the
// range with a single-sided token A deposit. The position NFT mint is a new
// keypair carried as an extra signer.
func (m *Mutator) OpenPositionIx(ctx context.Context, pool *clmm.PoolState, rng model.Range, amountA decimal.Decimal) (*OpenPrepared, error) {
	rawA := clmm.ToRaw(amountA, pool.MintDecimalsA)
	if rawA.Sign() <= 0 {
		return nil, fmt.Errorf("open position: deposit amount %s is not positive", amountA)
	}

	deposit, err := clmm.LiquidityFromAmountA(pool, rng.TickLower, rng.TickUpper, rawA, m.slippage)
	if err != nil {
		return nil, fmt.Errorf("size deposit: %w", err)
	}
	if !deposit.MaxAmountA.IsUint64() || !deposit.MaxAmountB.IsUint64() {
		return nil, fmt.Errorf("deposit amounts overflow u64: a=%s b=%s", deposit.MaxAmountA, deposit.MaxAmountB)
	}

	nftKeypair, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate position nft mint: %w", err)
	}
	nftMint := nftKeypair.PublicKey()
	owner := m.wallet.PublicKey()

	nftAccount, _, err := solana.FindAssociatedTokenAddress(owner, nftMint)
	if err != nil {
		return nil, fmt.Errorf("derive nft token account: %w", err)
	}
	metadata, err := clmm.MetadataAddress(nftMint)
	if err != nil {
		return nil, fmt.Errorf("derive metadata: %w", err)
	}
	personalPosition, err := clmm.PersonalPositionAddress(pool.ProgramID, nftMint)
	if err != nil {
		return nil, fmt.Errorf("derive personal position: %w", err)
	}
	protocolPosition, err := clmm.ProtocolPositionAddress(pool.ProgramID, pool.Address, rng.TickLower, rng.TickUpper)
	if err != nil {
		return nil, fmt.Errorf("derive protocol position: %w", err)
	}

	lowerStart := clmm.TickArrayStartIndex(rng.TickLower, pool.TickSpacing)
	upperStart := clmm.TickArrayStartIndex(rng.TickUpper, pool.TickSpacing)
	tickArrayLower, err := clmm.TickArrayAddress(pool.ProgramID, pool.Address, lowerStart)
	if err != nil {
		return nil, fmt.Errorf("derive lower tick array: %w", err)
	}
	tickArrayUpper, err := clmm.TickArrayAddress(pool.ProgramID, pool.Address, upperStart)
	if err != nil {
		return nil, fmt.Errorf("derive upper tick array: %w", err)
	}

	tokenAccountA, _, err := solana.FindAssociatedTokenAddress(owner, pool.MintA)
	if err != nil {
		return nil, fmt.Errorf("derive token account a: %w", err)
	}
	tokenAccountB, _, err := solana.FindAssociatedTokenAddress(owner, pool.MintB)
	if err != nil {
		return nil, fmt.Errorf("derive token account b: %w", err)
	}

	ix := clmm.NewOpenPositionInstruction(
		pool.ProgramID,
		clmm.OpenPositionAccounts{
			Payer:            owner,
			NftOwner:         owner,
			NftMint:          nftMint,
			NftAccount:       nftAccount,
			Metadata:         metadata,
			Pool:             pool.Address,
			ProtocolPosition: protocolPosition,
			TickArrayLower:   tickArrayLower,
			TickArrayUpper:   tickArrayUpper,
			PersonalPosition: personalPosition,
			TokenAccountA:    tokenAccountA,
			TokenAccountB:    tokenAccountB,
			VaultA:           pool.VaultA,
			VaultB:           pool.VaultB,
			MintA:            pool.MintA,
			MintB:            pool.MintB,
		},
		rng.TickLower, rng.TickUpper, lowerStart, upperStart,
		deposit.Liquidity,
		deposit.MaxAmountA.Uint64(), deposit.MaxAmountB.Uint64(),
	)

	m.log.Info("open position prepared",
		zap.String("nft_mint", nftMint.String()),
		zap.Int32("tick_lower", rng.TickLower),
		zap.Int32("tick_upper", rng.TickUpper),
		zap.String("liquidity", deposit.Liquidity.String()),
		zap.String("max_amount_a", deposit.MaxAmountA.String()),
		zap.String("max_amount_b", deposit.MaxAmountB.String()),
	)

	return &OpenPrepared{
		Prepared: Prepared{
			Instructions: []solana.Instruction{ix},
			Signers:      []solana.PrivateKey{nftKeypair},
		},
		NftMint: nftMint,
		Deposit: deposit,
	}, nil
}

// OpenPosition builds, submits, and confirms an open-position transaction.
func (m *Mutator) OpenPosition(ctx context.Context, pool *clmm.PoolState, rng model.Range, amountA decimal.Decimal) (solana.Signature, *OpenPrepared, error) {
	prepared, err := m.OpenPositionIx(ctx, pool, rng, amountA)
	if err != nil {
		return solana.Signature{}, nil, err
	}
	sig, err := m.orch.Execute(ctx, prepared.Instructions, m.wallet, prepared.Signers...)
	if err != nil {
		return sig, prepared, fmt.Errorf("open position: %w", err)
	}
	return sig, prepared, nil
}
