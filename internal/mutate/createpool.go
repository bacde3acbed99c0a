package mutate

import (
	"bytes"
	"context"
	"fmt"

	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreatePoolPrepared is a built pool-creation instruction set plus the
// derived pool address.
type CreatePoolPrepared struct {
	Prepared
	Pool solana.PublicKey
}

// CreatePoolIx builds the instruction creating a CLMM pool for the mint pair
// under the given fee tier, priced as token A in token B. Mints are ordered
// the way the program requires; a swapped pair inverts the price.
func (m *Mutator) CreatePoolIx(ctx context.Context, programID, ammConfig, mintA, mintB solana.PublicKey, decimalsA, decimalsB uint8, price decimal.Decimal, openTime uint64) (*CreatePoolPrepared, error) {
	if price.Sign() <= 0 {
		return nil, fmt.Errorf("create pool: price %s is not positive", price)
	}

	mint0, mint1 := mintA, mintB
	dec0, dec1 := decimalsA, decimalsB
	if bytes.Compare(mint0.Bytes(), mint1.Bytes()) > 0 {
		mint0, mint1 = mint1, mint0
		dec0, dec1 = dec1, dec0
		price = decimal.NewFromInt(1).Div(price)
	}

	pool, err := clmm.PoolAddress(programID, ammConfig, mint0, mint1)
	if err != nil {
		return nil, fmt.Errorf("derive pool: %w", err)
	}
	vault0, err := clmm.PoolVaultAddress(programID, pool, mint0)
	if err != nil {
		return nil, fmt.Errorf("derive vault 0: %w", err)
	}
	vault1, err := clmm.PoolVaultAddress(programID, pool, mint1)
	if err != nil {
		return nil, fmt.Errorf("derive vault 1: %w", err)
	}
	observation, err := clmm.ObservationAddress(programID, pool)
	if err != nil {
		return nil, fmt.Errorf("derive observation: %w", err)
	}
	bitmap, err := clmm.TickArrayBitmapAddress(programID, pool)
	if err != nil {
		return nil, fmt.Errorf("derive tick array bitmap: %w", err)
	}

	sqrtPrice := clmm.SqrtPriceX64FromPrice(price, dec0, dec1)

	ix := clmm.NewCreatePoolInstruction(
		programID,
		clmm.CreatePoolAccounts{
			Creator:         m.wallet.PublicKey(),
			AmmConfig:       ammConfig,
			Pool:            pool,
			Mint0:           mint0,
			Mint1:           mint1,
			Vault0:          vault0,
			Vault1:          vault1,
			Observation:     observation,
			TickArrayBitmap: bitmap,
		},
		sqrtPrice, openTime,
	)

	m.log.Info("create pool prepared",
		zap.String("pool", pool.String()),
		zap.String("mint_0", mint0.String()),
		zap.String("mint_1", mint1.String()),
		zap.String("price", price.String()),
		zap.String("sqrt_price_x64", sqrtPrice.String()),
	)

	return &CreatePoolPrepared{
		Prepared: Prepared{Instructions: []solana.Instruction{ix}},
		Pool:     pool,
	}, nil
}

// CreatePool builds, submits, and confirms a pool creation.
func (m *Mutator) CreatePool(ctx context.Context, programID, ammConfig, mintA, mintB solana.PublicKey, decimalsA, decimalsB uint8, price decimal.Decimal, openTime uint64) (solana.Signature, solana.PublicKey, error) {
	prepared, err := m.CreatePoolIx(ctx, programID, ammConfig, mintA, mintB, decimalsA, decimalsB, price, openTime)
	if err != nil {
		return solana.Signature{}, solana.PublicKey{}, err
	}
	sig, err := m.orch.Execute(ctx, prepared.Instructions, m.wallet)
	if err != nil {
		return sig, prepared.Pool, fmt.Errorf("create pool: %w", err)
	}
	return sig, prepared.Pool, nil
}
