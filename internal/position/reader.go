package position

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/BilalMir135/raydium-test-bot/internal/chain"
	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/BilalMir135/raydium-test-bot/internal/model"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// chainReader is the slice of the chain client the reader needs.
type chainReader interface {
	GetAccount(ctx context.Context, address solana.PublicKey) (*chain.Account, error)
	ProgramAccounts(ctx context.Context, program solana.PublicKey, dataSize uint64, memcmpOffset uint64, memcmpBytes []byte) ([]chain.KeyedAccount, error)
	TokenLargestAccounts(ctx context.Context, mint solana.PublicKey) ([]chain.TokenHolder, error)
}

// Reader enumerates a pool's liquidity positions and derives their
// analytics: range status, token amounts, pending fees, and holders.
type Reader struct {
	chain chainReader
	ticks *TickCache
	log   *zap.Logger
}

// NewReader creates a position reader on top of the chain client and a tick
// cache shared with the rest of the run.
func NewReader(c chainReader, ticks *TickCache, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{chain: c, ticks: ticks, log: logger}
}

// Pool fetches and decodes the pool account. An absent account is fatal for
// the whole run and maps to ErrPoolNotFound.
func (r *Reader) Pool(ctx context.Context, programID, address solana.PublicKey) (*clmm.PoolState, error) {
	acc, err := r.chain.GetAccount(ctx, address)
	if err != nil {
		if errors.Is(err, chain.ErrAccountNotFound) {
			return nil, fmt.Errorf("pool %s: %w", address, ErrPoolNotFound)
		}
		return nil, fmt.Errorf("fetch pool %s: %w", address, err)
	}

	pool, err := clmm.DecodePoolState(address, programID, acc.Data)
	if err != nil {
		return nil, fmt.Errorf("decode pool %s: %w", address, err)
	}

	r.log.Info("pool loaded",
		zap.String("pool", address.String()),
		zap.Int32("tick_current", pool.TickCurrent),
		zap.Uint16("tick_spacing", pool.TickSpacing),
		zap.String("sqrt_price_x64", pool.SqrtPriceX64.String()),
	)
	return pool, nil
}

// Positions enumerates every position record of the pool and derives the
// analytics for each. A single position that fails to decode aborts the
// whole pass rather than producing a silently incomplete book.
func (r *Reader) Positions(ctx context.Context, pool *clmm.PoolState) (*model.Book, error) {
	accounts, err := r.chain.ProgramAccounts(ctx,
		pool.ProgramID,
		clmm.PersonalPositionSize,
		clmm.PersonalPositionPoolIDOffset,
		pool.Address.Bytes(),
	)
	if err != nil {
		return nil, fmt.Errorf("enumerate positions: %w", err)
	}

	book := &model.Book{
		Positions:        make([]*model.Position, 0, len(accounts)),
		InRangeLiquidity: new(big.Int),
	}

	for _, acc := range accounts {
		record, err := clmm.DecodePersonalPosition(acc.Data)
		if err != nil {
			return nil, fmt.Errorf("decode position %s: %w", acc.Pubkey, err)
		}

		pos, err := r.analyze(ctx, pool, acc.Pubkey, record)
		if err != nil {
			return nil, err
		}

		book.Positions = append(book.Positions, pos)
		if pos.Status == model.InRange {
			book.InRangeLiquidity.Add(book.InRangeLiquidity, pos.Liquidity)
		}

		r.log.Info("position",
			zap.String("nft_mint", pos.NftMint.String()),
			zap.String("owner", pos.OwnerLabel()),
			zap.String("status", string(pos.Status)),
			zap.Int32("tick_lower", pos.TickLower),
			zap.Int32("tick_upper", pos.TickUpper),
			zap.String("liquidity", pos.Liquidity.String()),
			zap.String("amount_a", pos.AmountA.String()),
			zap.String("amount_b", pos.AmountB.String()),
			zap.String("pending_fee_a", pos.PendingFeeA.String()),
			zap.String("pending_fee_b", pos.PendingFeeB.String()),
		)
	}

	r.log.Info("positions enumerated",
		zap.Int("count", len(book.Positions)),
		zap.String("in_range_liquidity", book.InRangeLiquidity.String()),
	)
	return book, nil
}

func (r *Reader) analyze(ctx context.Context, pool *clmm.PoolState, address solana.PublicKey, record *clmm.PersonalPosition) (*model.Position, error) {
	owner, err := r.findNftOwner(ctx, record.NftMint)
	if err != nil {
		return nil, fmt.Errorf("resolve owner of %s: %w", record.NftMint, err)
	}

	liquidity := record.Liquidity.Big()
	sqrtLower := clmm.SqrtPriceX64FromTick(record.TickLower)
	sqrtUpper := clmm.SqrtPriceX64FromTick(record.TickUpper)
	amountA, amountB := clmm.AmountsFromLiquidity(pool.SqrtPriceX64.Big(), sqrtLower, sqrtUpper, liquidity, false)

	lowerTick, err := r.ticks.Tick(ctx, pool, record.TickLower)
	if err != nil {
		return nil, fmt.Errorf("lower tick of %s: %w", record.NftMint, err)
	}
	upperTick, err := r.ticks.Tick(ctx, pool, record.TickUpper)
	if err != nil {
		return nil, fmt.Errorf("upper tick of %s: %w", record.NftMint, err)
	}
	feeA, feeB := clmm.FeesOwed(pool, record, lowerTick, upperTick)

	return &model.Position{
		Address:     address,
		NftMint:     record.NftMint,
		Owner:       owner,
		TickLower:   record.TickLower,
		TickUpper:   record.TickUpper,
		Liquidity:   liquidity,
		Status:      model.ClassifyRange(pool.TickCurrent, record.TickLower, record.TickUpper),
		AmountA:     clmm.FromRaw(amountA, pool.MintDecimalsA),
		AmountB:     clmm.FromRaw(amountB, pool.MintDecimalsB),
		PendingFeeA: clmm.FromRaw(feeA, pool.MintDecimalsA),
		PendingFeeB: clmm.FromRaw(feeB, pool.MintDecimalsB),
	}, nil
}

// findNftOwner resolves the wallet holding the position NFT. The mint has
// supply one, so the holder is the largest token account with a raw balance
// of exactly 1. A missing holder is a valid answer, not an error.
func (r *Reader) findNftOwner(ctx context.Context, nftMint solana.PublicKey) (*solana.PublicKey, error) {
	holders, err := r.chain.TokenLargestAccounts(ctx, nftMint)
	if err != nil {
		return nil, err
	}

	var holding *solana.PublicKey
	for i := range holders {
		if holders[i].Amount == "1" {
			holding = &holders[i].Address
			break
		}
	}
	if holding == nil {
		return nil, nil
	}

	acc, err := r.chain.GetAccount(ctx, *holding)
	if err != nil {
		if errors.Is(err, chain.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, err
	}

	tokenAcc, err := clmm.DecodeTokenAccount(acc.Data)
	if err != nil {
		return nil, err
	}
	owner := tokenAcc.Owner
	return &owner, nil
}
