package model

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// RangeStatus classifies a position's tick range against the pool's
// current tick.
type RangeStatus string

const (
	// InRange means the current tick sits inside [TickLower, TickUpper).
	InRange RangeStatus = "InRange"
	// BelowRange means the whole range sits at or below the current tick,
	// so the position holds only token B.
	BelowRange RangeStatus = "BelowRange"
	// AboveRange means the whole range sits above the current tick, so the
	// position holds only token A.
	AboveRange RangeStatus = "AboveRange"
)

// ClassifyRange derives the range status of [tickLower, tickUpper) relative
// to the current tick.
func ClassifyRange(currentTick, tickLower, tickUpper int32) RangeStatus {
	switch {
	case tickUpper <= currentTick:
		return BelowRange
	case tickLower > currentTick:
		return AboveRange
	default:
		return InRange
	}
}

// Position is one enumerated liquidity position with its derived analytics.
type Position struct {
	Address solana.PublicKey  `json:"address"`
	NftMint solana.PublicKey  `json:"nft_mint"`
	Owner   *solana.PublicKey `json:"owner,omitempty"`

	TickLower int32       `json:"tick_lower"`
	TickUpper int32       `json:"tick_upper"`
	Liquidity *big.Int    `json:"liquidity"`
	Status    RangeStatus `json:"status"`

	AmountA decimal.Decimal `json:"amount_a"`
	AmountB decimal.Decimal `json:"amount_b"`

	PendingFeeA decimal.Decimal `json:"pending_fee_a"`
	PendingFeeB decimal.Decimal `json:"pending_fee_b"`
}

// OwnerLabel renders the resolved NFT holder, with a stable marker for
// positions whose holder could not be determined.
func (p *Position) OwnerLabel() string {
	if p.Owner == nil {
		return "NOTFOUND"
	}
	return p.Owner.String()
}

// Book is the result of one full position enumeration pass.
type Book struct {
	Positions []*Position
	// InRangeLiquidity sums the liquidity of every InRange position.
	InRangeLiquidity *big.Int
}
