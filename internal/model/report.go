package model

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// WalletSnapshot captures the wallet's SOL and pool-asset holdings at one
// point in time.
type WalletSnapshot struct {
	TakenAt  time.Time       `json:"taken_at"`
	Lamports uint64          `json:"lamports"`
	SOL      decimal.Decimal `json:"sol"`
	AssetRaw *big.Int        `json:"asset_raw"`
	Asset    decimal.Decimal `json:"asset"`
}

// PositionDelta compares one position before and after a mutation sequence.
type PositionDelta struct {
	NftMint        string          `json:"nft_mint"`
	Status         RangeStatus     `json:"status"`
	AmountAAdded   decimal.Decimal `json:"amount_a_added"`
	AmountARemoved decimal.Decimal `json:"amount_a_removed"`
	AmountBAdded   decimal.Decimal `json:"amount_b_added"`
	AmountBRemoved decimal.Decimal `json:"amount_b_removed"`
	LiquidityShare decimal.Decimal `json:"liquidity_share"`
}

// RebalanceReport is the reconciliation record of one rebalance run.
type RebalanceReport struct {
	Pool        string          `json:"pool"`
	Before      WalletSnapshot  `json:"before"`
	After       WalletSnapshot  `json:"after"`
	SOLDelta    decimal.Decimal `json:"sol_delta"`
	AssetDelta  decimal.Decimal `json:"asset_delta"`
	Positions   []PositionDelta `json:"positions,omitempty"`
	Signatures  []string        `json:"signatures,omitempty"`
	CompletedAt time.Time       `json:"completed_at"`
}
