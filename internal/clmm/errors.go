package clmm

import "errors"

var (
	// ErrSlippageExceeded is returned when a computed bound cannot satisfy
	// the configured slippage tolerance.
	ErrSlippageExceeded = errors.New("slippage tolerance exceeded")

	// ErrLiquidityInsufficient is returned when a swap quote runs out of
	// initialized tick arrays before consuming the full input amount.
	ErrLiquidityInsufficient = errors.New("insufficient liquidity for swap amount")
)
