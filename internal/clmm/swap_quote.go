package clmm

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/gagliardetto/solana-go"
)

// KeyedTickArray pairs a decoded tick array with its account address.
type KeyedTickArray struct {
	Address solana.PublicKey
	State   *TickArray
}

// SwapQuote is the result of simulating an exact-input swap against the
// pool's current state and the tick arrays the swap may traverse.
type SwapQuote struct {
	AmountIn          uint64
	ExpectedAmountOut uint64
	MinAmountOut      uint64
	TickArrays        []solana.PublicKey
}

type initializedTick struct {
	tick         int32
	liquidityNet *big.Int
}

// collectInitializedTicks flattens the supplied arrays into the ordered list
// of crossable ticks in the swap direction.
func collectInitializedTicks(arrays []KeyedTickArray, currentTick int32, aToB bool) []initializedTick {
	ticks := make([]initializedTick, 0, 16)
	for _, arr := range arrays {
		for i := range arr.State.Ticks {
			state := &arr.State.Ticks[i]
			if state.LiquidityGross.IsZero() {
				continue
			}
			if aToB && state.Tick > currentTick {
				continue
			}
			if !aToB && state.Tick <= currentTick {
				continue
			}
			ticks = append(ticks, initializedTick{tick: state.Tick, liquidityNet: state.LiquidityNet})
		}
	}
	sort.Slice(ticks, func(i, j int) bool {
		if aToB {
			return ticks[i].tick > ticks[j].tick
		}
		return ticks[i].tick < ticks[j].tick
	})
	return ticks
}

// swapStep advances the price towards sqrtTarget, consuming at most the
// remaining input. Returns the new sqrt price, the input consumed (before
// fee), the output produced, and the fee charged.
func swapStep(sqrtCurrent, sqrtTarget, liquidity, remaining *big.Int, feeRate uint32, aToB bool) (nextSqrt, amountIn, amountOut, fee *big.Int) {
	feeDenom := big.NewInt(FeeRateDenominator)
	feeNum := big.NewInt(int64(FeeRateDenominator - feeRate))

	available := new(big.Int).Mul(remaining, feeNum)
	available.Quo(available, feeDenom)

	var maxIn *big.Int
	if aToB {
		maxIn = amountADelta(sqrtTarget, sqrtCurrent, liquidity, true)
	} else {
		maxIn = amountBDelta(sqrtCurrent, sqrtTarget, liquidity, true)
	}

	if available.Cmp(maxIn) >= 0 {
		// Boundary reached: consume exactly the amount that moves the
		// price to the target.
		nextSqrt = new(big.Int).Set(sqrtTarget)
		amountIn = maxIn
		fee = mulDiv(amountIn, big.NewInt(int64(feeRate)), feeNum, true)
	} else {
		amountIn = available
		if aToB {
			// L<<64 * sqrtP / (L<<64 + in * sqrtP)
			lShift := new(big.Int).Lsh(liquidity, 64)
			num := new(big.Int).Mul(lShift, sqrtCurrent)
			denom := new(big.Int).Mul(amountIn, sqrtCurrent)
			denom.Add(denom, lShift)
			nextSqrt = num.Quo(num, denom)
		} else {
			// sqrtP + in<<64 / L
			delta := new(big.Int).Lsh(amountIn, 64)
			delta.Quo(delta, liquidity)
			nextSqrt = new(big.Int).Add(sqrtCurrent, delta)
		}
		fee = new(big.Int).Sub(remaining, amountIn)
	}

	if aToB {
		amountOut = amountBDelta(nextSqrt, sqrtCurrent, liquidity, false)
	} else {
		amountOut = amountADelta(sqrtCurrent, nextSqrt, liquidity, false)
	}
	return nextSqrt, amountIn, amountOut, fee
}

// ComputeSwapQuote simulates an exact-input swap across the supplied tick
// arrays and returns the expected output with a slippage-bounded minimum.
// The arrays must cover every tick the swap can traverse; running past them
// with input left over fails with ErrLiquidityInsufficient.
func ComputeSwapQuote(pool *PoolState, cfg *AmmConfig, arrays []KeyedTickArray, aToB bool, amountIn uint64, slippage float64) (*SwapQuote, error) {
	if amountIn == 0 {
		return nil, fmt.Errorf("swap amount must be greater than zero")
	}
	if slippage < 0 || slippage >= 1 {
		return nil, fmt.Errorf("%w: tolerance %f outside [0, 1)", ErrSlippageExceeded, slippage)
	}
	if len(arrays) == 0 {
		return nil, fmt.Errorf("no tick arrays supplied for swap traversal")
	}

	ticks := collectInitializedTicks(arrays, pool.TickCurrent, aToB)

	remaining := new(big.Int).SetUint64(amountIn)
	totalOut := new(big.Int)
	sqrtPrice := pool.SqrtPriceX64.Big()
	liquidity := pool.Liquidity.Big()
	nextTick := 0

	for remaining.Sign() > 0 {
		var sqrtTarget *big.Int
		var boundary *initializedTick
		if nextTick < len(ticks) {
			boundary = &ticks[nextTick]
			sqrtTarget = SqrtPriceX64FromTick(boundary.tick)
		} else if aToB {
			sqrtTarget = MinSqrtPriceX64
		} else {
			sqrtTarget = MaxSqrtPriceX64
		}

		if liquidity.Sign() == 0 && boundary == nil {
			return nil, ErrLiquidityInsufficient
		}

		if liquidity.Sign() > 0 {
			newSqrt, stepIn, stepOut, stepFee := swapStep(sqrtPrice, sqrtTarget, liquidity, remaining, cfg.TradeFeeRate, aToB)
			remaining.Sub(remaining, stepIn)
			remaining.Sub(remaining, stepFee)
			totalOut.Add(totalOut, stepOut)
			sqrtPrice = newSqrt
		} else {
			sqrtPrice = sqrtTarget
		}

		if boundary != nil && sqrtPrice.Cmp(sqrtTarget) == 0 {
			// Crossed an initialized tick: fold its net liquidity in.
			if aToB {
				liquidity = new(big.Int).Sub(liquidity, boundary.liquidityNet)
			} else {
				liquidity = new(big.Int).Add(liquidity, boundary.liquidityNet)
			}
			if liquidity.Sign() < 0 {
				liquidity.SetInt64(0)
			}
			nextTick++
			continue
		}

		if remaining.Sign() > 0 && boundary == nil {
			return nil, ErrLiquidityInsufficient
		}
		break
	}

	if !totalOut.IsUint64() {
		return nil, fmt.Errorf("swap output overflows u64: %s", totalOut)
	}
	expected := totalOut.Uint64()

	minOut := new(big.Int).Mul(totalOut, big.NewInt(int64((1-slippage)*1e6)))
	minOut.Quo(minOut, big.NewInt(1e6))

	addrs := make([]solana.PublicKey, 0, len(arrays))
	for _, arr := range arrays {
		addrs = append(addrs, arr.Address)
	}

	return &SwapQuote{
		AmountIn:          amountIn,
		ExpectedAmountOut: expected,
		MinAmountOut:      minOut.Uint64(),
		TickArrays:        addrs,
	}, nil
}
