package clmm

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"
)

// SqrtPriceX64FromTick converts a tick index to a Q64.64 square-root price.
// sqrt(1.0001^tick) * 2^64, computed with 256-bit floats and binary
// exponentiation.
func SqrtPriceX64FromTick(tick int32) *big.Int {
	base := new(big.Float).SetPrec(256).SetFloat64(1.0001)
	base.Sqrt(base)

	res := new(big.Float).SetPrec(256).SetInt64(1)
	exp := int64(tick)
	neg := exp < 0
	if neg {
		exp = -exp
	}
	for exp > 0 {
		if exp&1 == 1 {
			res.Mul(res, base)
		}
		base.Mul(base, base)
		exp >>= 1
	}
	if neg {
		res.Quo(new(big.Float).SetPrec(256).SetInt64(1), res)
	}

	res.Mul(res, new(big.Float).SetPrec(256).SetInt(Q64))
	out, _ := res.Int(nil)
	return out
}

// SqrtPriceX64FromPrice converts a human price of token A in token B into a
// Q64.64 sqrt price, adjusting for the mints' decimal scales.
func SqrtPriceX64FromPrice(price decimal.Decimal, decimalsA, decimalsB uint8) *big.Int {
	scaled := price.Shift(int32(decimalsB) - int32(decimalsA))
	f, _ := new(big.Float).SetPrec(256).SetString(scaled.String())
	f.Sqrt(f)
	f.Mul(f, new(big.Float).SetPrec(256).SetInt(Q64))
	out, _ := f.Int(nil)
	return out
}

// PriceFromSqrtPriceX64 converts a Q64.64 sqrt price into a human-readable
// price of token A denominated in token B.
func PriceFromSqrtPriceX64(sqrtPriceX64 uint128.Uint128, decimalsA, decimalsB uint8) decimal.Decimal {
	sqrt := decimal.NewFromBigInt(sqrtPriceX64.Big(), 0).Div(decimal.NewFromBigInt(Q64, 0))
	price := sqrt.Mul(sqrt)
	return price.Shift(int32(decimalsA) - int32(decimalsB))
}

func mulDiv(a, b, denom *big.Int, roundUp bool) *big.Int {
	num := new(big.Int).Mul(a, b)
	quo, rem := new(big.Int).QuoRem(num, denom, new(big.Int))
	if roundUp && rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo
}

// amountADelta is liquidity * 2^64 * (sqrtB - sqrtA) / (sqrtA * sqrtB).
func amountADelta(sqrtA, sqrtB, liquidity *big.Int, roundUp bool) *big.Int {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	num := new(big.Int).Lsh(liquidity, 64)
	diff := new(big.Int).Sub(sqrtB, sqrtA)
	denom := new(big.Int).Mul(sqrtA, sqrtB)
	return mulDiv(num, diff, denom, roundUp)
}

// amountBDelta is liquidity * (sqrtB - sqrtA) / 2^64.
func amountBDelta(sqrtA, sqrtB, liquidity *big.Int, roundUp bool) *big.Int {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	diff := new(big.Int).Sub(sqrtB, sqrtA)
	return mulDiv(liquidity, diff, Q64, roundUp)
}

// AmountsFromLiquidity converts a liquidity magnitude over a tick range into
// per-side raw token amounts at the current sqrt price.
func AmountsFromLiquidity(sqrtCurrent, sqrtLower, sqrtUpper, liquidity *big.Int, roundUp bool) (amountA, amountB *big.Int) {
	if sqrtLower.Cmp(sqrtUpper) > 0 {
		sqrtLower, sqrtUpper = sqrtUpper, sqrtLower
	}
	switch {
	case sqrtCurrent.Cmp(sqrtLower) <= 0:
		return amountADelta(sqrtLower, sqrtUpper, liquidity, roundUp), big.NewInt(0)
	case sqrtCurrent.Cmp(sqrtUpper) >= 0:
		return big.NewInt(0), amountBDelta(sqrtLower, sqrtUpper, liquidity, roundUp)
	default:
		amountA = amountADelta(sqrtCurrent, sqrtUpper, liquidity, roundUp)
		amountB = amountBDelta(sqrtLower, sqrtCurrent, liquidity, roundUp)
		return amountA, amountB
	}
}

// wrappingSub computes (a - b) mod 2^128, matching on-chain fee accumulators.
func wrappingSub(a, b *big.Int) *big.Int {
	out := new(big.Int).Sub(a, b)
	out.Mod(out, Q128)
	return out
}

// feeGrowthInside reconstructs the fee growth accrued strictly inside the
// position's range from the global accumulator and the boundary ticks'
// fee-growth-outside snapshots.
func feeGrowthInside(tickCurrent, tickLower, tickUpper int32, global, lowerOutside, upperOutside *big.Int) *big.Int {
	var below *big.Int
	if tickCurrent >= tickLower {
		below = lowerOutside
	} else {
		below = wrappingSub(global, lowerOutside)
	}

	var above *big.Int
	if tickCurrent < tickUpper {
		above = upperOutside
	} else {
		above = wrappingSub(global, upperOutside)
	}

	return wrappingSub(wrappingSub(global, below), above)
}

// FeesOwed computes the pending fees of a position from the pool's global
// fee growth, the position's stored inside snapshots and owed accumulators,
// and the boundary tick states.
func FeesOwed(pool *PoolState, position *PersonalPosition, tickLower, tickUpper *TickState) (feeA, feeB *big.Int) {
	liquidity := position.Liquidity.Big()

	insideA := feeGrowthInside(
		pool.TickCurrent, position.TickLower, position.TickUpper,
		pool.FeeGrowthGlobalX64A.Big(),
		tickLower.FeeGrowthOutsideX64A.Big(),
		tickUpper.FeeGrowthOutsideX64A.Big(),
	)
	insideB := feeGrowthInside(
		pool.TickCurrent, position.TickLower, position.TickUpper,
		pool.FeeGrowthGlobalX64B.Big(),
		tickLower.FeeGrowthOutsideX64B.Big(),
		tickUpper.FeeGrowthOutsideX64B.Big(),
	)

	deltaA := wrappingSub(insideA, position.FeeGrowthInsideLastX64A.Big())
	deltaB := wrappingSub(insideB, position.FeeGrowthInsideLastX64B.Big())

	feeA = new(big.Int).Mul(deltaA, liquidity)
	feeA.Quo(feeA, Q64)
	feeA.Add(feeA, new(big.Int).SetUint64(position.TokenFeesOwedA))

	feeB = new(big.Int).Mul(deltaB, liquidity)
	feeB.Quo(feeB, Q64)
	feeB.Add(feeB, new(big.Int).SetUint64(position.TokenFeesOwedB))

	return feeA, feeB
}

// liquidityFromAmountA is amountA * (sqrtA * sqrtB / 2^64) / (sqrtB - sqrtA).
func liquidityFromAmountA(sqrtA, sqrtB, amountA *big.Int) *big.Int {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	num := new(big.Int).Mul(sqrtA, sqrtB)
	num.Rsh(num, 64)
	diff := new(big.Int).Sub(sqrtB, sqrtA)
	return mulDiv(amountA, num, diff, false)
}

// DepositAmounts sizes an open-position deposit from a single-sided token A
// input: the resulting liquidity and the per-side maximum amounts inclusive
// of the slippage tolerance.
type DepositAmounts struct {
	Liquidity  *big.Int
	AmountA    *big.Int
	AmountB    *big.Int
	MaxAmountA *big.Int
	MaxAmountB *big.Int
}

// LiquidityFromAmountA computes the liquidity realizable from a raw token A
// amount over [tickLower, tickUpper) at the pool's current price, plus the
// matching token B amount and slippage-inflated maximums. The input side must
// be active in the range: a range entirely below the current price holds only
// token B and cannot absorb token A.
func LiquidityFromAmountA(pool *PoolState, tickLower, tickUpper int32, amountA *big.Int, slippage float64) (*DepositAmounts, error) {
	if slippage < 0 || slippage >= 1 {
		return nil, fmt.Errorf("%w: tolerance %f outside [0, 1)", ErrSlippageExceeded, slippage)
	}

	sqrtLower := SqrtPriceX64FromTick(tickLower)
	sqrtUpper := SqrtPriceX64FromTick(tickUpper)
	sqrtCurrent := pool.SqrtPriceX64.Big()

	if sqrtCurrent.Cmp(sqrtUpper) >= 0 {
		return nil, fmt.Errorf("range [%d, %d) is below the current tick %d: token A deposit inactive", tickLower, tickUpper, pool.TickCurrent)
	}

	var liquidity, needB *big.Int
	if sqrtCurrent.Cmp(sqrtLower) <= 0 {
		liquidity = liquidityFromAmountA(sqrtLower, sqrtUpper, amountA)
		needB = big.NewInt(0)
	} else {
		liquidity = liquidityFromAmountA(sqrtCurrent, sqrtUpper, amountA)
		needB = amountBDelta(sqrtLower, sqrtCurrent, liquidity, true)
	}

	scale := big.NewInt(int64((1 + slippage) * 1e6))
	maxA := new(big.Int).Mul(amountA, scale)
	maxA.Quo(maxA, big.NewInt(1e6))
	maxB := new(big.Int).Mul(needB, scale)
	maxB.Quo(maxB, big.NewInt(1e6))

	return &DepositAmounts{
		Liquidity:  liquidity,
		AmountA:    amountA,
		AmountB:    needB,
		MaxAmountA: maxA,
		MaxAmountB: maxB,
	}, nil
}

// FromRaw converts a raw integer amount into human units.
func FromRaw(raw *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(raw, 0).Shift(-int32(decimals))
}

// ToRaw converts a human-unit amount into a raw integer, truncating dust
// beyond the mint's precision.
func ToRaw(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).Truncate(0).BigInt()
}
