package clmm

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"
)

func TestSqrtPriceX64FromTickZero(t *testing.T) {
	got := SqrtPriceX64FromTick(0)
	if got.Cmp(Q64) != 0 {
		t.Fatalf("sqrt price at tick 0 = %s, want %s", got, Q64)
	}
}

func TestSqrtPriceX64FromTickMonotonic(t *testing.T) {
	ticks := []int32{-443636, -10000, -60, -1, 0, 1, 60, 10000, 443636}
	prev := SqrtPriceX64FromTick(ticks[0])
	for _, tick := range ticks[1:] {
		cur := SqrtPriceX64FromTick(tick)
		if cur.Cmp(prev) <= 0 {
			t.Fatalf("sqrt price not increasing at tick %d: %s <= %s", tick, cur, prev)
		}
		prev = cur
	}
}

func TestSqrtPriceRoundTripWithPrice(t *testing.T) {
	sqrt := SqrtPriceX64FromPrice(decimal.NewFromInt(1), 9, 9)
	if sqrt.Cmp(Q64) != 0 {
		t.Fatalf("sqrt price of 1.0 = %s, want %s", sqrt, Q64)
	}
}

func TestAmountsFromLiquidityZero(t *testing.T) {
	a, b := AmountsFromLiquidity(Q64, SqrtPriceX64FromTick(-60), SqrtPriceX64FromTick(60), big.NewInt(0), false)
	if a.Sign() != 0 || b.Sign() != 0 {
		t.Fatalf("zero liquidity produced amounts a=%s b=%s", a, b)
	}
}

func TestAmountsFromLiquiditySides(t *testing.T) {
	liquidity := big.NewInt(1_000_000_000)
	sqrtLower := SqrtPriceX64FromTick(-60)
	sqrtUpper := SqrtPriceX64FromTick(60)

	// Current price below the range: all token A.
	a, b := AmountsFromLiquidity(SqrtPriceX64FromTick(-120), sqrtLower, sqrtUpper, liquidity, false)
	if a.Sign() <= 0 || b.Sign() != 0 {
		t.Fatalf("below range: a=%s b=%s, want a>0 b=0", a, b)
	}

	// Current price above the range: all token B.
	a, b = AmountsFromLiquidity(SqrtPriceX64FromTick(120), sqrtLower, sqrtUpper, liquidity, false)
	if a.Sign() != 0 || b.Sign() <= 0 {
		t.Fatalf("above range: a=%s b=%s, want a=0 b>0", a, b)
	}

	// Current price inside: both sides.
	a, b = AmountsFromLiquidity(Q64, sqrtLower, sqrtUpper, liquidity, false)
	if a.Sign() <= 0 || b.Sign() <= 0 {
		t.Fatalf("in range: a=%s b=%s, want both > 0", a, b)
	}
}

func TestWrappingSub(t *testing.T) {
	got := wrappingSub(big.NewInt(1), big.NewInt(2))
	want := new(big.Int).Sub(Q128, big.NewInt(1))
	if got.Cmp(want) != 0 {
		t.Fatalf("wrappingSub(1, 2) = %s, want %s", got, want)
	}

	got = wrappingSub(big.NewInt(10), big.NewInt(4))
	if got.Cmp(big.NewInt(6)) != 0 {
		t.Fatalf("wrappingSub(10, 4) = %s, want 6", got)
	}
}

func TestFeeGrowthInside(t *testing.T) {
	// Current tick inside the range: inside = global - below - above.
	got := feeGrowthInside(50, 0, 100, big.NewInt(100), big.NewInt(10), big.NewInt(20))
	if got.Cmp(big.NewInt(70)) != 0 {
		t.Fatalf("fee growth inside = %s, want 70", got)
	}

	// Current tick below the range: below = global - lowerOutside = 90,
	// above = upperOutside = 20, so inside wraps to 2^128 - 10.
	got = feeGrowthInside(-10, 0, 100, big.NewInt(100), big.NewInt(10), big.NewInt(20))
	want := new(big.Int).Sub(Q128, big.NewInt(10))
	if got.Cmp(want) != 0 {
		t.Fatalf("fee growth inside = %s, want %s", got, want)
	}
}

func TestLiquidityFromAmountA(t *testing.T) {
	pool := &PoolState{
		SqrtPriceX64: uint128.FromBig(new(big.Int).Set(Q64)),
		TickCurrent:  0,
	}

	deposit, err := LiquidityFromAmountA(pool, -60, 60, big.NewInt(1_000_000_000), 0.01)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deposit.Liquidity.Sign() <= 0 {
		t.Fatalf("liquidity = %s, want > 0", deposit.Liquidity)
	}
	if deposit.AmountB.Sign() <= 0 {
		t.Fatalf("in-range deposit needs token B, got %s", deposit.AmountB)
	}
	if deposit.MaxAmountA.Cmp(deposit.AmountA) < 0 || deposit.MaxAmountB.Cmp(deposit.AmountB) < 0 {
		t.Fatalf("max amounts below base amounts")
	}
}

func TestLiquidityFromAmountAAboveCurrent(t *testing.T) {
	pool := &PoolState{
		SqrtPriceX64: uint128.FromBig(SqrtPriceX64FromTick(-120)),
		TickCurrent:  -120,
	}

	deposit, err := LiquidityFromAmountA(pool, -60, 60, big.NewInt(1_000_000), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deposit.AmountB.Sign() != 0 {
		t.Fatalf("range above current price should need no token B, got %s", deposit.AmountB)
	}
}

func TestLiquidityFromAmountABelowRange(t *testing.T) {
	pool := &PoolState{
		SqrtPriceX64: uint128.FromBig(SqrtPriceX64FromTick(120)),
		TickCurrent:  120,
	}

	if _, err := LiquidityFromAmountA(pool, -60, 60, big.NewInt(1_000_000), 0); err == nil {
		t.Fatalf("expected error for range below the current tick")
	}
}

func TestLiquidityFromAmountABadSlippage(t *testing.T) {
	pool := &PoolState{SqrtPriceX64: uint128.FromBig(new(big.Int).Set(Q64))}
	_, err := LiquidityFromAmountA(pool, -60, 60, big.NewInt(1), 1.5)
	if !errors.Is(err, ErrSlippageExceeded) {
		t.Fatalf("expected ErrSlippageExceeded, got %v", err)
	}
}

func TestRawConversions(t *testing.T) {
	human := FromRaw(big.NewInt(1_500_000_000), 9)
	if !human.Equal(decimal.NewFromFloat(1.5)) {
		t.Fatalf("FromRaw = %s, want 1.5", human)
	}

	raw := ToRaw(decimal.NewFromFloat(1.5), 9)
	if raw.Cmp(big.NewInt(1_500_000_000)) != 0 {
		t.Fatalf("ToRaw = %s, want 1500000000", raw)
	}

	// Dust beyond the mint precision truncates.
	raw = ToRaw(decimal.RequireFromString("0.0000000019"), 9)
	if raw.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("ToRaw dust = %s, want 1", raw)
	}
}
