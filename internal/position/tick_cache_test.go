package position

import (
	"context"
	"errors"
	"testing"

	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/gagliardetto/solana-go"
)

func TestTickCacheMemoizes(t *testing.T) {
	pool := testPool()
	address, err := clmm.TickArrayAddress(pool.ProgramID, pool.Address, 0)
	if err != nil {
		t.Fatalf("derive tick array: %v", err)
	}

	f := &fakeChain{accounts: map[solana.PublicKey][]byte{
		address: tickArrayBytes(pool.Address, 0),
	}}
	cache := NewTickCache(f)

	first, err := cache.Array(context.Background(), address)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cache.Array(context.Background(), address)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatalf("cache returned different instances")
	}
	if f.fetches != 1 {
		t.Fatalf("fetches = %d, want 1", f.fetches)
	}
	if cache.Len() != 1 {
		t.Fatalf("cache len = %d, want 1", cache.Len())
	}
}

func TestTickCacheMissingArray(t *testing.T) {
	f := &fakeChain{accounts: map[solana.PublicKey][]byte{}}
	cache := NewTickCache(f)

	_, err := cache.Array(context.Background(), testKey(40))
	if !errors.Is(err, ErrTickArrayNotFound) {
		t.Fatalf("expected ErrTickArrayNotFound, got %v", err)
	}
}

func TestTickCacheTickLookup(t *testing.T) {
	pool := testPool()
	f := &fakeChain{accounts: map[solana.PublicKey][]byte{}}
	registerTickArrays(t, f, pool, -60)

	cache := NewTickCache(f)
	state, err := cache.Tick(context.Background(), pool, -60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state == nil {
		t.Fatalf("tick state is nil")
	}
	if !state.LiquidityGross.IsZero() {
		t.Fatalf("empty slot should have zero gross liquidity")
	}
}
