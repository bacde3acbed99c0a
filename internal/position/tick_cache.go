package position

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/BilalMir135/raydium-test-bot/internal/chain"
	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/gagliardetto/solana-go"
)

// accountFetcher is the slice of the chain client the cache needs.
type accountFetcher interface {
	GetAccount(ctx context.Context, address solana.PublicKey) (*chain.Account, error)
}

// TickCache memoizes decoded tick-array accounts by address for the lifetime
// of the process. Entries are populated lazily on first use and never
// evicted; a batch pass touches each array a handful of times and the data
// does not move between reads within one pass.
type TickCache struct {
	chain accountFetcher

	mu     sync.RWMutex
	arrays map[solana.PublicKey]*clmm.TickArray
}

// NewTickCache creates an empty cache backed by the given account fetcher.
func NewTickCache(fetcher accountFetcher) *TickCache {
	return &TickCache{
		chain:  fetcher,
		arrays: make(map[solana.PublicKey]*clmm.TickArray),
	}
}

func (c *TickCache) get(address solana.PublicKey) (*clmm.TickArray, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	arr, ok := c.arrays[address]
	return arr, ok
}

func (c *TickCache) set(address solana.PublicKey, arr *clmm.TickArray) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.arrays[address] = arr
}

// Array returns the decoded tick array at address, fetching and decoding it
// on a cache miss. An absent account maps to ErrTickArrayNotFound.
func (c *TickCache) Array(ctx context.Context, address solana.PublicKey) (*clmm.TickArray, error) {
	if arr, ok := c.get(address); ok {
		return arr, nil
	}

	acc, err := c.chain.GetAccount(ctx, address)
	if err != nil {
		if errors.Is(err, chain.ErrAccountNotFound) {
			return nil, fmt.Errorf("tick array %s: %w", address, ErrTickArrayNotFound)
		}
		return nil, fmt.Errorf("fetch tick array %s: %w", address, err)
	}

	arr, err := clmm.DecodeTickArray(acc.Data)
	if err != nil {
		return nil, fmt.Errorf("decode tick array %s: %w", address, err)
	}

	c.set(address, arr)
	return arr, nil
}

// Tick returns the tick state for an initialized tick of the pool, deriving
// the covering array's address and reading through the cache.
func (c *TickCache) Tick(ctx context.Context, pool *clmm.PoolState, tick int32) (*clmm.TickState, error) {
	address, err := clmm.TickArrayAddressByTick(pool.ProgramID, pool.Address, tick, pool.TickSpacing)
	if err != nil {
		return nil, fmt.Errorf("derive tick array for tick %d: %w", tick, err)
	}

	arr, err := c.Array(ctx, address)
	if err != nil {
		return nil, err
	}

	offset, err := clmm.TickOffsetInArray(tick, arr.StartTickIndex, pool.TickSpacing)
	if err != nil {
		return nil, err
	}
	return &arr.Ticks[offset], nil
}

// Len reports the number of cached arrays.
func (c *TickCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.arrays)
}
