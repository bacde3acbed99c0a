package position

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/BilalMir135/raydium-test-bot/internal/chain"
	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/BilalMir135/raydium-test-bot/internal/model"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"
)

type fakeChain struct {
	accounts        map[solana.PublicKey][]byte
	programAccounts []chain.KeyedAccount
	holders         map[solana.PublicKey][]chain.TokenHolder
	fetches         int
}

func (f *fakeChain) GetAccount(_ context.Context, address solana.PublicKey) (*chain.Account, error) {
	f.fetches++
	data, ok := f.accounts[address]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", address, chain.ErrAccountNotFound)
	}
	return &chain.Account{Data: data}, nil
}

func (f *fakeChain) ProgramAccounts(_ context.Context, _ solana.PublicKey, _ uint64, _ uint64, _ []byte) ([]chain.KeyedAccount, error) {
	return f.programAccounts, nil
}

func (f *fakeChain) TokenLargestAccounts(_ context.Context, mint solana.PublicKey) ([]chain.TokenHolder, error) {
	return f.holders[mint], nil
}

func testKey(seed byte) solana.PublicKey {
	var raw [32]byte
	for i := range raw {
		raw[i] = seed
	}
	return solana.PublicKeyFromBytes(raw[:])
}

func putU128(buf []byte, v *big.Int) {
	var b [16]byte
	v.FillBytes(b[:])
	for i, j := 0, 15; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	copy(buf, b[:])
}

func positionBytes(nftMint, poolID solana.PublicKey, tickLower, tickUpper int32, liquidity int64, feesOwedA uint64) []byte {
	buf := make([]byte, clmm.PersonalPositionSize)
	copy(buf[9:], nftMint.Bytes())
	copy(buf[41:], poolID.Bytes())
	binary.LittleEndian.PutUint32(buf[73:], uint32(tickLower))
	binary.LittleEndian.PutUint32(buf[77:], uint32(tickUpper))
	putU128(buf[81:], big.NewInt(liquidity))
	binary.LittleEndian.PutUint64(buf[129:], feesOwedA)
	return buf
}

func tickArrayBytes(poolID solana.PublicKey, startIndex int32) []byte {
	buf := make([]byte, 44+clmm.TickArraySize*168)
	copy(buf[8:], poolID.Bytes())
	binary.LittleEndian.PutUint32(buf[40:], uint32(startIndex))
	return buf
}

func tokenAccountBytes(mint, owner solana.PublicKey, amount uint64) []byte {
	buf := make([]byte, clmm.TokenAccountSize)
	copy(buf[0:], mint.Bytes())
	copy(buf[32:], owner.Bytes())
	binary.LittleEndian.PutUint64(buf[64:], amount)
	return buf
}

func testPool() *clmm.PoolState {
	return &clmm.PoolState{
		Address:       testKey(1),
		ProgramID:     clmm.DevnetProgramID,
		MintA:         testKey(2),
		MintB:         testKey(3),
		MintDecimalsA: 9,
		MintDecimalsB: 9,
		TickSpacing:   60,
		TickCurrent:   0,
		SqrtPriceX64:  uint128.FromBig(new(big.Int).Set(clmm.Q64)),
	}
}

// registerTickArrays seeds the fake with empty tick arrays covering the ticks.
func registerTickArrays(t *testing.T, f *fakeChain, pool *clmm.PoolState, ticks ...int32) {
	t.Helper()
	for _, tick := range ticks {
		start := clmm.TickArrayStartIndex(tick, pool.TickSpacing)
		address, err := clmm.TickArrayAddress(pool.ProgramID, pool.Address, start)
		if err != nil {
			t.Fatalf("derive tick array: %v", err)
		}
		f.accounts[address] = tickArrayBytes(pool.Address, start)
	}
}

func TestReaderPoolNotFound(t *testing.T) {
	f := &fakeChain{accounts: map[solana.PublicKey][]byte{}}
	reader := NewReader(f, NewTickCache(f), nil)

	_, err := reader.Pool(context.Background(), clmm.DevnetProgramID, testKey(1))
	if !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

func TestReaderPositions(t *testing.T) {
	pool := testPool()
	nftMint := testKey(10)
	holder := testKey(11)
	owner := testKey(12)

	f := &fakeChain{
		accounts: map[solana.PublicKey][]byte{
			holder: tokenAccountBytes(nftMint, owner, 1),
		},
		programAccounts: []chain.KeyedAccount{
			{Pubkey: testKey(13), Data: positionBytes(nftMint, pool.Address, -60, 60, 1000, 5)},
		},
		holders: map[solana.PublicKey][]chain.TokenHolder{
			nftMint: {{Address: holder, Amount: "1"}},
		},
	}
	registerTickArrays(t, f, pool, -60, 60)

	reader := NewReader(f, NewTickCache(f), nil)
	book, err := reader.Positions(context.Background(), pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(book.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(book.Positions))
	}
	pos := book.Positions[0]
	if pos.Status != model.InRange {
		t.Fatalf("status = %s, want InRange", pos.Status)
	}
	if pos.Owner == nil || !pos.Owner.Equals(owner) {
		t.Fatalf("owner = %v, want %s", pos.Owner, owner)
	}
	if book.InRangeLiquidity.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("in-range liquidity = %s, want 1000", book.InRangeLiquidity)
	}
	if pos.AmountA.Sign() <= 0 || pos.AmountB.Sign() <= 0 {
		t.Fatalf("in-range position should hold both sides: a=%s b=%s", pos.AmountA, pos.AmountB)
	}
	wantFee := decimal.New(5, -9)
	if !pos.PendingFeeA.Equal(wantFee) {
		t.Fatalf("pending fee a = %s, want %s", pos.PendingFeeA, wantFee)
	}
}

func TestReaderPositionsRepeatable(t *testing.T) {
	pool := testPool()
	nftMint := testKey(10)
	holder := testKey(11)
	owner := testKey(12)

	f := &fakeChain{
		accounts: map[solana.PublicKey][]byte{
			holder: tokenAccountBytes(nftMint, owner, 1),
		},
		programAccounts: []chain.KeyedAccount{
			{Pubkey: testKey(13), Data: positionBytes(nftMint, pool.Address, -60, 60, 1000, 5)},
		},
		holders: map[solana.PublicKey][]chain.TokenHolder{
			nftMint: {{Address: holder, Amount: "1"}},
		},
	}
	registerTickArrays(t, f, pool, -60, 60)

	reader := NewReader(f, NewTickCache(f), nil)

	first, err := reader.Positions(context.Background(), pool)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	afterFirst := f.fetches

	second, err := reader.Positions(context.Background(), pool)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}

	// The second pass serves tick arrays from the cache; only the holder
	// account is read again.
	if f.fetches != afterFirst+1 {
		t.Fatalf("fetches after second pass = %d, want %d", f.fetches, afterFirst+1)
	}

	if len(second.Positions) != len(first.Positions) {
		t.Fatalf("position counts differ: %d vs %d", len(first.Positions), len(second.Positions))
	}
	a, b := first.Positions[0], second.Positions[0]
	if a.Status != b.Status || a.TickLower != b.TickLower || a.TickUpper != b.TickUpper {
		t.Fatalf("range differs between passes: %+v vs %+v", a, b)
	}
	if a.Liquidity.Cmp(b.Liquidity) != 0 {
		t.Fatalf("liquidity differs: %s vs %s", a.Liquidity, b.Liquidity)
	}
	if !a.AmountA.Equal(b.AmountA) || !a.AmountB.Equal(b.AmountB) {
		t.Fatalf("amounts differ: (%s, %s) vs (%s, %s)", a.AmountA, a.AmountB, b.AmountA, b.AmountB)
	}
	if !a.PendingFeeA.Equal(b.PendingFeeA) || !a.PendingFeeB.Equal(b.PendingFeeB) {
		t.Fatalf("pending fees differ: (%s, %s) vs (%s, %s)", a.PendingFeeA, a.PendingFeeB, b.PendingFeeA, b.PendingFeeB)
	}
	if a.OwnerLabel() != b.OwnerLabel() {
		t.Fatalf("owners differ: %s vs %s", a.OwnerLabel(), b.OwnerLabel())
	}
	if first.InRangeLiquidity.Cmp(second.InRangeLiquidity) != 0 {
		t.Fatalf("in-range liquidity differs: %s vs %s", first.InRangeLiquidity, second.InRangeLiquidity)
	}
}

func TestReaderPositionsOwnerNotFound(t *testing.T) {
	pool := testPool()
	nftMint := testKey(10)

	f := &fakeChain{
		accounts: map[solana.PublicKey][]byte{},
		programAccounts: []chain.KeyedAccount{
			{Pubkey: testKey(13), Data: positionBytes(nftMint, pool.Address, 120, 240, 50, 0)},
		},
		holders: map[solana.PublicKey][]chain.TokenHolder{},
	}
	registerTickArrays(t, f, pool, 120, 240)

	reader := NewReader(f, NewTickCache(f), nil)
	book, err := reader.Positions(context.Background(), pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos := book.Positions[0]
	if pos.Owner != nil {
		t.Fatalf("owner = %v, want nil", pos.Owner)
	}
	if pos.OwnerLabel() != "NOTFOUND" {
		t.Fatalf("owner label = %q, want NOTFOUND", pos.OwnerLabel())
	}
	if pos.Status != model.AboveRange {
		t.Fatalf("status = %s, want AboveRange", pos.Status)
	}
	if book.InRangeLiquidity.Sign() != 0 {
		t.Fatalf("in-range liquidity = %s, want 0", book.InRangeLiquidity)
	}
}

func TestReaderPositionsDecodeFailureAborts(t *testing.T) {
	pool := testPool()
	good := positionBytes(testKey(10), pool.Address, -60, 60, 1000, 0)

	f := &fakeChain{
		accounts: map[solana.PublicKey][]byte{},
		programAccounts: []chain.KeyedAccount{
			{Pubkey: testKey(13), Data: good},
			{Pubkey: testKey(14), Data: []byte{1, 2, 3}},
		},
		holders: map[solana.PublicKey][]chain.TokenHolder{},
	}
	registerTickArrays(t, f, pool, -60, 60)

	reader := NewReader(f, NewTickCache(f), nil)
	if _, err := reader.Positions(context.Background(), pool); err == nil {
		t.Fatalf("expected error when one position fails to decode")
	}
}
