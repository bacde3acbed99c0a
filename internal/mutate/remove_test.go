package mutate

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/BilalMir135/raydium-test-bot/internal/chain"
	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/BilalMir135/raydium-test-bot/internal/model"
	"github.com/BilalMir135/raydium-test-bot/internal/position"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"
)

type fakeChain struct {
	accounts        map[solana.PublicKey][]byte
	programAccounts []chain.KeyedAccount
}

func (f *fakeChain) GetAccount(_ context.Context, address solana.PublicKey) (*chain.Account, error) {
	data, ok := f.accounts[address]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", address, chain.ErrAccountNotFound)
	}
	return &chain.Account{Data: data}, nil
}

func (f *fakeChain) ProgramAccounts(_ context.Context, _ solana.PublicKey, _ uint64, _ uint64, _ []byte) ([]chain.KeyedAccount, error) {
	return f.programAccounts, nil
}

func (f *fakeChain) MinimumBalanceForRentExemption(_ context.Context, _ uint64) (uint64, error) {
	return 1_461_600, nil
}

func testKey(seed byte) solana.PublicKey {
	var raw [32]byte
	for i := range raw {
		raw[i] = seed
	}
	return solana.PublicKeyFromBytes(raw[:])
}

func testMutator(f *fakeChain) (*Mutator, error) {
	wallet, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	return NewMutator(f, position.NewTickCache(f), nil, wallet, 0.01, nil), nil
}

func testPool() *clmm.PoolState {
	return &clmm.PoolState{
		Address:       testKey(1),
		ProgramID:     clmm.DevnetProgramID,
		AmmConfig:     testKey(2),
		MintA:         testKey(3),
		MintB:         testKey(4),
		VaultA:        testKey(5),
		VaultB:        testKey(6),
		MintDecimalsA: 9,
		MintDecimalsB: 9,
		TickSpacing:   60,
		TickCurrent:   0,
		SqrtPriceX64:  uint128.FromBig(new(big.Int).Set(clmm.Q64)),
	}
}

func TestRemovePositionIxNotFound(t *testing.T) {
	f := &fakeChain{accounts: map[solana.PublicKey][]byte{}}
	m, err := testMutator(f)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err = m.RemovePositionIx(context.Background(), testPool(), testKey(20), nil)
	if !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("expected ErrPositionNotFound, got %v", err)
	}
}

func TestRemovePositionIxExplicit(t *testing.T) {
	f := &fakeChain{accounts: map[solana.PublicKey][]byte{}}
	m, err := testMutator(f)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	record := &clmm.PersonalPosition{
		NftMint:   testKey(20),
		PoolID:    testKey(1),
		TickLower: -60,
		TickUpper: 60,
		Liquidity: uint128.From64(1000),
	}

	prepared, err := m.RemovePositionIx(context.Background(), testPool(), solana.PublicKey{}, record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prepared.Instructions) != 2 {
		t.Fatalf("instructions = %d, want decrease + close", len(prepared.Instructions))
	}
	if len(prepared.Signers) != 0 {
		t.Fatalf("removal needs no extra signers, got %d", len(prepared.Signers))
	}
}

func TestOpenPositionIxGeneratesMintSigner(t *testing.T) {
	f := &fakeChain{accounts: map[solana.PublicKey][]byte{}}
	m, err := testMutator(f)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	open, err := m.OpenPositionIx(context.Background(), testPool(),
		model.Range{TickLower: -60, TickUpper: 60}, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(open.Instructions) != 1 {
		t.Fatalf("instructions = %d, want 1", len(open.Instructions))
	}
	if len(open.Signers) != 1 || !open.Signers[0].PublicKey().Equals(open.NftMint) {
		t.Fatalf("nft mint keypair must sign the open")
	}
	if open.Deposit.Liquidity.Sign() <= 0 {
		t.Fatalf("liquidity = %s, want > 0", open.Deposit.Liquidity)
	}
}
