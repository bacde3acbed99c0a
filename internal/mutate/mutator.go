package mutate

import (
	"context"
	"errors"

	"github.com/BilalMir135/raydium-test-bot/internal/chain"
	"github.com/BilalMir135/raydium-test-bot/internal/position"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// ErrPositionNotFound is returned when a removal target cannot be resolved
// from either an explicit position state or an on-chain lookup.
var ErrPositionNotFound = errors.New("position not found")

// chainClient is the slice of the chain client the mutator needs.
type chainClient interface {
	GetAccount(ctx context.Context, address solana.PublicKey) (*chain.Account, error)
	ProgramAccounts(ctx context.Context, program solana.PublicKey, dataSize uint64, memcmpOffset uint64, memcmpBytes []byte) ([]chain.KeyedAccount, error)
	MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
}

// executor submits and confirms a prepared instruction set.
type executor interface {
	Execute(ctx context.Context, instructions []solana.Instruction, payer solana.PrivateKey, extraSigners ...solana.PrivateKey) (solana.Signature, error)
}

// Prepared is a built instruction set plus the extra signers it requires
// beyond the fee payer. Prepared sets concatenate for atomic execution.
type Prepared struct {
	Instructions []solana.Instruction
	Signers      []solana.PrivateKey
}

// Concat joins prepared instruction sets into one, preserving order.
func Concat(sets ...*Prepared) *Prepared {
	out := &Prepared{}
	for _, s := range sets {
		out.Instructions = append(out.Instructions, s.Instructions...)
		out.Signers = append(out.Signers, s.Signers...)
	}
	return out
}

// Mutator builds and optionally executes the position-changing operations:
// open, swap, remove, and pool creation. Every operation has a build-only
// Ix form and an Exe form that submits through the orchestrator.
type Mutator struct {
	chain    chainClient
	ticks    *position.TickCache
	orch     executor
	wallet   solana.PrivateKey
	slippage float64
	log      *zap.Logger
}

// NewMutator creates a mutator signing as the given wallet with a symmetric
// slippage tolerance applied to deposits and swaps.
func NewMutator(c chainClient, ticks *position.TickCache, orch executor, wallet solana.PrivateKey, slippage float64, logger *zap.Logger) *Mutator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mutator{
		chain:    c,
		ticks:    ticks,
		orch:     orch,
		wallet:   wallet,
		slippage: slippage,
		log:      logger,
	}
}

// Wallet returns the signing wallet's public key.
func (m *Mutator) Wallet() solana.PublicKey { return m.wallet.PublicKey() }
