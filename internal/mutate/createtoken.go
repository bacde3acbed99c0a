package mutate

import (
	"context"
	"fmt"

	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"
)

// mintAccountSize is the serialized span of an SPL mint account.
const mintAccountSize = 82

// CreateTokenPrepared is a built token-creation instruction set plus the new
// mint address.
type CreateTokenPrepared struct {
	Prepared
	Mint         solana.PublicKey
	TokenAccount solana.PublicKey
}

// CreateTokenIx builds a devnet test fixture: a fresh mint with the wallet
// as authority, its associated token account, and the full supply minted to
// the wallet.
func (m *Mutator) CreateTokenIx(ctx context.Context, decimals uint8, supply uint64) (*CreateTokenPrepared, error) {
	mintKeypair, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate mint keypair: %w", err)
	}
	mint := mintKeypair.PublicKey()
	owner := m.wallet.PublicKey()

	rent, err := m.chain.MinimumBalanceForRentExemption(ctx, mintAccountSize)
	if err != nil {
		return nil, err
	}

	tokenAccount, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, fmt.Errorf("derive token account: %w", err)
	}

	createMint := system.NewCreateAccountInstruction(
		rent, mintAccountSize, clmm.TokenProgramID, owner, mint,
	).Build()
	initMint := token.NewInitializeMintInstruction(
		decimals, owner, owner, mint, solana.SysVarRentPubkey,
	).Build()
	createATA := associatedtokenaccount.NewCreateInstruction(owner, owner, mint).Build()
	mintSupply := token.NewMintToInstruction(supply, mint, tokenAccount, owner, nil).Build()

	m.log.Info("create token prepared",
		zap.String("mint", mint.String()),
		zap.Uint8("decimals", decimals),
		zap.Uint64("supply", supply),
	)

	return &CreateTokenPrepared{
		Prepared: Prepared{
			Instructions: []solana.Instruction{createMint, initMint, createATA, mintSupply},
			Signers:      []solana.PrivateKey{mintKeypair},
		},
		Mint:         mint,
		TokenAccount: tokenAccount,
	}, nil
}

// CreateToken builds, submits, and confirms the token creation fixture.
func (m *Mutator) CreateToken(ctx context.Context, decimals uint8, supply uint64) (solana.Signature, solana.PublicKey, error) {
	prepared, err := m.CreateTokenIx(ctx, decimals, supply)
	if err != nil {
		return solana.Signature{}, solana.PublicKey{}, err
	}
	sig, err := m.orch.Execute(ctx, prepared.Instructions, m.wallet, prepared.Signers...)
	if err != nil {
		return sig, prepared.Mint, fmt.Errorf("create token: %w", err)
	}
	return sig, prepared.Mint, nil
}
