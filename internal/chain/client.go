package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrAccountNotFound is returned when a queried account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// Account is a fetched on-chain account.
type Account struct {
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// KeyedAccount pairs an account with its address.
type KeyedAccount struct {
	Pubkey solana.PublicKey
	Data   []byte
}

// TokenHolder is one entry of a token largest-accounts query.
type TokenHolder struct {
	Address solana.PublicKey
	Amount  string
}

// Client wraps the Solana RPC client and provides typed helper methods.
type Client struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
}

// NewClient creates a chain client for the RPC URL.
func NewClient(rpcURL string, commitment rpc.CommitmentType) *Client {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Client{
		rpc:        rpc.New(rpcURL),
		commitment: commitment,
	}
}

// Commitment returns the commitment level used for queries.
func (c *Client) Commitment() rpc.CommitmentType { return c.commitment }

// GetAccount fetches a single account; absent accounts map to
// ErrAccountNotFound.
func (c *Client) GetAccount(ctx context.Context, address solana.PublicKey) (*Account, error) {
	resp, err := c.rpc.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", address, ErrAccountNotFound)
		}
		return nil, fmt.Errorf("get account %s: %w", address, err)
	}
	if resp == nil || resp.Value == nil {
		return nil, fmt.Errorf("account %s: %w", address, ErrAccountNotFound)
	}

	return &Account{
		Owner:    resp.Value.Owner,
		Lamports: resp.Value.Lamports,
		Data:     resp.Value.Data.GetBinary(),
	}, nil
}

// ProgramAccounts queries all accounts of a program matching a record size
// and one memcmp field filter.
func (c *Client) ProgramAccounts(ctx context.Context, program solana.PublicKey, dataSize uint64, memcmpOffset uint64, memcmpBytes []byte) ([]KeyedAccount, error) {
	filters := []rpc.RPCFilter{
		{DataSize: dataSize},
		{Memcmp: &rpc.RPCFilterMemcmp{Offset: memcmpOffset, Bytes: solana.Base58(memcmpBytes)}},
	}

	resp, err := c.rpc.GetProgramAccountsWithOpts(ctx, program, &rpc.GetProgramAccountsOpts{
		Commitment: c.commitment,
		Filters:    filters,
	})
	if err != nil {
		return nil, fmt.Errorf("get program accounts: %w", err)
	}

	accounts := make([]KeyedAccount, 0, len(resp))
	for _, acc := range resp {
		if acc == nil || acc.Account == nil {
			continue
		}
		accounts = append(accounts, KeyedAccount{
			Pubkey: acc.Pubkey,
			Data:   acc.Account.Data.GetBinary(),
		})
	}
	return accounts, nil
}

// TokenLargestAccounts returns the largest token accounts of a mint in
// descending balance order.
func (c *Client) TokenLargestAccounts(ctx context.Context, mint solana.PublicKey) ([]TokenHolder, error) {
	resp, err := c.rpc.GetTokenLargestAccounts(ctx, mint, c.commitment)
	if err != nil {
		return nil, fmt.Errorf("get token largest accounts %s: %w", mint, err)
	}
	if resp == nil {
		return nil, nil
	}

	holders := make([]TokenHolder, 0, len(resp.Value))
	for _, v := range resp.Value {
		if v == nil {
			continue
		}
		holders = append(holders, TokenHolder{Address: v.Address, Amount: v.Amount})
	}
	return holders, nil
}

// Balance returns the lamport balance of an account; absent accounts have
// balance zero.
func (c *Client) Balance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	resp, err := c.rpc.GetBalance(ctx, address, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("get balance %s: %w", address, err)
	}
	return resp.Value, nil
}

// TokenBalance returns the raw token balance of a token account; an absent
// account reads as zero.
func (c *Client) TokenBalance(ctx context.Context, tokenAccount solana.PublicKey) (*big.Int, error) {
	resp, err := c.rpc.GetTokenAccountBalance(ctx, tokenAccount, c.commitment)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return big.NewInt(0), nil
		}
		return nil, fmt.Errorf("get token balance %s: %w", tokenAccount, err)
	}
	if resp == nil || resp.Value == nil {
		return big.NewInt(0), nil
	}

	amount, ok := new(big.Int).SetString(resp.Value.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("token balance %s: bad amount %q", tokenAccount, resp.Value.Amount)
	}
	return amount, nil
}

// EpochInfo returns the current epoch information.
func (c *Client) EpochInfo(ctx context.Context) (*rpc.GetEpochInfoResult, error) {
	info, err := c.rpc.GetEpochInfo(ctx, c.commitment)
	if err != nil {
		return nil, fmt.Errorf("get epoch info: %w", err)
	}
	return info, nil
}

// LatestBlockhash returns a recent blockhash for transaction assembly.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	resp, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	return resp.Value.Blockhash, nil
}

// SendTransaction submits a signed transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	return sig, nil
}

// SignatureStatus returns the confirmation status of a submitted signature;
// nil means the cluster has not seen it yet.
func (c *Client) SignatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error) {
	resp, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, fmt.Errorf("get signature status: %w", err)
	}
	if resp == nil || len(resp.Value) == 0 {
		return nil, nil
	}
	return resp.Value[0], nil
}

// MinimumBalanceForRentExemption returns the lamports needed to make an
// account of the given size rent exempt.
func (c *Client) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, size, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("get rent exemption: %w", err)
	}
	return lamports, nil
}
