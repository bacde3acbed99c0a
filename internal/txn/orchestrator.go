package txn

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// submitter is the slice of the chain client the orchestrator needs.
type submitter interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	SignatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error)
}

// Orchestrator assembles, signs, submits, and confirms transactions. A
// submission or confirmation failure is terminal; callers that want retries
// must wrap it themselves.
type Orchestrator struct {
	chain          submitter
	log            *zap.Logger
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

// New creates an orchestrator with default confirmation polling.
func New(c submitter, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		chain:          c,
		log:            logger,
		pollInterval:   2 * time.Second,
		confirmTimeout: 90 * time.Second,
	}
}

// Execute builds a transaction from the instructions, signs it with the
// payer and any extra signers, submits it, and blocks until the cluster
// confirms it.
func (o *Orchestrator) Execute(ctx context.Context, instructions []solana.Instruction, payer solana.PrivateKey, extraSigners ...solana.PrivateKey) (solana.Signature, error) {
	if len(instructions) == 0 {
		return solana.Signature{}, fmt.Errorf("no instructions to execute")
	}

	blockhash, err := o.chain.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	signers := append([]solana.PrivateKey{payer}, extraSigners...)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(key) {
				return &signers[i]
			}
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := o.chain.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	o.log.Info("transaction submitted",
		zap.String("signature", sig.String()),
		zap.Int("instructions", len(instructions)),
	)

	if err := o.Confirm(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// Confirm polls the signature status until the cluster reports it confirmed
// or finalized. An on-chain error or a timeout fails the confirmation.
func (o *Orchestrator) Confirm(ctx context.Context, sig solana.Signature) error {
	deadline := time.Now().Add(o.confirmTimeout)
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		status, err := o.chain.SignatureStatus(ctx, sig)
		if err != nil {
			return err
		}
		if status != nil {
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on chain: %v", sig, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				o.log.Info("transaction confirmed",
					zap.String("signature", sig.String()),
					zap.String("status", string(status.ConfirmationStatus)),
				)
				return nil
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("transaction %s not confirmed within %s", sig, o.confirmTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
