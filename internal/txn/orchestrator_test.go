package txn

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

type fakeSubmitter struct {
	sent     *solana.Transaction
	statuses []*rpc.SignatureStatusesResult
	polls    int
	sendErr  error
}

func (f *fakeSubmitter) LatestBlockhash(_ context.Context) (solana.Hash, error) {
	return solana.Hash{1}, nil
}

func (f *fakeSubmitter) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	f.sent = tx
	return solana.Signature{2}, nil
}

func (f *fakeSubmitter) SignatureStatus(_ context.Context, _ solana.Signature) (*rpc.SignatureStatusesResult, error) {
	if f.polls >= len(f.statuses) {
		return f.statuses[len(f.statuses)-1], nil
	}
	status := f.statuses[f.polls]
	f.polls++
	return status, nil
}

func noopInstruction(payer solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		clmm.MemoProgramID,
		solana.AccountMetaSlice{solana.Meta(payer).WRITE().SIGNER()},
		[]byte("ping"),
	)
}

func testOrchestrator(f *fakeSubmitter) *Orchestrator {
	o := New(f, nil)
	o.pollInterval = time.Millisecond
	o.confirmTimeout = time.Second
	return o
}

func TestExecuteConfirms(t *testing.T) {
	payer, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("keypair: %v", err)
	}

	f := &fakeSubmitter{statuses: []*rpc.SignatureStatusesResult{
		nil,
		{ConfirmationStatus: rpc.ConfirmationStatusConfirmed},
	}}

	sig, err := testOrchestrator(f).Execute(context.Background(),
		[]solana.Instruction{noopInstruction(payer.PublicKey())}, payer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != (solana.Signature{2}) {
		t.Fatalf("signature mismatch")
	}
	if f.sent == nil || len(f.sent.Signatures) == 0 {
		t.Fatalf("transaction was not signed before submission")
	}
}

func TestExecuteNoInstructions(t *testing.T) {
	payer, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("keypair: %v", err)
	}

	if _, err := testOrchestrator(&fakeSubmitter{}).Execute(context.Background(), nil, payer); err == nil {
		t.Fatalf("expected error for empty instruction set")
	}
}

func TestConfirmOnChainFailure(t *testing.T) {
	f := &fakeSubmitter{statuses: []*rpc.SignatureStatusesResult{
		{Err: fmt.Errorf("custom program error"), ConfirmationStatus: rpc.ConfirmationStatusConfirmed},
	}}

	if err := testOrchestrator(f).Confirm(context.Background(), solana.Signature{3}); err == nil {
		t.Fatalf("expected error for failed transaction")
	}
}

func TestConfirmTimeout(t *testing.T) {
	f := &fakeSubmitter{statuses: []*rpc.SignatureStatusesResult{nil}}

	o := testOrchestrator(f)
	o.confirmTimeout = 5 * time.Millisecond

	if err := o.Confirm(context.Background(), solana.Signature{3}); err == nil {
		t.Fatalf("expected timeout error")
	}
}
