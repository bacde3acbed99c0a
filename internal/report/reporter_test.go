package report

import (
	"bufio"
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/BilalMir135/raydium-test-bot/internal/model"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

type fakeBalances struct {
	lamports uint64
	asset    int64
}

func (f *fakeBalances) Balance(_ context.Context, _ solana.PublicKey) (uint64, error) {
	return f.lamports, nil
}

func (f *fakeBalances) TokenBalance(_ context.Context, _ solana.PublicKey) (*big.Int, error) {
	return big.NewInt(f.asset), nil
}

func testKey(seed byte) solana.PublicKey {
	var raw [32]byte
	for i := range raw {
		raw[i] = seed
	}
	return solana.PublicKeyFromBytes(raw[:])
}

func TestSnapshot(t *testing.T) {
	reporter := NewReporter(&fakeBalances{lamports: 2_500_000_000, asset: 1_000_000}, nil, nil)

	snap, err := reporter.Snapshot(context.Background(), testKey(1), testKey(2), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !snap.SOL.Equal(decimal.NewFromFloat(2.5)) {
		t.Fatalf("sol = %s, want 2.5", snap.SOL)
	}
	if !snap.Asset.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("asset = %s, want 1", snap.Asset)
	}
}

func TestPositionDeltas(t *testing.T) {
	mintOld, mintNew := testKey(10), testKey(11)

	before := &model.Book{
		Positions: []*model.Position{
			{
				NftMint:   mintOld,
				Status:    model.InRange,
				AmountA:   decimal.NewFromInt(100),
				AmountB:   decimal.NewFromInt(50),
				Liquidity: big.NewInt(500),
			},
		},
		InRangeLiquidity: big.NewInt(500),
	}
	after := &model.Book{
		Positions: []*model.Position{
			{
				NftMint:   mintOld,
				Status:    model.InRange,
				AmountA:   decimal.NewFromInt(80),
				AmountB:   decimal.NewFromInt(70),
				Liquidity: big.NewInt(500),
			},
			{
				NftMint:   mintNew,
				Status:    model.InRange,
				AmountA:   decimal.NewFromInt(40),
				AmountB:   decimal.NewFromInt(10),
				Liquidity: big.NewInt(1500),
			},
		},
		InRangeLiquidity: big.NewInt(2000),
	}

	deltas := PositionDeltas(before, after)
	if len(deltas) != 2 {
		t.Fatalf("deltas = %d, want 2", len(deltas))
	}

	old := deltas[0]
	if !old.AmountARemoved.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("amount a removed = %s, want 20", old.AmountARemoved)
	}
	if !old.AmountBAdded.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("amount b added = %s, want 20", old.AmountBAdded)
	}
	if !old.LiquidityShare.Equal(decimal.NewFromFloat(0.25)) {
		t.Fatalf("liquidity share = %s, want 0.25", old.LiquidityShare)
	}

	fresh := deltas[1]
	if !fresh.AmountAAdded.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("new position amount a added = %s, want 40", fresh.AmountAAdded)
	}
	if !fresh.LiquidityShare.Equal(decimal.NewFromFloat(0.75)) {
		t.Fatalf("new position share = %s, want 0.75", fresh.LiquidityShare)
	}
}

func TestJsonlSinkAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "out.jsonl")
	sink := NewJsonlSink(path)

	report := &model.RebalanceReport{
		Pool:       testKey(1).String(),
		SOLDelta:   decimal.NewFromFloat(-1.25),
		AssetDelta: decimal.NewFromInt(3),
	}
	if err := sink.Append(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sink.Append(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer file.Close()

	var lines int
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var decoded model.RebalanceReport
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("line %d not valid json: %v", lines, err)
		}
		if decoded.Pool != report.Pool {
			t.Fatalf("pool = %q, want %q", decoded.Pool, report.Pool)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("lines = %d, want 2", lines)
	}
}
