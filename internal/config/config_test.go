package config

import (
	"testing"

	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
)

func TestLoadRebalanceDefaults(t *testing.T) {
	cfg, err := LoadRebalance("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Commitment != "confirmed" {
		t.Fatalf("commitment = %q, want confirmed", cfg.Commitment)
	}
	if cfg.Network != "mainnet" {
		t.Fatalf("network = %q, want mainnet", cfg.Network)
	}
	if cfg.Share != 0.8 {
		t.Fatalf("share = %v, want 0.8", cfg.Share)
	}
	if cfg.Slippage != 0.01 {
		t.Fatalf("slippage = %v, want 0.01", cfg.Slippage)
	}
	if cfg.SwapLamports != 1_000_000_000 {
		t.Fatalf("swap lamports = %d, want 1000000000", cfg.SwapLamports)
	}
	if !cfg.Atomic {
		t.Fatalf("atomic default should be true")
	}
}

func TestProgramID(t *testing.T) {
	got, err := ProgramID("mainnet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equals(clmm.MainnetProgramID) {
		t.Fatalf("mainnet program id mismatch")
	}

	got, err = ProgramID("devnet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equals(clmm.DevnetProgramID) {
		t.Fatalf("devnet program id mismatch")
	}

	if _, err := ProgramID("testnet"); err == nil {
		t.Fatalf("expected error for unknown network")
	}
}
