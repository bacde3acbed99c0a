package clmm

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// Raydium CLMM program IDs per cluster.
var (
	MainnetProgramID = solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
	DevnetProgramID  = solana.MustPublicKeyFromBase58("devi51mZmdwUJGU9hjN27vEz64Gps7uUefqxg27EAtH")
)

var (
	SystemProgramID          = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	TokenProgramID           = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	Token2022ProgramID       = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	MetadataProgramID        = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	MemoProgramID            = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
	RentSysvarID             = solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
	WSOLMint                 = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

// Tick bounds of the CLMM protocol.
const (
	MinTick int32 = -443636
	MaxTick int32 = 443636
)

// TickArraySize is the number of tick slots per tick-array account.
const TickArraySize = 60

// FeeRateDenominator scales AmmConfig fee rates (parts per million).
const FeeRateDenominator = 1_000_000

// Sqrt price bounds in Q64.64, matching the protocol's representable ticks.
var (
	MinSqrtPriceX64 = big.NewInt(4295048016)
	MaxSqrtPriceX64 = mustBig("79226673521066979257578248091")
)

// Q64 is 2^64, the Q64.64 fixed-point scale.
var Q64 = new(big.Int).Lsh(big.NewInt(1), 64)

// Q128 is 2^128, the modulus for wrapping fee-growth arithmetic.
var Q128 = new(big.Int).Lsh(big.NewInt(1), 128)

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid big integer literal: " + s)
	}
	return v
}
