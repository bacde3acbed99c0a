package clmm

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Tick indexes in PDA seeds are serialized big-endian.
func tickSeed(tick int32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(tick))
	return buf
}

// TickArrayAddress derives the tick-array PDA for a start tick index.
func TickArrayAddress(programID, pool solana.PublicKey, startIndex int32) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("tick_array"),
		pool.Bytes(),
		tickSeed(startIndex),
	}, programID)
	return addr, err
}

// TickArrayAddressByTick derives the tick-array PDA covering an arbitrary tick.
func TickArrayAddressByTick(programID, pool solana.PublicKey, tick int32, tickSpacing uint16) (solana.PublicKey, error) {
	return TickArrayAddress(programID, pool, TickArrayStartIndex(tick, tickSpacing))
}

// PersonalPositionAddress derives the position record PDA for an NFT mint.
func PersonalPositionAddress(programID, nftMint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("position"),
		nftMint.Bytes(),
	}, programID)
	return addr, err
}

// ProtocolPositionAddress derives the pool-wide position PDA for a tick range.
func ProtocolPositionAddress(programID, pool solana.PublicKey, tickLower, tickUpper int32) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("position"),
		pool.Bytes(),
		tickSeed(tickLower),
		tickSeed(tickUpper),
	}, programID)
	return addr, err
}

// PoolAddress derives the pool PDA for an amm config and mint pair.
func PoolAddress(programID, ammConfig, mint0, mint1 solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("pool"),
		ammConfig.Bytes(),
		mint0.Bytes(),
		mint1.Bytes(),
	}, programID)
	return addr, err
}

// PoolVaultAddress derives the token vault PDA of a pool for one mint.
func PoolVaultAddress(programID, pool, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("pool_vault"),
		pool.Bytes(),
		mint.Bytes(),
	}, programID)
	return addr, err
}

// TickArrayBitmapAddress derives the tick-array bitmap extension PDA of a pool.
func TickArrayBitmapAddress(programID, pool solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("pool_tick_array_bitmap_extension"),
		pool.Bytes(),
	}, programID)
	return addr, err
}

// ObservationAddress derives the price observation PDA of a pool.
func ObservationAddress(programID, pool solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("observation"),
		pool.Bytes(),
	}, programID)
	return addr, err
}

// MetadataAddress derives the Metaplex metadata PDA for a mint.
func MetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("metadata"),
		MetadataProgramID.Bytes(),
		mint.Bytes(),
	}, MetadataProgramID)
	return addr, err
}
