package clmm

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// Account spans used for getProgramAccounts dataSize filters.
const (
	PersonalPositionSize = 281
	TokenAccountSize     = 165
)

// Byte offsets inside a personal position record, for memcmp filters.
const (
	PersonalPositionNftMintOffset = 9
	PersonalPositionPoolIDOffset  = 41
)

// PoolState is the decoded on-chain state of a CLMM pool, plus the account
// identity needed to derive PDAs against it.
type PoolState struct {
	Address   solana.PublicKey
	ProgramID solana.PublicKey

	AmmConfig      solana.PublicKey
	Creator        solana.PublicKey
	MintA          solana.PublicKey
	MintB          solana.PublicKey
	VaultA         solana.PublicKey
	VaultB         solana.PublicKey
	ObservationKey solana.PublicKey

	MintDecimalsA uint8
	MintDecimalsB uint8
	TickSpacing   uint16

	Liquidity    uint128.Uint128
	SqrtPriceX64 uint128.Uint128
	TickCurrent  int32

	FeeGrowthGlobalX64A uint128.Uint128
	FeeGrowthGlobalX64B uint128.Uint128
}

// PersonalPosition is the decoded on-chain record of one liquidity position.
type PersonalPosition struct {
	NftMint solana.PublicKey
	PoolID  solana.PublicKey

	TickLower int32
	TickUpper int32
	Liquidity uint128.Uint128

	FeeGrowthInsideLastX64A uint128.Uint128
	FeeGrowthInsideLastX64B uint128.Uint128
	TokenFeesOwedA          uint64
	TokenFeesOwedB          uint64
}

// TickState holds the per-tick fee accounting needed for owed-fee math.
type TickState struct {
	Tick                 int32
	LiquidityNet         *big.Int
	LiquidityGross       uint128.Uint128
	FeeGrowthOutsideX64A uint128.Uint128
	FeeGrowthOutsideX64B uint128.Uint128
}

// TickArray is one decoded tick-array account.
type TickArray struct {
	PoolID         solana.PublicKey
	StartTickIndex int32
	Ticks          [TickArraySize]TickState
}

// AmmConfig carries the pool fee tier configuration.
type AmmConfig struct {
	Index           uint16
	ProtocolFeeRate uint32
	TradeFeeRate    uint32
	TickSpacing     uint16
	FundFeeRate     uint32
}

// TokenAccount is a decoded SPL token account.
type TokenAccount struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

type decoder struct {
	data []byte
	off  int
}

func (d *decoder) pubkey() solana.PublicKey {
	pk := solana.PublicKeyFromBytes(d.data[d.off : d.off+32])
	d.off += 32
	return pk
}

func (d *decoder) u8() uint8 {
	v := d.data[d.off]
	d.off++
	return v
}

func (d *decoder) u16() uint16 {
	v := binary.LittleEndian.Uint16(d.data[d.off : d.off+2])
	d.off += 2
	return v
}

func (d *decoder) u32() uint32 {
	v := binary.LittleEndian.Uint32(d.data[d.off : d.off+4])
	d.off += 4
	return v
}

func (d *decoder) u64() uint64 {
	v := binary.LittleEndian.Uint64(d.data[d.off : d.off+8])
	d.off += 8
	return v
}

func (d *decoder) i32() int32 {
	return int32(d.u32())
}

func (d *decoder) u128() uint128.Uint128 {
	v := uint128.FromBytes(d.data[d.off : d.off+16])
	d.off += 16
	return v
}

// i128 decodes a little-endian two's-complement 128-bit integer.
func (d *decoder) i128() *big.Int {
	v := d.u128().Big()
	if d.data[d.off+15]&0x80 != 0 {
		v.Sub(v, Q128)
	}
	d.off += 16
	return v
}

func (d *decoder) skip(n int) { d.off += n }

// DecodePoolState decodes a CLMM pool account.
func DecodePoolState(address, programID solana.PublicKey, data []byte) (*PoolState, error) {
	if len(data) < 309 {
		return nil, fmt.Errorf("pool account too short: %d bytes", len(data))
	}

	d := &decoder{data: data}
	d.skip(8) // discriminator
	d.skip(1) // bump

	pool := &PoolState{Address: address, ProgramID: programID}
	pool.AmmConfig = d.pubkey()
	pool.Creator = d.pubkey()
	pool.MintA = d.pubkey()
	pool.MintB = d.pubkey()
	pool.VaultA = d.pubkey()
	pool.VaultB = d.pubkey()
	pool.ObservationKey = d.pubkey()
	pool.MintDecimalsA = d.u8()
	pool.MintDecimalsB = d.u8()
	pool.TickSpacing = d.u16()
	pool.Liquidity = d.u128()
	pool.SqrtPriceX64 = d.u128()
	pool.TickCurrent = d.i32()
	d.skip(4) // observation index + update duration
	pool.FeeGrowthGlobalX64A = d.u128()
	pool.FeeGrowthGlobalX64B = d.u128()

	if pool.TickSpacing == 0 {
		return nil, fmt.Errorf("pool %s: tick spacing is zero", address)
	}
	return pool, nil
}

// DecodePersonalPosition decodes a position record account.
func DecodePersonalPosition(data []byte) (*PersonalPosition, error) {
	if len(data) < PersonalPositionSize {
		return nil, fmt.Errorf("position account too short: %d bytes", len(data))
	}

	d := &decoder{data: data}
	d.skip(8) // discriminator
	d.skip(1) // bump

	pos := &PersonalPosition{}
	pos.NftMint = d.pubkey()
	pos.PoolID = d.pubkey()
	pos.TickLower = d.i32()
	pos.TickUpper = d.i32()
	pos.Liquidity = d.u128()
	pos.FeeGrowthInsideLastX64A = d.u128()
	pos.FeeGrowthInsideLastX64B = d.u128()
	pos.TokenFeesOwedA = d.u64()
	pos.TokenFeesOwedB = d.u64()

	if pos.TickLower >= pos.TickUpper {
		return nil, fmt.Errorf("position %s: tick bounds inverted [%d, %d)", pos.NftMint, pos.TickLower, pos.TickUpper)
	}
	return pos, nil
}

// tickStateSize is the serialized span of one tick slot.
const tickStateSize = 4 + 16 + 16 + 16 + 16 + 48 + 52

// DecodeTickArray decodes a tick-array account.
func DecodeTickArray(data []byte) (*TickArray, error) {
	if len(data) < 44+TickArraySize*tickStateSize {
		return nil, fmt.Errorf("tick array account too short: %d bytes", len(data))
	}

	d := &decoder{data: data}
	d.skip(8) // discriminator

	arr := &TickArray{}
	arr.PoolID = d.pubkey()
	arr.StartTickIndex = d.i32()
	for i := 0; i < TickArraySize; i++ {
		tick := &arr.Ticks[i]
		tick.Tick = d.i32()
		tick.LiquidityNet = d.i128()
		tick.LiquidityGross = d.u128()
		tick.FeeGrowthOutsideX64A = d.u128()
		tick.FeeGrowthOutsideX64B = d.u128()
		d.skip(48) // reward growths outside
		d.skip(52) // padding
	}
	return arr, nil
}

// DecodeAmmConfig decodes a fee tier configuration account.
func DecodeAmmConfig(data []byte) (*AmmConfig, error) {
	if len(data) < 57 {
		return nil, fmt.Errorf("amm config account too short: %d bytes", len(data))
	}

	d := &decoder{data: data}
	d.skip(8) // discriminator
	d.skip(1) // bump

	cfg := &AmmConfig{}
	cfg.Index = d.u16()
	d.skip(32) // owner
	cfg.ProtocolFeeRate = d.u32()
	cfg.TradeFeeRate = d.u32()
	cfg.TickSpacing = d.u16()
	cfg.FundFeeRate = d.u32()
	return cfg, nil
}

// DecodeTokenAccount decodes an SPL token account.
func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) < TokenAccountSize {
		return nil, fmt.Errorf("token account too short: %d bytes", len(data))
	}

	d := &decoder{data: data}
	acc := &TokenAccount{}
	acc.Mint = d.pubkey()
	acc.Owner = d.pubkey()
	acc.Amount = d.u64()
	return acc, nil
}

// TickArrayStartIndex returns the start tick of the array containing tick.
func TickArrayStartIndex(tick int32, tickSpacing uint16) int32 {
	ticksPerArray := int32(tickSpacing) * TickArraySize
	start := tick / ticksPerArray
	if tick < 0 && tick%ticksPerArray != 0 {
		start--
	}
	return start * ticksPerArray
}

// TickOffsetInArray returns the slot index of tick within its array.
func TickOffsetInArray(tick, startTickIndex int32, tickSpacing uint16) (int, error) {
	if tick < startTickIndex || tick >= startTickIndex+int32(tickSpacing)*TickArraySize {
		return 0, fmt.Errorf("tick %d outside array starting at %d", tick, startTickIndex)
	}
	if (tick-startTickIndex)%int32(tickSpacing) != 0 {
		return 0, fmt.Errorf("tick %d not aligned to spacing %d", tick, tickSpacing)
	}
	return int((tick - startTickIndex) / int32(tickSpacing)), nil
}
