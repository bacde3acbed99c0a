package clmm

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// anchorDiscriminator returns the 8-byte anchor method discriminator.
func anchorDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("global:" + name))
	return sum[:8]
}

type ixData struct {
	buf bytes.Buffer
}

func newIxData(method string) *ixData {
	d := &ixData{}
	d.buf.Write(anchorDiscriminator(method))
	return d
}

func (d *ixData) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	d.buf.Write(b[:])
}

func (d *ixData) i32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	d.buf.Write(b[:])
}

func (d *ixData) u128(v *big.Int) {
	var b [16]byte
	v.FillBytes(b[:])
	// big.Int serializes big-endian; the wire format is little-endian.
	for i, j := 0, 15; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	d.buf.Write(b[:])
}

func (d *ixData) boolean(v bool) {
	if v {
		d.buf.WriteByte(1)
	} else {
		d.buf.WriteByte(0)
	}
}

func (d *ixData) optionBool(v *bool) {
	if v == nil {
		d.buf.WriteByte(0)
		return
	}
	d.buf.WriteByte(1)
	d.boolean(*v)
}

func (d *ixData) bytes() []byte { return d.buf.Bytes() }

// OpenPositionAccounts lists every account the open-position instruction
// touches, in program order.
type OpenPositionAccounts struct {
	Payer            solana.PublicKey
	NftOwner         solana.PublicKey
	NftMint          solana.PublicKey
	NftAccount       solana.PublicKey
	Metadata         solana.PublicKey
	Pool             solana.PublicKey
	ProtocolPosition solana.PublicKey
	TickArrayLower   solana.PublicKey
	TickArrayUpper   solana.PublicKey
	PersonalPosition solana.PublicKey
	TokenAccountA    solana.PublicKey
	TokenAccountB    solana.PublicKey
	VaultA           solana.PublicKey
	VaultB           solana.PublicKey
	MintA            solana.PublicKey
	MintB            solana.PublicKey
}

// NewOpenPositionInstruction builds the open_position_v2 instruction: mints
// the position NFT, initializes the position record, and deposits liquidity.
func NewOpenPositionInstruction(
	programID solana.PublicKey,
	accs OpenPositionAccounts,
	tickLower, tickUpper, tickArrayLowerStart, tickArrayUpperStart int32,
	liquidity *big.Int,
	amountMaxA, amountMaxB uint64,
) solana.Instruction {
	data := newIxData("open_position_v2")
	data.i32(tickLower)
	data.i32(tickUpper)
	data.i32(tickArrayLowerStart)
	data.i32(tickArrayUpperStart)
	data.u128(liquidity)
	data.u64(amountMaxA)
	data.u64(amountMaxB)
	data.boolean(true) // with metadata
	data.optionBool(nil)

	metas := solana.AccountMetaSlice{
		solana.Meta(accs.Payer).WRITE().SIGNER(),
		solana.Meta(accs.NftOwner),
		solana.Meta(accs.NftMint).WRITE().SIGNER(),
		solana.Meta(accs.NftAccount).WRITE(),
		solana.Meta(accs.Metadata).WRITE(),
		solana.Meta(accs.Pool).WRITE(),
		solana.Meta(accs.ProtocolPosition).WRITE(),
		solana.Meta(accs.TickArrayLower).WRITE(),
		solana.Meta(accs.TickArrayUpper).WRITE(),
		solana.Meta(accs.PersonalPosition).WRITE(),
		solana.Meta(accs.TokenAccountA).WRITE(),
		solana.Meta(accs.TokenAccountB).WRITE(),
		solana.Meta(accs.VaultA).WRITE(),
		solana.Meta(accs.VaultB).WRITE(),
		solana.Meta(RentSysvarID),
		solana.Meta(SystemProgramID),
		solana.Meta(TokenProgramID),
		solana.Meta(AssociatedTokenProgramID),
		solana.Meta(MetadataProgramID),
		solana.Meta(Token2022ProgramID),
		solana.Meta(accs.MintA),
		solana.Meta(accs.MintB),
	}
	return solana.NewInstruction(programID, metas, data.bytes())
}

// DecreaseLiquidityAccounts lists the accounts of the remove-liquidity
// instruction.
type DecreaseLiquidityAccounts struct {
	NftOwner         solana.PublicKey
	NftAccount       solana.PublicKey
	PersonalPosition solana.PublicKey
	Pool             solana.PublicKey
	ProtocolPosition solana.PublicKey
	VaultA           solana.PublicKey
	VaultB           solana.PublicKey
	TickArrayLower   solana.PublicKey
	TickArrayUpper   solana.PublicKey
	RecipientA       solana.PublicKey
	RecipientB       solana.PublicKey
	MintA            solana.PublicKey
	MintB            solana.PublicKey
}

// NewDecreaseLiquidityInstruction builds decrease_liquidity_v2 withdrawing
// the given liquidity with per-side minimum-out bounds.
func NewDecreaseLiquidityInstruction(
	programID solana.PublicKey,
	accs DecreaseLiquidityAccounts,
	liquidity *big.Int,
	amountMinA, amountMinB uint64,
) solana.Instruction {
	data := newIxData("decrease_liquidity_v2")
	data.u128(liquidity)
	data.u64(amountMinA)
	data.u64(amountMinB)

	metas := solana.AccountMetaSlice{
		solana.Meta(accs.NftOwner).SIGNER(),
		solana.Meta(accs.NftAccount),
		solana.Meta(accs.PersonalPosition).WRITE(),
		solana.Meta(accs.Pool).WRITE(),
		solana.Meta(accs.ProtocolPosition).WRITE(),
		solana.Meta(accs.VaultA).WRITE(),
		solana.Meta(accs.VaultB).WRITE(),
		solana.Meta(accs.TickArrayLower).WRITE(),
		solana.Meta(accs.TickArrayUpper).WRITE(),
		solana.Meta(accs.RecipientA).WRITE(),
		solana.Meta(accs.RecipientB).WRITE(),
		solana.Meta(TokenProgramID),
		solana.Meta(Token2022ProgramID),
		solana.Meta(MemoProgramID),
		solana.Meta(accs.MintA),
		solana.Meta(accs.MintB),
	}
	return solana.NewInstruction(programID, metas, data.bytes())
}

// NewClosePositionInstruction builds close_position, burning the position NFT
// and reclaiming the record's rent once its liquidity is zero.
func NewClosePositionInstruction(
	programID solana.PublicKey,
	nftOwner, nftMint, nftAccount, personalPosition solana.PublicKey,
) solana.Instruction {
	data := newIxData("close_position")

	metas := solana.AccountMetaSlice{
		solana.Meta(nftOwner).WRITE().SIGNER(),
		solana.Meta(nftMint).WRITE(),
		solana.Meta(nftAccount).WRITE(),
		solana.Meta(personalPosition).WRITE(),
		solana.Meta(SystemProgramID),
		solana.Meta(TokenProgramID),
	}
	return solana.NewInstruction(programID, metas, data.bytes())
}

// SwapAccounts lists the fixed accounts of the swap instruction; traversed
// tick arrays follow as remaining accounts.
type SwapAccounts struct {
	Payer         solana.PublicKey
	AmmConfig     solana.PublicKey
	Pool          solana.PublicKey
	InputAccount  solana.PublicKey
	OutputAccount solana.PublicKey
	InputVault    solana.PublicKey
	OutputVault   solana.PublicKey
	Observation   solana.PublicKey
	InputMint     solana.PublicKey
	OutputMint    solana.PublicKey
}

// NewSwapInstruction builds swap_v2 for an exact-input trade.
func NewSwapInstruction(
	programID solana.PublicKey,
	accs SwapAccounts,
	amountIn, minAmountOut uint64,
	sqrtPriceLimitX64 *big.Int,
	isBaseInput bool,
	tickArrays []solana.PublicKey,
) solana.Instruction {
	data := newIxData("swap_v2")
	data.u64(amountIn)
	data.u64(minAmountOut)
	data.u128(sqrtPriceLimitX64)
	data.boolean(isBaseInput)

	metas := solana.AccountMetaSlice{
		solana.Meta(accs.Payer).SIGNER(),
		solana.Meta(accs.AmmConfig),
		solana.Meta(accs.Pool).WRITE(),
		solana.Meta(accs.InputAccount).WRITE(),
		solana.Meta(accs.OutputAccount).WRITE(),
		solana.Meta(accs.InputVault).WRITE(),
		solana.Meta(accs.OutputVault).WRITE(),
		solana.Meta(accs.Observation).WRITE(),
		solana.Meta(TokenProgramID),
		solana.Meta(Token2022ProgramID),
		solana.Meta(MemoProgramID),
		solana.Meta(accs.InputMint),
		solana.Meta(accs.OutputMint),
	}
	for _, arr := range tickArrays {
		metas = append(metas, solana.Meta(arr).WRITE())
	}
	return solana.NewInstruction(programID, metas, data.bytes())
}

// CreatePoolAccounts lists the accounts of pool creation.
type CreatePoolAccounts struct {
	Creator         solana.PublicKey
	AmmConfig       solana.PublicKey
	Pool            solana.PublicKey
	Mint0           solana.PublicKey
	Mint1           solana.PublicKey
	Vault0          solana.PublicKey
	Vault1          solana.PublicKey
	Observation     solana.PublicKey
	TickArrayBitmap solana.PublicKey
}

// NewCreatePoolInstruction builds create_pool with an initial sqrt price.
func NewCreatePoolInstruction(
	programID solana.PublicKey,
	accs CreatePoolAccounts,
	sqrtPriceX64 *big.Int,
	openTime uint64,
) solana.Instruction {
	data := newIxData("create_pool")
	data.u128(sqrtPriceX64)
	data.u64(openTime)

	metas := solana.AccountMetaSlice{
		solana.Meta(accs.Creator).WRITE().SIGNER(),
		solana.Meta(accs.AmmConfig),
		solana.Meta(accs.Pool).WRITE(),
		solana.Meta(accs.Mint0),
		solana.Meta(accs.Mint1),
		solana.Meta(accs.Vault0).WRITE(),
		solana.Meta(accs.Vault1).WRITE(),
		solana.Meta(accs.Observation).WRITE(),
		solana.Meta(accs.TickArrayBitmap).WRITE(),
		solana.Meta(TokenProgramID),
		solana.Meta(TokenProgramID),
		solana.Meta(SystemProgramID),
		solana.Meta(RentSysvarID),
	}
	return solana.NewInstruction(programID, metas, data.bytes())
}
