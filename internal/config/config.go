package config

import (
	"fmt"
	"strings"

	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Rebalance holds the configuration of the rebalance command.
type Rebalance struct {
	RPCURL        string
	Commitment    string
	Network       string
	Pool          string
	WalletKey     string
	RemoveNftMint string
	Share         float64
	Slippage      float64
	SwapLamports  uint64
	Atomic        bool
	Report        string
	LogLevel      string
}

// Positions holds the configuration of the positions command.
type Positions struct {
	RPCURL     string
	Commitment string
	Network    string
	Pool       string
	LogLevel   string
}

// CreatePool holds the configuration of the create-pool command.
type CreatePool struct {
	RPCURL     string
	Commitment string
	Network    string
	WalletKey  string
	AmmConfig  string
	MintA      string
	MintB      string
	DecimalsA  uint8
	DecimalsB  uint8
	Price      string
	OpenTime   uint64
	LogLevel   string
}

// CreateToken holds the configuration of the create-token command.
type CreateToken struct {
	RPCURL     string
	Commitment string
	WalletKey  string
	Decimals   uint8
	Supply     uint64
	LogLevel   string
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("REBALANCER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("commitment", "confirmed")
	v.SetDefault("network", "mainnet")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

// LoadRebalance merges config file, environment variables, and flags into a
// Rebalance config. The wallet key is read from the environment or config
// file only; it has no flag so it never lands in shell history.
func LoadRebalance(cfgFile string, flags *pflag.FlagSet) (Rebalance, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Rebalance{}, err
	}

	v.SetDefault("share", 0.8)
	v.SetDefault("slippage", 0.01)
	v.SetDefault("swap-lamports", uint64(1_000_000_000))
	v.SetDefault("atomic", true)
	v.SetDefault("report", "./data/rebalance_report.jsonl")

	cfg := Rebalance{
		RPCURL:        v.GetString("rpc"),
		Commitment:    v.GetString("commitment"),
		Network:       v.GetString("network"),
		Pool:          v.GetString("pool"),
		WalletKey:     v.GetString("wallet-key"),
		RemoveNftMint: v.GetString("remove-nft-mint"),
		Share:         v.GetFloat64("share"),
		Slippage:      v.GetFloat64("slippage"),
		SwapLamports:  v.GetUint64("swap-lamports"),
		Atomic:        v.GetBool("atomic"),
		Report:        v.GetString("report"),
		LogLevel:      v.GetString("log-level"),
	}

	return cfg, nil
}

// LoadPositions merges config file, environment variables, and flags into a
// Positions config.
func LoadPositions(cfgFile string, flags *pflag.FlagSet) (Positions, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Positions{}, err
	}

	cfg := Positions{
		RPCURL:     v.GetString("rpc"),
		Commitment: v.GetString("commitment"),
		Network:    v.GetString("network"),
		Pool:       v.GetString("pool"),
		LogLevel:   v.GetString("log-level"),
	}

	return cfg, nil
}

// LoadCreatePool merges config file, environment variables, and flags into a
// CreatePool config.
func LoadCreatePool(cfgFile string, flags *pflag.FlagSet) (CreatePool, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return CreatePool{}, err
	}

	cfg := CreatePool{
		RPCURL:     v.GetString("rpc"),
		Commitment: v.GetString("commitment"),
		Network:    v.GetString("network"),
		WalletKey:  v.GetString("wallet-key"),
		AmmConfig:  v.GetString("amm-config"),
		MintA:      v.GetString("mint-a"),
		MintB:      v.GetString("mint-b"),
		DecimalsA:  uint8(v.GetUint("decimals-a")),
		DecimalsB:  uint8(v.GetUint("decimals-b")),
		Price:      v.GetString("price"),
		OpenTime:   v.GetUint64("open-time"),
		LogLevel:   v.GetString("log-level"),
	}

	return cfg, nil
}

// LoadCreateToken merges config file, environment variables, and flags into
// a CreateToken config.
func LoadCreateToken(cfgFile string, flags *pflag.FlagSet) (CreateToken, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return CreateToken{}, err
	}

	v.SetDefault("decimals", uint(9))
	v.SetDefault("supply", uint64(1_000_000_000_000_000))

	cfg := CreateToken{
		RPCURL:     v.GetString("rpc"),
		Commitment: v.GetString("commitment"),
		WalletKey:  v.GetString("wallet-key"),
		Decimals:   uint8(v.GetUint("decimals")),
		Supply:     v.GetUint64("supply"),
		LogLevel:   v.GetString("log-level"),
	}

	return cfg, nil
}

// ProgramID resolves the CLMM program ID of a network name.
func ProgramID(network string) (solana.PublicKey, error) {
	switch strings.ToLower(network) {
	case "mainnet", "mainnet-beta":
		return clmm.MainnetProgramID, nil
	case "devnet":
		return clmm.DevnetProgramID, nil
	default:
		return solana.PublicKey{}, fmt.Errorf("unknown network %q", network)
	}
}
