package config

import (
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/pkg"
)

// FarmConfig describes the farm created when no persisted state exists yet.
type FarmConfig struct {
	Owner        string `mapstructure:"owner"`
	RewardSymbol string `mapstructure:"reward-symbol"`
	// StartTime is the unix time emission begins.
	StartTime uint64       `mapstructure:"start-time"`
	Pools     []PoolConfig `mapstructure:"pools"`
	// BindReservoir binds the reservoir to the farm right after creation,
	// leaving only its funding to the owner.
	BindReservoir bool `mapstructure:"bind-reservoir"`
}

type PoolConfig struct {
	Symbol     string `mapstructure:"symbol"`
	AllocPoint string `mapstructure:"alloc-point"`
}

func (cfg *FarmConfig) Validate() error {
	if _, err := pkg.ParseAddress(cfg.Owner); err != nil {
		return fmt.Errorf("invalid farm owner: %w", err)
	}

	if cfg.RewardSymbol == "" {
		return fmt.Errorf("missing farm reward-symbol")
	}

	seen := make(map[string]struct{}, len(cfg.Pools))
	for i, p := range cfg.Pools {
		if p.Symbol == "" {
			return fmt.Errorf("farm pool %d: missing symbol", i)
		}
		symbol := strings.ToUpper(p.Symbol)
		if _, ok := seen[symbol]; ok {
			return fmt.Errorf("farm pool %d: duplicate symbol %s", i, p.Symbol)
		}
		seen[symbol] = struct{}{}

		if _, err := p.Alloc(); err != nil {
			return fmt.Errorf("farm pool %d: %w", i, err)
		}
	}

	return nil
}

// OwnerAddress returns the parsed owner. Call it on a validated config only.
func (cfg *FarmConfig) OwnerAddress() common.Address {
	return common.HexToAddress(cfg.Owner)
}

func (p PoolConfig) Alloc() (sdkmath.Int, error) {
	return parseAmount("alloc-point", p.AllocPoint)
}

func parseAmount(name, value string) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(strings.TrimSpace(value))
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("%s %q is not an integer", name, value)
	}
	if amount.IsNegative() {
		return sdkmath.Int{}, fmt.Errorf("%s must not be negative", name)
	}
	return amount, nil
}
