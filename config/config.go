package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"likechain/crypto"
)

// Config carries the daemon configuration loaded from TOML.
type Config struct {
	RPCAddress    string `toml:"RPCAddress"`
	DataDir       string `toml:"DataDir"`
	NetworkName   string `toml:"NetworkName"`
	LogFile       string `toml:"LogFile"`
	AdminAddress  string `toml:"AdminAddress"`
	GenesisOwner  string `toml:"GenesisOwner"`
	GenesisSupply string `toml:"GenesisSupply"`
}

// Load loads the configuration from the given path, writing defaults when the
// file does not exist yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8545"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./likechain-data"
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "likechain-local"
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	encoded, err := encode(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, encoded, 0o600); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}
	return cfg, nil
}

func encode(cfg *Config) ([]byte, error) {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// Validate checks the address and amount fields that cannot be defaulted.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config must not be nil")
	}
	for name, value := range map[string]string{
		"AdminAddress": cfg.AdminAddress,
		"GenesisOwner": cfg.GenesisOwner,
	} {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, err := crypto.DecodeAddress(strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if supply := strings.TrimSpace(cfg.GenesisSupply); supply != "" {
		parsed, ok := new(big.Int).SetString(supply, 10)
		if !ok || parsed.Sign() <= 0 {
			return fmt.Errorf("GenesisSupply must be a positive integer (got %q)", supply)
		}
	}
	return nil
}

// Admin decodes the configured admin address, reporting whether one is set.
func (c *Config) Admin() (crypto.Address, bool, error) {
	return c.address(c.AdminAddress)
}

// Owner decodes the configured genesis owner, reporting whether one is set.
func (c *Config) Owner() (crypto.Address, bool, error) {
	return c.address(c.GenesisOwner)
}

func (c *Config) address(raw string) (crypto.Address, bool, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return crypto.Address{}, false, nil
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return crypto.Address{}, false, err
	}
	return addr, true, nil
}

// Supply parses the configured genesis supply, reporting whether one is set.
func (c *Config) Supply() (*big.Int, bool, error) {
	trimmed := strings.TrimSpace(c.GenesisSupply)
	if trimmed == "" {
		return nil, false, nil
	}
	parsed, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || parsed.Sign() <= 0 {
		return nil, false, fmt.Errorf("GenesisSupply must be a positive integer (got %q)", trimmed)
	}
	return parsed, true, nil
}
