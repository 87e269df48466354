// Package config loads runtime settings from an optional YAML file and AOW_
// environment variables.
//
// Environment keys map to config keys by dropping the prefix, lowercasing and
// turning "__" into ".", e.g. AOW_CHAIN__ITERATIONS sets chain.iterations.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/vybium/vybium-aow/internal/vybium-aow/proofs"
	"github.com/vybium/vybium-aow/internal/vybium-aow/utils"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "AOW_"

type Config struct {
	Field    FieldConfig    `koanf:"field"`
	Temporal TemporalConfig `koanf:"temporal"`
	Chain    ChainConfig    `koanf:"chain"`
	Proof    ProofConfig    `koanf:"proof"`
	Log      LogConfig      `koanf:"log"`
	Storage  StorageConfig  `koanf:"storage"`
}

type FieldConfig struct {
	SecurityLevel int    `koanf:"security_level"`
	Modulus       string `koanf:"modulus"` // Optional: decimal prime overriding the level's field
	Alpha         string `koanf:"alpha"`   // Optional: decimal map constant
}

type TemporalConfig struct {
	MaxIterations string `koanf:"max_iterations"` // Optional: decimal bound, level default otherwise
}

type ChainConfig struct {
	Iterations uint64 `koanf:"iterations"`
}

type ProofConfig struct {
	Backend          string `koanf:"backend"`
	BlowupFactor     int    `koanf:"blowup_factor"`
	SecurityParam    int    `koanf:"security_param"`
	FRIFoldingFactor int    `koanf:"fri_folding_factor"`
	HashFunction     string `koanf:"hash_function"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type StorageConfig struct {
	Path string `koanf:"path"` // SQLite DSN, empty disables persistence
}

var defaults = map[string]any{
	"field.security_level":     128,
	"chain.iterations":         1000,
	"proof.backend":            proofs.BackendSimulated,
	"proof.blowup_factor":      4,
	"proof.security_param":     128,
	"proof.fri_folding_factor": 2,
	"proof.hash_function":      utils.HashSHA3,
	"log.level":                "info",
}

// Default returns the built-in configuration
func Default() *Config {
	k := koanf.New(".")
	cfg, err := finish(k)
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Load reads path (skipped when empty or missing), then AOW_ variables,
// then fills defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	return finish(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if _, err := c.Security(); err != nil {
		return err
	}
	if c.Chain.Iterations == 0 {
		return fmt.Errorf("chain.iterations must be positive")
	}
	if _, err := proofs.New(c.Proof.Backend); err != nil {
		return fmt.Errorf("proof.backend: %w", err)
	}
	if err := c.ProofParameters().Validate(); err != nil {
		return fmt.Errorf("proof: %w", err)
	}
	return nil
}

// Security resolves the field, alpha and iteration bound, starting from the
// recommended parameters for the security level and applying overrides.
func (c *Config) Security() (*utils.SecurityParameters, error) {
	params, err := utils.RecommendedParameters(c.Field.SecurityLevel)
	if err != nil {
		return nil, fmt.Errorf("field.security_level: %w", err)
	}

	if c.Field.Modulus != "" {
		if params.FieldSize, err = parseDecimal("field.modulus", c.Field.Modulus); err != nil {
			return nil, err
		}
		if params.FieldSize.Cmp(big.NewInt(2)) <= 0 {
			return nil, fmt.Errorf("field.modulus must be greater than 2")
		}
	}
	if c.Field.Alpha != "" {
		if params.Alpha, err = parseDecimal("field.alpha", c.Field.Alpha); err != nil {
			return nil, err
		}
	}
	if c.Temporal.MaxIterations != "" {
		if params.MaxIterations, err = parseDecimal("temporal.max_iterations", c.Temporal.MaxIterations); err != nil {
			return nil, err
		}
	}
	return params, nil
}

// ProofParameters returns the proof settings
func (c *Config) ProofParameters() proofs.Parameters {
	return proofs.Parameters{
		BlowupFactor:     c.Proof.BlowupFactor,
		SecurityParam:    c.Proof.SecurityParam,
		FRIFoldingFactor: c.Proof.FRIFoldingFactor,
		HashFunction:     c.Proof.HashFunction,
	}
}

func parseDecimal(key, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%s must be a non-negative decimal integer, got %q", key, s)
	}
	return v, nil
}
