// Package config loads the configuration of the paymeta tools.
//
// Values come from a YAML file, then PAYMETA_* environment variables, on top of
// Default. The resulting Config is passed explicitly to constructors; no
// secret is ever read from configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/taurusgroup/stealth-payments/pkg/address"
	"github.com/taurusgroup/stealth-payments/pkg/amount"
	"github.com/taurusgroup/stealth-payments/pkg/fragment"
	"github.com/taurusgroup/stealth-payments/pkg/threshold"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Guardians GuardiansConfig `yaml:"guardians"`
	Fragments FragmentsConfig `yaml:"fragments"`
	Log       LogConfig       `yaml:"log"`
	Chain     ChainConfig     `yaml:"chain"`
}

type GuardiansConfig struct {
	Shares    int `yaml:"shares"`
	Threshold int `yaml:"threshold"`
}

type FragmentsConfig struct {
	Policy  string `yaml:"policy"`
	Workers int    `yaml:"workers"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ChainConfig is only handed to the chain submission collaborator.
type ChainConfig struct {
	RPCURL          string `yaml:"rpcURL"`
	FragmentManager string `yaml:"fragmentManager"`
	Pool            string `yaml:"pool"`
	Token           string `yaml:"token"`
	Decimals        int    `yaml:"decimals"`
}

func Default() Config {
	return Config{
		Guardians: GuardiansConfig{Shares: threshold.DefaultShares, Threshold: threshold.DefaultThreshold},
		Fragments: FragmentsConfig{Policy: string(fragment.PerFragment)},
		Log:       LogConfig{Level: "info", Format: "json"},
		Chain:     ChainConfig{Decimals: amount.Decimals},
	}
}

// Load reads the file at path, if path is not empty, then applies environment overrides
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err = Merge(&cfg, data); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Merge overwrites the fields of cfg that are present in the YAML document data.
func Merge(cfg *Config, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}
	return nil
}

// ApplyEnvOverrides sets fields from PAYMETA_* environment variables.
func ApplyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"PAYMETA_FRAGMENT_POLICY":        &cfg.Fragments.Policy,
		"PAYMETA_LOG_LEVEL":              &cfg.Log.Level,
		"PAYMETA_LOG_FORMAT":             &cfg.Log.Format,
		"PAYMETA_CHAIN_RPC_URL":          &cfg.Chain.RPCURL,
		"PAYMETA_CHAIN_FRAGMENT_MANAGER": &cfg.Chain.FragmentManager,
		"PAYMETA_CHAIN_POOL":             &cfg.Chain.Pool,
		"PAYMETA_CHAIN_TOKEN":            &cfg.Chain.Token,
	}
	for name, dst := range strs {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"PAYMETA_GUARDIAN_SHARES":    &cfg.Guardians.Shares,
		"PAYMETA_GUARDIAN_THRESHOLD": &cfg.Guardians.Threshold,
		"PAYMETA_FRAGMENT_WORKERS":   &cfg.Fragments.Workers,
	}
	for name, dst := range ints {
		raw := strings.TrimSpace(os.Getenv(name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
		*dst = v
	}
	return nil
}

// Validate checks that cfg is usable.
func (cfg Config) Validate() error {
	var errs []error
	if err := threshold.ValidateParameters(cfg.Guardians.Shares, cfg.Guardians.Threshold); err != nil {
		errs = append(errs, fmt.Errorf("guardians: %w", err))
	}
	if _, err := fragment.ParsePolicy(cfg.Fragments.Policy); err != nil {
		errs = append(errs, err)
	}
	if cfg.Fragments.Workers < 0 {
		errs = append(errs, fmt.Errorf("fragments: negative worker count %d", cfg.Fragments.Workers))
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log: unknown level %q", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log: unknown format %q", cfg.Log.Format))
	}
	for name, addr := range map[string]string{
		"fragmentManager": cfg.Chain.FragmentManager,
		"pool":            cfg.Chain.Pool,
		"token":           cfg.Chain.Token,
	} {
		if addr != "" && !address.IsValid(addr) {
			errs = append(errs, fmt.Errorf("chain.%s: %w", name, address.ErrInvalidAddress))
		}
	}
	if cfg.Chain.Decimals != amount.Decimals {
		errs = append(errs, fmt.Errorf("chain: token decimals must be %d, got %d", amount.Decimals, cfg.Chain.Decimals))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// FragmentConfig returns the configuration of a fragment.Builder.
func (cfg Config) FragmentConfig() fragment.Config {
	return fragment.Config{
		Policy:    fragment.Policy(cfg.Fragments.Policy),
		Shares:    cfg.Guardians.Shares,
		Threshold: cfg.Guardians.Threshold,
	}
}
