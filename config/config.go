// Package config contains registryd service configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/motorid/registry/deploy"
	"github.com/motorid/registry/typeddata"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration.
type Config struct {
	Logger        Logger                   `yaml:"logger"`
	Storage       dbconfig.DBConfiguration `yaml:"storage"`
	Registry      Registry                 `yaml:"registry"`
	API           API                      `yaml:"api"`
	Collaborators Collaborators            `yaml:"collaborators"`
	Verifiers     []Verifier               `yaml:"verifiers"`
	// Deploy is the path to the bootstrap configuration. Embedded defaults
	// are used if empty.
	Deploy string `yaml:"deploy"`
}

// Logger configures service log.
type Logger struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// Registry configures the registry core.
type Registry struct {
	// Address is Neo address of the registry.
	Address string `yaml:"address"`
	ChainID uint64 `yaml:"chain_id"`
	// Owner is Neo address of the default admin set on the empty store.
	Owner string `yaml:"owner"`
}

// API configures HTTP read API.
type API struct {
	Address           string        `yaml:"address"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// Collaborators configures in-process license validator and stream
// registry.
type Collaborators struct {
	LicenseCost uint64 `yaml:"license_cost"`
	// Licensed are Neo addresses holding a valid license.
	Licensed []string `yaml:"licensed"`
	Breaker  Breaker  `yaml:"breaker"`
}

// Breaker configures circuit breakers around collaborators.
type Breaker struct {
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Verifier is a Neo account validating typed data signatures on behalf of
// its script hash address.
type Verifier struct {
	// Keys are hex-encoded compressed public keys.
	Keys []string `yaml:"keys"`
	// Threshold is the number of signatures required, all keys if zero.
	Threshold int `yaml:"threshold"`
}

// Default returns configuration of the in-memory registry listening on
// :8080.
func Default() Config {
	return Config{
		Logger:  Logger{Level: "info", Encoding: "console"},
		Storage: dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB},
		Registry: Registry{
			ChainID: 1,
		},
		API: API{
			Address:           ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Collaborators: Collaborators{
			LicenseCost: 1,
			Breaker:     Breaker{MaxFailures: 5, Timeout: 30 * time.Second},
		},
	}
}

// Load reads configuration file. Values missing in the file keep their
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration over the defaults and validates it.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode YAML: %w", err)
	}
	return c, c.Validate()
}

// Validate checks configuration consistency.
func (c Config) Validate() error {
	switch c.Storage.Type {
	case dbconfig.InMemoryDB, dbconfig.LevelDB, dbconfig.BoltDB:
	default:
		return fmt.Errorf("unsupported storage type %q", c.Storage.Type)
	}
	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	if _, err := c.RegistryAddress(); err != nil {
		return err
	}
	if _, err := c.Owner(); err != nil {
		return err
	}
	if _, err := c.Licensed(); err != nil {
		return err
	}
	if _, err := c.NeoAccounts(); err != nil {
		return err
	}
	return nil
}

// RegistryAddress returns registry address, zero if not set.
func (c Config) RegistryAddress() (util.Uint160, error) {
	return optionalAddress("registry address", c.Registry.Address)
}

// Owner returns registry owner, zero if not set.
func (c Config) Owner() (util.Uint160, error) {
	return optionalAddress("registry owner", c.Registry.Owner)
}

// Licensed returns accounts holding a license.
func (c Config) Licensed() ([]util.Uint160, error) {
	res := make([]util.Uint160, 0, len(c.Collaborators.Licensed))
	for _, s := range c.Collaborators.Licensed {
		acc, err := address.StringToUint160(s)
		if err != nil {
			return nil, fmt.Errorf("licensed account %q: %w", s, err)
		}
		res = append(res, acc)
	}
	return res, nil
}

// NeoAccounts returns delegated signature verifiers.
func (c Config) NeoAccounts() ([]*typeddata.NeoAccount, error) {
	res := make([]*typeddata.NeoAccount, 0, len(c.Verifiers))
	for i, v := range c.Verifiers {
		pubs := make([]*keys.PublicKey, len(v.Keys))
		for j := range v.Keys {
			pub, err := keys.NewPublicKeyFromString(v.Keys[j])
			if err != nil {
				return nil, fmt.Errorf("verifier #%d key #%d: %w", i, j, err)
			}
			pubs[j] = pub
		}
		m := v.Threshold
		if m == 0 {
			m = len(pubs)
		}
		acc, err := typeddata.NewNeoAccount(m, pubs...)
		if err != nil {
			return nil, fmt.Errorf("verifier #%d: %w", i, err)
		}
		res = append(res, acc)
	}
	return res, nil
}

// DeployConfig returns bootstrap configuration.
func (c Config) DeployConfig() (deploy.Config, error) {
	if c.Deploy == "" {
		return deploy.DefaultConfig(), nil
	}
	data, err := os.ReadFile(c.Deploy)
	if err != nil {
		return deploy.Config{}, fmt.Errorf("read bootstrap config: %w", err)
	}
	return deploy.ParseConfig(data)
}

// NewLogger builds service logger.
func (c Config) NewLogger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.Logger.Level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if c.Logger.Encoding != "" {
		cfg.Encoding = c.Logger.Encoding
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func optionalAddress(name, s string) (util.Uint160, error) {
	if s == "" {
		return util.Uint160{}, nil
	}
	addr, err := address.StringToUint160(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("%s: %w", name, err)
	}
	return addr, nil
}
