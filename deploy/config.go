package deploy

import (
	_ "embed"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"gopkg.in/yaml.v3"
)

// TokenConfig describes identity token of a node type.
type TokenConfig struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// Config is the registry bootstrap configuration.
type Config struct {
	Domain struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"domain"`
	// Tokens maps node type to its identity token.
	Tokens map[string]TokenConfig `yaml:"tokens"`
	// Attributes maps node type to its whitelisted attributes.
	Attributes map[string][]string `yaml:"attributes"`
	// Roles maps role name to Neo addresses of its holders.
	Roles map[string][]string `yaml:"roles"`
	// License is Neo address of the license validator.
	License string `yaml:"license"`
	// StreamRegistry is Neo address of the stream registry.
	StreamRegistry string `yaml:"streamRegistry"`
}

//go:embed defaults.yaml
var defaults []byte

// DefaultConfig returns embedded default configuration.
func DefaultConfig() Config {
	var c Config
	if err := yaml.Unmarshal(defaults, &c); err != nil {
		panic(fmt.Sprintf("invalid embedded configuration: %v", err))
	}
	return c
}

// ParseConfig decodes YAML configuration. Missing sections are taken from
// the defaults.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode YAML: %w", err)
	}
	d := DefaultConfig()
	if c.Domain.Name == "" {
		c.Domain = d.Domain
	}
	if c.Tokens == nil {
		c.Tokens = d.Tokens
	}
	if c.Attributes == nil {
		c.Attributes = d.Attributes
	}
	return c, nil
}

func parseAddress(s string) (util.Uint160, error) {
	addr, err := address.StringToUint160(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return addr, nil
}
