// Package config loads the YAML settings of the command line tools.
//
// Integers are kept as decimal strings so values wider than 64 bits survive
// the round trip:
//
//	curve:
//	  a: "1"
//	  b: "18"
//	  n: "19"
//	private: "12"
//	message: "123"
//	ephemeral: "7"
//	seed: 42
//	log:
//	  level: info
//	  format: console
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/smallyu/go-toy-ecdsa/internal/crypto/curves"
	"github.com/smallyu/go-toy-ecdsa/internal/logging"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Curve     Curve  `yaml:"curve"`
	Private   string `yaml:"private"`
	Message   string `yaml:"message"`
	Ephemeral string `yaml:"ephemeral,omitempty"`
	Seed      *int64 `yaml:"seed,omitempty"`
	Log       Log    `yaml:"log"`
}

type Curve struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
	N string `yaml:"n"`
}

type Log struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns the demonstration settings: y² = x³ + x + 18 over 19,
// private scalar 12, message 123 and ephemeral 7.
func Default() *Config {
	return &Config{
		Curve:     Curve{A: "1", B: "18", N: "19"},
		Private:   "12",
		Message:   "123",
		Ephemeral: "7",
		Log:       Log{Level: "info", Format: logging.FormatConsole},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes data over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks that every number parses and the log settings are known.
// Curve validity itself is left to curves.New.
func (c *Config) Validate() error {
	var problems []string
	check := func(name, value string, optional bool) {
		if value == "" && optional {
			return
		}
		if _, err := ParseInt(value); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
		}
	}
	check("curve.a", c.Curve.A, false)
	check("curve.b", c.Curve.B, false)
	check("curve.n", c.Curve.N, false)
	check("private", c.Private, false)
	check("message", c.Message, false)
	check("ephemeral", c.Ephemeral, true)

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	switch strings.ToLower(c.Log.Format) {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("log.format: unknown format %q", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// BuildCurve constructs the configured curve.
func (c *Config) BuildCurve() (*curves.Curve, error) {
	a, err := ParseInt(c.Curve.A)
	if err != nil {
		return nil, fmt.Errorf("curve.a: %w", err)
	}
	b, err := ParseInt(c.Curve.B)
	if err != nil {
		return nil, fmt.Errorf("curve.b: %w", err)
	}
	n, err := ParseInt(c.Curve.N)
	if err != nil {
		return nil, fmt.Errorf("curve.n: %w", err)
	}
	return curves.New(a, b, n)
}

func (c *Config) PrivateInt() (*big.Int, error) { return ParseInt(c.Private) }
func (c *Config) MessageInt() (*big.Int, error) { return ParseInt(c.Message) }

// EphemeralInt returns nil when no ephemeral is configured.
func (c *Config) EphemeralInt() (*big.Int, error) {
	if c.Ephemeral == "" {
		return nil, nil
	}
	return ParseInt(c.Ephemeral)
}

// ParseInt parses a base-10 integer, allowing surrounding spaces.
func ParseInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("not a decimal integer: %q", s)
	}
	return v, nil
}
