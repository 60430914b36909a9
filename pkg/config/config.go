package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Naming modes for script-visible names of native members.
const (
	NamingLowerCamel = "lowerCamel" // Go "GetName" is visible as "getName"
	NamingGo         = "go"         // Go names are used unchanged
)

// Options represents the complete engine configuration.
type Options struct {
	Strict  bool          `yaml:"strict"` // top-level code starts in strict mode
	Interop InteropConfig `yaml:"interop"`
	Trace   TraceConfig   `yaml:"trace"`
}

// InteropConfig holds settings of the native interop bridge.
type InteropConfig struct {
	StrictConversion bool   `yaml:"strict_conversion"` // disable lenient coercion for every native method
	DummyValues      bool   `yaml:"dummy_values"`      // fill missing native arguments with zero values
	Naming           string `yaml:"naming"`            // NamingLowerCamel (default) or NamingGo
}

// TraceConfig holds tracing settings.
type TraceConfig struct {
	Level string `yaml:"level"` // Debug, Info or Error
}

// Defaults returns the options an engine uses when none are given.
func Defaults() *Options {
	return &Options{
		Interop: InteropConfig{
			DummyValues: true,
			Naming:      NamingLowerCamel,
		},
		Trace: TraceConfig{Level: "Error"},
	}
}

// Parse decodes YAML options on top of the defaults.
func Parse(data []byte) (*Options, error) {
	opts := Defaults()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Load reads options from a YAML file.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options: %w", err)
	}
	return Parse(data)
}

// Validate checks option values that yaml decoding cannot reject by itself.
func (o *Options) Validate() error {
	switch o.Interop.Naming {
	case "":
		o.Interop.Naming = NamingLowerCamel
	case NamingLowerCamel, NamingGo:
	default:
		return fmt.Errorf("interop.naming: unknown mode %q", o.Interop.Naming)
	}
	switch strings.ToLower(o.Trace.Level) {
	case "", "debug", "info", "error":
	default:
		return fmt.Errorf("trace.level: unknown level %q", o.Trace.Level)
	}
	return nil
}
