// Package config loads and validates the driver's configuration, resolving
// CLI flags, a config file, and environment variables through a single
// viper precedence chain.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CoreConfig selects core behavior the language-neutral API leaves to the
// driver: strict vs. permissive opcode handling and an instruction
// watchdog the core itself never enforces (see SPEC_FULL.md §3).
type CoreConfig struct {
	StrictOpcodes       bool `mapstructure:"strict_opcodes"`
	WatchdogInstructions int `mapstructure:"watchdog_instructions"`
}

// DriverConfig is the CLI-layer configuration: where the ROM lives, how
// big the window is, and the core settings. Logging verbosity is not part
// of it; glog's own flags control that.
type DriverConfig struct {
	Core DriverCoreConfig `mapstructure:"core"`

	ROMPath string `mapstructure:"rom"`
	Scale   int    `mapstructure:"scale"`
}

// DriverCoreConfig is the viper-bound mirror of CoreConfig; kept distinct
// from CoreConfig so the core package stays free of mapstructure tags.
type DriverCoreConfig struct {
	StrictOpcodes        bool `mapstructure:"strict_opcodes"`
	WatchdogInstructions int  `mapstructure:"watchdog_instructions"`
}

// ToCoreConfig converts the viper-bound config into the plain struct the
// core package accepts.
func (d DriverConfig) ToCoreConfig() CoreConfig {
	return CoreConfig{
		StrictOpcodes:        d.Core.StrictOpcodes,
		WatchdogInstructions: d.Core.WatchdogInstructions,
	}
}

// defaults are applied before any flag, file, or environment value is
// resolved, so an unconfigured driver still runs sensibly.
func defaults(v *viper.Viper) {
	v.SetDefault("rom", "")
	v.SetDefault("scale", 2)
	v.SetDefault("core.strict_opcodes", false)
	v.SetDefault("core.watchdog_instructions", 0) // 0 = no watchdog
}

var flagToKey = map[string]string{
	"rom":                   "rom",
	"scale":                 "scale",
	"strict-opcodes":        "core.strict_opcodes",
	"watchdog-instructions": "core.watchdog_instructions",
}

// RegisterFlags defines the config-bindable flags on flags. Call this
// once, when a cobra command is constructed, before Load is called.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("rom", "", "path to an iNES ROM image")
	flags.Int("scale", 2, "window scale factor (NES resolution multiplier)")
	flags.Bool("strict-opcodes", false, "treat unmapped CPU opcodes as a fatal error")
	flags.Int("watchdog-instructions", 0, "log a warning and end a frame's stepping after N instructions in that frame (0 disables)")
}

// bindFlags binds already-registered flags into v, so flags take
// precedence over a config file, which takes precedence over defaults.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for flagName, key := range flagToKey {
		f := flags.Lookup(flagName)
		if f == nil {
			continue // Load was called against a flag set RegisterFlags never touched
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

// Load resolves a DriverConfig from flags, an optional config file at
// configPath, and environment variables prefixed NESCORE_. flags must
// already have RegisterFlags applied (directly, or indirectly if nil is
// passed here and the caller only wants defaults/file/env).
func Load(flags *pflag.FlagSet, configPath string) (DriverConfig, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("nescore")
	v.AutomaticEnv()

	if flags == nil {
		flags = pflag.NewFlagSet("nescore", pflag.ContinueOnError)
		RegisterFlags(flags)
	}
	if err := bindFlags(v, flags); err != nil {
		return DriverConfig{}, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return DriverConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg DriverConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return DriverConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return DriverConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (d *DriverConfig) validate() error {
	if d.Scale <= 0 {
		d.Scale = 2
	}
	if d.Core.WatchdogInstructions < 0 {
		d.Core.WatchdogInstructions = 0
	}
	return nil
}
