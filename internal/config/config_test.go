package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadAppliesDefaultsWithNoFlagsSet(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	cfg, err := Load(flags, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scale != 2 {
		t.Fatalf("Scale = %d, want 2", cfg.Scale)
	}
	if cfg.Core.StrictOpcodes {
		t.Fatalf("StrictOpcodes should default to false")
	}
}

func TestLoadReadsFlagOverrides(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	if err := flags.Parse([]string{"--rom=mario.nes", "--scale=3", "--strict-opcodes"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := Load(flags, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ROMPath != "mario.nes" {
		t.Fatalf("ROMPath = %q, want mario.nes", cfg.ROMPath)
	}
	if cfg.Scale != 3 {
		t.Fatalf("Scale = %d, want 3", cfg.Scale)
	}
	if !cfg.Core.StrictOpcodes {
		t.Fatalf("StrictOpcodes should be true")
	}
}

func TestInvalidScaleFallsBackToDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	if err := flags.Parse([]string{"--scale=0"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := Load(flags, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scale != 2 {
		t.Fatalf("Scale = %d, want fallback of 2", cfg.Scale)
	}
}

func TestToCoreConfigCopiesWatchdogAndStrictness(t *testing.T) {
	d := DriverConfig{Core: DriverCoreConfig{StrictOpcodes: true, WatchdogInstructions: 5000000}}
	c := d.ToCoreConfig()
	if !c.StrictOpcodes || c.WatchdogInstructions != 5000000 {
		t.Fatalf("ToCoreConfig = %+v, did not carry fields", c)
	}
}
