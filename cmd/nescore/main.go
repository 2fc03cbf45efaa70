// Command nescore runs the console core against an iNES ROM image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"nescore/internal/config"
	"nescore/internal/core"
	"nescore/internal/driver"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		glog.Exit(err)
	}
	glog.Flush()
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "nescore",
		Short: "Run an instruction-stepped NES core against an iNES ROM",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, configPath)
		},
	}

	// glog registers its flags on the stdlib flag.CommandLine; pull them
	// into the cobra flag set so -v/-logtostderr work alongside our own.
	cmd.Flags().AddGoFlagSet(flag.CommandLine)
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (YAML/JSON/TOML)")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func run(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(cmd.Flags(), configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.ROMPath == "" {
		return fmt.Errorf("no ROM specified; pass --rom <file>")
	}

	glog.Infof("loading ROM %s", cfg.ROMPath)
	rom, err := os.Open(cfg.ROMPath)
	if err != nil {
		return fmt.Errorf("open rom: %w", err)
	}
	defer rom.Close()

	emu, err := core.Create(rom, core.Config{StrictOpcodes: cfg.Core.StrictOpcodes})
	if err != nil {
		return fmt.Errorf("create core: %w", err)
	}
	emu.Reset()

	glog.Infof("starting presentation layer at scale %dx", cfg.Scale)
	game := driver.NewGame(emu, cfg.Scale, cfg.Core.WatchdogInstructions)
	ebiten.SetWindowSize(256*cfg.Scale, 240*cfg.Scale)
	ebiten.SetWindowTitle("nescore")
	return ebiten.RunGame(game)
}
