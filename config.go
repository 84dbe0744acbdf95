package main

import (
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/sergev/codelang/internal/config"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[FILE]",
		Description: `The dumpconfig command shows configuration values.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file (default $HOME/" + config.DefaultFileName + ")",
	}
	traceFlag = cli.BoolFlag{
		Name:  "trace",
		Usage: "Log evaluator scopes and calls to stderr",
	}
	colorFlag = cli.StringFlag{
		Name:  "color",
		Usage: "Colorize diagnostics: auto, always or never",
	}
)

// makeConfig loads defaults, then the config file, then applies flags.
func makeConfig(ctx *cli.Context) (config.Config, error) {
	cfg, err := config.Resolve(ctx.GlobalString(configFileFlag.Name))
	if err != nil {
		return cfg, err
	}
	if ctx.GlobalIsSet(traceFlag.Name) {
		cfg.Trace = ctx.GlobalBool(traceFlag.Name)
	}
	if ctx.GlobalIsSet(colorFlag.Name) {
		cfg.Color = ctx.GlobalString(colorFlag.Name)
	}
	return cfg, cfg.Validate()
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	return config.Dump(dump, &cfg)
}
