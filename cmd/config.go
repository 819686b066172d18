package cmd

import (
	"os"
	"path/filepath"

	"github.com/giuliom95/baker2/asset/texture"
	"github.com/giuliom95/baker2/config"
	"github.com/urfave/cli"
)

// Load the config selected by the global --config flag (or found in the
// standard locations), apply command flag overrides and validate the result.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	applyFlags(ctx, cfg)
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply command flag overrides to the config. Only explicitly set flags
// override config values.
func applyFlags(ctx *cli.Context, cfg *config.Config) {
	if ctx.IsSet("resolution") {
		cfg.Bake.Resolution = ctx.Int("resolution")
	}
	if ctx.IsSet("spp-side") {
		cfg.Bake.SamplesPerSide = ctx.Int("spp-side")
	}
	if ctx.IsSet("depth") {
		cfg.Bake.SearchDepth = float32(ctx.Float64("depth"))
	}
	if ctx.IsSet("workers") {
		cfg.Bake.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("out") {
		cfg.Output.Path = ctx.String("out")

		// Infer the format from the output file unless it was given explicitly
		if format, err := texture.ParseFormat(filepath.Ext(cfg.Output.Path)); err == nil && !ctx.IsSet("format") {
			cfg.Output.Format = format.String()
		}
	}
	if ctx.IsSet("format") {
		cfg.Output.Format = ctx.String("format")
	}
	if ctx.IsSet("bit-depth") {
		cfg.Output.BitDepth = ctx.Int("bit-depth")
	}
	if ctx.Bool("no-flip") {
		cfg.Output.FlipY = false
	}
}

// Print the effective configuration as YAML or save it to a file.
func ShowConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	closeLog := setupLogging(ctx, &cfg.Logging)
	defer closeLog()

	if savePath := ctx.String("save"); savePath != "" {
		if err = cfg.SaveTo(savePath); err != nil {
			return err
		}
		logger.Noticef("saved configuration to %s", savePath)
		return nil
	}

	return cfg.Write(os.Stdout)
}
