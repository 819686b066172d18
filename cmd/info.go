package cmd

import (
	"errors"

	"github.com/giuliom95/baker2/asset/mesh/reader"
	"github.com/urfave/cli"
)

// Display mesh info.
func MeshInfo(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	closeLog := setupLogging(ctx, &cfg.Logging)
	defer closeLog()

	if ctx.NArg() == 0 {
		return errors.New("missing mesh file argument")
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		m, err := reader.ReadMesh(ctx.Args().Get(idx))
		if err != nil {
			return err
		}

		logger.Noticef("mesh %q information:\n%s", m.Name, m.Stats())
		if m.NormalsGenerated {
			logger.Noticef("mesh %q: vertex normals were generated from the geometry", m.Name)
		}
		if !m.HasUVs() {
			logger.Warningf("mesh %q does not define uv coordinates and cannot be used as a low-poly mesh", m.Name)
		}
	}

	return nil
}
