package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/giuliom95/baker2/asset/mesh"
	"github.com/giuliom95/baker2/asset/mesh/reader"
	"github.com/giuliom95/baker2/asset/texture"
	"github.com/giuliom95/baker2/baker"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Bake a tangent-space normal map.
func Bake(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	closeLog := setupLogging(ctx, &cfg.Logging)
	defer closeLog()

	if ctx.NArg() != 2 {
		return errors.New("expected low-poly and high-poly mesh file arguments")
	}

	low, err := readMesh("low-poly", ctx.Args().Get(0))
	if err != nil {
		return err
	}
	high, err := readMesh("high-poly", ctx.Args().Get(1))
	if err != nil {
		return err
	}

	opts := cfg.BakeOptions()
	opts.Progress = func(done, total int) {
		if total == 0 {
			return
		}
		logger.Infof("rasterized %d/%d triangles (%02.1f %%)", done, total, 100.0*float32(done)/float32(total))
	}

	b, err := baker.New(low, high, opts)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef("baking %dx%d normal map with %dx%d samples per texel", opts.Width, opts.Height, opts.SamplesPerSide, opts.SamplesPerSide)
	nm, err := b.Bake(sigCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("bake interrupted")
		}
		return err
	}

	format, err := cfg.OutputFormat()
	if err != nil {
		return err
	}
	if err = texture.Save(cfg.Output.Path, nm, format, cfg.Output.BitDepth, cfg.Output.FlipY); err != nil {
		return err
	}
	logger.Noticef("wrote %d-bit %s normal map to %s", cfg.Output.BitDepth, format, cfg.Output.Path)

	displayBakeStats(b.Stats())
	return nil
}

func readMesh(role, meshFile string) (*mesh.Mesh, error) {
	logger.Noticef("reading %s mesh: %s", role, meshFile)
	m, err := reader.ReadMesh(meshFile)
	if err != nil {
		return nil, err
	}
	logger.Infof("%s mesh information:\n%s", role, m.Stats())
	return m, nil
}

func displayBakeStats(stats baker.BakeStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "First triangle", "Triangles", "% of triangles", "Accepted samples", "Bake time"})
	for _, stat := range stats.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", stat.Id),
			fmt.Sprintf("%d", stat.FirstTriangle),
			fmt.Sprintf("%d", stat.Triangles),
			fmt.Sprintf("%02.1f %%", stat.Percent),
			fmt.Sprintf("%d", stat.Accepted),
			stat.BakeTime.String(),
		})
	}
	table.SetFooter([]string{"", "", "", "", "TOTAL", stats.BakeTime.String()})
	table.Render()
	logger.Noticef("worker statistics\n%s", buf.String())

	buf.Reset()
	table = tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Metric", "Value"})
	table.AppendBulk([][]string{
		{"Low-poly triangles", fmt.Sprintf("%d", stats.Triangles)},
		{"Degenerate triangles", fmt.Sprintf("%d", stats.DegenerateTriangles)},
		{"Samples tested", fmt.Sprintf("%d", stats.SamplesTested)},
		{"Samples inside", fmt.Sprintf("%d", stats.SamplesInside)},
		{"Invalid tangent frames", fmt.Sprintf("%d", stats.InvalidFrames)},
		{"Accepted samples", fmt.Sprintf("%d", stats.Accepted)},
		{"Missed samples", fmt.Sprintf("%d", stats.Missed)},
		{"Back-facing samples", fmt.Sprintf("%d", stats.BackFacing)},
		{"Covered texels", fmt.Sprintf("%d", stats.CoveredTexels)},
		{"High-poly triangles", fmt.Sprintf("%d", stats.HighTriangles)},
		{"BVH nodes", fmt.Sprintf("%d", stats.AccelNodes)},
		{"BVH depth", fmt.Sprintf("%d", stats.AccelDepth)},
		{"BVH build time", stats.AccelTime.String()},
	})
	table.Render()
	logger.Noticef("bake statistics\n%s", buf.String())
}
