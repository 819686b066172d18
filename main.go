package main

import (
	"fmt"
	"os"

	"github.com/giuliom95/baker2/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "baker2"
	app.Usage = "bake tangent-space normal maps from high-poly meshes"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write logs to this file (rotated)",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load settings from this YAML file instead of ./baker2.yaml",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "bake",
			Usage: "bake the normals of a high-poly mesh into the uv space of a low-poly mesh",
			Description: `
Cast a ray from every sample point of the low-poly mesh along its interpolated
normal, pick up the normal of the nearest high-poly surface and store it in the
tangent space of the low-poly mesh.

Both wavefront obj and glTF (.gltf, .glb) meshes are supported. The low-poly
mesh must define uv coordinates.`,
			ArgsUsage: "low_poly.obj high_poly.obj",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "resolution, r",
					Value: 2048,
					Usage: "normal map width and height; a power of two between 128 and 8192",
				},
				cli.IntFlag{
					Name:  "spp-side",
					Value: 2,
					Usage: "sample each texel on a NxN grid",
				},
				cli.Float64Flag{
					Name:  "depth",
					Value: 1.0,
					Usage: "max ray distance in units of the low-poly normal",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Value: 0,
					Usage: "number of bake workers; 0 uses all cpus",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "normals.tiff",
					Usage: "image filename for the baked normal map",
				},
				cli.StringFlag{
					Name:  "format",
					Value: "tiff",
					Usage: "output image format (tiff, png, bmp)",
				},
				cli.IntFlag{
					Name:  "bit-depth",
					Value: 8,
					Usage: "bits per channel (8 or 16)",
				},
				cli.BoolFlag{
					Name:  "no-flip",
					Usage: "write V=0 to the top image row",
				},
			},
			Action: cmd.Bake,
		},
		{
			Name:      "info",
			Usage:     "display mesh statistics",
			ArgsUsage: "mesh1.obj mesh2.glb ...",
			Action:    cmd.MeshInfo,
		},
		{
			Name:  "config",
			Usage: "print the effective configuration as YAML",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "save",
					Usage: "write the configuration to this file instead",
				},
			},
			Action: cmd.ShowConfig,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
