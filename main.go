package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/octrace/cmd"
	"github.com/achilleasa/octrace/tracer"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	sceneFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "octree-depth",
			Value: 0,
			Usage: "octree depth limit (0 selects the default)",
		},
		cli.BoolFlag{
			Name:  "fit-bounds",
			Usage: "fit octree bounds to the scene geometry when the scene does not define octree_bounds",
		},
	}

	app := cli.NewApp()
	app.Name = "octrace"
	app.Usage = "render triangle mesh scenes using octree-accelerated ray tracing"
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
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame",
			Description: `
Parse a scene definition from a wavefront obj file, index its geometry using
an octree and render a single frame using a pool of worker goroutines.

The output image format is selected by the extension of the --out argument
(png, bmp or tiff).`,
			ArgsUsage: "scene_file.obj",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Value: 0,
					Usage: "number of render workers (0 uses all logical cpus)",
				},
				cli.IntFlag{
					Name:  "max-depth",
					Value: tracer.DefaultMaxDepth,
					Usage: "max number of mirror reflection bounces",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			}, sceneFlags...),
			Action: cmd.RenderFrame,
		},
		{
			Name:      "info",
			Usage:     "display scene statistics",
			ArgsUsage: "scene_file.obj",
			Flags:     sceneFlags,
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:   "list-devices",
			Usage:  "list cpus available for rendering",
			Action: cmd.ListDevices,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
