package cmd

import (
	"errors"

	"github.com/achilleasa/octrace/asset/scene/reader"
	"github.com/urfave/cli"
)

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First(), reader.Options{
		OctreeDepth: ctx.Int("octree-depth"),
		FitBounds:   ctx.Bool("fit-bounds"),
	})
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", sc.Stats())
	logger.Noticef("camera: %s", sc.Camera)
	return nil
}
