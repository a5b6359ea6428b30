package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/achilleasa/octrace/asset/scene/reader"
	"github.com/achilleasa/octrace/renderer"
	"github.com/achilleasa/octrace/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := renderer.Options{
		FrameW:  ctx.Int("width"),
		FrameH:  ctx.Int("height"),
		Workers: ctx.Int("workers"),
	}

	// Load scene
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
	logger.Infof("scene information:\n%s", sc.Stats())

	rt := tracer.NewRayTracer(sc, tracer.WithMaxDepth(ctx.Int("max-depth")))
	r := renderer.New(rt, opts)

	// A partially rendered frame is still written out
	frame, renderErr := r.Render()
	if frame == nil {
		return renderErr
	}
	displayFrameStats(r.Stats())

	imgFile := ctx.String("out")
	if err = writeFrame(frame, imgFile); err != nil {
		return err
	}

	return renderErr
}

// Open the output sink for a rendered frame.
var createFile = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// Encode frame to imgFile using the format implied by the extension of imgFile.
func writeFrame(frame *renderer.Framebuffer, imgFile string) error {
	f, err := createFile(imgFile)
	if err != nil {
		return err
	}

	start := time.Now()
	if err = frame.WriteImage(f, imgFile); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1e6)
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Pixels", "% of frame", "Render time"})
	for _, stat := range stats.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", stat.Id),
			fmt.Sprintf("%d", stat.Pixels),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", fmt.Sprintf("%d failed", stats.FailedPixels), "TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
