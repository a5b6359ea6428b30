package renderer

import "github.com/achilleasa/octrace/types"

type Options struct {
	// Frame dims.
	FrameW int
	FrameH int

	// Number of render workers. A zero value selects the number of
	// logical CPUs.
	Workers int

	// The color assigned to pixels whose render task failed. A zero value
	// selects magenta.
	ErrorColor *types.Color
}

func (opts Options) errorColor() types.Color {
	if opts.ErrorColor == nil {
		return types.Magenta
	}
	return *opts.ErrorColor
}
