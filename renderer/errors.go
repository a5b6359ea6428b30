package renderer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoScene          = errors.New("renderer: no scene defined")
	ErrInvalidFrameSize = errors.New("renderer: frame dimensions must be positive")
)

// A PixelError describes a render task that failed for a single pixel.
type PixelError struct {
	X, Y  int
	Cause interface{}
}

func (e PixelError) Error() string {
	return fmt.Sprintf("pixel (%d, %d): %v", e.X, e.Y, e.Cause)
}

// A PartialRenderError is returned together with a framebuffer when some
// pixels could not be rendered. The failed pixels are listed in the order
// their results were collected.
type PartialRenderError struct {
	Failed []PixelError
}

func (e *PartialRenderError) Error() string {
	const maxListed = 5

	msgs := make([]string, 0, maxListed)
	for index, failure := range e.Failed {
		if index == maxListed {
			msgs = append(msgs, fmt.Sprintf("and %d more", len(e.Failed)-maxListed))
			break
		}
		msgs = append(msgs, failure.Error())
	}
	return fmt.Sprintf("renderer: %d pixel(s) failed to render: %s", len(e.Failed), strings.Join(msgs, "; "))
}
