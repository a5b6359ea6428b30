package renderer

import "time"

type WorkerStat struct {
	// The worker id.
	Id int

	// The number of pixels rendered by this worker and the percentage of
	// the frame area it represents.
	Pixels       int
	FramePercent float32

	// Time spent tracing assigned pixels.
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual worker stats.
	Workers []WorkerStat

	// Number of pixels whose render task failed.
	FailedPixels int

	// Total render time for entire frame.
	RenderTime time.Duration
}
