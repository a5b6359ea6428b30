package renderer

import (
	"runtime"
	"time"

	"github.com/achilleasa/octrace/asset/scene"
	"github.com/achilleasa/octrace/log"
	"github.com/achilleasa/octrace/types"
	"github.com/shirou/gopsutil/cpu"
	"golang.org/x/sync/errgroup"
)

// The Tracer interface is implemented by objects that can compute the color
// seen along a ray. Implementations must be safe for concurrent use.
type Tracer interface {
	// Get the color seen along a ray.
	GetRayColour(origin, direction types.Vec3) types.Color

	// Get the camera used for generating primary rays.
	Camera() *scene.Camera
}

type Renderer interface {
	// Render frame.
	Render() (*Framebuffer, error)

	// Get render statistics.
	Stats() FrameStats
}

// Sub-pixel sample offsets in canvas units.
var sampleOffsets = [4][2]float64{
	{0, 0},
	{0.5, 0},
	{0, 0.5},
	{0.5, 0.5},
}

type pixelTask struct {
	x, y int
}

type pixelResult struct {
	x, y  int
	color types.Color
	err   *PixelError
}

// A renderer that distributes per-pixel tasks to a fixed pool of worker
// goroutines. Workers share the tracer; the calling goroutine is the only
// writer of the framebuffer.
type ParallelRenderer struct {
	logger log.Logger
	tracer Tracer
	opts   Options
	stats  FrameStats

	// Invoked by workers before tracing a pixel.
	beforePixel func(x, y int)
}

// Create a new parallel renderer.
func New(tracer Tracer, opts Options) *ParallelRenderer {
	return &ParallelRenderer{
		logger: log.New("renderer"),
		tracer: tracer,
		opts:   opts,
	}
}

// Render a canvasW x canvasH frame with the default options.
func Render(tracer Tracer, canvasW, canvasH int) (*Framebuffer, error) {
	return New(tracer, Options{FrameW: canvasW, FrameH: canvasH}).Render()
}

// Get render statistics for the last rendered frame.
func (r *ParallelRenderer) Stats() FrameStats {
	return r.stats
}

// Render frame. Every pixel is written exactly once. If some pixel tasks
// fail, Render still returns the full framebuffer with the failed pixels
// painted with the configured error color, together with a
// *PartialRenderError.
func (r *ParallelRenderer) Render() (*Framebuffer, error) {
	if r.tracer == nil || r.tracer.Camera() == nil {
		return nil, ErrNoScene
	}
	frameW, frameH := r.opts.FrameW, r.opts.FrameH
	if frameW <= 0 || frameH <= 0 {
		return nil, ErrInvalidFrameSize
	}

	numWorkers := r.workerCount()
	r.logger.Infof("rendering %dx%d frame using %d workers", frameW, frameH, numWorkers)
	start := time.Now()

	tasks := make(chan pixelTask, numWorkers*4)
	results := make(chan pixelResult, numWorkers*4)
	workerStats := make([]WorkerStat, numWorkers)

	var group errgroup.Group
	group.Go(func() error {
		defer close(tasks)
		for y := 0; y < frameH; y++ {
			for x := 0; x < frameW; x++ {
				tasks <- pixelTask{x: x, y: y}
			}
		}
		return nil
	})
	for workerId := 0; workerId < numWorkers; workerId++ {
		stat := &workerStats[workerId]
		stat.Id = workerId
		group.Go(func() error {
			r.work(tasks, results, stat)
			return nil
		})
	}
	go func() {
		_ = group.Wait()
		close(results)
	}()

	fb := NewFramebuffer(frameW, frameH)
	errColor := r.opts.errorColor()
	var failed []PixelError
	for res := range results {
		if res.err != nil {
			failed = append(failed, *res.err)
			fb.Set(res.x, res.y, errColor)
			continue
		}
		fb.Set(res.x, res.y, res.color)
	}

	totalPixels := float32(frameW * frameH)
	for index := range workerStats {
		workerStats[index].FramePercent = 100.0 * float32(workerStats[index].Pixels) / totalPixels
	}
	r.stats = FrameStats{
		Workers:      workerStats,
		FailedPixels: len(failed),
		RenderTime:   time.Since(start),
	}
	r.logger.Infof("frame rendered in %d ms", r.stats.RenderTime.Nanoseconds()/1e6)

	if len(failed) != 0 {
		r.logger.Warningf("%d pixels failed to render", len(failed))
		return fb, &PartialRenderError{Failed: failed}
	}
	return fb, nil
}

// Process pixel tasks until the task channel is closed.
func (r *ParallelRenderer) work(tasks <-chan pixelTask, results chan<- pixelResult, stat *WorkerStat) {
	for task := range tasks {
		start := time.Now()
		color, err := r.renderPixel(task.x, task.y)
		stat.RenderTime += time.Since(start)
		stat.Pixels++
		results <- pixelResult{x: task.x, y: task.y, color: color, err: err}
	}
}

// Trace the 4 sub-pixel samples of pixel (x, y) and average them. A panic
// while tracing is recovered and reported as a PixelError.
func (r *ParallelRenderer) renderPixel(x, y int) (color types.Color, pixErr *PixelError) {
	defer func() {
		if cause := recover(); cause != nil {
			pixErr = &PixelError{X: x, Y: y, Cause: cause}
		}
	}()

	if r.beforePixel != nil {
		r.beforePixel(x, y)
	}

	frameW, frameH := r.opts.FrameW, r.opts.FrameH
	cam := r.tracer.Camera()
	cx := float64(x - frameW/2)
	cy := float64(frameH/2 - y)

	var samples [len(sampleOffsets)]types.Color
	for index, offset := range sampleOffsets {
		dir := cam.RayDirection(cx+offset[0], cy+offset[1], frameW, frameH)
		samples[index] = r.tracer.GetRayColour(cam.Origin, dir)
	}
	return types.AverageColors(samples[:]...), nil
}

// Get the number of workers to use.
func (r *ParallelRenderer) workerCount() int {
	if r.opts.Workers > 0 {
		return r.opts.Workers
	}

	count, err := cpu.Counts(true)
	if err != nil || count <= 0 {
		r.logger.Debugf("could not detect logical cpu count (%v); falling back to runtime.NumCPU", err)
		return runtime.NumCPU()
	}
	return count
}
