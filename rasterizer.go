package tilerast

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/gogpu/tilerast/internal/parallel"
	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// MaxThreads is the largest worker count a Rasterizer accepts.
const MaxThreads = scene.MaxThreads

// Rasterizer executes binned scenes over a fixed pool of worker threads.
//
// Scenes are rasterized one at a time. For each scene, worker 0 takes it
// off the queue and publishes it, every worker meets at a barrier, the
// workers claim and rasterize tiles until none are left, they meet at a
// second barrier, and worker 0 retires the scene and signals its fence.
//
// With zero threads the rasterizer is synchronous: QueueScene renders the
// scene on the calling goroutine before returning.
//
// QueueScene, Finish and Close are meant to be called from one producer
// goroutine.
type Rasterizer struct {
	opts    options
	log     *slog.Logger
	threads int

	// tasks holds per-thread state; synchronous mode uses tasks[0].
	tasks []*Task

	queue   *scene.Queue
	barrier *parallel.Barrier
	pool    *parallel.ThreadPool

	// curr is the scene being rasterized. Written by worker 0 before the
	// first barrier and cleared after the second.
	curr *scene.Scene

	// claimed records the current scene's claimed tiles under
	// DebugCheckTiles.
	claimed *parallel.TileSet

	// pending counts scenes queued since the last Finish.
	pending int

	closed atomic.Bool
	stats  counters

	// fallbacks is the fast-path fallback total at the end of the last
	// scene. Only touched by whoever retires scenes.
	fallbacks uint64
}

// New creates a rasterizer.
//
// New returns ErrInitializationFailed if the thread count is outside
// [0, MaxThreads] or a per-thread resource cannot be allocated.
func New(opts ...Option) (*Rasterizer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.threads < 0 || o.threads > MaxThreads {
		return nil, fmt.Errorf("%w: %d threads (max %d)", ErrInitializationFailed, o.threads, MaxThreads)
	}

	r := &Rasterizer{
		opts:    o,
		log:     o.logger,
		threads: o.threads,
	}
	if r.log == nil {
		r.log = Logger()
	}

	ntasks := max(o.threads, 1)
	r.tasks = make([]*Task, ntasks)
	for i := range ntasks {
		td, err := shader.NewThreadData(i, o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("%w: thread %d: %w", ErrInitializationFailed, i, err)
		}
		r.tasks[i] = newTask(r, i, td)
	}

	if o.threads > 0 {
		r.queue = scene.NewQueue(o.queueDepth)
		r.barrier = parallel.NewBarrier(o.threads)
		r.pool = parallel.NewThreadPool(o.threads, r.work)
	}

	// CPU features are logged for bug reports; no path depends on them.
	r.log.Info("tilerast: rasterizer created",
		"threads", o.threads,
		"debug", o.debug.String(),
		"perf", o.perf.String(),
		"arch", runtime.GOARCH,
		"avx2", cpu.X86.HasAVX2,
		"asimd", cpu.ARM64.HasASIMD,
	)
	return r, nil
}

// NumThreads returns the number of worker threads; zero means synchronous.
func (r *Rasterizer) NumThreads() int {
	return r.threads
}

// QueueScene hands s to the rasterizer. The caller must not modify s or
// its bins until the scene's fence is signalled or Finish returns.
//
// In threaded mode the scene is queued (blocking while the queue is full)
// and every worker is woken once. In synchronous mode the scene is fully
// rasterized before QueueScene returns.
func (r *Rasterizer) QueueScene(s *scene.Scene) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if s == nil || s.FB == nil {
		return ErrNilScene
	}

	if r.threads == 0 {
		r.beginScene(s)
		r.tasks[0].rasterizeScene(s)
		r.endScene()
		return nil
	}

	r.queue.Enqueue(s)
	r.pending++
	r.pool.Wake()
	return nil
}

// Finish blocks until every queued scene has been rasterized and retired.
// In synchronous mode it returns immediately.
func (r *Rasterizer) Finish() {
	if r.threads == 0 {
		return
	}
	for ; r.pending > 0; r.pending-- {
		r.pool.WaitDone()
	}
}

// Close drains queued work, stops the workers and releases per-thread
// state. Close is safe to call multiple times.
func (r *Rasterizer) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	if r.pool != nil {
		r.Finish()
		r.pool.Close()
	}
	r.tasks = nil
	r.barrier = nil

	r.log.Info("tilerast: rasterizer closed", "scenes", r.stats.scenes.Load())
	return nil
}

// work is the body each worker runs once per wake.
func (r *Rasterizer) work(id int) {
	task := r.tasks[id]

	if id == 0 {
		r.beginScene(r.queue.Dequeue(true))
	}

	// No worker reads curr before worker 0 has set it.
	r.barrier.Wait()

	task.rasterizeScene(r.curr)

	// No worker retires the scene while another still has tiles.
	r.barrier.Wait()

	if id == 0 {
		r.endScene()
	}
}

// beginScene publishes s as the current scene.
func (r *Rasterizer) beginScene(s *scene.Scene) {
	s.BeginIteration()
	r.curr = s
	if r.opts.debug&DebugCheckTiles != 0 {
		g := s.Grid()
		r.claimed = parallel.NewTileSet(g.TilesX(), g.TilesY())
	}
	r.log.Debug("tilerast: scene begin",
		"width", s.FB.Width,
		"height", s.FB.Height,
		"tiles", s.Grid().TileCount(),
		"queries", len(s.ActiveQueries),
	)
}

// endScene retires the current scene: signal its fence exactly once and
// return it to its pool.
func (r *Rasterizer) endScene() {
	s := r.curr
	r.curr = nil

	if r.claimed != nil {
		n, want := r.claimed.Count(), s.Grid().TileCount()
		r.claimed = nil
		if n != want {
			panic(fmt.Sprintf("tilerast: %d of %d tiles claimed", n, want))
		}
	}

	r.stats.scenes.Add(1)
	linear, blit := r.stats.linearFallbacks.Load(), r.stats.blitFallbacks.Load()
	if total := linear + blit; total != r.fallbacks {
		r.log.Warn("tilerast: fast path fallbacks",
			"new", total-r.fallbacks,
			"linear_total", linear,
			"blit_total", blit,
		)
		r.fallbacks = total
	}
	if s.Fence != nil {
		s.Fence.Signal()
	}
	r.log.Debug("tilerast: scene end", "scenes", r.stats.scenes.Load())
	s.Release()
}
