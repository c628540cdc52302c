package driver

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"jtidy/internal/cache"
	"jtidy/internal/observ"
	"jtidy/internal/source"
	"jtidy/internal/trace"
)

// Pass rewrites the lines of one file. Rewrite must not keep state between
// calls: every file starts from a fresh context.
type Pass interface {
	Name() string
	Rewrite(f *source.File) ([]source.Line, int, error)
}

// cacheKeyer lets a pass separate its cache entries by configuration.
type cacheKeyer interface {
	CacheKey() string
}

// Options configures a driver run.
type Options struct {
	Check      bool // report files that would change, write nothing
	Stdout     bool // return rewritten bytes, write nothing
	Jobs       int  // concurrent files, <= 0 means 1
	Extensions []string
	Cache      *cache.DiskCache
	Progress   ProgressSink
	Timer      *observ.Timer
}

// Result captures the outcome for a single file.
type Result struct {
	Path      string
	Changed   bool
	Cached    bool
	Edits     int
	Err       error
	Formatted []byte
}

// Run collects files under paths and runs pass over them.
func Run(ctx context.Context, paths []string, pass Pass, opts Options) ([]Result, error) {
	collected := opts.Timer.Start("collect")
	files, err := Collect(ctx, paths, opts.Extensions)
	collected(fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return nil, err
	}
	return RunFiles(ctx, files, pass, opts)
}

// RunFiles runs pass over an already collected file list. Results come back
// in file order. The first failing file cancels the run; its error is
// returned together with the results finished so far.
func RunFiles(ctx context.Context, files []string, pass Pass, opts Options) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	ctx, runSpan := trace.StartSpan(ctx, trace.ScopeDriver, "run:"+pass.Name())
	ctx, passSpan := trace.StartSpan(ctx, trace.ScopePass, pass.Name())

	for _, f := range files {
		emit(opts.Progress, Event{File: f, Stage: StageRewrite, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = 1
	}

	r := &runner{pass: pass, opts: opts, tracer: trace.FromContext(ctx), parent: trace.ParentSpan(ctx), key: cacheKey(pass)}
	results := make([]Result, len(files))
	finished := make([]bool, len(files))
	var mu sync.Mutex

	rewritten := opts.Timer.Start("rewrite")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.file(path)
			mu.Lock()
			results[i], finished[i] = res, true
			mu.Unlock()
			return err
		})
	}
	err := g.Wait()

	done := make([]Result, 0, len(files))
	changed := 0
	for i, ok := range finished {
		if !ok {
			continue
		}
		done = append(done, results[i])
		if results[i].Changed {
			changed++
		}
	}

	rewritten(fmt.Sprintf("%d files, %d changed", len(done), changed))
	opts.Timer.Add("write", time.Duration(r.writeNanos.Load()), fmt.Sprintf("%d files", r.writes.Load()))

	status := StatusDone
	if err != nil {
		status = StatusError
		runSpan.WithExtra("error", err.Error())
	}
	emit(opts.Progress, Event{Stage: StageRewrite, Status: status, Err: err})
	passSpan.WithExtra("changed", strconv.Itoa(changed)).End(fmt.Sprintf("%d files", len(done)))
	runSpan.End("")
	return done, err
}

type runner struct {
	pass   Pass
	opts   Options
	tracer trace.Tracer
	parent uint64
	key    string

	writes     atomic.Int64
	writeNanos atomic.Int64
}

func (r *runner) file(path string) (Result, error) {
	span := trace.Begin(r.tracer, trace.ScopeFile, "file:"+path, r.parent)
	started := time.Now()
	emit(r.opts.Progress, Event{File: path, Stage: StageRewrite, Status: StatusWorking})

	res, err := r.process(path)
	res.Path = path
	if err != nil {
		res.Err = err
		err = fmt.Errorf("%s: %w", path, err)
		span.WithExtra("error", res.Err.Error())
		emit(r.opts.Progress, Event{File: path, Stage: StageRewrite, Status: StatusError, Err: err, Elapsed: time.Since(started)})
	} else {
		status := StatusDone
		if res.Cached {
			status = StatusCached
		}
		emit(r.opts.Progress, Event{File: path, Stage: StageRewrite, Status: status, Changed: res.Changed, Elapsed: time.Since(started)})
	}
	span.WithExtra("edits", strconv.Itoa(res.Edits)).End(changedDetail(res))
	return res, err
}

func (r *runner) process(path string) (Result, error) {
	f, err := source.Load(path)
	if err != nil {
		return Result{}, err
	}

	cacheID := cachePath(path)
	if r.opts.Cache != nil {
		fresh, err := r.opts.Cache.Fresh(r.key, cacheID, cache.Sum(f.Content))
		if err != nil {
			return Result{}, err
		}
		if fresh {
			res := Result{Cached: true}
			if r.opts.Stdout {
				res.Formatted = f.Content
			}
			return res, nil
		}
	}

	lines, edits, err := r.pass.Rewrite(f)
	if err != nil {
		return Result{}, err
	}
	out := f.Render(lines)
	res := Result{Edits: edits, Changed: !bytes.Equal(out, f.Content)}

	switch {
	case r.opts.Check:
	case r.opts.Stdout:
		res.Formatted = out
	case res.Changed:
		emit(r.opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusWorking})
		start := time.Now()
		if err := source.WriteAtomic(path, out, f.Mode); err != nil {
			return res, err
		}
		r.writeNanos.Add(int64(time.Since(start)))
		r.writes.Add(1)
	}

	if r.opts.Cache != nil {
		if err := r.opts.Cache.Put(r.key, cacheID, cache.Sum(out)); err != nil {
			return res, fmt.Errorf("cache: %w", err)
		}
	}
	return res, nil
}

func cacheKey(p Pass) string {
	if k, ok := p.(cacheKeyer); ok {
		return k.CacheKey()
	}
	return p.Name()
}

func cachePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func changedDetail(res Result) string {
	switch {
	case res.Cached:
		return "cached"
	case res.Changed:
		return "changed"
	default:
		return "unchanged"
	}
}
