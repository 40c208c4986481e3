package driver

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"regionck/internal/diag"
	"regionck/internal/lir"
	"regionck/internal/observ"
	"regionck/internal/sendcheck"
	"regionck/internal/source"
	"regionck/internal/trace"
	"regionck/internal/types"
)

// CheckOptions carries the runtime pieces a config file cannot describe.
type CheckOptions struct {
	// Tracer receives analysis trace events. Nil falls back to the tracer
	// attached to the context, trace.Nop when neither is set.
	Tracer      trace.Tracer
	Cache       *ResultCache  // nil disables caching
	EmitTimings bool          // append an ObsTimings info diagnostic per module
	Heartbeat   time.Duration // liveness tick interval for CheckDir (0 = off)
}

// resolveTracer picks the explicit option tracer over the context one.
func (o CheckOptions) resolveTracer(ctx context.Context) trace.Tracer {
	if o.Tracer != nil {
		return o.Tracer
	}
	return trace.FromContext(ctx)
}

// Result содержит итог проверки одного .lirb файла.
type Result struct {
	Path     string
	Module   string
	Skipped  bool // feature gate was off for this module
	CacheHit bool
	Bag      *diag.Bag
	FileSet  *source.FileSet // span resolution for Bag (nil on load errors)
	Timing   *observ.Report
}

// listModuleFiles возвращает отсортированный список всех *.lirb файлов.
func listModuleFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".lirb") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CheckDir checks every *.lirb file under dir in sorted order. Files are
// processed one at a time; the parallelism lives inside CheckFile, across
// the functions of each module.
func CheckDir(ctx context.Context, dir string, cfg Config, opts CheckOptions) ([]*Result, error) {
	files, err := listModuleFiles(dir)
	if err != nil {
		return nil, err
	}

	// Пульс на время всего обхода: зависший fixpoint виден в трассе.
	hb := trace.StartHeartbeat(opts.resolveTracer(ctx), opts.Heartbeat)
	defer hb.Stop()

	results := make([]*Result, 0, len(files))
	for _, path := range files {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}
		results = append(results, CheckFile(ctx, path, cfg, opts))
	}
	return results, nil
}

// CheckFile loads, decodes and checks one serialized module. Infrastructure
// failures (unreadable file, bad encoding, invalid IR) surface as
// diagnostics in the result bag, never as panics.
func CheckFile(ctx context.Context, path string, cfg Config, opts CheckOptions) *Result {
	opts.Tracer = opts.resolveTracer(ctx)
	sp := trace.Begin(opts.Tracer, trace.ScopeDriver, "check:"+filepath.Base(path), 0)
	defer sp.End("")

	timer := observ.NewTimer()
	res := &Result{Path: path, Bag: diag.NewBag(cfg.Analysis.MaxDiagnostics)}

	phase := timer.Begin("load")
	content, err := os.ReadFile(path)
	timer.End(phase, "")
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load module file: "+err.Error()))
		return res
	}

	key := HashBytes(content)
	if opts.Cache != nil {
		var cached ResultPayload
		hit, err := opts.Cache.Get(key, &cached)
		switch {
		case err != nil:
			res.Bag.Add(diag.NewWarning(diag.IOCacheReadFailed, source.Span{}, "analysis cache read failed: "+err.Error()))
		case hit:
			res.Module = cached.Module
			res.Skipped = cached.Skipped
			res.CacheHit = true
			for _, d := range cached.Diags {
				res.Bag.Add(d)
			}
			// Спаны валидны: содержимое файла то же, что и при записи.
			if _, _, fileSet, err := lir.DecodeModule(bytes.NewReader(content)); err == nil {
				res.FileSet = fileSet
			}
			report := timer.Report()
			res.Timing = &report
			return res
		}
	}

	phase = timer.Begin("decode")
	m, typesIn, fileSet, err := lir.DecodeModule(bytes.NewReader(content))
	timer.End(phase, "")
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IODecodeModule, source.Span{}, err.Error()))
		return res
	}
	res.Module = m.Name
	res.FileSet = fileSet

	phase = timer.Begin("validate")
	err = lir.Validate(m, typesIn)
	timer.End(phase, "")
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IRInvalidModule, source.Span{}, "module "+m.Name+": "+err.Error()))
		return res
	}

	if !cfg.Analysis.DeferredThreadSafetyChecking || !sendcheck.Enabled(m) {
		res.Skipped = true
	} else {
		phase = timer.Begin("check")
		checkFuncs(ctx, m, typesIn, cfg, opts, res.Bag)
		timer.End(phase, "")
	}

	report := timer.Report()
	res.Timing = &report
	if opts.EmitTimings {
		appendTimingDiagnostic(res.Bag, timingPayload{
			Kind:    "check",
			Path:    path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}

	if opts.Cache != nil && !res.CacheHit {
		payload := &ResultPayload{
			Schema:  resultCacheSchemaVersion,
			Module:  m.Name,
			Skipped: res.Skipped,
			Diags:   res.Bag.Items(),
		}
		if err := opts.Cache.Put(key, payload); err != nil {
			res.Bag.Add(diag.NewWarning(diag.IOCacheWriteFailed, source.Span{}, "analysis cache write failed: "+err.Error()))
		}
	}
	return res
}

// checkFuncs runs the region analysis over every function of the module,
// in parallel with bounded workers, and merges the per-function bags into
// out in declaration order.
func checkFuncs(ctx context.Context, m *lir.Module, typesIn *types.Interner, cfg Config, opts CheckOptions, out *diag.Bag) {
	funcs := m.Funcs
	if len(funcs) == 0 {
		return
	}

	jobs := cfg.Analysis.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	bags := make([]*diag.Bag, len(funcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(funcs)))

	for i, fn := range funcs {
		i, fn := i, fn
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if fn == nil {
				return nil
			}

			bag := diag.NewBag(cfg.Analysis.MaxDiagnostics)
			sendcheck.CheckFunc(fn, typesIn, diag.NewDedupReporter(diag.BagReporter{Bag: bag}), sendcheck.Options{
				Tracer:              opts.Tracer,
				RequirementsPerSend: cfg.Analysis.RequirementsPerSend,
			})
			bags[i] = bag
			return nil
		})
	}

	// Отмена оставляет уже готовые bags на месте; сливаем что есть.
	_ = g.Wait()

	for _, bag := range bags {
		if bag != nil {
			out.Merge(bag)
		}
	}
}
