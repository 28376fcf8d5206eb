package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/vl4dimr/tesis-system-unap/internal/cache"
	"github.com/vl4dimr/tesis-system-unap/internal/docx"
	"github.com/vl4dimr/tesis-system-unap/internal/formatting"
	"github.com/vl4dimr/tesis-system-unap/internal/logging"
	"github.com/vl4dimr/tesis-system-unap/internal/metrics"
	"github.com/vl4dimr/tesis-system-unap/internal/rules"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
	"github.com/vl4dimr/tesis-system-unap/internal/validation"
)

// Job kinds
const (
	KindValidate = "validate"
	KindFormat   = "format"
)

const cacheTimeout = 2 * time.Second

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Workers      int           // default runtime.NumCPU()
	QueueSize    int           // jobs allowed to wait for a worker
	QueueTimeout time.Duration // upper bound on waiting, on top of the caller's context
	MaxPartBytes int64         // per-part decompression cap

	Cache   cache.ReportCache
	Metrics *metrics.Metrics
	Logger  *logrus.Entry
}

// Engine shares one immutable catalog across all jobs.
type Engine struct {
	catalog      *rules.Catalog
	sem          *semaphore.Weighted
	workers      int
	queueSize    int64
	queueTimeout time.Duration
	waiting      atomic.Int64
	loadOpts     []docx.Option

	cache   cache.ReportCache
	metrics *metrics.Metrics
	log     *logrus.Entry
}

// ValidationResult is the outcome of a validation job.
type ValidationResult struct {
	Report   *types.ValidationReport
	SHA256   string
	Cached   bool
	Duration time.Duration
}

// New returns an engine for cat.
func New(cat *rules.Catalog, opts Options) *Engine {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	queue := opts.QueueSize
	if queue < 0 {
		queue = 0
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	e := &Engine{
		catalog:      cat,
		sem:          semaphore.NewWeighted(int64(workers)),
		workers:      workers,
		queueSize:    int64(queue),
		queueTimeout: opts.QueueTimeout,
		cache:        opts.Cache,
		metrics:      opts.Metrics,
		log:          log.WithField("component", "engine"),
	}
	if opts.MaxPartBytes > 0 {
		e.loadOpts = append(e.loadOpts, docx.WithMaxPartBytes(opts.MaxPartBytes))
	}
	return e
}

// Catalog returns the catalog every job runs against.
func (e *Engine) Catalog() *rules.Catalog { return e.catalog }

// Workers returns the size of the worker pool.
func (e *Engine) Workers() int { return e.workers }

// Waiting returns the number of jobs queued for a worker.
func (e *Engine) Waiting() int64 { return e.waiting.Load() }

// Validate checks a .docx package against the catalog. Cached reports are
// returned without taking a worker.
func (e *Engine) Validate(ctx context.Context, data []byte) (*ValidationResult, error) {
	start := time.Now()
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	log := e.log.WithFields(logrus.Fields{"job": KindValidate, "sha256": digest})

	key := cache.Key(data, e.catalog.Fingerprint())
	if report, ok := e.cachedReport(ctx, key, log); ok {
		log.WithField("porcentaje", report.Percentage).Debug("validation served from cache")
		return &ValidationResult{Report: report, SHA256: digest, Cached: true, Duration: time.Since(start)}, nil
	}

	if err := e.acquire(ctx, KindValidate); err != nil {
		log.WithError(err).Warn("validation rejected")
		return nil, err
	}
	defer e.release()

	// Holding a worker: run to completion regardless of ctx.
	log.Debug("validation started")
	report, err := e.validate(data)
	took := time.Since(start)
	if err != nil {
		e.metrics.ObserveJob(KindValidate, metrics.OutcomeError, took)
		log.WithError(err).Info("validation failed")
		return nil, err
	}

	e.metrics.ObserveJob(KindValidate, metrics.OutcomeOK, took)
	e.metrics.ObserveReport(report)
	e.storeReport(ctx, key, report, log)

	log.WithFields(logrus.Fields{
		"findings":    len(report.Findings),
		"porcentaje":  report.Percentage,
		"es_valido":   report.Valid,
		"duration_ms": took.Milliseconds(),
	}).Info("validation finished")
	return &ValidationResult{Report: report, SHA256: digest, Duration: took}, nil
}

// Format corrects a freshly loaded copy of data. On any error no bytes are
// returned.
func (e *Engine) Format(ctx context.Context, data []byte, meta formatting.Metadata) (*formatting.Result, error) {
	start := time.Now()
	sum := sha256.Sum256(data)
	log := e.log.WithFields(logrus.Fields{"job": KindFormat, "sha256": hex.EncodeToString(sum[:])})

	if err := e.acquire(ctx, KindFormat); err != nil {
		log.WithError(err).Warn("formatting rejected")
		return nil, err
	}
	defer e.release()

	log.Debug("formatting started")
	res, err := formatting.FormatBytes(data, e.catalog, meta, e.loadOpts...)
	took := time.Since(start)
	if err != nil {
		e.metrics.ObserveJob(KindFormat, metrics.OutcomeError, took)
		log.WithError(err).Info("formatting failed")
		return nil, err
	}

	e.metrics.ObserveJob(KindFormat, metrics.OutcomeOK, took)
	log.WithFields(logrus.Fields{
		"cambios":     len(res.Changes),
		"porcentaje":  res.After.Percentage,
		"duration_ms": took.Milliseconds(),
	}).Info("formatting finished")
	return res, nil
}

func (e *Engine) validate(data []byte) (*types.ValidationReport, error) {
	doc, err := docx.Load(data, e.loadOpts...)
	if err != nil {
		return nil, err
	}
	return validation.Validate(doc.Model(), e.catalog), nil
}

// acquire takes a worker, waiting in the bounded queue when all are busy.
func (e *Engine) acquire(ctx context.Context, kind string) error {
	if e.sem.TryAcquire(1) {
		e.metrics.AddBusyWorkers(1)
		return nil
	}

	if n := e.waiting.Add(1); n > e.queueSize {
		e.waiting.Add(-1)
		e.metrics.ObserveJob(kind, metrics.OutcomeOverloaded, 0)
		return ErrOverloaded
	}
	e.metrics.SetQueueDepth(e.waiting.Load())
	defer func() {
		e.metrics.SetQueueDepth(e.waiting.Add(-1))
	}()

	if e.queueTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.queueTimeout)
		defer cancel()
	}
	if err := e.sem.Acquire(ctx, 1); err != nil {
		e.metrics.ObserveJob(kind, metrics.OutcomeTimeout, 0)
		return ErrQueueTimeout
	}
	e.metrics.AddBusyWorkers(1)
	return nil
}

func (e *Engine) release() {
	e.metrics.AddBusyWorkers(-1)
	e.sem.Release(1)
}

// Cache failures are logged and otherwise ignored; the cache only saves work.

func (e *Engine) cachedReport(ctx context.Context, key string, log *logrus.Entry) (*types.ValidationReport, bool) {
	if e.cache == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()

	report, ok, err := e.cache.Get(ctx, key)
	switch {
	case err != nil:
		e.metrics.ObserveCache("get", "error")
		log.WithError(err).Warn("report cache lookup failed")
		return nil, false
	case !ok:
		e.metrics.ObserveCache("get", "miss")
		return nil, false
	}
	e.metrics.ObserveCache("get", "hit")
	return report, true
}

func (e *Engine) storeReport(ctx context.Context, key string, report *types.ValidationReport, log *logrus.Entry) {
	if e.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()

	if err := e.cache.Set(ctx, key, report); err != nil {
		e.metrics.ObserveCache("set", "error")
		log.WithError(err).Warn("report cache write failed")
		return
	}
	e.metrics.ObserveCache("set", "ok")
}
