package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/vl4dimr/tesis-system-unap/internal/cache"
	"github.com/vl4dimr/tesis-system-unap/internal/docx"
	"github.com/vl4dimr/tesis-system-unap/internal/docx/docxtest"
	"github.com/vl4dimr/tesis-system-unap/internal/formatting"
	"github.com/vl4dimr/tesis-system-unap/internal/metrics"
	"github.com/vl4dimr/tesis-system-unap/internal/rules"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	cat, err := rules.Default()
	require.NoError(t, err)
	return New(cat, opts)
}

// occupy holds every worker until the returned func is called.
func occupy(t *testing.T, e *Engine) func() {
	t.Helper()
	require.NoError(t, e.sem.Acquire(context.Background(), int64(e.workers)))
	return func() { e.sem.Release(int64(e.workers)) }
}

func TestValidate_CompliantThesis(t *testing.T) {
	e := newEngine(t, Options{Workers: 2})

	res, err := e.Validate(context.Background(), docxtest.Thesis().Bytes())
	require.NoError(t, err)
	assert.True(t, res.Report.Valid)
	assert.Equal(t, 100.0, res.Report.Percentage)
	assert.Len(t, res.SHA256, 64)
	assert.False(t, res.Cached)
}

func TestValidate_LoadError(t *testing.T) {
	e := newEngine(t, Options{Workers: 1})

	_, err := e.Validate(context.Background(), []byte("no es un zip"))
	var corrupt *docx.CorruptDocumentError
	assert.True(t, errors.As(err, &corrupt))

	// the worker was released
	_, err = e.Validate(context.Background(), docxtest.Thesis().Bytes())
	assert.NoError(t, err)
}

func TestValidate_MaxPartBytes(t *testing.T) {
	e := newEngine(t, Options{Workers: 1, MaxPartBytes: 64})

	_, err := e.Validate(context.Background(), docxtest.Thesis().Bytes())
	var corrupt *docx.CorruptDocumentError
	assert.True(t, errors.As(err, &corrupt))
}

func TestValidate_Cache(t *testing.T) {
	mem := cache.NewMemory(time.Minute, 0)
	e := newEngine(t, Options{Workers: 1, Cache: mem, Metrics: metrics.New("docservice", "test")})
	data := docxtest.Thesis().Margins(2.0, 2.5, 2.5, 2.5).Bytes()

	first, err := e.Validate(context.Background(), data)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, mem.Len())

	// a cached report needs no worker
	release := occupy(t, e)
	defer release()
	second, err := e.Validate(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Report, second.Report)
	assert.Equal(t, first.SHA256, second.SHA256)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (*types.ValidationReport, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (failingCache) Set(context.Context, string, *types.ValidationReport) error {
	return errors.New("connection refused")
}

func TestValidate_CacheFailureIsNotFatal(t *testing.T) {
	e := newEngine(t, Options{Workers: 1, Cache: failingCache{}})

	res, err := e.Validate(context.Background(), docxtest.Thesis().Bytes())
	require.NoError(t, err)
	assert.True(t, res.Report.Valid)
}

func TestAcquire_Overloaded(t *testing.T) {
	e := newEngine(t, Options{Workers: 1, QueueSize: 0})
	release := occupy(t, e)
	defer release()

	_, err := e.Validate(context.Background(), docxtest.Thesis().Bytes())
	assert.ErrorIs(t, err, ErrOverloaded)
	_, err = e.Format(context.Background(), docxtest.Thesis().Bytes(), formatting.Metadata{})
	assert.ErrorIs(t, err, ErrOverloaded)
	assert.Equal(t, int64(0), e.Waiting())
}

func TestAcquire_QueueTimeout(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		timeout time.Duration
	}{
		{"caller deadline", Options{Workers: 1, QueueSize: 4}, 30 * time.Millisecond},
		{"queue timeout", Options{Workers: 1, QueueSize: 4, QueueTimeout: 30 * time.Millisecond}, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, tt.opts)
			release := occupy(t, e)
			defer release()

			ctx, cancel := context.WithTimeout(context.Background(), tt.timeout)
			defer cancel()
			_, err := e.Validate(ctx, docxtest.Thesis().Bytes())
			assert.ErrorIs(t, err, ErrQueueTimeout)
			assert.Equal(t, int64(0), e.Waiting())
		})
	}
}

func TestAcquire_QueuedJobRunsWhenWorkerFrees(t *testing.T) {
	e := newEngine(t, Options{Workers: 1, QueueSize: 1})
	release := occupy(t, e)

	done := make(chan error, 1)
	go func() {
		_, err := e.Validate(context.Background(), docxtest.Thesis().Bytes())
		done <- err
	}()

	require.Eventually(t, func() bool { return e.Waiting() == 1 }, time.Second, time.Millisecond)
	release()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("queued job never ran")
	}
}

func TestValidate_ConcurrentDeterministic(t *testing.T) {
	e := newEngine(t, Options{Workers: 3, QueueSize: 16})
	data := docxtest.Thesis().Font("Arial", 11).Bytes()

	reports := make([]*types.ValidationReport, 12)
	var g errgroup.Group
	for i := range reports {
		i := i
		g.Go(func() error {
			res, err := e.Validate(context.Background(), data)
			if err != nil {
				return err
			}
			reports[i] = res.Report
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, r := range reports[1:] {
		assert.Equal(t, reports[0], r)
	}
}

func TestFormat(t *testing.T) {
	e := newEngine(t, Options{Workers: 1})

	res, err := e.Format(context.Background(), docxtest.Thesis().Font("Arial", 11).Bytes(), formatting.Metadata{Author: "Ana"})
	require.NoError(t, err)
	assert.Len(t, res.Changes, 2)
	assert.NotEmpty(t, res.Document)

	_, err = e.Format(context.Background(), docxtest.New().Paragraph("CAPÍTULO I").Bytes(), formatting.Metadata{})
	var incomplete *formatting.IncompleteFormattingError
	assert.True(t, errors.As(err, &incomplete))
}
