package adapter

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketfs/bucketfs/internal/logging"
	"github.com/bucketfs/bucketfs/internal/metrics"
	"github.com/bucketfs/bucketfs/internal/objectstore"
)

const testBucket = "bucket"

var testClock = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func newTestAdapter(t *testing.T, opts ...Option) (*Adapter, *objectstore.MockBackend) {
	t.Helper()
	backend := objectstore.NewMockBackend()
	backend.SetClock(func() time.Time { return testClock })
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return New(backend, testBucket, opts...), backend
}

func TestNew_Defaults(t *testing.T) {
	a, backend := newTestAdapter(t)

	assert.Equal(t, testBucket, a.Bucket())
	assert.Equal(t, "", a.PathPrefix())
	assert.Same(t, backend, a.Backend())
}

func TestAdapter_Accessors(t *testing.T) {
	a, _ := newTestAdapter(t, WithPrefix("/path-prefix"))
	assert.Equal(t, "path-prefix/", a.PathPrefix())

	a.SetPathPrefix("other")
	assert.Equal(t, "other/", a.PathPrefix())

	a.SetBucket("second")
	assert.Equal(t, "second", a.Bucket())
}

func TestAdapter_ConcurrentMutation(t *testing.T) {
	a, backend := newTestAdapter(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			a.SetPathPrefix(fmt.Sprintf("p%d", i%2))
			a.SetBucket(testBucket)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := a.Write(ctx, fmt.Sprintf("f%d.txt", i), []byte("x"), Config{})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	keys := backend.Keys(testBucket)
	assert.Len(t, keys, 8)
	for _, k := range keys {
		assert.True(t, strings.HasPrefix(k, "p0/") || strings.HasPrefix(k, "p1/"), k)
	}
}

func TestAdapter_RecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewAdapterMetrics(reg)
	a, backend := newTestAdapter(t, WithMetrics(m))
	ctx := context.Background()

	_, err := a.Write(ctx, "a.txt", []byte("a"), Config{})
	require.NoError(t, err)
	_, err = a.Read(ctx, "missing.txt")
	require.Error(t, err)
	backend.Fail(objectstore.OpCopyObject, objectstore.ErrAccessDenied)
	require.Error(t, a.Copy(ctx, "a.txt", "b.txt"))
	_, ok, err := a.GetMetadata(ctx, "nope")
	require.NoError(t, err)
	require.False(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues(OpWrite, metrics.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues(OpRead, metrics.ResultNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues(OpCopy, metrics.ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues(OpGetMetadata, metrics.ResultNotFound)))
}

func TestAdapter_LogsAbsorbedFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Format: logging.FormatText, Output: &buf})
	a, backend := newTestAdapter(t, WithLogger(logger), WithPrefix("p"))
	backend.Fail(objectstore.OpPutObjectACL, objectstore.ErrAccessDenied)

	ctx := logging.WithCorrelationIDCtx(context.Background(), "req-42")
	_, err := a.SetVisibility(ctx, "file.txt", VisibilityPublic)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "[warn] operation failed")
	assert.Contains(t, out, "correlationId=req-42")
	assert.Contains(t, out, `key="p/file.txt"`)
	assert.Contains(t, out, `reason="access_denied"`)
	assert.Contains(t, out, `op="set_visibility"`)

	buf.Reset()
	_, err = a.Read(ctx, "missing.txt")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "[debug] operation failed")
}
