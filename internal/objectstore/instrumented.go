package objectstore

import (
	"context"
	"io"
	"time"
)

// MetricsRecorder is the interface for recording backend operation metrics.
// This allows the objectstore package to be decoupled from the metrics package.
type MetricsRecorder interface {
	RecordOperation(op string, durationSeconds float64, success bool)
	RecordBytesRead(bytes int64)
	RecordBytesWritten(bytes int64)
}

// InstrumentedBackend wraps a Backend and records metrics for each operation.
type InstrumentedBackend struct {
	backend Backend
	metrics MetricsRecorder
}

// NewInstrumentedBackend creates an instrumented wrapper around a Backend.
// If metrics is nil, no metrics are recorded and operations pass through directly.
func NewInstrumentedBackend(backend Backend, metrics MetricsRecorder) *InstrumentedBackend {
	return &InstrumentedBackend{
		backend: backend,
		metrics: metrics,
	}
}

func (b *InstrumentedBackend) record(op string, start time.Time, err error) {
	if b.metrics != nil {
		b.metrics.RecordOperation(op, time.Since(start).Seconds(), err == nil)
	}
}

// Upload stores an object and counts the bytes consumed from the body.
func (b *InstrumentedBackend) Upload(ctx context.Context, bucket string, in UploadInput) error {
	start := time.Now()
	var counter *countingReader
	if b.metrics != nil && in.Body != nil {
		counter = &countingReader{Reader: in.Body}
		in.Body = counter
	}
	err := b.backend.Upload(ctx, bucket, in)
	b.record(OpUpload, start, err)
	if err == nil && counter != nil && counter.n > 0 {
		b.metrics.RecordBytesWritten(counter.n)
	}
	return err
}

// GetObject retrieves an object. Bytes read are recorded when the body is closed.
func (b *InstrumentedBackend) GetObject(ctx context.Context, bucket, key string) (*Object, error) {
	start := time.Now()
	obj, err := b.backend.GetObject(ctx, bucket, key)
	if b.metrics == nil {
		return obj, err
	}
	if err != nil {
		b.record(OpGetObject, start, err)
		return nil, err
	}
	obj.Body = &instrumentedReadCloser{
		ReadCloser: obj.Body,
		start:      start,
		metrics:    b.metrics,
	}
	return obj, nil
}

func (b *InstrumentedBackend) HeadObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	start := time.Now()
	info, err := b.backend.HeadObject(ctx, bucket, key)
	b.record(OpHeadObject, start, err)
	return info, err
}

func (b *InstrumentedBackend) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	start := time.Now()
	ok, err := b.backend.ObjectExists(ctx, bucket, key)
	b.record(OpObjectExists, start, err)
	return ok, err
}

func (b *InstrumentedBackend) ListObjects(ctx context.Context, bucket string, opts ListOptions) (ListResult, error) {
	start := time.Now()
	res, err := b.backend.ListObjects(ctx, bucket, opts)
	b.record(OpListObjects, start, err)
	return res, err
}

func (b *InstrumentedBackend) DeleteObject(ctx context.Context, bucket, key string) error {
	start := time.Now()
	err := b.backend.DeleteObject(ctx, bucket, key)
	b.record(OpDeleteObject, start, err)
	return err
}

func (b *InstrumentedBackend) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	start := time.Now()
	err := b.backend.DeletePrefix(ctx, bucket, prefix)
	b.record(OpDeletePrefix, start, err)
	return err
}

func (b *InstrumentedBackend) CopyObject(ctx context.Context, bucket, srcKey, dstKey, acl string) error {
	start := time.Now()
	err := b.backend.CopyObject(ctx, bucket, srcKey, dstKey, acl)
	b.record(OpCopyObject, start, err)
	return err
}

func (b *InstrumentedBackend) GetObjectACL(ctx context.Context, bucket, key string) ([]Grant, error) {
	start := time.Now()
	grants, err := b.backend.GetObjectACL(ctx, bucket, key)
	b.record(OpGetObjectACL, start, err)
	return grants, err
}

func (b *InstrumentedBackend) PutObjectACL(ctx context.Context, bucket, key, acl string) error {
	start := time.Now()
	err := b.backend.PutObjectACL(ctx, bucket, key, acl)
	b.record(OpPutObjectACL, start, err)
	return err
}

// Close releases resources associated with the backend.
func (b *InstrumentedBackend) Close() error {
	return b.backend.Close()
}

type countingReader struct {
	io.Reader
	n int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	r.n += int64(n)
	return n, err
}

// instrumentedReadCloser wraps a ReadCloser to track bytes read and record metrics on close.
type instrumentedReadCloser struct {
	io.ReadCloser
	start     time.Time
	metrics   MetricsRecorder
	bytesRead int64
	readErr   bool
	closed    bool
}

func (r *instrumentedReadCloser) Read(p []byte) (n int, err error) {
	n, err = r.ReadCloser.Read(p)
	r.bytesRead += int64(n)
	if err != nil && err != io.EOF {
		r.readErr = true
	}
	return n, err
}

func (r *instrumentedReadCloser) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.ReadCloser.Close()
	success := err == nil && !r.readErr
	r.metrics.RecordOperation(OpGetObject, time.Since(r.start).Seconds(), success)
	if success && r.bytesRead > 0 {
		r.metrics.RecordBytesRead(r.bytesRead)
	}
	return err
}

// Ensure InstrumentedBackend implements Backend.
var _ Backend = (*InstrumentedBackend)(nil)
