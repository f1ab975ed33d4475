// Package adapter presents an S3-compatible object store as a hierarchical
// filesystem.
//
// Paths are slash-separated and relative to a configurable key prefix.
// Directories are emulated: a key ending in "/" is a directory marker, a
// delimiter listing enumerates a directory, and deleting a directory removes
// every key under it.
//
// Operations follow one of two error conventions. Mutations and reads (Write,
// Read, Copy, Delete, SetVisibility, ...) report any failure as an *OpError and
// never leak a raw backend error. Lookups (Has, GetMetadata, GetVisibility,
// ListContents) fold expected absences into a false result and return every
// other backend error unchanged.
package adapter

import (
	"context"
	"sync"

	"github.com/bucketfs/bucketfs/internal/logging"
	"github.com/bucketfs/bucketfs/internal/metrics"
	"github.com/bucketfs/bucketfs/internal/objectstore"
	"github.com/bucketfs/bucketfs/internal/pathprefix"
)

// Operation names used in errors, logs and metrics.
const (
	OpWrite         = "write"
	OpUpdate        = "update"
	OpWriteStream   = "write_stream"
	OpUpdateStream  = "update_stream"
	OpCreateDir     = "create_dir"
	OpRead          = "read"
	OpReadStream    = "read_stream"
	OpCopy          = "copy"
	OpRename        = "rename"
	OpDelete        = "delete"
	OpDeleteDir     = "delete_dir"
	OpSetVisibility = "set_visibility"
	OpGetVisibility = "get_visibility"
	OpHas           = "has"
	OpGetMetadata   = "get_metadata"
	OpListContents  = "list_contents"
)

// OutcomeRecorder receives one outcome per adapter operation.
// *metrics.AdapterMetrics satisfies it.
type OutcomeRecorder interface {
	RecordOutcome(operation, result string)
}

// Adapter maps filesystem operations onto an object store bucket.
// It is safe for concurrent use.
type Adapter struct {
	backend objectstore.Backend
	logger  *logging.Logger
	metrics OutcomeRecorder

	defaultVisibility Visibility

	mu       sync.RWMutex
	bucket   string
	prefixer pathprefix.Prefixer
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithPrefix sets the key prefix every path is mapped under.
func WithPrefix(prefix string) Option {
	return func(a *Adapter) {
		a.prefixer.SetPrefix(prefix)
	}
}

// WithLogger sets the logger used for absorbed failures. Without it the logger
// attached to the request context, or the global logger, is used.
func WithLogger(l *logging.Logger) Option {
	return func(a *Adapter) {
		a.logger = l
	}
}

// WithMetrics sets the recorder for operation outcomes.
func WithMetrics(m OutcomeRecorder) Option {
	return func(a *Adapter) {
		a.metrics = m
	}
}

// WithDefaultVisibility sets the visibility applied to writes that specify
// neither a visibility nor an ACL.
func WithDefaultVisibility(v Visibility) Option {
	return func(a *Adapter) {
		a.defaultVisibility = v
	}
}

// New creates an Adapter for bucket on top of backend.
func New(backend objectstore.Backend, bucket string, opts ...Option) *Adapter {
	a := &Adapter{
		backend:           backend,
		bucket:            bucket,
		defaultVisibility: VisibilityPrivate,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Backend returns the underlying object store.
func (a *Adapter) Backend() objectstore.Backend {
	return a.backend
}

// Bucket returns the bucket name.
func (a *Adapter) Bucket() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bucket
}

// SetBucket switches the adapter to another bucket.
func (a *Adapter) SetBucket(bucket string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bucket = bucket
}

// PathPrefix returns the normalized key prefix.
func (a *Adapter) PathPrefix() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.prefixer.Prefix()
}

// SetPathPrefix replaces the key prefix.
func (a *Adapter) SetPathPrefix(prefix string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prefixer.SetPrefix(prefix)
}

// location snapshots the bucket and prefix for one operation.
func (a *Adapter) location() (string, pathprefix.Prefixer) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bucket, a.prefixer
}

func (a *Adapter) log(ctx context.Context) *logging.Logger {
	return logging.FromCtx(ctx, a.logger)
}

func (a *Adapter) record(op, result string) {
	if a.metrics != nil {
		a.metrics.RecordOutcome(op, result)
	}
}

func (a *Adapter) succeed(op string) {
	a.record(op, metrics.ResultOK)
}
