package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/bucketfs/bucketfs/internal/logging"
	"github.com/bucketfs/bucketfs/internal/metrics"
	"github.com/bucketfs/bucketfs/internal/objectstore"
)

// Reason classifies why an operation failed.
type Reason string

const (
	ReasonNotFound      Reason = "not_found"
	ReasonAccessDenied  Reason = "access_denied"
	ReasonPartialDelete Reason = "partial_delete"
	// ReasonStillExists means a delete was acknowledged but the object remains.
	ReasonStillExists Reason = "still_exists"
	ReasonBackend     Reason = "backend"
)

// errStillExists is the cause attached to ReasonStillExists failures.
var errStillExists = errors.New("object still exists after delete")

// OpError is the failure result of a mutation or read.
type OpError struct {
	Op     string
	Path   string
	Reason Reason
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("adapter: %s %q: %s: %v", e.Op, e.Path, e.Reason, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Failed reports whether err is the failure result of an operation.
func Failed(err error) bool {
	var opErr *OpError
	return errors.As(err, &opErr)
}

// ReasonOf returns the failure reason carried by err, or "" if err is not an
// *OpError.
func ReasonOf(err error) Reason {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Reason
	}
	return ""
}

func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, objectstore.ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, objectstore.ErrAccessDenied):
		return ReasonAccessDenied
	case errors.Is(err, objectstore.ErrPartialDelete):
		return ReasonPartialDelete
	case errors.Is(err, errStillExists):
		return ReasonStillExists
	default:
		return ReasonBackend
	}
}

// fail absorbs err into an *OpError, logging and counting it.
func (a *Adapter) fail(ctx context.Context, op, path, bucket, key string, err error) error {
	reason := reasonFor(err)
	fields := logging.Err(err, logging.Fields{
		"op":     op,
		"path":   path,
		"bucket": bucket,
		"key":    key,
		"reason": string(reason),
	})

	if reason == ReasonNotFound {
		a.record(op, metrics.ResultNotFound)
		a.log(ctx).Debugf("operation failed", fields)
	} else {
		a.record(op, metrics.ResultFailed)
		a.log(ctx).Warnf("operation failed", fields)
	}

	return &OpError{Op: op, Path: path, Reason: reason, Err: err}
}

// propagate counts a lookup error that is returned to the caller unchanged.
func (a *Adapter) propagate(op string, err error) error {
	a.record(op, metrics.ResultFailed)
	return err
}
