package adapter

import (
	"context"
	"errors"
	"strings"

	"github.com/bucketfs/bucketfs/internal/metrics"
	"github.com/bucketfs/bucketfs/internal/objectstore"
	"github.com/bucketfs/bucketfs/internal/pathprefix"
)

// Has reports whether path names a file or a non-empty directory. A denied
// directory probe counts as absent; other backend errors are returned unchanged.
func (a *Adapter) Has(ctx context.Context, path string) (bool, error) {
	bucket, pfx := a.location()
	key := pfx.ApplyPrefix(path)

	ok, err := a.backend.ObjectExists(ctx, bucket, key)
	if err != nil {
		return false, a.propagate(OpHas, err)
	}
	if ok {
		a.succeed(OpHas)
		return true, nil
	}

	res, err := a.backend.ListObjects(ctx, bucket, objectstore.ListOptions{
		Prefix:  strings.TrimRight(key, pathprefix.Separator) + pathprefix.Separator,
		MaxKeys: 1,
	})
	if err != nil {
		if errors.Is(err, objectstore.ErrAccessDenied) {
			a.record(OpHas, metrics.ResultNotFound)
			return false, nil
		}
		return false, a.propagate(OpHas, err)
	}

	found := len(res.Objects) > 0 || len(res.CommonPrefixes) > 0
	if found {
		a.succeed(OpHas)
	} else {
		a.record(OpHas, metrics.ResultNotFound)
	}
	return found, nil
}

// GetMetadata returns the metadata of the object at path. ok is false when the
// object does not exist; other backend errors are returned unchanged.
func (a *Adapter) GetMetadata(ctx context.Context, path string) (m Metadata, ok bool, err error) {
	bucket, pfx := a.location()

	info, err := a.backend.HeadObject(ctx, bucket, pfx.ApplyPrefix(path))
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			a.record(OpGetMetadata, metrics.ResultNotFound)
			return Metadata{}, false, nil
		}
		return Metadata{}, false, a.propagate(OpGetMetadata, err)
	}
	a.succeed(OpGetMetadata)
	return normalize(pfx, info, path), true, nil
}

// GetSize returns the metadata of the object at path; see GetMetadata.
func (a *Adapter) GetSize(ctx context.Context, path string) (Metadata, bool, error) {
	return a.GetMetadata(ctx, path)
}

// GetMimetype returns the metadata of the object at path; see GetMetadata.
func (a *Adapter) GetMimetype(ctx context.Context, path string) (Metadata, bool, error) {
	return a.GetMetadata(ctx, path)
}

// GetTimestamp returns the metadata of the object at path; see GetMetadata.
func (a *Adapter) GetTimestamp(ctx context.Context, path string) (Metadata, bool, error) {
	return a.GetMetadata(ctx, path)
}
