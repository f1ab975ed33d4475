package adapter

import (
	"context"
	"io"

	"github.com/bucketfs/bucketfs/internal/contents"
	"github.com/bucketfs/bucketfs/internal/objectstore"
)

// Write stores data at path.
func (a *Adapter) Write(ctx context.Context, path string, data []byte, cfg Config) (Metadata, error) {
	return a.upload(ctx, OpWrite, path, contents.FromBytes(data), cfg)
}

// Update replaces the file at path with data.
func (a *Adapter) Update(ctx context.Context, path string, data []byte, cfg Config) (Metadata, error) {
	return a.upload(ctx, OpUpdate, path, contents.FromBytes(data), cfg)
}

// WriteStream stores the contents of r at path. r is not closed.
func (a *Adapter) WriteStream(ctx context.Context, path string, r io.Reader, cfg Config) (Metadata, error) {
	return a.upload(ctx, OpWriteStream, path, contents.FromStream(r), cfg)
}

// UpdateStream replaces the file at path with the contents of r. r is not closed.
func (a *Adapter) UpdateStream(ctx context.Context, path string, r io.Reader, cfg Config) (Metadata, error) {
	return a.upload(ctx, OpUpdateStream, path, contents.FromStream(r), cfg)
}

// CreateDir writes an empty directory marker for dir.
func (a *Adapter) CreateDir(ctx context.Context, dir string, cfg Config) (Metadata, error) {
	return a.upload(ctx, OpCreateDir, dir+"/", contents.FromBytes(nil), cfg)
}

// uploadOptions resolves the object options for a write. Explicit ACL and
// ContentType win over the visibility and mimetype shorthands.
func (a *Adapter) uploadOptions(path string, body contents.Body, cfg Config) objectstore.UploadInput {
	in := objectstore.UploadInput{
		Body:                 body.Reader(),
		CacheControl:         cfg.CacheControl,
		Expires:              cfg.Expires,
		StorageClass:         cfg.StorageClass,
		ServerSideEncryption: cfg.ServerSideEncryption,
		Metadata:             cfg.Metadata,
	}

	visibility := cfg.Visibility
	if visibility == "" {
		visibility = a.defaultVisibility
	}
	in.ACL = visibility.ACL()
	if cfg.ACL != "" {
		in.ACL = cfg.ACL
	}

	switch {
	case cfg.ContentType != "":
		contentType := cfg.ContentType
		in.ContentType = &contentType
	case cfg.Mimetype != "":
		contentType := cfg.Mimetype
		in.ContentType = &contentType
	case !body.IsStream():
		contentType := contents.GuessMimeType(path, body.Bytes())
		in.ContentType = &contentType
	}

	if cfg.ContentLength != nil {
		n := *cfg.ContentLength
		in.ContentLength = &n
	} else if n, ok := body.Size(); ok {
		in.ContentLength = &n
	}
	return in
}

func (a *Adapter) upload(ctx context.Context, op, path string, body contents.Body, cfg Config) (Metadata, error) {
	bucket, pfx := a.location()
	in := a.uploadOptions(path, body, cfg)
	in.Key = pfx.ApplyPrefix(path)

	if err := a.backend.Upload(ctx, bucket, in); err != nil {
		return Metadata{}, a.fail(ctx, op, path, bucket, in.Key, err)
	}
	a.succeed(op)

	// The result echoes what was sent rather than reading the object back.
	return normalize(pfx, objectstore.ObjectInfo{
		Key:           in.Key,
		ContentLength: in.ContentLength,
		ContentType:   in.ContentType,
	}, path), nil
}
