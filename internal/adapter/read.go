package adapter

import (
	"context"
	"fmt"
	"io"
)

// Read returns the metadata of the file at path with its contents loaded.
func (a *Adapter) Read(ctx context.Context, path string) (Metadata, error) {
	m, err := a.readObject(ctx, OpRead, path)
	if err != nil {
		return Metadata{}, err
	}
	if m.Stream != nil {
		data, err := io.ReadAll(m.Stream)
		m.Stream.Close()
		m.Stream = nil
		if err != nil {
			bucket, pfx := a.location()
			return Metadata{}, a.fail(ctx, OpRead, path, bucket, pfx.ApplyPrefix(path), fmt.Errorf("read body: %w", err))
		}
		m.Contents = data
	}
	a.succeed(OpRead)
	return m, nil
}

// ReadStream returns the metadata of the file at path with an open body stream.
// The caller must close Metadata.Stream.
func (a *Adapter) ReadStream(ctx context.Context, path string) (Metadata, error) {
	m, err := a.readObject(ctx, OpReadStream, path)
	if err != nil {
		return Metadata{}, err
	}
	a.succeed(OpReadStream)
	return m, nil
}

func (a *Adapter) readObject(ctx context.Context, op, path string) (Metadata, error) {
	bucket, pfx := a.location()
	key := pfx.ApplyPrefix(path)

	obj, err := a.backend.GetObject(ctx, bucket, key)
	if err != nil {
		return Metadata{}, a.fail(ctx, op, path, bucket, key, err)
	}

	m := normalize(pfx, obj.Info, path)
	if m.IsDir() {
		obj.Body.Close()
		return m, nil
	}
	m.Stream = obj.Body
	return m, nil
}
