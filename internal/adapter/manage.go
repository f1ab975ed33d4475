package adapter

import (
	"context"
)

// Copy copies the file at src to dst, carrying over its visibility.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	if err := a.copy(ctx, OpCopy, src, dst); err != nil {
		return err
	}
	a.succeed(OpCopy)
	return nil
}

// Rename moves src to dst by copying and then deleting the source. A failed copy
// leaves src in place; a failed delete leaves both copies.
func (a *Adapter) Rename(ctx context.Context, src, dst string) error {
	if err := a.copy(ctx, OpRename, src, dst); err != nil {
		return err
	}
	if err := a.delete(ctx, OpRename, src); err != nil {
		return err
	}
	a.succeed(OpRename)
	return nil
}

// Delete removes the file at path. It fails if the object still exists
// afterwards.
func (a *Adapter) Delete(ctx context.Context, path string) error {
	if err := a.delete(ctx, OpDelete, path); err != nil {
		return err
	}
	a.succeed(OpDelete)
	return nil
}

// DeleteDir removes dir and everything below it.
func (a *Adapter) DeleteDir(ctx context.Context, dir string) error {
	bucket, pfx := a.location()
	prefix := dirKeyPrefix(pfx, dir)

	if err := a.backend.DeletePrefix(ctx, bucket, prefix); err != nil {
		return a.fail(ctx, OpDeleteDir, dir, bucket, prefix, err)
	}
	a.succeed(OpDeleteDir)
	return nil
}

func (a *Adapter) copy(ctx context.Context, op, src, dst string) error {
	bucket, pfx := a.location()
	srcKey := pfx.ApplyPrefix(src)

	visibility, err := a.rawVisibility(ctx, bucket, srcKey)
	if err != nil {
		return a.fail(ctx, op, src, bucket, srcKey, err)
	}

	if err := a.backend.CopyObject(ctx, bucket, srcKey, pfx.ApplyPrefix(dst), visibility.ACL()); err != nil {
		return a.fail(ctx, op, src, bucket, srcKey, err)
	}
	return nil
}

func (a *Adapter) delete(ctx context.Context, op, path string) error {
	bucket, pfx := a.location()
	key := pfx.ApplyPrefix(path)

	if err := a.backend.DeleteObject(ctx, bucket, key); err != nil {
		return a.fail(ctx, op, path, bucket, key, err)
	}

	exists, err := a.backend.ObjectExists(ctx, bucket, key)
	if err != nil {
		return a.fail(ctx, op, path, bucket, key, err)
	}
	if exists {
		return a.fail(ctx, op, path, bucket, key, errStillExists)
	}
	return nil
}
