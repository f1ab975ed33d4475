package adapter

import (
	"context"

	"github.com/bucketfs/bucketfs/internal/objectstore"
)

// GetVisibility reports whether the file at path is publicly readable. Backend
// errors are returned unchanged.
func (a *Adapter) GetVisibility(ctx context.Context, path string) (VisibilityRecord, error) {
	bucket, pfx := a.location()

	v, err := a.rawVisibility(ctx, bucket, pfx.ApplyPrefix(path))
	if err != nil {
		return VisibilityRecord{}, a.propagate(OpGetVisibility, err)
	}
	a.succeed(OpGetVisibility)
	return VisibilityRecord{Visibility: v}, nil
}

// SetVisibility replaces the ACL of the file at path.
func (a *Adapter) SetVisibility(ctx context.Context, path string, v Visibility) (VisibilityRecord, error) {
	bucket, pfx := a.location()
	key := pfx.ApplyPrefix(path)

	if err := a.backend.PutObjectACL(ctx, bucket, key, v.ACL()); err != nil {
		return VisibilityRecord{}, a.fail(ctx, OpSetVisibility, path, bucket, key, err)
	}
	a.succeed(OpSetVisibility)
	return VisibilityRecord{Path: path, Visibility: v}, nil
}

// rawVisibility scans the object ACL for a READ grant to the AllUsers group.
func (a *Adapter) rawVisibility(ctx context.Context, bucket, key string) (Visibility, error) {
	grants, err := a.backend.GetObjectACL(ctx, bucket, key)
	if err != nil {
		return "", err
	}
	for _, g := range grants {
		if g.GranteeURI == objectstore.AllUsersURI && g.Permission == objectstore.PermissionRead {
			return VisibilityPublic, nil
		}
	}
	return VisibilityPrivate, nil
}
