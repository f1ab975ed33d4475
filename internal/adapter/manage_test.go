package adapter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/bucketfs/bucketfs/internal/objectstore"
)

func TestCopy_CarriesVisibility(t *testing.T) {
	for _, acl := range []string{objectstore.ACLPublicRead, objectstore.ACLPrivate} {
		t.Run(acl, func(t *testing.T) {
			a, backend := newTestAdapter(t, WithPrefix("p"))
			backend.PutRaw(testBucket, "p/src.txt", []byte("data"), "text/plain", acl)

			require.NoError(t, a.Copy(context.Background(), "src.txt", "dst.txt"))

			assert.Equal(t, acl, backend.ACL(testBucket, "p/dst.txt"))
			assert.Equal(t, []string{"p/dst.txt", "p/src.txt"}, backend.Keys(testBucket))
		})
	}
}

func TestCopy_Failures(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		a, backend := newTestAdapter(t)

		err := a.Copy(context.Background(), "missing.txt", "dst.txt")
		assert.True(t, Failed(err))
		assert.Equal(t, ReasonNotFound, ReasonOf(err))
		assert.Zero(t, backend.CallCount(objectstore.OpCopyObject), "copy is not attempted without the source ACL")
	})

	t.Run("copy rejected", func(t *testing.T) {
		a, backend := newTestAdapter(t)
		backend.PutRaw(testBucket, "src.txt", nil, "", objectstore.ACLPrivate)
		backend.Fail(objectstore.OpCopyObject, errors.New("slow down"))

		err := a.Copy(context.Background(), "src.txt", "dst.txt")
		assert.True(t, Failed(err))
		assert.Equal(t, ReasonBackend, ReasonOf(err))
	})
}

func TestRename(t *testing.T) {
	a, backend := newTestAdapter(t)
	backend.PutRaw(testBucket, "old.txt", []byte("payload"), "text/plain", objectstore.ACLPublicRead)
	ctx := context.Background()

	require.NoError(t, a.Rename(ctx, "old.txt", "new.txt"))

	assert.Equal(t, []string{"new.txt"}, backend.Keys(testBucket))
	assert.Equal(t, objectstore.ACLPublicRead, backend.ACL(testBucket, "new.txt"))
	m, err := a.Read(ctx, "new.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(m.Contents))
}

func TestRename_FailedCopyNeverDeletes(t *testing.T) {
	a, backend := newTestAdapter(t)
	backend.PutRaw(testBucket, "old.txt", nil, "", objectstore.ACLPrivate)
	backend.Fail(objectstore.OpCopyObject, objectstore.ErrAccessDenied)

	err := a.Rename(context.Background(), "old.txt", "new.txt")
	require.True(t, Failed(err))

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpRename, opErr.Op)
	assert.Zero(t, backend.CallCount(objectstore.OpDeleteObject))
	assert.Equal(t, []string{"old.txt"}, backend.Keys(testBucket))
}

func TestRename_FailedDeleteKeepsBoth(t *testing.T) {
	a, backend := newTestAdapter(t)
	backend.PutRaw(testBucket, "old.txt", nil, "", objectstore.ACLPrivate)
	backend.Fail(objectstore.OpDeleteObject, errors.New("internal error"))

	err := a.Rename(context.Background(), "old.txt", "new.txt")
	require.True(t, Failed(err))
	assert.Equal(t, []string{"new.txt", "old.txt"}, backend.Keys(testBucket))
}

// stickyBackend acknowledges deletes without removing anything.
type stickyBackend struct {
	*objectstore.MockBackend
}

func (stickyBackend) DeleteObject(context.Context, string, string) error {
	return nil
}

func TestDelete(t *testing.T) {
	a, backend := newTestAdapter(t, WithPrefix("p"))
	backend.PutRaw(testBucket, "p/file.txt", nil, "", "")

	require.NoError(t, a.Delete(context.Background(), "file.txt"))
	assert.Empty(t, backend.Keys(testBucket))

	calls := backend.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, objectstore.OpDeleteObject, calls[0].Op)
	assert.Equal(t, objectstore.OpObjectExists, calls[1].Op)
	assert.Equal(t, "p/file.txt", calls[1].Key)
}

func TestDelete_Failures(t *testing.T) {
	t.Run("backend error", func(t *testing.T) {
		a, backend := newTestAdapter(t)
		backend.Fail(objectstore.OpDeleteObject, objectstore.ErrAccessDenied)

		err := a.Delete(context.Background(), "file.txt")
		assert.Equal(t, ReasonAccessDenied, ReasonOf(err))
	})

	t.Run("object survives", func(t *testing.T) {
		_, mock := newTestAdapter(t)
		mock.PutRaw(testBucket, "file.txt", nil, "", "")
		a := New(stickyBackend{mock}, testBucket)

		err := a.Delete(context.Background(), "file.txt")
		assert.True(t, Failed(err))
		assert.Equal(t, ReasonStillExists, ReasonOf(err))
	})

	t.Run("verification error", func(t *testing.T) {
		a, backend := newTestAdapter(t)
		backend.Fail(objectstore.OpObjectExists, errors.New("timeout"))

		err := a.Delete(context.Background(), "file.txt")
		assert.Equal(t, ReasonBackend, ReasonOf(err))
	})
}

func TestDeleteDir(t *testing.T) {
	a, backend := newTestAdapter(t, WithPrefix("p"))
	backend.PutRaw(testBucket, "p/dir/", nil, "", "")
	backend.PutRaw(testBucket, "p/dir/a.txt", nil, "", "")
	backend.PutRaw(testBucket, "p/dir/sub/b.txt", nil, "", "")
	backend.PutRaw(testBucket, "p/dirty.txt", nil, "", "")

	require.NoError(t, a.DeleteDir(context.Background(), "dir/"))

	assert.Equal(t, []string{"p/dirty.txt"}, backend.Keys(testBucket))
	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "p/dir/", calls[0].Key)
}

func TestDeleteDir_PartialFailure(t *testing.T) {
	a, backend := newTestAdapter(t)
	perKey := multierr.Combine(errors.New("dir/a: AccessDenied"), errors.New("dir/b: AccessDenied"))
	backend.Fail(objectstore.OpDeletePrefix, fmt.Errorf("%w: %w", objectstore.ErrPartialDelete, perKey))

	err := a.DeleteDir(context.Background(), "dir")
	require.True(t, Failed(err))
	assert.Equal(t, ReasonPartialDelete, ReasonOf(err))
}
