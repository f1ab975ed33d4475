package adapter

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketfs/bucketfs/internal/objectstore"
)

// uploadCapture records the last UploadInput passed to the backend.
type uploadCapture struct {
	*objectstore.MockBackend
	last objectstore.UploadInput
	body []byte
}

func (c *uploadCapture) Upload(ctx context.Context, bucket string, in objectstore.UploadInput) error {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return err
	}
	c.last = in
	c.body = data
	in.Body = strings.NewReader(string(data))
	return c.MockBackend.Upload(ctx, bucket, in)
}

func newCaptureAdapter(t *testing.T, opts ...Option) (*Adapter, *uploadCapture) {
	t.Helper()
	_, backend := newTestAdapter(t)
	capture := &uploadCapture{MockBackend: backend}
	return New(capture, testBucket, opts...), capture
}

func TestWrite_MapsPathUnderPrefix(t *testing.T) {
	a, backend := newTestAdapter(t, WithPrefix("path-prefix"))

	m, err := a.Write(context.Background(), "key.txt", []byte("contents"), Config{})
	require.NoError(t, err)

	assert.Equal(t, []string{"path-prefix/key.txt"}, backend.Keys(testBucket))
	assert.Equal(t, "key.txt", m.Path)
	assert.Equal(t, TypeFile, m.Type)
	require.NotNil(t, m.Size)
	assert.Equal(t, int64(8), *m.Size)
	assert.Nil(t, m.Timestamp, "upload result echoes options and carries no timestamp")
	assert.Nil(t, m.Contents)
}

func TestWrite_VisibilityToACL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		opts    []Option
		wantACL string
	}{
		{"default is private", Config{}, nil, objectstore.ACLPrivate},
		{"public", Config{Visibility: VisibilityPublic}, nil, objectstore.ACLPublicRead},
		{"private", Config{Visibility: VisibilityPrivate}, nil, objectstore.ACLPrivate},
		{"unknown visibility is private", Config{Visibility: "shared"}, nil, objectstore.ACLPrivate},
		{"explicit ACL wins", Config{Visibility: VisibilityPublic, ACL: "authenticated-read"}, nil, "authenticated-read"},
		{"adapter default public", Config{}, []Option{WithDefaultVisibility(VisibilityPublic)}, objectstore.ACLPublicRead},
		{"explicit private beats default", Config{Visibility: VisibilityPrivate}, []Option{WithDefaultVisibility(VisibilityPublic)}, objectstore.ACLPrivate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, backend := newTestAdapter(t, tt.opts...)
			_, err := a.Write(context.Background(), "file.txt", []byte("x"), tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantACL, backend.ACL(testBucket, "file.txt"))
		})
	}
}

func TestWrite_ContentType(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
		cfg  Config
		want string
	}{
		{"guessed from extension", "style.css", "body {}", Config{}, "text/css"},
		{"guessed from content", "page", "<html><body>hi</body></html>", Config{}, "text/html"},
		{"mimetype option", "style.css", "body {}", Config{Mimetype: "text/x-custom"}, "text/x-custom"},
		{"ContentType beats mimetype", "style.css", "body {}", Config{Mimetype: "text/x-custom", ContentType: "application/x-explicit"}, "application/x-explicit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, capture := newCaptureAdapter(t)
			m, err := a.Write(context.Background(), tt.path, []byte(tt.data), tt.cfg)
			require.NoError(t, err)

			require.NotNil(t, capture.last.ContentType)
			assert.Equal(t, tt.want, *capture.last.ContentType)
			require.NotNil(t, m.Mimetype)
			assert.Equal(t, tt.want, *m.Mimetype)
		})
	}
}

func TestWrite_PassesThroughOptions(t *testing.T) {
	a, capture := newCaptureAdapter(t)
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	cacheControl := "max-age=3600"
	length := int64(3)

	_, err := a.Write(context.Background(), "f.bin", []byte("abc"), Config{
		CacheControl:         &cacheControl,
		Expires:              &expires,
		StorageClass:         "GLACIER",
		ServerSideEncryption: "aws:kms",
		Metadata:             map[string]string{"owner": "ops"},
		ContentLength:        &length,
	})
	require.NoError(t, err)

	in := capture.last
	assert.Equal(t, "max-age=3600", *in.CacheControl)
	assert.True(t, in.Expires.Equal(expires))
	assert.Equal(t, "GLACIER", in.StorageClass)
	assert.Equal(t, "aws:kms", in.ServerSideEncryption)
	assert.Equal(t, map[string]string{"owner": "ops"}, in.Metadata)
	assert.Equal(t, int64(3), *in.ContentLength)
}

func TestWriteStream(t *testing.T) {
	a, capture := newCaptureAdapter(t, WithPrefix("p"))

	r := strings.NewReader("streamed body")
	m, err := a.WriteStream(context.Background(), "dir/stream.txt", r, Config{})
	require.NoError(t, err)

	assert.Equal(t, "p/dir/stream.txt", capture.last.Key)
	assert.Equal(t, "streamed body", string(capture.body))
	assert.Nil(t, capture.last.ContentType, "streams are not sniffed")
	require.NotNil(t, capture.last.ContentLength)
	assert.Equal(t, int64(13), *capture.last.ContentLength)

	assert.Equal(t, "dir/stream.txt", m.Path)
	assert.Nil(t, m.Mimetype)
	assert.Equal(t, int64(13), *m.Size)
}

func TestWriteStream_UnknownSize(t *testing.T) {
	a, capture := newCaptureAdapter(t)
	pr, pw := io.Pipe()
	go func() {
		pw.Write([]byte("piped"))
		pw.Close()
	}()

	m, err := a.UpdateStream(context.Background(), "piped.txt", pr, Config{Mimetype: "text/plain"})
	require.NoError(t, err)
	assert.Nil(t, capture.last.ContentLength)
	assert.Nil(t, m.Size)
	assert.Equal(t, "piped", string(capture.body))
}

func TestUpdate_Overwrites(t *testing.T) {
	a, backend := newTestAdapter(t)
	ctx := context.Background()

	_, err := a.Write(ctx, "f.txt", []byte("one"), Config{})
	require.NoError(t, err)
	_, err = a.Update(ctx, "f.txt", []byte("two!"), Config{})
	require.NoError(t, err)

	m, err := a.Read(ctx, "f.txt")
	require.NoError(t, err)
	assert.Equal(t, "two!", string(m.Contents))
	assert.Equal(t, 1, len(backend.Keys(testBucket)))
}

func TestCreateDir(t *testing.T) {
	a, capture := newCaptureAdapter(t, WithPrefix("p"))

	m, err := a.CreateDir(context.Background(), "photos", Config{})
	require.NoError(t, err)

	assert.Equal(t, "p/photos/", capture.last.Key)
	assert.Empty(t, capture.body)
	assert.Equal(t, int64(0), *capture.last.ContentLength)
	assert.Equal(t, Metadata{Path: "photos", Type: TypeDir}, m)
}

func TestWrite_FailureIsAbsorbed(t *testing.T) {
	a, backend := newTestAdapter(t)
	cause := errors.New("connection reset")
	backend.Fail(objectstore.OpUpload, cause)

	m, err := a.Write(context.Background(), "f.txt", []byte("x"), Config{})
	require.Error(t, err)
	assert.True(t, Failed(err))
	assert.Equal(t, ReasonBackend, ReasonOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Metadata{}, m)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpWrite, opErr.Op)
	assert.Equal(t, "f.txt", opErr.Path)
}
