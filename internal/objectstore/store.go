// Package objectstore defines the Backend interface for S3-compatible storage.
//
// This package is the capability set consumed by the filesystem adapter. It keeps
// the object-storage vocabulary (buckets, keys, canned ACLs, grants, common
// prefixes) and knows nothing about logical paths or directory emulation; that
// mapping lives in the adapter package.
//
// # Usage
//
//	backend, err := s3.New(ctx, s3.Config{Region: "us-east-1"})
//	if err != nil {
//	    return err
//	}
//	defer backend.Close()
//
//	obj, err := backend.GetObject(ctx, "bucket", "path-prefix/key.txt")
//	if err != nil {
//	    if errors.Is(err, objectstore.ErrNotFound) {
//	        // Handle missing object
//	    }
//	    return err
//	}
//	defer obj.Body.Close()
//
// Listing with a delimiter returns immediate children only; nested keys are rolled
// up into common prefixes:
//
//	res, err := backend.ListObjects(ctx, "bucket", objectstore.ListOptions{
//	    Prefix:    "path-prefix/dir/",
//	    Delimiter: "/",
//	})
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Common errors returned by Backend implementations.
var (
	// ErrNotFound is returned when the requested object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrPreconditionFailed is returned when a conditional request fails.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrBucketNotFound is returned when the bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrAccessDenied is returned when the credentials lack permission for the operation.
	ErrAccessDenied = errors.New("access denied")

	// ErrPartialDelete is returned by DeletePrefix when at least one key could not
	// be removed.
	ErrPartialDelete = errors.New("some objects could not be deleted")

	// ErrClosed is returned by every method after Close.
	ErrClosed = errors.New("backend is closed")
)

// Operation names used in errors and metrics labels.
const (
	OpUpload       = "upload"
	OpGetObject    = "get_object"
	OpHeadObject   = "head_object"
	OpObjectExists = "object_exists"
	OpListObjects  = "list_objects"
	OpDeleteObject = "delete_object"
	OpDeletePrefix = "delete_prefix"
	OpCopyObject   = "copy_object"
	OpGetObjectACL = "get_object_acl"
	OpPutObjectACL = "put_object_acl"
)

// Canned ACLs understood by S3.
const (
	ACLPrivate    = "private"
	ACLPublicRead = "public-read"
)

// AllUsersURI is the grantee URI of the group that represents anonymous access.
const AllUsersURI = "http://acs.amazonaws.com/groups/global/AllUsers"

// PermissionRead is the grant permission that allows reading an object.
const PermissionRead = "READ"

// ObjectError wraps an error with the object key for context.
type ObjectError struct {
	Op  string // Operation that failed (e.g., "get_object", "list_objects")
	Key string // Object key or listing prefix
	Err error  // Underlying error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("objectstore: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *ObjectError) Unwrap() error {
	return e.Err
}

// ObjectInfo carries the fields of a storage response that the adapter knows how
// to normalize. A nil pointer means the field was absent from the response.
type ObjectInfo struct {
	// Key is the object's key in the bucket.
	Key string

	// Size is reported by listings.
	Size *int64

	// ContentLength is reported by head and get responses.
	ContentLength *int64

	// ContentType is the MIME type stored with the object.
	ContentType *string

	// LastModified is the object's modification time.
	LastModified *time.Time

	// ETag is the entity tag, typically an MD5 hash of the object content.
	ETag string

	// Metadata contains user-defined key-value metadata.
	Metadata map[string]string
}

// Object is a retrieved object. The caller must close Body.
type Object struct {
	Info ObjectInfo
	Body io.ReadCloser
}

// ListOptions configures a ListObjects call.
type ListOptions struct {
	// Prefix restricts results to keys beginning with it.
	Prefix string

	// Delimiter groups keys sharing a prefix up to the delimiter into
	// CommonPrefixes. Empty means a flat listing.
	Delimiter string

	// MaxKeys bounds the listing to a single page of at most MaxKeys entries.
	// Zero means every page is fetched.
	MaxKeys int32
}

// ListResult is the concatenation of every page of a listing, in page order.
type ListResult struct {
	Objects        []ObjectInfo
	CommonPrefixes []string
}

// Grant is a single access-control entry of an object ACL.
type Grant struct {
	GranteeURI string
	GranteeID  string
	Permission string
}

// UploadInput describes an object to upload. Optional fields left empty or nil
// are not sent.
type UploadInput struct {
	Key                  string
	Body                 io.Reader
	ACL                  string
	ContentType          *string
	ContentLength        *int64
	CacheControl         *string
	Expires              *time.Time
	StorageClass         string
	ServerSideEncryption string
	Metadata             map[string]string
}

// Backend is the interface for object storage operations.
//
// All methods accept a context for cancellation and deadline propagation and name
// the bucket explicitly so that one backend can serve adapters bound to different
// buckets. Implementations should return errors wrapped in [ObjectError].
//
// Thread Safety: Implementations must be safe for concurrent use.
type Backend interface {
	// Upload stores an object, using multipart upload for large bodies.
	Upload(ctx context.Context, bucket string, in UploadInput) error

	// GetObject retrieves an entire object.
	//
	// Returns ErrNotFound if the object doesn't exist.
	GetObject(ctx context.Context, bucket, key string) (*Object, error)

	// HeadObject retrieves object metadata without the body.
	//
	// Returns ErrNotFound if the object doesn't exist.
	HeadObject(ctx context.Context, bucket, key string) (ObjectInfo, error)

	// ObjectExists reports whether an object exists at exactly key.
	//
	// Client errors (4xx) report false; server errors are returned.
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)

	// ListObjects lists keys matching opts. Results are in storage page order.
	ListObjects(ctx context.Context, bucket string, opts ListOptions) (ListResult, error)

	// DeleteObject removes an object. Deleting a missing object succeeds.
	DeleteObject(ctx context.Context, bucket, key string) error

	// DeletePrefix removes every object whose key starts with prefix.
	//
	// Returns an error wrapping ErrPartialDelete if any key could not be removed.
	DeletePrefix(ctx context.Context, bucket, prefix string) error

	// CopyObject copies srcKey to dstKey inside bucket and applies the canned acl
	// to the destination.
	CopyObject(ctx context.Context, bucket, srcKey, dstKey, acl string) error

	// GetObjectACL returns the grant list of an object.
	GetObjectACL(ctx context.Context, bucket, key string) ([]Grant, error)

	// PutObjectACL replaces the ACL of an object with the canned acl.
	PutObjectACL(ctx context.Context, bucket, key, acl string) error

	// Close releases resources associated with the backend.
	//
	// After Close returns, all other methods return ErrClosed.
	Close() error
}
