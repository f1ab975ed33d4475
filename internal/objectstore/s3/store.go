// Package s3 implements the objectstore Backend interface using the AWS SDK for
// S3-compatible storage.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/multierr"

	"github.com/bucketfs/bucketfs/internal/objectstore"
)

// maxDeleteBatch is the largest number of keys a single DeleteObjects call accepts.
const maxDeleteBatch = 1000

// Config configures an S3 backend.
type Config struct {
	// Region is the AWS region (e.g., "us-east-1").
	// Required for AWS S3, optional for S3-compatible endpoints.
	Region string

	// Endpoint is the S3 endpoint URL (e.g., "http://localhost:9000" for MinIO).
	// If empty, uses the default AWS endpoint for the region.
	Endpoint string

	// AccessKeyID is the AWS access key ID.
	// If empty, uses the default credential chain.
	AccessKeyID string

	// SecretAccessKey is the AWS secret access key.
	// If empty, uses the default credential chain.
	SecretAccessKey string

	// UsePathStyle enables path-style addressing (required for MinIO and some S3-compatible stores).
	// When true: http://endpoint/bucket/key
	// When false (default): http://bucket.endpoint/key
	UsePathStyle bool

	// UploadPartSize is the multipart part size in bytes. Zero keeps the SDK default.
	UploadPartSize int64

	// UploadConcurrency is the number of parts uploaded in parallel. Zero keeps the
	// SDK default.
	UploadConcurrency int
}

// API is the subset of the S3 client used by Store. *s3.Client satisfies it.
type API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	GetObjectAcl(ctx context.Context, params *s3.GetObjectAclInput, optFns ...func(*s3.Options)) (*s3.GetObjectAclOutput, error)
	PutObjectAcl(ctx context.Context, params *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error)
}

var _ API = (*s3.Client)(nil)

// Store implements objectstore.Backend using AWS S3.
type Store struct {
	api      API
	uploader *manager.Uploader
	closed   bool
	mu       sync.RWMutex
}

// New creates a new S3 backend with the given configuration.
func New(ctx context.Context, cfg Config) (*Store, error) {
	opts := []func(*config.LoadOptions) error{}

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	} else {
		opts = append(opts, config.WithRegion("us-east-1"))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: failed to load AWS config: %w", err)
	}

	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			// S3 doesn't provide checksums for every response type, which is
			// normal; silence the SDK warning about it.
			o.DisableLogOutputChecksumValidationSkipped = true
		},
	}

	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return NewWithAPI(s3.NewFromConfig(awsCfg, s3Opts...), cfg), nil
}

// NewWithAPI creates a Store around an existing client. Only the upload fields of
// cfg are used.
func NewWithAPI(api API, cfg Config) *Store {
	uploader := manager.NewUploader(api, func(u *manager.Uploader) {
		if cfg.UploadPartSize > 0 {
			u.PartSize = cfg.UploadPartSize
		}
		if cfg.UploadConcurrency > 0 {
			u.Concurrency = cfg.UploadConcurrency
		}
	})
	return &Store{
		api:      api,
		uploader: uploader,
	}
}

func (s *Store) checkClosed() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return objectstore.ErrClosed
	}
	return nil
}

// EncodeCopySource returns the percent-encoded "bucket/key" string S3 expects in
// the x-amz-copy-source header. Slashes are kept as separators.
func EncodeCopySource(bucket, key string) string {
	return strings.ReplaceAll(url.PathEscape(bucket+"/"+key), "%2F", "/")
}

// Upload stores an object through the multipart upload manager.
func (s *Store) Upload(ctx context.Context, bucket string, in objectstore.UploadInput) error {
	if err := s.checkClosed(); err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(in.Key),
		Body:          in.Body,
		ContentType:   in.ContentType,
		ContentLength: in.ContentLength,
		CacheControl:  in.CacheControl,
		Expires:       in.Expires,
	}
	if in.ACL != "" {
		input.ACL = types.ObjectCannedACL(in.ACL)
	}
	if in.StorageClass != "" {
		input.StorageClass = types.StorageClass(in.StorageClass)
	}
	if in.ServerSideEncryption != "" {
		input.ServerSideEncryption = types.ServerSideEncryption(in.ServerSideEncryption)
	}
	if len(in.Metadata) > 0 {
		input.Metadata = in.Metadata
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return s.wrapError(objectstore.OpUpload, in.Key, err)
	}
	return nil
}

// GetObject retrieves an entire object.
func (s *Store) GetObject(ctx context.Context, bucket, key string) (*objectstore.Object, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}

	output, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.wrapError(objectstore.OpGetObject, key, err)
	}

	return &objectstore.Object{
		Info: objectstore.ObjectInfo{
			Key:           key,
			ContentLength: output.ContentLength,
			ContentType:   output.ContentType,
			LastModified:  output.LastModified,
			ETag:          aws.ToString(output.ETag),
			Metadata:      output.Metadata,
		},
		Body: output.Body,
	}, nil
}

// HeadObject retrieves object metadata without the body.
func (s *Store) HeadObject(ctx context.Context, bucket, key string) (objectstore.ObjectInfo, error) {
	if err := s.checkClosed(); err != nil {
		return objectstore.ObjectInfo{}, err
	}

	output, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return objectstore.ObjectInfo{}, s.wrapError(objectstore.OpHeadObject, key, err)
	}

	return objectstore.ObjectInfo{
		Key:           key,
		ContentLength: output.ContentLength,
		ContentType:   output.ContentType,
		LastModified:  output.LastModified,
		ETag:          aws.ToString(output.ETag),
		Metadata:      output.Metadata,
	}, nil
}

// ObjectExists reports whether an object exists at exactly key. Any client error
// (4xx) is treated as absence; server and transport errors are returned.
func (s *Store) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	if err := s.checkClosed(); err != nil {
		return false, err
	}

	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if code := statusCode(err); code >= 400 && code < 500 {
		return false, nil
	}
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return false, nil
	}
	return false, s.wrapError(objectstore.OpObjectExists, key, err)
}

// ListObjects lists keys matching opts. With MaxKeys set only one page is fetched.
func (s *Store) ListObjects(ctx context.Context, bucket string, opts objectstore.ListOptions) (objectstore.ListResult, error) {
	if err := s.checkClosed(); err != nil {
		return objectstore.ListResult{}, err
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(opts.Prefix),
	}
	if opts.Delimiter != "" {
		input.Delimiter = aws.String(opts.Delimiter)
	}

	var res objectstore.ListResult
	if opts.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(opts.MaxKeys)
		page, err := s.api.ListObjectsV2(ctx, input)
		if err != nil {
			return objectstore.ListResult{}, s.wrapError(objectstore.OpListObjects, opts.Prefix, err)
		}
		appendPage(&res, page)
		return res, nil
	}

	paginator := s3.NewListObjectsV2Paginator(s.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return objectstore.ListResult{}, s.wrapError(objectstore.OpListObjects, opts.Prefix, err)
		}
		appendPage(&res, page)
	}
	return res, nil
}

func appendPage(res *objectstore.ListResult, page *s3.ListObjectsV2Output) {
	for _, obj := range page.Contents {
		res.Objects = append(res.Objects, objectstore.ObjectInfo{
			Key:          aws.ToString(obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ETag:         aws.ToString(obj.ETag),
		})
	}
	for _, cp := range page.CommonPrefixes {
		res.CommonPrefixes = append(res.CommonPrefixes, aws.ToString(cp.Prefix))
	}
}

// DeleteObject removes an object.
func (s *Store) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := s.checkClosed(); err != nil {
		return err
	}

	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		wrapped := s.wrapError(objectstore.OpDeleteObject, key, err)
		if errors.Is(wrapped, objectstore.ErrNotFound) {
			return nil
		}
		return wrapped
	}
	return nil
}

// DeletePrefix lists every key under prefix and removes them in batches. Keys the
// service refuses to delete are collected into a single error wrapping
// objectstore.ErrPartialDelete.
func (s *Store) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	if err := s.checkClosed(); err != nil {
		return err
	}

	var failed error
	batch := make([]types.ObjectIdentifier, 0, maxDeleteBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		output, err := s.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{
				Objects: batch,
				Quiet:   aws.Bool(true),
			},
		})
		batch = batch[:0]
		if err != nil {
			return err
		}
		for _, e := range output.Errors {
			failed = multierr.Append(failed, fmt.Errorf("%s: %s: %s",
				aws.ToString(e.Key), aws.ToString(e.Code), aws.ToString(e.Message)))
		}
		return nil
	}

	paginator := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return s.wrapError(objectstore.OpDeletePrefix, prefix, err)
		}
		for _, obj := range page.Contents {
			batch = append(batch, types.ObjectIdentifier{Key: obj.Key})
			if len(batch) == maxDeleteBatch {
				if err := flush(); err != nil {
					return s.wrapError(objectstore.OpDeletePrefix, prefix, err)
				}
			}
		}
	}
	if err := flush(); err != nil {
		return s.wrapError(objectstore.OpDeletePrefix, prefix, err)
	}

	if failed != nil {
		return &objectstore.ObjectError{
			Op:  objectstore.OpDeletePrefix,
			Key: prefix,
			Err: fmt.Errorf("%w: %w", objectstore.ErrPartialDelete, failed),
		}
	}
	return nil
}

// CopyObject copies srcKey to dstKey within bucket and applies acl to the copy.
func (s *Store) CopyObject(ctx context.Context, bucket, srcKey, dstKey, acl string) error {
	if err := s.checkClosed(); err != nil {
		return err
	}

	_, err := s.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(EncodeCopySource(bucket, srcKey)),
		ACL:        types.ObjectCannedACL(acl),
	})
	if err != nil {
		return s.wrapError(objectstore.OpCopyObject, srcKey, err)
	}
	return nil
}

// GetObjectACL returns the grants of an object ACL.
func (s *Store) GetObjectACL(ctx context.Context, bucket, key string) ([]objectstore.Grant, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}

	output, err := s.api.GetObjectAcl(ctx, &s3.GetObjectAclInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.wrapError(objectstore.OpGetObjectACL, key, err)
	}

	grants := make([]objectstore.Grant, 0, len(output.Grants))
	for _, g := range output.Grants {
		grant := objectstore.Grant{Permission: string(g.Permission)}
		if g.Grantee != nil {
			grant.GranteeURI = aws.ToString(g.Grantee.URI)
			grant.GranteeID = aws.ToString(g.Grantee.ID)
		}
		grants = append(grants, grant)
	}
	return grants, nil
}

// PutObjectACL replaces the ACL of an object with a canned ACL.
func (s *Store) PutObjectACL(ctx context.Context, bucket, key, acl string) error {
	if err := s.checkClosed(); err != nil {
		return err
	}

	_, err := s.api.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		ACL:    types.ObjectCannedACL(acl),
	})
	if err != nil {
		return s.wrapError(objectstore.OpPutObjectACL, key, err)
	}
	return nil
}

// Close releases resources associated with the backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func statusCode(err error) int {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}

func (s *Store) wrapError(op, key string, err error) error {
	if err == nil {
		return nil
	}

	switch statusCode(err) {
	case http.StatusNotFound:
		return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrNotFound}
	case http.StatusForbidden:
		return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrAccessDenied}
	case http.StatusPreconditionFailed:
		return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrPreconditionFailed}
	}

	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrBucketNotFound}
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrNotFound}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrNotFound}
		case "AccessDenied", "Forbidden":
			return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrAccessDenied}
		case "NoSuchBucket":
			return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrBucketNotFound}
		}
	}

	return &objectstore.ObjectError{Op: op, Key: key, Err: err}
}

// Verify interface compliance at compile time.
var _ objectstore.Backend = (*Store)(nil)
