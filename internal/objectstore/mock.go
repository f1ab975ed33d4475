package objectstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockBackend is an in-memory implementation of the Backend interface for testing.
//
// Errors can be injected per operation with Fail; every call is recorded and can
// be inspected with Calls.
type MockBackend struct {
	mu       sync.RWMutex
	buckets  map[string]map[string]mockObject
	failures map[string]error
	calls    []Call
	now      func() time.Time
}

// Call records one invocation of a MockBackend method.
type Call struct {
	Op     string
	Bucket string
	Key    string
}

type mockObject struct {
	data         []byte
	contentType  string
	acl          string
	lastModified time.Time
	metadata     map[string]string
}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		buckets:  make(map[string]map[string]mockObject),
		failures: make(map[string]error),
		now:      time.Now,
	}
}

// Fail makes every subsequent call of op return err. A nil err clears it.
func (m *MockBackend) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns the recorded calls in order.
func (m *MockBackend) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times op was invoked.
func (m *MockBackend) CallCount(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// SetClock replaces the time source used for LastModified.
func (m *MockBackend) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// PutRaw stores an object directly, bypassing call recording and failures.
func (m *MockBackend) PutRaw(bucket, key string, data []byte, contentType, acl string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucket(bucket)[key] = mockObject{
		data:         data,
		contentType:  contentType,
		acl:          acl,
		lastModified: m.now(),
	}
}

// Keys returns the sorted keys stored in bucket.
func (m *MockBackend) Keys(bucket string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.buckets[bucket]))
	for k := range m.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ACL returns the canned ACL stored for key, or "" if absent.
func (m *MockBackend) ACL(bucket, key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buckets[bucket][key].acl
}

// bucket must be called with mu held.
func (m *MockBackend) bucket(name string) map[string]mockObject {
	b, ok := m.buckets[name]
	if !ok {
		b = make(map[string]mockObject)
		m.buckets[name] = b
	}
	return b
}

// enter records the call and returns the injected failure for op, if any.
// It must be called with mu held.
func (m *MockBackend) enter(op, bucket, key string) error {
	m.calls = append(m.calls, Call{Op: op, Bucket: bucket, Key: key})
	if err, ok := m.failures[op]; ok {
		return &ObjectError{Op: op, Key: key, Err: err}
	}
	return nil
}

func (m *MockBackend) Upload(ctx context.Context, bucket string, in UploadInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(OpUpload, bucket, in.Key); err != nil {
		return err
	}

	var data []byte
	if in.Body != nil {
		var err error
		data, err = io.ReadAll(in.Body)
		if err != nil {
			return &ObjectError{Op: OpUpload, Key: in.Key, Err: err}
		}
	}

	obj := mockObject{
		data:         data,
		acl:          in.ACL,
		lastModified: m.now(),
		metadata:     in.Metadata,
	}
	if in.ContentType != nil {
		obj.contentType = *in.ContentType
	}
	m.bucket(bucket)[in.Key] = obj
	return nil
}

func (m *MockBackend) info(key string, obj mockObject) ObjectInfo {
	size := int64(len(obj.data))
	modified := obj.lastModified
	info := ObjectInfo{
		Key:           key,
		ContentLength: &size,
		LastModified:  &modified,
		ETag:          "mock-etag",
		Metadata:      obj.metadata,
	}
	if obj.contentType != "" {
		contentType := obj.contentType
		info.ContentType = &contentType
	}
	return info
}

func (m *MockBackend) GetObject(ctx context.Context, bucket, key string) (*Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(OpGetObject, bucket, key); err != nil {
		return nil, err
	}
	obj, ok := m.buckets[bucket][key]
	if !ok {
		return nil, &ObjectError{Op: OpGetObject, Key: key, Err: ErrNotFound}
	}
	return &Object{
		Info: m.info(key, obj),
		Body: io.NopCloser(bytes.NewReader(obj.data)),
	}, nil
}

func (m *MockBackend) HeadObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(OpHeadObject, bucket, key); err != nil {
		return ObjectInfo{}, err
	}
	obj, ok := m.buckets[bucket][key]
	if !ok {
		return ObjectInfo{}, &ObjectError{Op: OpHeadObject, Key: key, Err: ErrNotFound}
	}
	return m.info(key, obj), nil
}

func (m *MockBackend) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(OpObjectExists, bucket, key); err != nil {
		return false, err
	}
	_, ok := m.buckets[bucket][key]
	return ok, nil
}

func (m *MockBackend) ListObjects(ctx context.Context, bucket string, opts ListOptions) (ListResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(OpListObjects, bucket, opts.Prefix); err != nil {
		return ListResult{}, err
	}

	keys := make([]string, 0)
	for key := range m.buckets[bucket] {
		if strings.HasPrefix(key, opts.Prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var res ListResult
	seen := make(map[string]bool)
	for _, key := range keys {
		if opts.MaxKeys > 0 && int32(len(res.Objects)+len(res.CommonPrefixes)) >= opts.MaxKeys {
			break
		}
		rest := key[len(opts.Prefix):]
		if opts.Delimiter != "" {
			if i := strings.Index(rest, opts.Delimiter); i >= 0 {
				cp := opts.Prefix + rest[:i+len(opts.Delimiter)]
				if !seen[cp] {
					seen[cp] = true
					res.CommonPrefixes = append(res.CommonPrefixes, cp)
				}
				continue
			}
		}
		info := m.info(key, m.buckets[bucket][key])
		info.Size, info.ContentLength, info.ContentType = info.ContentLength, nil, nil
		res.Objects = append(res.Objects, info)
	}
	return res, nil
}

func (m *MockBackend) DeleteObject(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(OpDeleteObject, bucket, key); err != nil {
		return err
	}
	delete(m.buckets[bucket], key)
	return nil
}

func (m *MockBackend) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(OpDeletePrefix, bucket, prefix); err != nil {
		return err
	}
	for key := range m.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			delete(m.buckets[bucket], key)
		}
	}
	return nil
}

func (m *MockBackend) CopyObject(ctx context.Context, bucket, srcKey, dstKey, acl string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(OpCopyObject, bucket, dstKey); err != nil {
		return err
	}
	src, ok := m.buckets[bucket][srcKey]
	if !ok {
		return &ObjectError{Op: OpCopyObject, Key: srcKey, Err: ErrNotFound}
	}
	dst := src
	dst.data = append([]byte(nil), src.data...)
	dst.acl = acl
	dst.lastModified = m.now()
	m.bucket(bucket)[dstKey] = dst
	return nil
}

func (m *MockBackend) GetObjectACL(ctx context.Context, bucket, key string) ([]Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(OpGetObjectACL, bucket, key); err != nil {
		return nil, err
	}
	obj, ok := m.buckets[bucket][key]
	if !ok {
		return nil, &ObjectError{Op: OpGetObjectACL, Key: key, Err: ErrNotFound}
	}
	grants := []Grant{{GranteeID: "mock-owner", Permission: "FULL_CONTROL"}}
	if obj.acl == ACLPublicRead {
		grants = append(grants, Grant{GranteeURI: AllUsersURI, Permission: PermissionRead})
	}
	return grants, nil
}

func (m *MockBackend) PutObjectACL(ctx context.Context, bucket, key, acl string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(OpPutObjectACL, bucket, key); err != nil {
		return err
	}
	obj, ok := m.buckets[bucket][key]
	if !ok {
		return &ObjectError{Op: OpPutObjectACL, Key: key, Err: ErrNotFound}
	}
	obj.acl = acl
	m.buckets[bucket][key] = obj
	return nil
}

func (m *MockBackend) Close() error {
	return nil
}

var _ Backend = (*MockBackend)(nil)
