package adapter

import (
	"io"
	"strings"

	"github.com/bucketfs/bucketfs/internal/objectstore"
	"github.com/bucketfs/bucketfs/internal/pathprefix"
)

// EntryType distinguishes files from directories.
type EntryType string

const (
	TypeFile EntryType = "file"
	TypeDir  EntryType = "dir"
)

// Visibility is the public/private access level of a file.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility accepts "public" and "private".
func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(s) {
	case VisibilityPublic:
		return VisibilityPublic, true
	case VisibilityPrivate:
		return VisibilityPrivate, true
	}
	return "", false
}

// ACL returns the canned ACL for v. Anything but public maps to private.
func (v Visibility) ACL() string {
	if v == VisibilityPublic {
		return objectstore.ACLPublicRead
	}
	return objectstore.ACLPrivate
}

// Metadata describes a file or directory. Optional fields are nil when the
// storage response did not carry them. Directories only ever carry Path and Type.
type Metadata struct {
	Path      string    `json:"path"`
	Type      EntryType `json:"type"`
	Timestamp *int64    `json:"timestamp,omitempty"`
	Size      *int64    `json:"size,omitempty"`
	Mimetype  *string   `json:"mimetype,omitempty"`
	Contents  []byte    `json:"contents,omitempty"`

	// Stream is set by ReadStream. The caller must close it.
	Stream io.ReadCloser `json:"-"`
}

// IsDir reports whether m describes a directory.
func (m Metadata) IsDir() bool {
	return m.Type == TypeDir
}

// VisibilityRecord is the result of the visibility operations.
type VisibilityRecord struct {
	Path       string     `json:"path,omitempty"`
	Visibility Visibility `json:"visibility"`
}

// normalize converts an object description into a Metadata record. An empty path
// is derived from the object key.
func normalize(pfx pathprefix.Prefixer, info objectstore.ObjectInfo, path string) Metadata {
	if path == "" {
		path = pfx.RemovePrefix(info.Key)
	}

	if strings.HasSuffix(path, pathprefix.Separator) {
		return dirRecord(path)
	}

	m := Metadata{Path: path, Type: TypeFile}
	if info.LastModified != nil {
		ts := info.LastModified.Unix()
		m.Timestamp = &ts
	}
	if info.ContentLength != nil {
		size := *info.ContentLength
		m.Size = &size
	}
	if info.Size != nil {
		size := *info.Size
		m.Size = &size
	}
	if info.ContentType != nil {
		mimetype := *info.ContentType
		m.Mimetype = &mimetype
	}
	return m
}

func dirRecord(path string) Metadata {
	return Metadata{
		Path: strings.TrimRight(path, pathprefix.Separator),
		Type: TypeDir,
	}
}
