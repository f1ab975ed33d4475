// Package pathprefix maps logical filesystem paths onto object keys under a
// configurable key prefix.
package pathprefix

import "strings"

// Separator is the path separator used for both paths and keys.
const Separator = "/"

// Prefixer joins paths onto a key prefix and strips it back off.
//
// The zero value has no prefix and maps paths to keys unchanged, apart from
// leading separators being dropped.
type Prefixer struct {
	prefix string
}

// New returns a Prefixer for prefix. See SetPrefix for normalization.
func New(prefix string) Prefixer {
	var p Prefixer
	p.SetPrefix(prefix)
	return p
}

// SetPrefix replaces the prefix. Leading separators are stripped and a non-empty
// prefix always ends in exactly one separator.
func (p *Prefixer) SetPrefix(prefix string) {
	prefix = strings.Trim(prefix, Separator)
	if prefix == "" {
		p.prefix = ""
		return
	}
	p.prefix = prefix + Separator
}

// Prefix returns the normalized prefix, including its trailing separator.
func (p Prefixer) Prefix() string {
	return p.prefix
}

// ApplyPrefix returns the object key for path.
func (p Prefixer) ApplyPrefix(path string) string {
	return strings.TrimLeft(p.prefix+strings.TrimLeft(path, Separator), Separator)
}

// RemovePrefix returns the logical path for key. Keys outside the prefix are
// returned unchanged.
func (p Prefixer) RemovePrefix(key string) string {
	return strings.TrimPrefix(key, p.prefix)
}
