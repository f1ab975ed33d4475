// Package contents holds upload payloads, either buffered bytes or a caller
// supplied stream, and the size and MIME detection that goes with them.
package contents

import (
	"bytes"
	"io"
	"io/fs"
)

// Body is an upload payload. Exactly one of the byte and stream forms is set.
type Body struct {
	data   []byte
	stream io.Reader
}

// FromBytes returns a buffered Body.
func FromBytes(data []byte) Body {
	if data == nil {
		data = []byte{}
	}
	return Body{data: data}
}

// FromString returns a buffered Body holding s.
func FromString(s string) Body {
	return Body{data: []byte(s)}
}

// FromStream returns a streaming Body. The caller keeps ownership of r.
func FromStream(r io.Reader) Body {
	return Body{stream: r}
}

// IsStream reports whether the body is a stream.
func (b Body) IsStream() bool {
	return b.stream != nil
}

// Bytes returns the buffered payload, or nil for streams.
func (b Body) Bytes() []byte {
	return b.data
}

// Stream returns the stream, or nil for buffered bodies.
func (b Body) Stream() io.Reader {
	return b.stream
}

// Reader returns a reader over the payload.
func (b Body) Reader() io.Reader {
	if b.stream != nil {
		return b.stream
	}
	return bytes.NewReader(b.data)
}

type statter interface {
	Stat() (fs.FileInfo, error)
}

type lener interface {
	Len() int
}

// Size returns the number of bytes left in the payload. For streams it tries, in
// order, seeking, Stat and Len; ok is false when none of them apply.
func (b Body) Size() (int64, bool) {
	if b.stream == nil {
		return int64(len(b.data)), true
	}

	switch s := b.stream.(type) {
	case io.Seeker:
		cur, err := s.Seek(0, io.SeekCurrent)
		if err != nil {
			break
		}
		end, err := s.Seek(0, io.SeekEnd)
		if err != nil {
			break
		}
		if _, err := s.Seek(cur, io.SeekStart); err != nil {
			return 0, false
		}
		return end - cur, true
	}

	if s, ok := b.stream.(statter); ok {
		if fi, err := s.Stat(); err == nil && fi.Mode().IsRegular() {
			return fi.Size(), true
		}
	}
	if s, ok := b.stream.(lener); ok {
		return int64(s.Len()), true
	}
	return 0, false
}
