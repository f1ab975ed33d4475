package contents

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// genericTypes are sniffing results too vague to beat an extension lookup.
var genericTypes = map[string]bool{
	"application/octet-stream": true,
	"application/x-empty":      true,
	"inode/x-empty":            true,
	"text/plain":               true,
}

// GuessMimeType sniffs data and falls back to the extension of name when the
// content alone only yields a generic type.
func GuessMimeType(name string, data []byte) string {
	detected := stripParams(mimetype.Detect(data).String())
	if !genericTypes[detected] {
		return detected
	}
	if byExt := TypeByExtension(name); byExt != "" {
		return byExt
	}
	return detected
}

// TypeByExtension returns the MIME type registered for the extension of name,
// without parameters, or "" if there is none.
func TypeByExtension(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return ""
	}
	return stripParams(mime.TypeByExtension(strings.ToLower(ext)))
}

func stripParams(mediaType string) string {
	t, _, _ := strings.Cut(mediaType, ";")
	return strings.TrimSpace(t)
}
