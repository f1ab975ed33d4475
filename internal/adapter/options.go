package adapter

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Config bag keys recognized by ConfigFromMap.
const (
	KeyVisibility           = "visibility"
	KeyMimetype             = "mimetype"
	KeyCacheControl         = "CacheControl"
	KeyExpires              = "Expires"
	KeyStorageClass         = "StorageClass"
	KeyServerSideEncryption = "ServerSideEncryption"
	KeyMetadata             = "Metadata"
	KeyACL                  = "ACL"
	KeyContentType          = "ContentType"
	KeyContentLength        = "ContentLength"
)

// Config holds per-write options. The zero value writes a private object with an
// inferred content type and length.
type Config struct {
	// Visibility selects the ACL: public maps to public-read, anything else to private.
	Visibility Visibility
	// Mimetype sets the content type unless ContentType is given.
	Mimetype string

	CacheControl         *string
	Expires              *time.Time
	StorageClass         string
	ServerSideEncryption string
	Metadata             map[string]string

	// ACL is a canned ACL that takes precedence over Visibility.
	ACL string
	// ContentType takes precedence over Mimetype.
	ContentType string
	// ContentLength overrides the size computed from the body.
	ContentLength *int64
}

// ConfigFromMap builds a Config from a loosely typed option bag. Unknown keys are
// ignored; known keys with a value of the wrong type are an error.
func ConfigFromMap(m map[string]any) (Config, error) {
	var cfg Config
	for key, raw := range m {
		var err error
		switch key {
		case KeyVisibility:
			var s string
			if s, err = asString(key, raw); err == nil {
				cfg.Visibility = Visibility(s)
			}
		case KeyMimetype:
			cfg.Mimetype, err = asString(key, raw)
		case KeyCacheControl:
			var s string
			if s, err = asString(key, raw); err == nil {
				cfg.CacheControl = &s
			}
		case KeyExpires:
			var t time.Time
			if t, err = asTime(key, raw); err == nil {
				cfg.Expires = &t
			}
		case KeyStorageClass:
			cfg.StorageClass, err = asString(key, raw)
		case KeyServerSideEncryption:
			cfg.ServerSideEncryption, err = asString(key, raw)
		case KeyMetadata:
			cfg.Metadata, err = asStringMap(key, raw)
		case KeyACL:
			cfg.ACL, err = asString(key, raw)
		case KeyContentType:
			cfg.ContentType, err = asString(key, raw)
		case KeyContentLength:
			var n int64
			if n, err = asInt64(key, raw); err == nil {
				cfg.ContentLength = &n
			}
		}
		if err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func asString(key string, v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case Visibility:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	}
	return "", fmt.Errorf("adapter: option %s: expected string, got %T", key, v)
}

func asTime(key string, v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t != nil {
			return *t, nil
		}
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, nil
		}
		if parsed, err := http.ParseTime(t); err == nil {
			return parsed, nil
		}
		return time.Time{}, fmt.Errorf("adapter: option %s: unrecognized time %q", key, t)
	}
	return time.Time{}, fmt.Errorf("adapter: option %s: expected time, got %T", key, v)
}

func asInt64(key string, v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	case float64:
		if n == float64(int64(n)) {
			return int64(n), nil
		}
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err == nil {
			return parsed, nil
		}
	}
	return 0, fmt.Errorf("adapter: option %s: expected integer, got %v", key, v)
}

func asStringMap(key string, v any) (map[string]string, error) {
	switch m := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, val := range m {
			s, ok := val.(string)
			if !ok {
				return nil, fmt.Errorf("adapter: option %s.%s: expected string, got %T", key, k, val)
			}
			out[k] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("adapter: option %s: expected map, got %T", key, v)
}
