package objectstore

import "strings"

// SplitURL splits an s3://bucket/key URL into its bucket and key. Arguments
// without the s3:// scheme are returned as the key with an empty bucket and
// ok set to false.
func SplitURL(path string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(path, "s3://") {
		return "", path, false
	}
	trimmed := strings.TrimPrefix(path, "s3://")
	bucket, key, _ = strings.Cut(trimmed, "/")
	return bucket, key, true
}
