package adapter

import (
	"context"
	"strings"

	"github.com/bucketfs/bucketfs/internal/objectstore"
	"github.com/bucketfs/bucketfs/internal/pathprefix"
	"github.com/bucketfs/bucketfs/internal/walk"
)

// ListContents lists the entries of dir. Files come first, then subdirectories,
// each in storage order. With recursive set, every subdirectory is listed too.
func (a *Adapter) ListContents(ctx context.Context, dir string, recursive bool) ([]Metadata, error) {
	var (
		entries []Metadata
		err     error
	)
	if recursive {
		entries, err = walk.Walk(ctx, strings.Trim(dir, pathprefix.Separator), a.listDir, func(m Metadata) (string, bool) {
			return m.Path, m.IsDir()
		})
	} else {
		entries, err = a.listDir(ctx, dir)
	}
	if err != nil {
		return nil, a.propagate(OpListContents, err)
	}
	a.succeed(OpListContents)
	return entries, nil
}

// dirKeyPrefix returns the key prefix shared by everything inside dir.
func dirKeyPrefix(pfx pathprefix.Prefixer, dir string) string {
	return pfx.ApplyPrefix(strings.TrimRight(dir, pathprefix.Separator) + pathprefix.Separator)
}

func (a *Adapter) listDir(ctx context.Context, dir string) ([]Metadata, error) {
	bucket, pfx := a.location()

	res, err := a.backend.ListObjects(ctx, bucket, objectstore.ListOptions{
		Prefix:    dirKeyPrefix(pfx, dir),
		Delimiter: pathprefix.Separator,
	})
	if err != nil {
		return nil, err
	}

	out := make([]Metadata, 0, len(res.Objects)+len(res.CommonPrefixes))
	for _, obj := range res.Objects {
		out = append(out, normalize(pfx, obj, ""))
	}
	for _, prefix := range res.CommonPrefixes {
		out = append(out, dirRecord(pfx.RemovePrefix(prefix)))
	}
	return out, nil
}
