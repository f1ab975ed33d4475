// Package walk enumerates a directory tree breadth-first on top of a
// single-level listing function.
package walk

import "context"

// ListFunc returns the direct children of dir.
type ListFunc[T any] func(ctx context.Context, dir string) ([]T, error)

// DirFunc reports whether entry is a directory and, if so, its path.
type DirFunc[T any] func(entry T) (path string, isDir bool)

// Walk lists root and every directory discovered below it, returning all entries
// in breadth-first order. Each directory is reported and listed once; a
// directory's own marker entry inside its listing is dropped. Listing errors are
// returned unchanged.
func Walk[T any](ctx context.Context, root string, list ListFunc[T], dirOf DirFunc[T]) ([]T, error) {
	var out []T
	visited := map[string]bool{root: true}
	queue := []string{root}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := queue[0]
		queue = queue[1:]

		entries, err := list(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			path, isDir := dirOf(entry)
			if !isDir {
				out = append(out, entry)
				continue
			}
			if visited[path] {
				continue
			}
			visited[path] = true
			out = append(out, entry)
			queue = append(queue, path)
		}
	}
	return out, nil
}
