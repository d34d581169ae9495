package gsmerge

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"google.golang.org/api/iterator"
)

// ListDirNames returns the base names of all directories below root, at any
// depth, in lexical order of their full paths. Google Storage has no real
// directories, so for gs:// locations every intermediate prefix of an object
// name below root counts as one.
func ListDirNames(ctx context.Context, client *storage.Client, root string) ([]string, error) {
	if IsGoogleStorage(root) {
		return listGoogleStorageDirNames(ctx, client, root)
	}

	names := make([]string, 0)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root || !d.IsDir() {
			return nil
		}
		names = append(names, d.Name())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	return names, nil
}

func listGoogleStorageDirNames(ctx context.Context, client *storage.Client, root string) ([]string, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: %s is a google storage path but no storage client was configured", ErrConfig, root)
	}
	bucket, prefix, err := splitGoogleStoragePath(root)
	if err != nil {
		return nil, err
	}
	if prefix != "" {
		prefix += "/"
	}

	dirs := make(map[string]struct{})
	it := client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", root, err))
		}

		parts := strings.Split(strings.TrimPrefix(attrs.Name, prefix), "/")
		for i := 1; i < len(parts); i++ {
			dirs[path.Join(parts[:i]...)] = struct{}{}
		}
	}

	fullPaths := make([]string, 0, len(dirs))
	for dir := range dirs {
		fullPaths = append(fullPaths, dir)
	}
	sort.Strings(fullPaths)

	names := make([]string, 0, len(fullPaths))
	for _, dir := range fullPaths {
		names = append(names, path.Base(dir))
	}

	return names, nil
}

// Glob returns the files directly inside dir whose base name matches pattern,
// sorted.
func Glob(ctx context.Context, client *storage.Client, dir, pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: bad pattern %q: %v", ErrConfig, pattern, err)
	}

	if !IsGoogleStorage(dir) {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		sort.Strings(matches)
		return matches, nil
	}

	if client == nil {
		return nil, fmt.Errorf("%w: %s is a google storage path but no storage client was configured", ErrConfig, dir)
	}
	bucket, prefix, err := splitGoogleStoragePath(dir)
	if err != nil {
		return nil, err
	}
	if prefix != "" {
		prefix += "/"
	}

	matches := make([]string, 0)
	it := client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", dir, err))
		}

		// Synthetic directory entries only carry a Prefix
		if attrs.Name == "" {
			continue
		}
		if ok, _ := path.Match(pattern, path.Base(attrs.Name)); ok {
			matches = append(matches, googleStoragePrefix+bucket+"/"+attrs.Name)
		}
	}
	sort.Strings(matches)

	return matches, nil
}
