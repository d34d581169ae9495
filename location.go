package gsmerge

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
)

const googleStoragePrefix = "gs://"

// IsGoogleStorage reports whether the location is a gs:// URL.
func IsGoogleStorage(location string) bool {
	return strings.HasPrefix(location, googleStoragePrefix)
}

// splitGoogleStoragePath detects the bucket and the object (or prefix) of a
// gs:// location. The object may be empty when the location is a bucket root.
func splitGoogleStoragePath(location string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(location, googleStoragePrefix), "/", 2)
	if pathParts[0] == "" {
		return "", "", fmt.Errorf("%w: no bucket in google storage path %q", ErrConfig, location)
	}
	if len(pathParts) == 1 {
		return pathParts[0], "", nil
	}

	return pathParts[0], strings.Trim(pathParts[1], "/"), nil
}

// Join joins path elements onto a local directory or a gs:// prefix.
func Join(base string, elem ...string) string {
	if IsGoogleStorage(base) {
		parts := append([]string{strings.TrimPrefix(base, googleStoragePrefix)}, elem...)
		return googleStoragePrefix + path.Join(parts...)
	}

	return filepath.Join(append([]string{base}, elem...)...)
}

// Base returns the last element of a local path or gs:// location.
func Base(location string) string {
	if IsGoogleStorage(location) {
		return path.Base(strings.TrimPrefix(location, googleStoragePrefix))
	}

	return filepath.Base(location)
}

// SameLocation reports whether two locations refer to the same directory.
// Local paths are compared after making them absolute, and by inode when both
// exist, so that symlinks and trailing slashes do not hide a match.
func SameLocation(a, b string) (bool, error) {
	if IsGoogleStorage(a) || IsGoogleStorage(b) {
		return strings.TrimRight(a, "/") == strings.TrimRight(b, "/"), nil
	}

	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if absA == absB {
		return true, nil
	}

	statA, errA := os.Stat(absA)
	statB, errB := os.Stat(absB)
	if errA != nil || errB != nil {
		return false, nil
	}

	return os.SameFile(statA, statB), nil
}

// CheckDir verifies that a local directory exists and is readable, or that the
// bucket of a gs:// location exists.
func CheckDir(ctx context.Context, client *storage.Client, location string) error {
	if IsGoogleStorage(location) {
		if client == nil {
			return fmt.Errorf("%w: %s is a google storage path but no storage client was configured", ErrConfig, location)
		}
		bucket, _, err := splitGoogleStoragePath(location)
		if err != nil {
			return err
		}
		if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrConfig, location, err)
		}
		return nil
	}

	f, err := os.Open(location)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	defer f.Close()

	fstat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if !fstat.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrConfig, location)
	}

	return nil
}

// Open opens a local file or gs:// object for reading. Compressed content is
// decompressed transparently. A missing or unreadable file is an ErrConfig.
func Open(ctx context.Context, client *storage.Client, location string) (io.ReadCloser, error) {
	var rc io.ReadCloser

	if IsGoogleStorage(location) {
		if client == nil {
			return nil, fmt.Errorf("%w: %s is a google storage path but no storage client was configured", ErrConfig, location)
		}
		bucket, object, err := splitGoogleStoragePath(location)
		if err != nil {
			return nil, err
		}
		reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfig, location, err)
		}
		rc = reader
	} else {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		if fstat, err := f.Stat(); err != nil || fstat.IsDir() {
			f.Close()
			return nil, fmt.Errorf("%w: %s is not a readable file", ErrConfig, location)
		}
		rc = f
	}

	out, err := MaybeDecompressReadCloser(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrFormat, location, err)
	}

	return out, nil
}

// ReadFile reads the full (decompressed) content of a local file or gs://
// object.
func ReadFile(ctx context.Context, client *storage.Client, location string) ([]byte, error) {
	rc, err := Open(ctx, client, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, location, err)
	}

	return data, nil
}
