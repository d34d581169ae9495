package gsmerge

import (
	"bytes"
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/natefinch/atomic"
)

// WriteFile stores data at a local path or gs:// location. Local files are
// replaced atomically, so a reader never sees a half-written samplesheet. A
// Google Storage object only becomes visible once its writer is closed.
func WriteFile(ctx context.Context, client *storage.Client, location string, data []byte) error {
	if !IsGoogleStorage(location) {
		if err := atomic.WriteFile(location, bytes.NewReader(data)); err != nil {
			return pfx.Err(err)
		}
		return nil
	}

	if client == nil {
		return fmt.Errorf("%w: %s is a google storage path but no storage client was configured", ErrConfig, location)
	}
	bucket, object, err := splitGoogleStoragePath(location)
	if err != nil {
		return err
	}

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return pfx.Err(fmt.Errorf("%s: %w", location, err))
	}
	if err := w.Close(); err != nil {
		return pfx.Err(fmt.Errorf("%s: %w", location, err))
	}

	return nil
}
