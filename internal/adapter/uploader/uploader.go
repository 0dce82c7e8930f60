// Package uploader implements the two backup transfer variants: packaging
// a completed on-disk backup and streaming a live instance's data
// directory.
package uploader

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/pharos-backup/pharos/internal/domain"
	"golang.org/x/sync/errgroup"
)

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// Options carries the transfer parameters shared by both variants.
type Options struct {
	ServerName          string
	Compression         domain.Compressor // nil for no compression
	MaxArchiveSize      int64
	Jobs                int
	WorkDir             string // scoped working directory for staged parts
	ImmediateCheckpoint bool
}

// uploadParts ships the staged archive parts through a bounded worker
// pool. The pool size is the configured parallelism degree.
func uploadParts(ctx context.Context, client domain.StorageClient, log Logger, keyPrefix string, parts []string, jobs int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, part := range parts {
		part := part
		g.Go(func() error {
			f, err := os.Open(part)
			if err != nil {
				return err
			}
			defer f.Close()

			key := path.Join(keyPrefix, filepath.Base(part))
			log.Infof("Uploading %s", key)
			return client.Upload(ctx, key, f)
		})
	}
	return g.Wait()
}
