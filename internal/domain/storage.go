package domain

import (
	"context"
	"io"
)

// StorageClient is the remote object-storage gateway used by the backup
// pipeline. A failing TestConnectivity means the destination is unreachable
// and nothing else may be attempted against it.
type StorageClient interface {
	TestConnectivity(ctx context.Context) error
	SetupBucket(ctx context.Context) error
	Upload(ctx context.Context, key string, body io.Reader) error
	Close() error
}
