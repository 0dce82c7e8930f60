package domain

import "context"

// Uploader performs one backup-to-storage transfer.
type Uploader interface {
	Backup(ctx context.Context) error
}
