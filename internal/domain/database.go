package domain

import "context"

// DatabaseConnection is a live PostgreSQL session. It is opened only in
// direct mode and closed exactly once by the orchestrator.
type DatabaseConnection interface {
	Close(ctx context.Context) error
	DataDirectory(ctx context.Context) (string, error)
	WALArchivingEnabled(ctx context.Context) (bool, error)
	StartBackup(ctx context.Context, label string, immediateCheckpoint bool) error
	// StopBackup ends backup mode and returns the backup_label contents,
	// which must be stored with the data files for the backup to be
	// restorable.
	StopBackup(ctx context.Context) (string, error)
}
