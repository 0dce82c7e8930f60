package uploader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/pharos-backup/pharos/internal/domain"
)

const metadataFile = "backup.info"

// BackupDir packages a completed on-disk backup invoked as a post-backup
// hook: the backup's data directory is tarred into size-capped parts and
// shipped, followed by the backup metadata file when present.
type BackupDir struct {
	client    domain.StorageClient
	log       Logger
	opts      Options
	backupDir string
	backupID  string
}

func NewBackupDir(client domain.StorageClient, log Logger, opts Options, backupDir, backupID string) *BackupDir {
	return &BackupDir{
		client:    client,
		log:       log,
		opts:      opts,
		backupDir: backupDir,
		backupID:  backupID,
	}
}

func (u *BackupDir) Backup(ctx context.Context) error {
	dataDir := filepath.Join(u.backupDir, "data")
	info, err := os.Stat(dataDir)
	if err != nil {
		return fmt.Errorf("backup data directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("backup data path %s is not a directory", dataDir)
	}

	u.log.Infof("Packaging backup %s from %s", u.backupID, u.backupDir)

	parts, err := archiveTree(ctx, dataDir, u.opts, nil)
	if err != nil {
		return err
	}

	keyPrefix := path.Join(u.opts.ServerName, "base", u.backupID)
	if err := uploadParts(ctx, u.client, u.log, keyPrefix, parts, u.opts.Jobs); err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}

	if err := u.uploadMetadata(ctx, keyPrefix); err != nil {
		return err
	}

	u.log.Infof("Backup %s uploaded in %d archive(s)", u.backupID, len(parts))
	return nil
}

func (u *BackupDir) uploadMetadata(ctx context.Context, keyPrefix string) error {
	metaPath := filepath.Join(u.backupDir, metadataFile)
	f, err := os.Open(metaPath)
	if os.IsNotExist(err) {
		u.log.Warnf("No %s found in %s, skipping", metadataFile, u.backupDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", metaPath, err)
	}
	defer f.Close()

	key := path.Join(keyPrefix, metadataFile)
	if err := u.client.Upload(ctx, key, f); err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}
	return nil
}

// archiveTree walks root and stages its contents as archive parts in the
// working directory. skip, when set, can prune entries: SkipDir semantics
// follow filepath.WalkDir.
func archiveTree(ctx context.Context, root string, opts Options, skip func(rel string, d fs.DirEntry) error) ([]string, error) {
	aw := newArchiveWriter(opts.WorkDir, opts.MaxArchiveSize, opts.Compression)

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if skip != nil {
			switch err := skip(rel, d); err {
			case nil:
			case errSkipEntry:
				return nil
			case fs.SkipDir:
				// Keep the directory entry itself, drop its contents.
				if d.IsDir() {
					if aerr := aw.Add(p, rel); aerr != nil {
						return aerr
					}
				}
				return fs.SkipDir
			default:
				return err
			}
		}
		return aw.Add(p, rel)
	})

	parts, closeErr := aw.Close()
	if walkErr != nil {
		return nil, fmt.Errorf("failed to archive %s: %w", root, walkErr)
	}
	if closeErr != nil {
		return nil, closeErr
	}
	return parts, nil
}
