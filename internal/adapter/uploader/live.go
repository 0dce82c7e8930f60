package uploader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pharos-backup/pharos/internal/domain"
)

// errSkipEntry prunes a single entry during the archive walk.
var errSkipEntry = errors.New("skip entry")

// backupLabelFile is the object name for the label returned by stopping
// the backup.
const backupLabelFile = "backup_label"

// Directories whose contents are recreated by the server on recovery. The
// directory entries themselves stay in the archive.
var excludedDirs = map[string]bool{
	"pg_wal":       true,
	"pg_xlog":      true,
	"pg_replslot":  true,
	"pg_dynshmem":  true,
	"pg_notify":    true,
	"pg_serial":    true,
	"pg_snapshots": true,
	"pg_stat_tmp":  true,
	"pg_subtrans":  true,
}

var excludedFiles = map[string]bool{
	"postmaster.pid":  true,
	"postmaster.opts": true,
}

// Live backs up a running instance over its database session: the server
// is put in backup mode, the data directory is tarred into size-capped
// parts and shipped, and backup mode is ended even when the transfer
// fails.
type Live struct {
	client domain.StorageClient
	log    Logger
	opts   Options
	db     domain.DatabaseConnection
	now    func() time.Time
}

func NewLive(client domain.StorageClient, log Logger, opts Options, db domain.DatabaseConnection) *Live {
	return &Live{
		client: client,
		log:    log,
		opts:   opts,
		db:     db,
		now:    time.Now,
	}
}

func (u *Live) Backup(ctx context.Context) error {
	backupID := u.now().Format("20060102T150405")

	dataDir, err := u.db.DataDirectory(ctx)
	if err != nil {
		return err
	}

	archiving, err := u.db.WALArchivingEnabled(ctx)
	if err != nil {
		return err
	}
	if !archiving {
		u.log.Warnf("WAL archiving is not enabled: the backup cannot reach consistency without the WAL produced while it runs")
	}

	label := "pharos_cloud_backup " + backupID
	if err := u.db.StartBackup(ctx, label, u.opts.ImmediateCheckpoint); err != nil {
		return err
	}
	u.log.Infof("Starting backup %s of %s", backupID, dataDir)

	parts, archiveErr := archiveTree(ctx, dataDir, u.opts, skipServerFiles)

	// Backup mode must end on this session even after a failed or
	// cancelled walk.
	labelFile, stopErr := u.db.StopBackup(context.WithoutCancel(ctx))
	if archiveErr != nil {
		return archiveErr
	}
	if stopErr != nil {
		return stopErr
	}

	keyPrefix := path.Join(u.opts.ServerName, "base", backupID)
	if err := uploadParts(ctx, u.client, u.log, keyPrefix, parts, u.opts.Jobs); err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}

	// The server never writes backup_label into the data directory for a
	// non-exclusive backup; restores read it from here.
	labelKey := path.Join(keyPrefix, backupLabelFile)
	if err := u.client.Upload(ctx, labelKey, strings.NewReader(labelFile)); err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}

	u.log.Infof("Backup %s uploaded in %d archive(s)", backupID, len(parts))
	return nil
}

func skipServerFiles(rel string, d fs.DirEntry) error {
	base := path.Base(filepath.ToSlash(rel))
	if d.IsDir() && excludedDirs[base] {
		return fs.SkipDir
	}
	if !d.IsDir() {
		if excludedFiles[base] || strings.HasPrefix(base, "pgsql_tmp") {
			return errSkipEntry
		}
	}
	return nil
}
