package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pharos-backup/pharos/internal/adapter/compressor"
	"github.com/pharos-backup/pharos/internal/adapter/database"
	"github.com/pharos-backup/pharos/internal/adapter/notify"
	"github.com/pharos-backup/pharos/internal/adapter/storage"
	"github.com/pharos-backup/pharos/internal/adapter/uploader"
	"github.com/pharos-backup/pharos/internal/config"
	"github.com/pharos-backup/pharos/internal/conninfo"
	"github.com/pharos-backup/pharos/internal/domain"
	"github.com/pharos-backup/pharos/internal/hook"
	"github.com/pharos-backup/pharos/internal/infrastructure/logger"
)

// App drives one backup run through its stages: scoped working directory,
// storage client construction, connectivity probe, bucket provisioning,
// mode-dispatched transfer, teardown. Stages run strictly forward; every
// acquired resource is released on every exit path.
type App struct {
	cfg        *config.Config
	resolution hook.Resolution
	log        *logger.Logger

	// tempRoot is the parent of the scoped working directory; empty means
	// the system default.
	tempRoot string

	newStorage      func(ctx context.Context, cfg *config.Config) (domain.StorageClient, error)
	connectDB       func(ctx context.Context, conninfo string) (domain.DatabaseConnection, error)
	newDirUploader  func(client domain.StorageClient, opts uploader.Options, backupDir, backupID string) domain.Uploader
	newLiveUploader func(client domain.StorageClient, opts uploader.Options, db domain.DatabaseConnection) domain.Uploader
	newNotifier     func(token, chatID string) (domain.Notifier, error)
}

func New(cfg *config.Config, resolution hook.Resolution, log *logger.Logger) *App {
	return &App{
		cfg:        cfg,
		resolution: resolution,
		log:        log,
		newStorage: storage.New,
		connectDB: func(ctx context.Context, ci string) (domain.DatabaseConnection, error) {
			return database.Connect(ctx, ci)
		},
		newDirUploader: func(client domain.StorageClient, opts uploader.Options, backupDir, backupID string) domain.Uploader {
			return uploader.NewBackupDir(client, log, opts, backupDir, backupID)
		},
		newLiveUploader: func(client domain.StorageClient, opts uploader.Options, db domain.DatabaseConnection) domain.Uploader {
			return uploader.NewLive(client, log, opts, db)
		},
		newNotifier: func(token, chatID string) (domain.Notifier, error) {
			return notify.NewTelegram(token, chatID)
		},
	}
}

// Run executes the staged pipeline and returns the terminal outcome. The
// scoped working directory exists for the whole run and is removed
// best-effort on every exit path.
func (a *App) Run(ctx context.Context) Outcome {
	workDir, err := os.MkdirTemp(a.tempRoot, "pharos-cloud-backup-")
	if err != nil {
		a.log.Errorf("Cannot create working directory: %v", err)
		return OutcomeGenericFailure
	}
	defer os.RemoveAll(workDir)

	outcome := a.runPipeline(ctx, workDir)
	a.notify(ctx, outcome)
	return outcome
}

func (a *App) runPipeline(ctx context.Context, workDir string) Outcome {
	client, err := a.newStorage(ctx, a.cfg)
	if err != nil {
		return a.fail("Cannot create cloud client", err)
	}

	if err := client.TestConnectivity(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return a.fail("Connectivity test interrupted", err)
		}
		a.log.Errorf("Destination %s not reachable", a.cfg.DestinationURL)
		a.log.Debugf("Connectivity failure details: %v", err)
		return OutcomeConnectivityFailure
	}

	if a.cfg.Test {
		a.log.Infof("Connection to %s succeeded", a.cfg.DestinationURL)
		return OutcomeTestModeExit
	}

	defer func() {
		if err := client.Close(); err != nil {
			a.log.Warnf("Failed to release cloud client: %v", err)
		}
	}()

	if err := client.SetupBucket(ctx); err != nil {
		return a.fail("Cannot set up the destination bucket", err)
	}

	comp, err := compressor.ForName(a.cfg.Compression)
	if err != nil {
		return a.fail("Cannot set up compression", err)
	}
	opts := uploader.Options{
		ServerName:          a.cfg.ServerName,
		Compression:         comp,
		MaxArchiveSize:      a.cfg.MaxArchiveSize,
		Jobs:                a.cfg.Jobs,
		WorkDir:             workDir,
		ImmediateCheckpoint: a.cfg.ImmediateCheckpoint,
	}

	var transferErr error
	if a.resolution.Mode == hook.ModeHookScript {
		script := a.resolution.Script
		up := a.newDirUploader(client, opts, script.BackupDir, script.BackupID)
		transferErr = up.Backup(ctx)
	} else {
		ci := conninfo.Build(a.cfg.Host, a.cfg.Port, a.cfg.User, a.cfg.DBName)
		db, err := a.connectDB(ctx, ci)
		if err != nil {
			a.log.Errorf("Cannot connect to postgres: %v", err)
			a.log.Debugf("Connection failure details: %+v", err)
			if errors.Is(err, context.Canceled) {
				return OutcomeUserInterrupted
			}
			return OutcomeGenericFailure
		}

		up := a.newLiveUploader(client, opts, db)
		transferErr = up.Backup(ctx)

		// Closed exactly once, whatever the transfer did.
		if cerr := db.Close(context.WithoutCancel(ctx)); cerr != nil {
			a.log.Warnf("Failed to close database connection: %v", cerr)
		}
	}

	if transferErr != nil {
		return a.fail("Cloud backup failed", transferErr)
	}

	a.log.Infof("Backup of server %s completed", a.cfg.ServerName)
	return OutcomeSuccess
}

// fail logs the human-readable summary at error level and the full detail
// at debug level, then classifies the failure.
func (a *App) fail(summary string, err error) Outcome {
	outcome := ClassifyError(err)
	if outcome == OutcomeUserInterrupted {
		a.log.Errorf("Backup was interrupted by the user")
	} else {
		a.log.Errorf("%s: %v", summary, err)
	}
	a.log.Debugf("Failure details: %+v", err)
	return outcome
}

// notify sends the optional one-line run summary. Always best-effort.
func (a *App) notify(ctx context.Context, outcome Outcome) {
	if a.cfg.TelegramToken == "" || a.cfg.TelegramChatID == "" {
		return
	}

	notifier, err := a.newNotifier(a.cfg.TelegramToken, a.cfg.TelegramChatID)
	if err != nil {
		a.log.Warnf("Notification disabled: %v", err)
		return
	}

	message := fmt.Sprintf("cloud backup of %s to %s: %s",
		a.cfg.ServerName, a.cfg.DestinationURL, outcome)
	if err := notifier.Notify(context.WithoutCancel(ctx), message); err != nil {
		a.log.Warnf("Failed to send notification: %v", err)
	}
}
