// Package hook decides whether the process runs as a direct-database backup
// or as the post phase of an external backup hook, based on environment
// markers set by the invoking tool.
package hook

import (
	"fmt"
	"os"
)

// Environment markers consumed when resolving the execution mode.
const (
	EnvHook      = "PHAROS_HOOK"
	EnvPhase     = "PHAROS_PHASE"
	EnvBackupDir = "PHAROS_BACKUP_DIR"
	EnvBackupID  = "PHAROS_BACKUP_ID"
	EnvStatus    = "PHAROS_STATUS"
)

const statusDone = "DONE"

// Mode is the execution mode of a run, resolved exactly once.
type Mode int

const (
	// ModeDirect backs up a live database over a PostgreSQL connection.
	ModeDirect Mode = iota
	// ModeHookScript packages a completed on-disk backup, running as the
	// post phase of the invoking tool's backup hook.
	ModeHookScript
)

// Script carries the hook-provided context for ModeHookScript.
type Script struct {
	BackupDir string
	BackupID  string
	Status    string
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Mode   Mode
	Script *Script // set only for ModeHookScript
}

// LookupFunc reads one environment value. Injecting it keeps the resolver
// free of ambient process state and testable without mutating the
// environment.
type LookupFunc func(key string) (string, bool)

// UnsupportedHookError reports a hook/phase combination this program does
// not support. It is a misconfiguration, not an unrecoverable hook failure.
type UnsupportedHookError struct {
	Phase string
	Hook  string
}

func (e *UnsupportedHookError) Error() string {
	return fmt.Sprintf("cloud-backup called as unsupported hook script: %s_%s", e.Phase, e.Hook)
}

// UnrecoverableError reports a hook invocation whose backup did not
// complete. It maps to the dedicated exit code that tells the invoking tool
// not to retry.
type UnrecoverableError struct {
	BackupDir string
	Status    string
}

func (e *UnrecoverableError) Error() string {
	return fmt.Sprintf("backup in %q has status %q (status should be: %s)", e.BackupDir, e.Status, statusDone)
}

func approvedHook(name string) bool {
	return name == "backup_script" || name == "backup_retry_script"
}

// Resolve inspects the hook and phase markers and returns the execution
// mode for this run. A nil lookup falls back to the process environment.
func Resolve(lookup LookupFunc) (Resolution, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	hookName, hasHook := lookup(EnvHook)
	phase, hasPhase := lookup(EnvPhase)
	if !hasHook || !hasPhase {
		return Resolution{Mode: ModeDirect}, nil
	}

	if phase != "post" || !approvedHook(hookName) {
		return Resolution{}, &UnsupportedHookError{Phase: phase, Hook: hookName}
	}

	dir, ok := lookup(EnvBackupDir)
	if !ok {
		return Resolution{}, fmt.Errorf("%s environment variable not set", EnvBackupDir)
	}
	id, ok := lookup(EnvBackupID)
	if !ok {
		return Resolution{}, fmt.Errorf("%s environment variable not set", EnvBackupID)
	}

	status, _ := lookup(EnvStatus)
	if status != statusDone {
		return Resolution{}, &UnrecoverableError{BackupDir: dir, Status: status}
	}

	return Resolution{
		Mode:   ModeHookScript,
		Script: &Script{BackupDir: dir, BackupID: id, Status: status},
	}, nil
}
