package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const applicationName = "pharos_cloud_backup"

// Postgres is the live session used by the direct-database backup mode.
type Postgres struct {
	conn *pgconn.PgConn
}

// Connect opens a session from a libpq conninfo string. An empty conninfo
// delegates every parameter to libpq environment defaults.
func Connect(ctx context.Context, conninfo string) (*Postgres, error) {
	cfg, err := pgconn.ParseConfig(conninfo)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}
	cfg.RuntimeParams["application_name"] = applicationName

	conn, err := pgconn.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	return &Postgres{conn: conn}, nil
}

func (p *Postgres) Close(ctx context.Context) error {
	return p.conn.Close(ctx)
}

// ServerVersion reports the major server version, or 0 when it cannot be
// determined.
func (p *Postgres) ServerVersion() int {
	raw := p.conn.ParameterStatus("server_version")
	major, _, _ := strings.Cut(raw, ".")
	major, _, _ = strings.Cut(major, " ")
	v, err := strconv.Atoi(major)
	if err != nil {
		return 0
	}
	return v
}

func (p *Postgres) queryScalar(ctx context.Context, sql string, args ...string) (string, error) {
	params := make([][]byte, len(args))
	for i, a := range args {
		params[i] = []byte(a)
	}

	result := p.conn.ExecParams(ctx, sql, params, nil, nil, nil).Read()
	if result.Err != nil {
		return "", result.Err
	}
	if len(result.Rows) == 0 || len(result.Rows[0]) == 0 {
		return "", fmt.Errorf("query returned no result")
	}
	return string(result.Rows[0][0]), nil
}

// DataDirectory returns the server's data directory.
func (p *Postgres) DataDirectory(ctx context.Context) (string, error) {
	dir, err := p.queryScalar(ctx, "SHOW data_directory")
	if err != nil {
		return "", fmt.Errorf("failed to read data_directory: %w", err)
	}
	return dir, nil
}

// WALArchivingEnabled reports whether the server archives WAL segments.
// Restoring a base backup needs the WAL produced while it ran.
func (p *Postgres) WALArchivingEnabled(ctx context.Context) (bool, error) {
	mode, err := p.queryScalar(ctx, "SHOW archive_mode")
	if err != nil {
		return false, fmt.Errorf("failed to read archive_mode: %w", err)
	}
	return mode != "off", nil
}

// StartBackup puts the server in backup mode. The immediateCheckpoint flag
// forces the initial checkpoint to complete as quickly as possible.
func (p *Postgres) StartBackup(ctx context.Context, label string, immediateCheckpoint bool) error {
	fast := strconv.FormatBool(immediateCheckpoint)

	var err error
	if p.ServerVersion() >= 15 {
		_, err = p.queryScalar(ctx, "SELECT pg_backup_start($1, $2)", label, fast)
	} else {
		_, err = p.queryScalar(ctx, "SELECT pg_start_backup($1, $2, false)", label, fast)
	}
	if err != nil {
		return fmt.Errorf("failed to start backup: %w", err)
	}
	return nil
}

// StopBackup ends backup mode on the same session that started it and
// returns the backup_label contents. Non-exclusive backups never write
// backup_label into the data directory, so the caller has to store it
// alongside the data files.
func (p *Postgres) StopBackup(ctx context.Context) (string, error) {
	var labelFile string
	var err error
	if p.ServerVersion() >= 15 {
		labelFile, err = p.queryScalar(ctx, "SELECT labelfile FROM pg_backup_stop()")
	} else {
		labelFile, err = p.queryScalar(ctx, "SELECT labelfile FROM pg_stop_backup(false)")
	}
	if err != nil {
		return "", fmt.Errorf("failed to stop backup: %w", err)
	}
	return labelFile, nil
}
