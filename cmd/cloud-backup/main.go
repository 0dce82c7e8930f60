// cloud-backup ships a base backup of a local PostgreSQL instance to cloud
// object storage, either directly from a live database or as the post
// phase of an external backup hook.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pharos-backup/pharos/internal/app"
	"github.com/pharos-backup/pharos/internal/config"
	"github.com/pharos-backup/pharos/internal/hook"
	"github.com/pharos-backup/pharos/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// set via ldflags
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var outcome app.Outcome
	cmd := newCommand(&outcome)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return app.OutcomeGenericFailure.ExitCode()
	}
	return outcome.ExitCode()
}

func newCommand(outcome *app.Outcome) *cobra.Command {
	cfg := &config.Config{}
	var (
		gzip           bool
		bzip2          bool
		maxArchiveSize string
	)

	cmd := &cobra.Command{
		Use:   "cloud-backup [flags] destination-url server-name",
		Short: "Back up a local PostgreSQL instance to cloud object storage",
		Long: "Perform a backup of a local PostgreSQL instance and ship the " +
			"resulting tarball(s) to the cloud. AWS S3 and Azure Blob Storage " +
			"are supported.",
		Version:       version,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindEnv(cmd.Flags()); err != nil {
				return err
			}

			cfg.DestinationURL = args[0]
			cfg.ServerName = args[1]

			switch {
			case gzip:
				cfg.Compression = config.CompressionGzip
			case bzip2:
				cfg.Compression = config.CompressionBzip2
			}

			size, err := config.ParseSize(maxArchiveSize)
			if err != nil {
				return err
			}
			cfg.MaxArchiveSize = size

			if err := cfg.Validate(); err != nil {
				return err
			}

			*outcome = execute(cmd.Context(), cfg)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false

	flags.CountVarP(&cfg.Verbose, "verbose", "v", "increase output verbosity (e.g., -vv is more than -v)")
	flags.CountVarP(&cfg.Quiet, "quiet", "q", "decrease output verbosity (e.g., -qq is less than -q)")
	flags.BoolVarP(&gzip, "gzip", "z", false, "gzip-compress the backup while uploading to the cloud")
	flags.BoolVarP(&bzip2, "bzip2", "j", false, "bzip2-compress the backup while uploading to the cloud")
	flags.BoolVarP(&cfg.Test, "test", "t", false, "test cloud connectivity and exit")
	flags.StringVar(&cfg.Host, "host", "", "host or Unix socket for PostgreSQL connection (default: libpq settings)")
	flags.StringVarP(&cfg.Port, "port", "p", "", "port for PostgreSQL connection (default: libpq settings)")
	flags.StringVarP(&cfg.User, "user", "U", "", "user name for PostgreSQL connection (default: libpq settings)")
	flags.StringVarP(&cfg.DBName, "dbname", "d", config.DefaultDBName, "database name or conninfo string for PostgreSQL connection")
	flags.BoolVar(&cfg.ImmediateCheckpoint, "immediate-checkpoint", false, "forces the initial checkpoint to be done as quickly as possible")
	flags.IntVarP(&cfg.Jobs, "jobs", "J", config.DefaultJobs, "number of parallel uploads to cloud storage")
	flags.StringVarP(&maxArchiveSize, "max-archive-size", "S", config.DefaultMaxArchiveSize, "maximum size of an archive when uploading to cloud storage")
	flags.StringVar(&cfg.CloudProvider, "cloud-provider", config.ProviderAWSS3, "the cloud provider to use as a storage backend (aws-s3 or azure-blob-storage)")
	flags.StringVar(&cfg.EndpointURL, "endpoint-url", "", "override default S3 endpoint URL with the given one")
	flags.StringVarP(&cfg.Profile, "profile", "P", "", "profile name (e.g. INI section in AWS credentials file)")
	flags.StringVarP(&cfg.Encryption, "encryption", "e", "", "enable server-side encryption for the transfer (AES256 or aws:kms)")
	flags.StringVar(&cfg.EncryptionScope, "encryption-scope", "", "the name of an encryption scope defined in the Azure Blob Storage service")
	flags.StringVar(&cfg.LogFile, "log-file", "", "also write logs to this file")
	flags.StringVar(&cfg.TelegramToken, "telegram-token", "", "telegram bot token for run notifications")
	flags.StringVar(&cfg.TelegramChatID, "telegram-chat-id", "", "telegram chat id for run notifications")

	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	cmd.MarkFlagsMutuallyExclusive("gzip", "bzip2")

	return cmd
}

// bindEnv lets PHAROS_* environment variables provide defaults for flags
// the command line left untouched, e.g. PHAROS_CLOUD_PROVIDER. A value
// the flag cannot parse is an error, not a silent fallback to the default.
func bindEnv(flags *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix("PHAROS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := flags.Set(f.Name, v.GetString(f.Name)); err != nil {
			envName := "PHAROS_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			bindErr = fmt.Errorf("invalid value in %s: %w", envName, err)
		}
	})
	return bindErr
}

func execute(ctx context.Context, cfg *config.Config) app.Outcome {
	log, err := logger.New(cfg.Verbose-cfg.Quiet, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return app.OutcomeGenericFailure
	}
	defer log.Close()

	// Mode resolution happens exactly once, before any remote I/O.
	resolution, err := hook.Resolve(nil)
	if err != nil {
		log.Errorf("Cloud backup error: %v", err)
		log.Debugf("Resolution failure details: %+v", err)
		return app.ClassifyError(err)
	}

	return app.New(cfg, resolution, log).Run(ctx)
}
