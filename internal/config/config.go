package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Cloud providers accepted by --cloud-provider.
const (
	ProviderAWSS3     = "aws-s3"
	ProviderAzureBlob = "azure-blob-storage"
)

// Compression codecs accepted on the command line.
const (
	CompressionNone  = ""
	CompressionGzip  = "gz"
	CompressionBzip2 = "bz2"
)

const (
	DefaultDBName         = "postgres"
	DefaultJobs           = 2
	DefaultMaxArchiveSize = "100GB"
)

// Config is the immutable snapshot of all resolved run parameters. It is
// built once from the parsed command line and never mutated afterwards.
type Config struct {
	DestinationURL string
	ServerName     string

	// PostgreSQL connection parameters. DBName may also carry a full
	// conninfo string, which short-circuits the other three.
	Host   string
	Port   string
	User   string
	DBName string

	Compression         string
	Jobs                int
	MaxArchiveSize      int64
	ImmediateCheckpoint bool
	Test                bool

	CloudProvider string

	// aws-s3 options
	EndpointURL string
	Profile     string
	Encryption  string

	// azure-blob-storage options
	EncryptionScope string

	Verbose int
	Quiet   int
	LogFile string

	TelegramToken  string
	TelegramChatID string
}

// ParseSize converts a human-readable size such as "100GB" into bytes,
// using SI multiples (100GB = 100 * 10^9).
func ParseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid size %q: must be greater than zero", s)
	}
	return int64(n), nil
}

func (c *Config) Validate() error {
	if c.DestinationURL == "" {
		return fmt.Errorf("destination URL is required")
	}
	if c.ServerName == "" {
		return fmt.Errorf("server name is required")
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be a positive integer, got %d", c.Jobs)
	}
	if c.MaxArchiveSize <= 0 {
		return fmt.Errorf("max archive size must be greater than zero")
	}

	switch c.CloudProvider {
	case ProviderAWSS3, ProviderAzureBlob:
	default:
		return fmt.Errorf("unsupported cloud provider: %s", c.CloudProvider)
	}

	switch c.Compression {
	case CompressionNone, CompressionGzip, CompressionBzip2:
	default:
		return fmt.Errorf("unsupported compression: %s", c.Compression)
	}

	switch c.Encryption {
	case "", "AES256", "aws:kms":
	default:
		return fmt.Errorf("unsupported encryption: %s", c.Encryption)
	}

	if c.EncryptionScope != "" && c.CloudProvider != ProviderAzureBlob {
		return fmt.Errorf("encryption scope is only valid with the %s provider", ProviderAzureBlob)
	}

	return nil
}
