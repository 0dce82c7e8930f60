package storage

import (
	"context"
	"fmt"

	appconfig "github.com/pharos-backup/pharos/internal/config"
	"github.com/pharos-backup/pharos/internal/domain"
)

// New builds the storage client for the configured provider.
func New(ctx context.Context, cfg *appconfig.Config) (domain.StorageClient, error) {
	switch cfg.CloudProvider {
	case appconfig.ProviderAWSS3:
		return NewS3(ctx, cfg)
	case appconfig.ProviderAzureBlob:
		return NewAzure(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported cloud provider: %s", cfg.CloudProvider)
	}
}
