package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	appconfig "github.com/pharos-backup/pharos/internal/config"
)

type AzureClient struct {
	client          *azblob.Client
	container       string
	prefix          string
	jobs            int
	encryptionScope string
}

// NewAzure builds the azure-blob-storage client. Authentication uses
// AZURE_STORAGE_CONNECTION_STRING when present and the default credential
// chain otherwise; the short azure://container form additionally needs
// AZURE_STORAGE_ACCOUNT to derive the service URL.
func NewAzure(ctx context.Context, cfg *appconfig.Config) (*AzureClient, error) {
	loc, err := ParseAzureURL(cfg.DestinationURL)
	if err != nil {
		return nil, err
	}

	var client *azblob.Client
	if connStr, ok := os.LookupEnv("AZURE_STORAGE_CONNECTION_STRING"); ok {
		client, err = azblob.NewClientFromConnectionString(connStr, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure client from connection string: %w", err)
		}
	} else {
		serviceURL := loc.ServiceURL
		if serviceURL == "" {
			account, ok := os.LookupEnv("AZURE_STORAGE_ACCOUNT")
			if !ok {
				return nil, fmt.Errorf("destination %q needs AZURE_STORAGE_ACCOUNT or a full service URL", cfg.DestinationURL)
			}
			serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", account)
		}
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain Azure credential: %w", err)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure client: %w", err)
		}
	}

	return &AzureClient{
		client:          client,
		container:       loc.Container,
		prefix:          loc.Prefix,
		jobs:            cfg.Jobs,
		encryptionScope: cfg.EncryptionScope,
	}, nil
}

// TestConnectivity probes the destination. A missing container still counts
// as reachable; provisioning will create it later.
func (a *AzureClient) TestConnectivity(ctx context.Context) error {
	containerClient := a.client.ServiceClient().NewContainerClient(a.container)
	_, err := containerClient.GetProperties(ctx, nil)
	if err == nil || bloberror.HasCode(err, bloberror.ContainerNotFound) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// SetupBucket ensures the destination container exists.
func (a *AzureClient) SetupBucket(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err == nil || bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil
	}
	return fmt.Errorf("failed to create container %s: %w", a.container, err)
}

// Upload streams body to the container under the configured prefix.
func (a *AzureClient) Upload(ctx context.Context, key string, body io.Reader) error {
	fullKey := path.Join(a.prefix, key)

	opts := &azblob.UploadStreamOptions{Concurrency: a.jobs}
	if a.encryptionScope != "" {
		opts.CPKScopeInfo = &blob.CPKScopeInfo{
			EncryptionScope: to.Ptr(a.encryptionScope),
		}
	}

	if _, err := a.client.UploadStream(ctx, a.container, fullKey, body, opts); err != nil {
		return fmt.Errorf("failed to upload %s to Azure: %w", fullKey, err)
	}
	return nil
}

func (a *AzureClient) Close() error {
	return nil
}
