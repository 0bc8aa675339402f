package storage

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/sirupsen/logrus"
)

// BlobArchive keeps timestamped copies of the tagging outputs in Azure Blob
// Storage. Each run lands under runs/<stamp>/<filename>, so the container
// accumulates the full history while the local store only ever holds the
// latest snapshot.
type BlobArchive struct {
	client        *azblob.Client
	containerName string
}

// NewBlobArchive creates an archive client using the default credential
// chain (managed identity in production, az login locally) and makes sure
// the container exists.
func NewBlobArchive(accountName, containerName string) (*BlobArchive, error) {
	if accountName == "" {
		return nil, fmt.Errorf("storage account name is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	client, err := azblob.NewClient(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}

	archive := &BlobArchive{
		client:        client,
		containerName: containerName,
	}

	if err := archive.ensureContainer(context.Background()); err != nil {
		return nil, err
	}

	return archive, nil
}

func (a *BlobArchive) ensureContainer(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.containerName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			logrus.Debugf("Container %s already exists", a.containerName)
			return nil
		}
		return fmt.Errorf("failed to create container %s: %w", a.containerName, err)
	}

	logrus.Infof("Created container %s", a.containerName)
	return nil
}

// StoreRun uploads one tagging output under the run's timestamp prefix.
func (a *BlobArchive) StoreRun(ctx context.Context, stamp, filename string, data []byte) error {
	blobName := fmt.Sprintf("runs/%s/%s", stamp, filename)

	if _, err := a.client.UploadBuffer(ctx, a.containerName, blobName, data, nil); err != nil {
		return fmt.Errorf("failed to archive blob %s: %w", blobName, err)
	}

	logrus.Infof("Archived %s", blobName)
	return nil
}
