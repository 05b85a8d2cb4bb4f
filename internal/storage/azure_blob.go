package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AzureBlobStorage stores order photos in an Azure Blob container.
type AzureBlobStorage struct {
	client    *azblob.Client
	container string
	logger    *zap.Logger
}

// NewAzureBlobStorage connects to Azure Blob Storage and ensures the
// container exists.
func NewAzureBlobStorage(connectionString, container string, logger *zap.Logger) (*AzureBlobStorage, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}

	if _, err := client.CreateContainer(context.Background(), container, nil); err != nil {
		if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return nil, fmt.Errorf("create container %s: %w", container, err)
		}
	}

	logger.Info("Azure Blob Storage initialized", zap.String("container", container))

	return &AzureBlobStorage{
		client:    client,
		container: container,
		logger:    logger,
	}, nil
}

// Upload streams data into a new blob named by a fresh UUID plus the
// original file extension. Returns the blob name and the byte count.
func (s *AzureBlobStorage) Upload(ctx context.Context, filename string, contentType string, data io.Reader) (string, int64, error) {
	blobName := uuid.New().String() + filepath.Ext(filename)

	counted := &countingReader{r: data}
	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	if _, err := s.client.UploadStream(ctx, s.container, blobName, counted, opts); err != nil {
		return "", 0, fmt.Errorf("upload blob %s: %w", blobName, err)
	}

	s.logger.Info("file uploaded to blob storage",
		zap.String("blob", blobName),
		zap.String("container", s.container),
		zap.String("content_type", contentType),
		zap.String("original_filename", filename),
		zap.Int64("size", counted.count),
	)

	return blobName, counted.count, nil
}

// Download opens a stream for the given blob.
func (s *AzureBlobStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, storagePath, nil)
	if err != nil {
		return nil, fmt.Errorf("download blob %s: %w", storagePath, err)
	}
	return resp.Body, nil
}

// Delete removes a blob. A missing blob counts as deleted.
func (s *AzureBlobStorage) Delete(ctx context.Context, storagePath string) error {
	if _, err := s.client.DeleteBlob(ctx, s.container, storagePath, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			s.logger.Debug("blob already gone", zap.String("blob", storagePath))
			return nil
		}
		return fmt.Errorf("delete blob %s: %w", storagePath, err)
	}

	s.logger.Info("file deleted from blob storage",
		zap.String("blob", storagePath),
		zap.String("container", s.container),
	)
	return nil
}

// countingReader counts bytes as they pass through to size the upload.
type countingReader struct {
	r     io.Reader
	count int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.count += int64(n)
	return n, err
}
