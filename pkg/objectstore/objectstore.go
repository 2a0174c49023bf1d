package objectstore

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStorageClient defines the operations used for journal archival.
type ObjectStorageClient interface {
	Connect(endpoint, accessKeyID, secretAccessKey string, useSSL bool) error
	EnsureBucket(ctx context.Context, bucketName string) error
	UploadFile(ctx context.Context, bucketName, objectName, filePath string, metadata map[string]string) error
}

// ObjectStorage holds the object storage client instance.
type ObjectStorage struct {
	Conn *minio.Client
}

// NewObjectStorage creates an unconnected ObjectStorage.
func NewObjectStorage() ObjectStorageClient {
	return &ObjectStorage{}
}

// Connect establishes the object storage connection.
func (o *ObjectStorage) Connect(endpoint, accessKeyID, secretAccessKey string, useSSL bool) error {
	var err error
	o.Conn, err = minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create object storage client: %v", err)
	}

	return nil
}

// EnsureBucket creates the bucket if it does not already exist.
func (o *ObjectStorage) EnsureBucket(ctx context.Context, bucketName string) error {
	exists, err := o.Conn.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %v", bucketName, err)
	}
	if exists {
		return nil
	}

	if err := o.Conn.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %v", bucketName, err)
	}
	return nil
}

// UploadFile uploads the file at filePath as objectName with the given metadata.
func (o *ObjectStorage) UploadFile(ctx context.Context, bucketName, objectName, filePath string, metadata map[string]string) error {
	_, err := o.Conn.FPutObject(ctx, bucketName, objectName, filePath, minio.PutObjectOptions{
		ContentType:  "application/x-ndjson",
		UserMetadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %v", objectName, bucketName, err)
	}

	return nil
}
