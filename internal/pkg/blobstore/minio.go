package blobstore

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultContentType = "application/octet-stream"

// MinIOClient is the subset of *minio.Client the backend uses.
type MinIOClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

type MinIO struct {
	client MinIOClient
	bucket string
}

// NewMinIO connects to an S3 compatible MinIO endpoint.
func NewMinIO(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinIO, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Printf("blobstore: can not create minio client endpoint=%s: %v", endpoint, err)
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIO{client: client, bucket: bucket}, nil
}

func NewMinIOWithClient(client MinIOClient, bucket string) *MinIO {
	return &MinIO{client: client, bucket: bucket}
}

func (m *MinIO) Name() string { return "minio" }

func (m *MinIO) Location(key string) string {
	return "minio://" + m.bucket + "/" + key
}

func (m *MinIO) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error) {
	if contentType == "" {
		contentType = defaultContentType
	}
	info, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return 0, fmt.Errorf("%w: put object: %w", ErrWrite, err)
	}
	return info.Size, nil
}

func (m *MinIO) Open(ctx context.Context, key string) (*Object, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinIOErr(err)
	}
	// GetObject is lazy; Stat surfaces a missing key
	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, mapMinIOErr(err)
	}
	return &Object{ReadCloser: obj, Size: st.Size, ModTime: st.LastModified}, nil
}

func (m *MinIO) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && mapMinIOErr(err) != ErrNotFound {
		return err
	}
	return nil
}

func (m *MinIO) List(ctx context.Context) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return out, obj.Err
		}
		out = append(out, ObjectInfo{Key: obj.Key, Size: obj.Size, ModTime: obj.LastModified})
	}
	return out, nil
}

func mapMinIOErr(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return ErrNotFound
	}
	return err
}
