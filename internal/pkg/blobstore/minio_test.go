package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMinIOClient struct {
	mock.Mock
}

func (m *MockMinIOClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockMinIOClient) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*minio.Object), args.Error(1)
}

func (m *MockMinIOClient) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Error(0)
}

func (m *MockMinIOClient) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucketName, opts)
	return args.Get(0).(<-chan minio.ObjectInfo)
}

func TestMinIO_Put(t *testing.T) {
	client := new(MockMinIOClient)
	backend := NewMinIOWithClient(client, "photos")
	ctx := context.Background()
	body := strings.NewReader("data")

	client.On("PutObject", ctx, "photos", "k.png", body, int64(4), minio.PutObjectOptions{ContentType: "image/png"}).
		Return(minio.UploadInfo{Size: 4}, nil)

	n, err := backend.Put(ctx, "k.png", body, 4, "image/png")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "minio://photos/k.png", backend.Location("k.png"))
	client.AssertExpectations(t)
}

func TestMinIO_PutFailureIsWriteError(t *testing.T) {
	client := new(MockMinIOClient)
	backend := NewMinIOWithClient(client, "photos")

	client.On("PutObject", mock.Anything, "photos", "k.png", mock.Anything, int64(1), mock.Anything).
		Return(minio.UploadInfo{}, errors.New("connection refused"))

	_, err := backend.Put(context.Background(), "k.png", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, ErrWrite)
}

func TestMinIO_DeleteMissingIsNoop(t *testing.T) {
	client := new(MockMinIOClient)
	backend := NewMinIOWithClient(client, "photos")

	client.On("RemoveObject", mock.Anything, "photos", "gone.png", mock.Anything).
		Return(minio.ErrorResponse{Code: "NoSuchKey"})
	client.On("RemoveObject", mock.Anything, "photos", "broken.png", mock.Anything).
		Return(errors.New("timeout"))

	assert.NoError(t, backend.Delete(context.Background(), "gone.png"))
	assert.Error(t, backend.Delete(context.Background(), "broken.png"))
}

func TestMinIO_List(t *testing.T) {
	client := new(MockMinIOClient)
	backend := NewMinIOWithClient(client, "photos")
	now := time.Now()

	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "a.png", Size: 1, LastModified: now}
	ch <- minio.ObjectInfo{Key: "b.png", Size: 2, LastModified: now}
	close(ch)
	client.On("ListObjects", mock.Anything, "photos", minio.ListObjectsOptions{Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	items, err := backend.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b.png", items[1].Key)
	assert.Equal(t, int64(2), items[1].Size)
}
