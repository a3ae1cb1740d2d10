package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/kcluster/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockS3Client is a mock implementation of Client.
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func TestStore_Put(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "bucket", "models")
	ctx := context.Background()

	client.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return aws.ToString(in.Bucket) == "bucket" &&
			aws.ToString(in.Key) == "models/run.kcl" &&
			aws.ToInt64(in.ContentLength) == 3 &&
			bytes.Equal(body, []byte("abc"))
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(ctx, "run.kcl", []byte("abc")))
	client.AssertExpectations(t)
}

func TestStore_Get(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "bucket", "models")
	ctx := context.Background()

	client.On("GetObject", ctx, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "models/run.kcl"
	})).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader([]byte("payload"))),
	}, nil).Once()

	data, err := store.Get(ctx, "run.kcl")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	client.AssertExpectations(t)
}

func TestStore_GetNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"NoSuchKey", &types.NoSuchKey{}},
		{"NotFound", &types.NotFound{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockS3Client)
			store := NewStore(client, "bucket", "")
			ctx := context.Background()

			client.On("GetObject", ctx, mock.Anything).Return(nil, tt.err).Once()

			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}

func TestStore_GetOtherError(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "bucket", "")
	ctx := context.Background()

	boom := errors.New("access denied")
	client.On("GetObject", ctx, mock.Anything).Return(nil, boom).Once()

	_, err := store.Get(ctx, "x")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "bucket", "models")
	ctx := context.Background()

	client.On("DeleteObject", ctx, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Key) == "models/run.kcl"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	require.NoError(t, store.Delete(ctx, "run.kcl"))
	client.AssertExpectations(t)
}

func TestStore_ListPaginates(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "bucket", "models")
	ctx := context.Background()

	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("models/runs/b.kcl")},
		},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page2"),
	}, nil).Once()

	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "page2"
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("models/runs/a.kcl")},
		},
		IsTruncated: aws.Bool(false),
	}, nil).Once()

	names, err := store.List(ctx, "runs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/a.kcl", "runs/b.kcl"}, names)
	client.AssertExpectations(t)
}

func TestStore_RoundTripThroughMock(t *testing.T) {
	client := new(MockS3Client)
	store := NewStore(client, "bucket", "")
	ctx := context.Background()

	var stored []byte
	client.On("PutObject", ctx, mock.Anything).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		stored, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(ctx, "k", []byte("v1")))
	assert.Equal(t, []byte("v1"), stored)
}

// MockMultipartClient adds the multipart upload API to MockS3Client.
type MockMultipartClient struct {
	MockS3Client
}

func (m *MockMultipartClient) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.CreateMultipartUploadOutput), args.Error(1)
}

func (m *MockMultipartClient) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.UploadPartOutput), args.Error(1)
}

func (m *MockMultipartClient) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.CompleteMultipartUploadOutput), args.Error(1)
}

func (m *MockMultipartClient) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.AbortMultipartUploadOutput), args.Error(1)
}

func TestStore_UploaderDetection(t *testing.T) {
	assert.Nil(t, NewStore(new(MockS3Client), "bucket", "").uploader)
	assert.NotNil(t, NewStore(new(MockMultipartClient), "bucket", "").uploader)
}

func TestStore_PutSmallSkipsMultipart(t *testing.T) {
	client := new(MockMultipartClient)
	store := NewStore(client, "bucket", "")
	ctx := context.Background()

	client.On("PutObject", ctx, mock.Anything).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(ctx, "small", []byte("abc")))
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "CreateMultipartUpload", mock.Anything, mock.Anything)
}

func TestStore_PutLargeUsesMultipart(t *testing.T) {
	client := new(MockMultipartClient)
	store := NewStore(client, "bucket", "models")
	ctx := context.Background()

	client.On("CreateMultipartUpload", mock.Anything, mock.MatchedBy(func(in *s3.CreateMultipartUploadInput) bool {
		return aws.ToString(in.Key) == "models/big.kcl"
	})).Return(&s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-1")}, nil).Once()
	client.On("UploadPart", mock.Anything, mock.Anything).Return(&s3.UploadPartOutput{ETag: aws.String("etag")}, nil)
	client.On("CompleteMultipartUpload", mock.Anything, mock.Anything).Return(&s3.CompleteMultipartUploadOutput{}, nil).Once()

	require.NoError(t, store.Put(ctx, "big.kcl", make([]byte, multipartThreshold)))

	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "UploadPart", multipartThreshold/partSize)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
}
