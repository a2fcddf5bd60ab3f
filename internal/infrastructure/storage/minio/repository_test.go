package minio

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/ben-daghir/hercap/pkg/errors"
)

type RepositoryTestSuite struct {
	suite.Suite
	mockAPI *MockMinIOAPI
	repo    ObjectRepository
}

func (s *RepositoryTestSuite) SetupTest() {
	s.mockAPI = new(MockMinIOAPI)
	client := newClientWithAPI(s.mockAPI, &MinIOConfig{Bucket: "feeds", MaxObjectSize: 64}, nil)
	s.repo = NewMinIORepository(client, logging.NewNopLogger())
}

func body(s string) io.ReadCloser { return io.NopCloser(strings.NewReader(s)) }

func (s *RepositoryTestSuite) TestUpload_Success() {
	s.mockAPI.On("PutObject", mock.Anything, "feeds", "portfolio.csv", mock.Anything, int64(9), mock.MatchedBy(func(o minio.PutObjectOptions) bool {
		return strings.HasPrefix(o.ContentType, "text/plain")
	})).Return(minio.UploadInfo{Bucket: "feeds", Key: "portfolio.csv", ETag: "etag", Size: 9}, nil)

	res, err := s.repo.Upload(context.Background(), &UploadRequest{ObjectKey: "portfolio.csv", Data: []byte("a,b,c\n1,2")})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "feeds", res.Bucket)
	assert.Equal(s.T(), "etag", res.ETag)
	assert.Equal(s.T(), int64(9), res.Size)
}

func (s *RepositoryTestSuite) TestUpload_InvalidRequest() {
	_, err := s.repo.Upload(context.Background(), &UploadRequest{})
	assert.ErrorIs(s.T(), err, ErrInvalidRequest)
	_, err = s.repo.Upload(context.Background(), nil)
	assert.ErrorIs(s.T(), err, ErrInvalidRequest)
}

func (s *RepositoryTestSuite) TestDownload_Success() {
	s.mockAPI.On("GetObject", mock.Anything, "feeds", "world.geojson", mock.Anything).Return(body(`{"type":"FeatureCollection"}`), nil)

	res, err := s.repo.Download(context.Background(), "world.geojson")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), `{"type":"FeatureCollection"}`, string(res.Data))
	assert.Equal(s.T(), int64(len(res.Data)), res.Size)
}

func (s *RepositoryTestSuite) TestDownload_NotFoundOnRead() {
	s.mockAPI.On("GetObject", mock.Anything, "feeds", "missing", mock.Anything).
		Return(io.NopCloser(errReader{minio.ErrorResponse{Code: "NoSuchKey"}}), nil)

	_, err := s.repo.Download(context.Background(), "missing")
	assert.True(s.T(), apperrors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestDownload_TransportError() {
	s.mockAPI.On("GetObject", mock.Anything, "feeds", "k", mock.Anything).Return(nil, errors.New("dial tcp"))

	_, err := s.repo.Download(context.Background(), "k")
	assert.True(s.T(), apperrors.IsCode(err, apperrors.ErrCodeExternalService))
}

func (s *RepositoryTestSuite) TestDownload_TooLarge() {
	s.mockAPI.On("GetObject", mock.Anything, "feeds", "big", mock.Anything).Return(body(strings.Repeat("x", 65)), nil)

	_, err := s.repo.Download(context.Background(), "big")
	assert.ErrorIs(s.T(), err, ErrObjectTooLarge)
}

func (s *RepositoryTestSuite) TestDownload_ExactlyAtLimit() {
	s.mockAPI.On("GetObject", mock.Anything, "feeds", "edge", mock.Anything).Return(body(strings.Repeat("x", 64)), nil)

	res, err := s.repo.Download(context.Background(), "edge")
	require.NoError(s.T(), err)
	assert.Len(s.T(), res.Data, 64)
}

func (s *RepositoryTestSuite) TestGet_StripsBucketPrefix() {
	s.mockAPI.On("GetObject", mock.Anything, "feeds", "portfolio.csv", mock.Anything).Return(body("csv"), nil)

	data, err := s.repo.Get(context.Background(), "feeds/portfolio.csv")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "csv", string(data))
}

func (s *RepositoryTestSuite) TestExists_True() {
	s.mockAPI.On("StatObject", mock.Anything, "feeds", "key", mock.Anything).Return(minio.ObjectInfo{Key: "key"}, nil)
	exists, err := s.repo.Exists(context.Background(), "key")
	assert.NoError(s.T(), err)
	assert.True(s.T(), exists)
}

func (s *RepositoryTestSuite) TestExists_False() {
	s.mockAPI.On("StatObject", mock.Anything, "feeds", "key", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})
	exists, err := s.repo.Exists(context.Background(), "key")
	assert.NoError(s.T(), err)
	assert.False(s.T(), exists)
}

func (s *RepositoryTestSuite) TestGetMetadata() {
	s.mockAPI.On("StatObject", mock.Anything, "feeds", "key", mock.Anything).
		Return(minio.ObjectInfo{Key: "key", Size: 12, ContentType: "text/csv", ETag: "e"}, nil)
	meta, err := s.repo.GetMetadata(context.Background(), "key")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(12), meta.Size)
	assert.Equal(s.T(), "text/csv", meta.ContentType)
}

func (s *RepositoryTestSuite) TestList_RespectsMaxKeys() {
	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "obj1", Size: 100}
	ch <- minio.ObjectInfo{Key: "obj2", Size: 200}
	ch <- minio.ObjectInfo{Key: "obj3", Size: 300}
	close(ch)
	s.mockAPI.On("ListObjects", mock.Anything, "feeds", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	res, err := s.repo.List(context.Background(), "", 2)
	require.NoError(s.T(), err)
	require.Len(s.T(), res, 2)
	assert.Equal(s.T(), "obj1", res[0].ObjectKey)
}

func (s *RepositoryTestSuite) TestList_PropagatesError() {
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Err: errors.New("access denied")}
	close(ch)
	s.mockAPI.On("ListObjects", mock.Anything, "feeds", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	_, err := s.repo.List(context.Background(), "geo/", 0)
	assert.Error(s.T(), err)
}

func (s *RepositoryTestSuite) TestDelete_Success() {
	s.mockAPI.On("RemoveObject", mock.Anything, "feeds", "key", mock.Anything).Return(nil)
	assert.NoError(s.T(), s.repo.Delete(context.Background(), "key"))
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

//Personal.AI order the ending
