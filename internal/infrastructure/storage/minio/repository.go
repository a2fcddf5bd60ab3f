package minio

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrObjectTooLarge = errors.New(errors.ErrCodeValidation, "object exceeds size limit")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid request")
)

// ObjectRepository reads and writes whole objects in the configured bucket.
type ObjectRepository interface {
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)
	Download(ctx context.Context, objectKey string) (*DownloadResult, error)
	Get(ctx context.Context, objectKey string) ([]byte, error)
	Exists(ctx context.Context, objectKey string) (bool, error)
	GetMetadata(ctx context.Context, objectKey string) (*ObjectMetadata, error)
	List(ctx context.Context, prefix string, maxKeys int) ([]*ObjectMetadata, error)
	Delete(ctx context.Context, objectKey string) error
}

type UploadRequest struct {
	ObjectKey   string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

type DownloadResult struct {
	Data []byte
	Size int64
}

type ObjectMetadata struct {
	Bucket       string
	ObjectKey    string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
	Metadata     map[string]string
}

type minioRepository struct {
	client  *MinIOClient
	logger  logging.Logger
	maxSize int64
}

func NewMinIORepository(client *MinIOClient, log logging.Logger) ObjectRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &minioRepository{
		client:  client,
		logger:  log,
		maxSize: client.config.MaxObjectSize,
	}
}

func (r *minioRepository) bucket() string { return r.client.config.Bucket }

func (r *minioRepository) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if req == nil || req.ObjectKey == "" {
		return nil, ErrInvalidRequest
	}
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	contentType := req.ContentType
	if contentType == "" && len(req.Data) > 0 {
		contentType = http.DetectContentType(req.Data[:min(512, len(req.Data))])
	}

	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: req.Metadata,
	}
	info, err := r.client.GetClient().PutObject(ctx, r.bucket(), req.ObjectKey, bytes.NewReader(req.Data), int64(len(req.Data)), opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "upload failed")
	}
	r.logger.Debug("object uploaded", logging.String("key", req.ObjectKey), logging.Int64("size", info.Size))
	return &UploadResult{
		Bucket:     r.bucket(),
		ObjectKey:  req.ObjectKey,
		ETag:       info.ETag,
		Size:       info.Size,
		UploadedAt: time.Now(),
	}, nil
}

func (r *minioRepository) Download(ctx context.Context, objectKey string) (*DownloadResult, error) {
	if objectKey == "" {
		return nil, ErrInvalidRequest
	}
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	obj, err := r.client.GetClient().GetObject(ctx, r.bucket(), objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, r.mapError(err, objectKey)
	}
	defer obj.Close()

	// One byte past the limit distinguishes "exactly at limit" from "over".
	data, err := io.ReadAll(io.LimitReader(obj, r.maxSize+1))
	if err != nil {
		return nil, r.mapError(err, objectKey)
	}
	if int64(len(data)) > r.maxSize {
		return nil, ErrObjectTooLarge
	}
	return &DownloadResult{Data: data, Size: int64(len(data))}, nil
}

// Get returns the object body. A key of the form "bucket/key" naming the
// configured bucket is accepted and stripped.
func (r *minioRepository) Get(ctx context.Context, objectKey string) ([]byte, error) {
	objectKey = strings.TrimPrefix(objectKey, r.bucket()+"/")
	res, err := r.Download(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (r *minioRepository) Exists(ctx context.Context, objectKey string) (bool, error) {
	_, err := r.client.GetClient().StatObject(ctx, r.bucket(), objectKey, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *minioRepository) GetMetadata(ctx context.Context, objectKey string) (*ObjectMetadata, error) {
	info, err := r.client.GetClient().StatObject(ctx, r.bucket(), objectKey, minio.StatObjectOptions{})
	if err != nil {
		return nil, r.mapError(err, objectKey)
	}
	return &ObjectMetadata{
		Bucket: r.bucket(), ObjectKey: objectKey, Size: info.Size, ContentType: info.ContentType,
		ETag: info.ETag, LastModified: info.LastModified, Metadata: info.UserMetadata,
	}, nil
}

func (r *minioRepository) List(ctx context.Context, prefix string, maxKeys int) ([]*ObjectMetadata, error) {
	if maxKeys <= 0 {
		maxKeys = 1000
	}
	ch := r.client.GetClient().ListObjects(ctx, r.bucket(), minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   maxKeys,
	})
	var objects []*ObjectMetadata
	for obj := range ch {
		if obj.Err != nil {
			return nil, obj.Err
		}
		objects = append(objects, &ObjectMetadata{
			Bucket: r.bucket(), ObjectKey: obj.Key, Size: obj.Size, LastModified: obj.LastModified,
		})
		if len(objects) >= maxKeys {
			break
		}
	}
	return objects, nil
}

func (r *minioRepository) Delete(ctx context.Context, objectKey string) error {
	return r.client.GetClient().RemoveObject(ctx, r.bucket(), objectKey, minio.RemoveObjectOptions{})
}

func (r *minioRepository) mapError(err error, objectKey string) error {
	if isNoSuchKey(err) {
		return ErrObjectNotFound.WithDetail("key=" + objectKey)
	}
	return errors.Wrap(err, errors.ErrCodeExternalService, "object read failed")
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

//Personal.AI order the ending
