package minio

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/krancour/accounts/apiserver/internal/accounts"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// objectAPI is the subset of *minio.Client used by avatarStore.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(
		ctx context.Context,
		bucketName string,
		opts minio.MakeBucketOptions,
	) error
	PutObject(
		ctx context.Context,
		bucketName string,
		objectName string,
		reader io.Reader,
		objectSize int64,
		opts minio.PutObjectOptions,
	) (minio.UploadInfo, error)
}

// avatarStore is a MinIO-based implementation of the accounts.AvatarStore
// interface.
type avatarStore struct {
	api       objectAPI
	bucket    string
	publicURL string
}

// NewAvatarStore returns a MinIO-based implementation of the
// accounts.AvatarStore interface. The configured bucket is created if it does
// not already exist.
func NewAvatarStore(
	ctx context.Context,
	client *minio.Client,
	config Config,
) (accounts.AvatarStore, error) {
	store, err := newAvatarStore(ctx, client, config)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func newAvatarStore(
	ctx context.Context,
	api objectAPI,
	config Config,
) (*avatarStore, error) {
	a := &avatarStore{
		api:       api,
		bucket:    config.Bucket,
		publicURL: strings.TrimSuffix(config.publicURL(), "/"),
	}
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *avatarStore) ensureBucket(ctx context.Context) error {
	exists, err := a.api.BucketExists(ctx, a.bucket)
	if err != nil {
		return errors.Wrapf(err, "error checking for bucket %q", a.bucket)
	}
	if exists {
		return nil
	}
	if err = a.api.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrapf(err, "error creating bucket %q", a.bucket)
	}
	return nil
}

func (a *avatarStore) Put(
	ctx context.Context,
	userID string,
	avatar accounts.AvatarUpload,
) (string, error) {
	key := objectKey(userID, avatar.Filename)
	contentType := avatar.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := avatar.Size
	if size == 0 {
		size = -1
	}
	if _, err := a.api.PutObject(
		ctx,
		a.bucket,
		key,
		avatar.Content,
		size,
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	); err != nil {
		return "", errors.Wrapf(err, "error uploading object %q", key)
	}
	return fmt.Sprintf("%s/%s/%s", a.publicURL, a.bucket, key), nil
}

// objectKey derives a collision-free key for an avatar. Subject identifiers
// often contain "|", which is replaced.
func objectKey(userID string, filename string) string {
	return path.Join(
		"avatars",
		strings.NewReplacer("|", "-", "/", "-").Replace(userID),
		uuid.NewV4().String()+strings.ToLower(path.Ext(filename)),
	)
}
