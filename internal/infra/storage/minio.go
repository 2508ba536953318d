package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archive mirrors generated reports into a MinIO bucket. The local copy in
// the report store stays authoritative; the bucket is an off-box backup.
type Archive struct {
	client     *minio.Client
	bucketName string
	region     string
}

// NewArchive connects to MinIO and makes sure the bucket exists.
func NewArchive(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Archive, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Archive{client: cli, bucketName: bucket, region: region}, nil
}

// Archive uploads the document under key and returns the object URL. The
// local file is left in place.
func (a *Archive) Archive(ctx context.Context, localPath, key string) (string, error) {
	contentType := "application/octet-stream"
	switch filepath.Ext(localPath) {
	case ".docx":
		contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pdf":
		contentType = "application/pdf"
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	}

	_, err := a.client.FPutObject(ctx, a.bucketName, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://%s/%s/%s", a.client.EndpointURL().Host, a.bucketName, key)
	return url, nil
}
