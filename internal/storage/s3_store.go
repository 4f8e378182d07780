// Package storage keeps publication attachments in S3.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"solifin/internal/attachment"
	"solifin/internal/config"
	"solifin/internal/interfaces"
	"solifin/internal/models"
)

// ObjectAPI is the part of *s3.Client the store uses.
type ObjectAPI interface {
	manager.UploadAPIClient
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Store struct {
	client        ObjectAPI
	uploader      *manager.Uploader
	bucket        string
	publicBaseURL string
}

var _ interfaces.AttachmentStore = (*S3Store)(nil)

func NewS3Store(cfg *config.S3Config) *S3Store {
	return NewS3StoreWithClient(cfg.Client, cfg.Bucket, cfg.PublicBaseURL)
}

func NewS3StoreWithClient(client ObjectAPI, bucket, publicBaseURL string) *S3Store {
	return &S3Store{
		client:        client,
		uploader:      manager.NewUploader(client),
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *S3Store) Put(ctx context.Context, key string, f *attachment.File) (string, error) {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(f.Data),
		ContentType: aws.String(f.MIMEType()),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.publicBaseURL + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ObjectKey names the object holding slot of a publication. A fresh suffix
// keeps replaced files from being served from caches.
func ObjectKey(t models.PublicationType, id, slot, suffix, filename string) string {
	return path.Join(t.Resource(), id, slot+"-"+suffix+strings.ToLower(path.Ext(filename)))
}
