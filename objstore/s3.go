//go:build s3

package objstore

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3Backend struct {
	client *s3.Client
	bucket string
	prefix string
}

func newS3Backend(root string) (Backend, error) {
	u, err := url.Parse(root)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, err
	}
	return &s3Backend{
		client: s3.NewFromConfig(cfg),
		bucket: u.Host,
		prefix: strings.TrimPrefix(u.Path, "/"),
	}, nil
}

func (b *s3Backend) key(path string) string {
	return strings.TrimPrefix(path, "/")
}

func (b *s3Backend) Stat(path string) (time.Time, int64, error) {
	out, err := b.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(path)),
	})
	if err != nil {
		return time.Time{}, 0, err
	}
	var size int64
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	var mtime time.Time
	if out.LastModified != nil {
		mtime = *out.LastModified
	}
	return mtime, size, nil
}

func (b *s3Backend) Open(path string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(path)),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}
