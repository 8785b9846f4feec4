//go:build gcp

package objstore

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

type gcpBackend struct {
	client *storage.Client
	bucket string
}

func newGCPBackend(root string) (Backend, error) {
	u, err := url.Parse(root)
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(context.Background())
	if err != nil {
		return nil, err
	}
	return &gcpBackend{client: client, bucket: u.Host}, nil
}

func (b *gcpBackend) object(path string) *storage.ObjectHandle {
	return b.client.Bucket(b.bucket).Object(strings.TrimPrefix(path, "/"))
}

func (b *gcpBackend) Stat(path string) (time.Time, int64, error) {
	attrs, err := b.object(path).Attrs(context.Background())
	if err != nil {
		return time.Time{}, 0, err
	}
	return attrs.Updated, attrs.Size, nil
}

func (b *gcpBackend) Open(path string) (io.ReadCloser, error) {
	return b.object(path).NewReader(context.Background())
}
