//go:build azure

package objstore

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

type azureBackend struct {
	client    *azblob.Client
	container string
}

func newAzureBackend(root string) (Backend, error) {
	u, err := url.Parse(root)
	if err != nil {
		return nil, err
	}
	client, err := azblob.NewClientWithNoCredential(u.Host, nil)
	if err != nil {
		return nil, err
	}
	return &azureBackend{client: client, container: strings.Trim(u.Path, "/")}, nil
}

func (b *azureBackend) blobName(path string) string {
	return strings.TrimPrefix(path, "/")
}

func (b *azureBackend) Stat(path string) (time.Time, int64, error) {
	props, err := b.client.ServiceClient().NewContainerClient(b.container).
		NewBlobClient(b.blobName(path)).GetProperties(context.Background(), nil)
	if err != nil {
		return time.Time{}, 0, err
	}
	var size int64
	if props.ContentLength != nil {
		size = *props.ContentLength
	}
	var mtime time.Time
	if props.LastModified != nil {
		mtime = *props.LastModified
	}
	return mtime, size, nil
}

func (b *azureBackend) Open(path string) (io.ReadCloser, error) {
	resp, err := b.client.DownloadStream(context.Background(), b.container, b.blobName(path), nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
