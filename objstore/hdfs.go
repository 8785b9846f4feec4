//go:build hdfs

package objstore

import (
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/colinmarc/hdfs/v2"
)

type hdfsBackend struct {
	client *hdfs.Client
}

func newHDFSBackend(root string) (Backend, error) {
	u, err := url.Parse(root)
	if err != nil {
		return nil, err
	}
	client, err := hdfs.New(u.Host)
	if err != nil {
		return nil, err
	}
	return &hdfsBackend{client: client}, nil
}

func (b *hdfsBackend) path(p string) string {
	return "/" + strings.TrimPrefix(p, "/")
}

func (b *hdfsBackend) Stat(path string) (time.Time, int64, error) {
	fi, err := b.client.Stat(b.path(path))
	if err != nil {
		return time.Time{}, 0, err
	}
	return fi.ModTime(), fi.Size(), nil
}

func (b *hdfsBackend) Open(path string) (io.ReadCloser, error) {
	return b.client.Open(b.path(path))
}
