package objstore

import (
	"io"
	"os"
	"time"
)

// LocalBackend serves artifacts from the local filesystem. It is always
// compiled in and is the default for a plain filesystem repo root.
type LocalBackend struct{}

func NewLocalBackend() *LocalBackend { return &LocalBackend{} }

func (*LocalBackend) Stat(path string) (time.Time, int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, 0, err
	}
	return fi.ModTime(), fi.Size(), nil
}

func (*LocalBackend) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}
