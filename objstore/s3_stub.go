//go:build !s3

package objstore

func newS3Backend(string) (Backend, error) { return nil, ErrBackendNotBuilt }
