//go:build !hdfs

package objstore

func newHDFSBackend(string) (Backend, error) { return nil, ErrBackendNotBuilt }
