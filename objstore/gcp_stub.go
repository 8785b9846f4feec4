//go:build !gcp

package objstore

func newGCPBackend(string) (Backend, error) { return nil, ErrBackendNotBuilt }
