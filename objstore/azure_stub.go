//go:build !azure

package objstore

func newAzureBackend(string) (Backend, error) { return nil, ErrBackendNotBuilt }
