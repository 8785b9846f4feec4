package objstore

import "errors"

// ErrBackendNotBuilt is returned when a remote repo-root scheme is given to
// a binary built without the matching build tag (s3, azure, gcp, hdfs).
var ErrBackendNotBuilt = errors.New("objstore: remote backend not built into this binary")
