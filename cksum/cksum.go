// Package cksum computes artifact content checksums and memoizes them by
// file identity (path, mtime, size) across runs.
package cksum

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/OneOfOne/xxhash"

	"github.com/velichkov/createrepo-c/cmn/cos"
)

// NewHash returns the hash.Hash implementing kind, or an error if kind is
// not one this dumper supports.
func NewHash(kind cos.CksumKind) (hash.Hash, error) {
	switch kind {
	case cos.ChecksumSHA256:
		return sha256.New(), nil
	case cos.ChecksumMD5:
		return md5.New(), nil
	case cos.ChecksumXXHash:
		return xxhash.New64(), nil
	default:
		return nil, cos.ErrUnknownCksumKind
	}
}

// ChecksumFile hashes everything read from r with kind and returns the
// digest as a lowercase hex string.
func ChecksumFile(r io.Reader, kind cos.CksumKind) (string, error) {
	h, err := NewHash(kind)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
