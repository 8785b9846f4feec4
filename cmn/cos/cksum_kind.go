// Package cos provides common low-level types and utilities shared by the
// dumper core and its surrounding packages.
package cos

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// CksumKind is an interned checksum-algorithm name (e.g. "sha256", "md5",
// "xxhash64"). It round-trips through JSON as a plain string.
type CksumKind string

const (
	ChecksumSHA256  CksumKind = "sha256"
	ChecksumMD5     CksumKind = "md5"
	ChecksumXXHash  CksumKind = "xxhash64"
	ChecksumDefault           = ChecksumSHA256
)

func (k CksumKind) MarshalJSON() ([]byte, error) { return jsoniter.Marshal(string(k)) }

func (k *CksumKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := jsoniter.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid checksum kind: %w", err)
	}
	*k = CksumKind(s)
	return nil
}

func (k CksumKind) Valid() bool {
	switch k {
	case ChecksumSHA256, ChecksumMD5, ChecksumXXHash:
		return true
	default:
		return false
	}
}

var ErrUnknownCksumKind = errors.New("unknown checksum kind")
