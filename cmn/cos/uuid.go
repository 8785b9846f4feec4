// Package cos provides common low-level types and utilities shared by the
// dumper core and its surrounding packages.
package cos

import (
	"sync/atomic"

	"github.com/teris-io/shortid"
)

// Alphabet for generating run IDs, similar to shortid.DEFAULT_ABC.
const runIDABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

const (
	LenShortID = 9  // run-ID length, as per https://github.com/teris-io/shortid#id-length
	tooLongID  = 32 // upper bound for any generated identifier
)

var (
	sid  *shortid.Shortid
	rtie atomic.Uint32
)

// InitRunID seeds the run-ID generator; call once at process start.
func InitRunID(seed uint64) {
	sid = shortid.MustNew(4 /*worker*/, runIDABC, seed)
}

// GenRunID returns a short, URL-safe identifier that correlates one dumper
// run's log lines, XML header comments, and metrics.
func GenRunID() (id string) {
	var h, t string
	id = sid.MustGenerate()
	if !isAlpha(id[0]) {
		tie := int(rtie.Add(1))
		h = string(rune('A' + tie%26))
	}
	c := id[len(id)-1]
	if c == '-' || c == '_' {
		tie := int(rtie.Add(1))
		t = string(rune('a' + tie%26))
	}
	return h + id + t
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsAlphaNice reports whether s is a valid identifier: letters, digits,
// dashes, and underscores, not starting or ending in a dash/underscore.
func IsAlphaNice(s string) bool {
	l := len(s)
	if l == 0 || l > tooLongID {
		return false
	}
	for i := 0; i < l; i++ {
		c := s[i]
		if isAlpha(c) || (c >= '0' && c <= '9') {
			continue
		}
		if c != '-' && c != '_' {
			return false
		}
		if i == 0 || i == l-1 {
			return false
		}
	}
	return true
}
