//go:build debug

// Package debug provides build-tag gated assertions and invariant checks.
package debug

import (
	"fmt"
	"net/http"
	"sync"
)

func ON() bool { return true }

func Infof(format string, args ...any) { fmt.Printf("[debug] "+format+"\n", args...) }

func Func(f func()) { f() }

func Assert(cond bool, args ...any) {
	if !cond {
		panic(fmt.Sprint("assertion failed", fmt.Sprint(args...)))
	}
}

func AssertFunc(f func() bool, args ...any) { Assert(f(), args...) }
func AssertNoErr(err error) {
	if err != nil {
		panic("assertion failed: " + err.Error())
	}
}
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}

func AssertNotPstr(v any) { Assert(v != nil, "unexpected nil pointer") }
func FailTypeCast(v any)  { panic(fmt.Sprintf("unexpected type %T", v)) }

// AssertMutexLocked et al. are best-effort: Go mutexes do not expose
// ownership, so these only catch the "definitely unlocked" case.
func AssertMutexLocked(m *sync.Mutex) {
	locked := !m.TryLock()
	Assert(locked, "mutex not locked")
	if locked {
		m.Unlock()
	}
}

func AssertRWMutexLocked(m *sync.RWMutex) {
	locked := !m.TryLock()
	Assert(locked, "rwmutex not locked")
	if locked {
		m.Unlock()
	}
}

func AssertRWMutexRLocked(m *sync.RWMutex) {
	locked := !m.TryRLock()
	Assert(locked, "rwmutex not r-locked")
	if locked {
		m.RUnlock()
	}
}

func Handlers() map[string]http.HandlerFunc { return nil }
