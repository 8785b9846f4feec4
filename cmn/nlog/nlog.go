// Package nlog provides a small leveled, buffered, file-rotating logger in
// the style used by the rest of this repository: no external logging
// dependency, line headers carrying severity/time/caller, flushed when the
// caller invokes Flush.
package nlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/velichkov/createrepo-c/cmn/mono"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
	sevCrit
)

var sevChar = [...]byte{sevInfo: 'I', sevWarn: 'W', sevErr: 'E', sevCrit: 'C'}

const maxLineSize = 2 * 1024

type nlog struct {
	mw      sync.Mutex
	w       *bufio.Writer
	file    *os.File
	written int64
	last    int64
}

var (
	nlogs = [4]*nlog{}

	logDir       string
	aisrole      string
	title        string
	toStderr     bool
	alsoToStderr bool

	// MaxSize is the per-file rotation threshold, in bytes.
	MaxSize int64 = 4 * 1024 * 1024

	once sync.Once
)

func initFiles() {
	if logDir == "" {
		logDir = os.TempDir()
	}
	for sev := range nlogs {
		nlogs[sev] = &nlog{}
	}
}

func ensure(sev severity) *nlog {
	once.Do(initFiles)
	nl := nlogs[sev]
	nl.mw.Lock()
	defer nl.mw.Unlock()
	if nl.file != nil {
		return nl
	}
	f, err := os.OpenFile(filepath.Join(logDir, logfname(sevName(sev), time.Now())),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nl
	}
	nl.file = f
	nl.w = bufio.NewWriterSize(f, 32*1024)
	if title != "" {
		nl.w.WriteString(title + "\n")
	}
	return nl
}

func sevName(sev severity) string {
	switch sev {
	case sevWarn:
		return "WARNING"
	case sevErr:
		return "ERROR"
	case sevCrit:
		return "CRITICAL"
	default:
		return "INFO"
	}
}

func sname() string {
	if aisrole != "" {
		return "createrepo-c." + aisrole
	}
	return "createrepo-c"
}

func logfname(tag string, t time.Time) string {
	return fmt.Sprintf("%s.%s.%s.log", sname(), tag, t.Format("20060102-150405"))
}

func log(sev severity, depth int, format string, args ...any) {
	line := format1(sev, depth+1, format, args...)
	if toStderr || alsoToStderr || sev >= sevWarn {
		os.Stderr.WriteString(line)
	}
	if toStderr {
		return
	}
	nl := ensure(sev)
	nl.mw.Lock()
	if nl.w != nil {
		nl.w.WriteString(line)
		nl.written += int64(len(line))
		nl.last = mono.NanoTime()
		if nl.written >= MaxSize {
			rotate(sev, nl)
		}
	}
	nl.mw.Unlock()
}

// under nl.mw
func rotate(sev severity, nl *nlog) {
	nl.w.Flush()
	nl.file.Close()
	f, err := os.OpenFile(filepath.Join(logDir, logfname(sevName(sev), time.Now())),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	nl.file = f
	nl.w = bufio.NewWriterSize(f, 32*1024)
	nl.written = 0
}

func format1(sev severity, depth int, format string, args ...any) string {
	var b strings.Builder
	b.Grow(maxLineSize)
	b.WriteByte(sevChar[sev])
	b.WriteByte(' ')
	b.WriteString(time.Now().Format("15:04:05.000000"))
	b.WriteByte(' ')
	if _, fn, ln, ok := runtime.Caller(depth + 2); ok {
		if idx := strings.LastIndexByte(fn, filepath.Separator); idx >= 0 {
			fn = fn[idx+1:]
		}
		b.WriteString(fn)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(ln))
		b.WriteByte(' ')
	}
	if format == "" {
		fmt.Fprintln(&b, args...)
	} else {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}
	return b.String()
}

func flushOne(sev severity) {
	nl := nlogs[sev]
	nl.mw.Lock()
	if nl.w != nil {
		nl.w.Flush()
	}
	nl.mw.Unlock()
}

func syncOne(sev severity, exit bool) {
	nl := nlogs[sev]
	nl.mw.Lock()
	if nl.w != nil {
		nl.w.Flush()
		if exit && nl.file != nil {
			nl.file.Sync()
			nl.file.Close()
		}
	}
	nl.mw.Unlock()
}
