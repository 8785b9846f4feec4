package core

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/velichkov/createrepo-c/objstore"
)

// parseDescriptor and headerByteRange are the default artifact-header
// reader. spec.md §1 explicitly places "parsing of individual artifact
// headers" out of the core's scope, treating it as a pure function
// producing the entity in §3; this file is that pure function's default,
// generic implementation so the repository is runnable end to end.
// ArtifactExtractor's parseTables and headerRange call these two functions
// directly; ArtifactExtractor has no field or option for substituting a
// different reader.
//
// The format recognized here: a magic line "CRPKG1", then "key: value"
// lines up to a blank line (the descriptor header), then up to
// changelogLimit "author|unix_date|text" changelog lines, then a blank
// line, then the artifact payload. Everything before the payload is the
// "header section" headerByteRange reports.

const magicLine = "CRPKG1"

func parseDescriptor(backend objstore.Backend, path string, changelogLimit int) (*Descriptor, error) {
	r, err := backend.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	d := &Descriptor{Arch: "noarch"}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	if !sc.Scan() {
		return d, nil // empty/unparseable artifact: return a bare descriptor
	}
	if strings.TrimSpace(sc.Text()) != magicLine {
		// not our format (or a binary artifact with no descriptor header):
		// fall back to deriving what little we can from the filename.
		d.Summary = filepath.Base(path)
		return d, nil
	}

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			break
		}
		k, v, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		applyDescriptorField(d, k, v)
	}

	for len(d.ChangelogEntries) < changelogLimit && sc.Scan() {
		line := sc.Text()
		if line == "" {
			break
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			continue
		}
		d.ChangelogEntries = append(d.ChangelogEntries, ChangelogEntry{
			Author: parts[0],
			Date:   parseInt64(parts[1]),
			Text:   parts[2],
		})
	}

	if d.Summary == "" {
		d.Summary = filepath.Base(path)
	}
	return d, nil
}

func applyDescriptorField(d *Descriptor, key, val string) {
	switch key {
	case "Summary":
		d.Summary = val
	case "Description":
		d.Description = val
	case "URL":
		d.URL = val
	case "Vendor":
		d.Vendor = val
	case "License":
		d.License = val
	case "Group":
		d.Group = val
	case "Arch":
		d.Arch = val
	case "Epoch":
		d.Epoch = val
	case "Version":
		d.Version = val
	case "Release":
		d.Release = val
	case "BuildTime":
		d.BuildTime = parseInt64(val)
	case "Packager":
		d.PackagerName = val
	case "SourceRPM":
		d.SourceRPM = val
	}
}

func parseInt64(s string) int64 {
	var n int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return n
		}
		n = n*10 + int64(c-'0')
	}
	return n
}

// headerByteRange reports the byte offsets [0, headerEnd) occupied by the
// descriptor header this package just parsed: everything up to (and
// including) the blank line that terminates the changelog section, or the
// whole file if no recognized header was found. Every line is counted with
// one trailing newline byte, so for a file that does not end in a newline
// the whole-file end is one past the file size.
func headerByteRange(backend objstore.Backend, path string) (start, end int64, err error) {
	r, err := backend.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer r.Close()

	var offset int64
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	blanks := 0
	first, recognized := true, false
	for sc.Scan() {
		offset += int64(len(sc.Bytes())) + 1
		if first {
			first = false
			recognized = strings.TrimSpace(sc.Text()) == magicLine
			continue
		}
		if recognized && sc.Text() == "" {
			blanks++
			if blanks == 2 {
				return 0, offset, nil
			}
		}
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return 0, 0, err
	}
	return 0, offset, nil
}
