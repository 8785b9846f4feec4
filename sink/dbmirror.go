package sink

import (
	"fmt"

	"github.com/tidwall/buntdb"

	"github.com/velichkov/createrepo-c/core"
)

// DBMirror is the concrete realization of spec.md §3/§6's "tabular database
// file": three independent buntdb.DB instances, one per stream, matching
// OrderedSink's per-stream independence. Each Insert is a single db.Update
// transaction keyed by pkg_id, with a secondary index on location_href.
type DBMirror struct {
	dbs     [3]*buntdb.DB
	project func(pkg *core.ParsedPackage) string
}

// OpenDBMirror opens (or creates) the three backing database files, one per
// stream, and installs a secondary index on location_href in each. project
// formats pkg into the stream-specific record value stored under its
// pkg_id key; it must produce a JSON object with a top-level
// "location_href" field for the secondary index to see it.
func OpenDBMirror(paths [3]string, project func(*core.ParsedPackage) string) (*DBMirror, error) {
	m := &DBMirror{project: project}
	for i, p := range paths {
		db, err := buntdb.Open(p)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("dbmirror: open %s: %w", p, err)
		}
		if err := db.CreateIndex("location_href", "*", buntdb.IndexJSON("location_href")); err != nil {
			db.Close()
			m.Close()
			return nil, fmt.Errorf("dbmirror: index %s: %w", p, err)
		}
		m.dbs[i] = db
	}
	return m, nil
}

// ForStream returns a core.DatabaseSink bound to one of the three backing
// databases.
func (m *DBMirror) ForStream(idx core.Stream) core.DatabaseSink {
	return &streamMirror{db: m.dbs[idx], project: m.project}
}

func (m *DBMirror) Close() {
	for _, db := range m.dbs {
		if db != nil {
			db.Close()
		}
	}
}

type streamMirror struct {
	db      *buntdb.DB
	project func(*core.ParsedPackage) string
}

func (s *streamMirror) Insert(pkg *core.ParsedPackage) error {
	value := s.project(pkg)
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(pkg.PkgID, value, nil)
		return err
	})
}
