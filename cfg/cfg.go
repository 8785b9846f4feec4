// Package cfg loads the dumper's process configuration from a JSON file,
// matching the teacher's own jsoniter.ConfigFastest convention (see
// dsort/dsort.go).
package cfg

import (
	"os"

	"github.com/pkg/errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/velichkov/createrepo-c/cmn/cos"
)

var js = jsoniter.ConfigFastest

// Config is the on-disk process configuration, separate from core.Config:
// this is what the CLI front end loads and translates into a core.Config
// plus the Extractor/Sink/Cache wiring core.Config needs live objects for.
type Config struct {
	RepoRoot       string        `json:"repo_root"`
	ChecksumKind   cos.CksumKind `json:"checksum_kind"`
	ChangelogLimit int           `json:"changelog_limit"`
	LocationBase   string        `json:"location_base,omitempty"`
	SkipStat       bool          `json:"skip_stat"`
	PoolSize       int           `json:"pool_size"`

	ChecksumCacheDir string `json:"checksum_cache_dir,omitempty"`

	PreviousCachePath string `json:"previous_cache_path,omitempty"`
	PreviousCacheURL  string `json:"previous_cache_url,omitempty"`
	ManifestJWT       string `json:"manifest_jwt,omitempty"`
	ManifestJWTSecret string `json:"manifest_jwt_secret,omitempty"`

	OutputDir  string `json:"output_dir"`
	DBMirror   bool   `json:"db_mirror"`
	MetricsTCP string `json:"metrics_listen_addr,omitempty"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		ChecksumKind:   cos.ChecksumDefault,
		ChangelogLimit: 10,
		PoolSize:       4,
		OutputDir:      "repodata",
	}
}

// Load reads and parses a JSON config file, starting from Default() so
// unset fields keep their defaults.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cfg: read %s", path)
	}
	if err := js.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "cfg: parse %s", path)
	}
	if !c.ChecksumKind.Valid() {
		return nil, errors.Errorf("cfg: %s: %v", c.ChecksumKind, cos.ErrUnknownCksumKind)
	}
	return c, nil
}
