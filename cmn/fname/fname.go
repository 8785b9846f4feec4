// Package fname contains filename and directory-name constants shared
// across the dumper's packages.
package fname

const (
	// repodata output tree, relative to the repository root
	RepodataDir  = "repodata"
	PrimaryXML   = "primary.xml"
	FilelistsXML = "filelists.xml"
	OtherXML     = "other.xml"
	RepomdXML    = "repomd.xml"
	PrimaryDB    = "primary.sqlite"
	FilelistsDB  = "filelists.sqlite"
	OtherDB      = "other.sqlite"

	// previous-run cache, kept next to the repodata tree
	CacheBundle   = ".repodata_cache.bundle"
	CacheManifest = ".repodata_cache.manifest.json"

	// checksum memoization index, kept under --checksum-cache-dir
	ChecksumCacheIndex = "checksums.idx"

	// process config
	GlobalConfig = ".createrepo-c.conf"
)
