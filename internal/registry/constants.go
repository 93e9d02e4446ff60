package registry

const (
	// CanonicalRemoteURL is the registry used when no remote is given
	CanonicalRemoteURL = "https://github.com/nf-core/modules.git"

	// CanonicalOrgPath is the org_path of the canonical registry
	CanonicalOrgPath = "nf-core"

	// CanonicalDefaultBranch is used for the canonical registry without asking the remote
	CanonicalDefaultBranch = "master"

	// MarkerFile identifies a component directory
	MarkerFile = "main.nf"

	// MetaFile holds a component's metadata
	MetaFile = "meta.yml"

	// CommitDateLayout formats dates returned by CommitInfo
	CommitDateLayout = "2006-01-02"

	// legacySoftwareDir is the pre-2.0 name of the modules directory
	legacySoftwareDir = "software"
)

// DiffFiles are the per-component files compared by FilesIdentical
var DiffFiles = []string{MarkerFile, MetaFile}
