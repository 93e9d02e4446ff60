package git

import (
	"errors"

	"github.com/go-git/go-git/v5"
)

const (
	// DefaultRemoteName is the name given to the remote a cache is cloned from
	DefaultRemoteName = "origin"
)

var (
	// ErrBranchNotFound is returned when a branch exists neither locally nor as a remote-tracking ref
	ErrBranchNotFound = errors.New("branch not found")

	// ErrNoTrackingBranch is returned when a local branch has no upstream configured
	ErrNoTrackingBranch = errors.New("no remote tracking branch")

	// ErrRevisionNotFound is returned when a revision cannot be resolved to a commit
	ErrRevisionNotFound = errors.New("revision not found")

	// ErrNoRemoteHead is returned when the cache has no origin/HEAD recorded
	ErrNoRemoteHead = errors.New("remote HEAD not recorded")

	// ErrNotFastForward is returned when a branch cannot be fast-forwarded onto its upstream
	ErrNotFastForward = errors.New("not possible to fast-forward")
)

// CloneConfig contains configuration for cloning a repository
type CloneConfig struct {
	// URL is the repository URL to clone
	URL string

	// Directory is where the working copy is created. It must not exist yet.
	Directory string

	// Progress receives remote progress updates (optional)
	Progress ProgressFunc

	// Auth holds optional HTTP basic credentials
	Auth *AuthConfig
}

// AuthConfig contains HTTP basic authentication settings
type AuthConfig struct {
	Username string
	Password string
}

// LogConfig restricts a commit log walk
type LogConfig struct {
	// Path limits the walk to commits touching this slash-separated path (optional)
	Path string

	// MaxCount caps the number of commits returned. Zero means no limit.
	MaxCount int
}

// RepositoryInfo contains information about an on-disk Git repository
type RepositoryInfo struct {
	// Repository is the go-git repository instance
	Repository *git.Repository

	// Path is the working copy directory
	Path string

	// RemoteURL is the URL of the origin remote
	RemoteURL string

	// Branch is the checked out branch, empty when HEAD is detached
	Branch string
}
