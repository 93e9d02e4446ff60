package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
)

const (
	// DefaultMaxAttempts is how many times network operations are tried before giving up
	DefaultMaxAttempts = 3

	retryInitialInterval = 250 * time.Millisecond
)

// Client defines the interface for Git operations on an on-disk working copy
//
//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client
type Client interface {
	// Clone clones a repository into config.Directory
	Clone(ctx context.Context, config *CloneConfig) (*RepositoryInfo, error)

	// Open opens an existing working copy
	Open(path string) (*RepositoryInfo, error)

	// Fetch updates the remote-tracking refs of the origin remote without merging
	Fetch(ctx context.Context, repoInfo *RepositoryInfo, progress ProgressFunc) error

	// ListRemoteBranches returns the branch names advertised by a remote
	ListRemoteBranches(ctx context.Context, url string) ([]string, error)

	// DefaultBranch returns the branch the recorded origin/HEAD points to, without network access
	DefaultBranch(repoInfo *RepositoryInfo) (string, error)

	// CheckoutBranch checks out a branch, creating it from origin when only a remote-tracking ref exists
	CheckoutBranch(repoInfo *RepositoryInfo, branch string) error

	// CheckoutRevision detaches HEAD at the commit a revision resolves to and returns its hash
	CheckoutRevision(repoInfo *RepositoryInfo, revision string) (string, error)

	// FastForward moves a branch onto its remote tracking branch
	FastForward(repoInfo *RepositoryInfo, branch string) error

	// Log walks history from HEAD, newest first
	Log(repoInfo *RepositoryInfo, config *LogConfig) ([]*object.Commit, error)

	// HeadRef returns the checked out branch name, or the commit hash when HEAD is detached
	HeadRef(repoInfo *RepositoryInfo) (string, error)
}

// ClientOption configures the default client
type ClientOption func(*defaultGitClient)

// WithMaxAttempts sets how many times clone, fetch and ls-remote are attempted
func WithMaxAttempts(attempts uint) ClientOption {
	return func(c *defaultGitClient) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// WithAuth sets HTTP basic credentials used for every remote operation
func WithAuth(auth *AuthConfig) ClientOption {
	return func(c *defaultGitClient) {
		c.auth = auth
	}
}

// defaultGitClient implements Client using go-git
type defaultGitClient struct {
	maxAttempts uint
	auth        *AuthConfig
}

// NewDefaultGitClient creates a new defaultGitClient
func NewDefaultGitClient(opts ...ClientOption) Client {
	c := &defaultGitClient{maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clone clones a repository with the given configuration
func (c *defaultGitClient) Clone(ctx context.Context, config *CloneConfig) (*RepositoryInfo, error) {
	if config == nil || config.URL == "" {
		return nil, fmt.Errorf("repository URL is required")
	}
	if config.Directory == "" {
		return nil, fmt.Errorf("clone directory is required")
	}

	cloneOptions := &git.CloneOptions{
		URL:        config.URL,
		RemoteName: DefaultRemoteName,
		Progress:   NewProgressWriter(config.Progress),
	}

	auth := config.Auth
	if auth == nil {
		auth = c.auth
	}
	if auth != nil && auth.Username != "" {
		cloneOptions.Auth = &githttp.BasicAuth{
			Username: auth.Username,
			Password: auth.Password,
		}
		slog.Debug("Using Git HTTP Basic authentication", "username", auth.Username)
	}

	_, statErr := os.Stat(config.Directory)
	preExisting := statErr == nil

	repo, err := retry(ctx, c.maxAttempts, func() (*git.Repository, error) {
		repo, err := git.PlainCloneContext(ctx, config.Directory, false, cloneOptions)
		if err != nil {
			if !preExisting {
				_ = os.RemoveAll(config.Directory)
			}
			slog.Debug("Git clone attempt failed", "repository", config.URL, "error", err)
			return nil, permanentIfFatal(err)
		}
		return repo, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}

	repoInfo := &RepositoryInfo{
		Repository: repo,
		Path:       config.Directory,
		RemoteURL:  config.URL,
	}

	if err := updateRepositoryInfo(repoInfo); err != nil {
		return nil, fmt.Errorf("failed to update repository info: %w", err)
	}

	// A fresh clone checks out the remote's HEAD branch; record it like git clone does
	if repoInfo.Branch != "" {
		if err := setRemoteHead(repo, repoInfo.Branch); err != nil {
			return nil, err
		}
	}

	return repoInfo, nil
}

// Open opens an existing working copy
func (*defaultGitClient) Open(path string) (*RepositoryInfo, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}

	repoInfo := &RepositoryInfo{
		Repository: repo,
		Path:       path,
	}
	if remote, err := repo.Remote(DefaultRemoteName); err == nil && len(remote.Config().URLs) > 0 {
		repoInfo.RemoteURL = remote.Config().URLs[0]
	}

	// An unborn HEAD is not an error here; callers find out when they check out a branch
	_ = updateRepositoryInfo(repoInfo)

	return repoInfo, nil
}

// Fetch updates the remote-tracking refs of origin
func (c *defaultGitClient) Fetch(ctx context.Context, repoInfo *RepositoryInfo, progress ProgressFunc) error {
	if repoInfo == nil || repoInfo.Repository == nil {
		return fmt.Errorf("repository is nil")
	}

	fetchOptions := &git.FetchOptions{
		RemoteName: DefaultRemoteName,
		Progress:   NewProgressWriter(progress),
	}
	if c.auth != nil && c.auth.Username != "" {
		fetchOptions.Auth = &githttp.BasicAuth{Username: c.auth.Username, Password: c.auth.Password}
	}

	_, err := retry(ctx, c.maxAttempts, func() (struct{}, error) {
		err := repoInfo.Repository.FetchContext(ctx, fetchOptions)
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			slog.Debug("Git fetch attempt failed", "path", repoInfo.Path, "error", err)
			return struct{}{}, permanentIfFatal(err)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("failed to fetch from %s: %w", DefaultRemoteName, err)
	}

	// Caches cloned without origin/HEAD learn it while we are online anyway
	if _, err := remoteHead(repoInfo.Repository); errors.Is(err, ErrNoRemoteHead) {
		if err := c.recordRemoteHead(ctx, repoInfo.Repository); err != nil {
			slog.Debug("Could not record remote HEAD", "path", repoInfo.Path, "error", err)
		}
	}
	return nil
}

// ListRemoteBranches returns the branch names advertised by the remote at url
func (c *defaultGitClient) ListRemoteBranches(ctx context.Context, url string) ([]string, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: DefaultRemoteName,
		URLs: []string{url},
	})

	refs, err := c.listRemote(ctx, remote)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var branches []string
	for _, ref := range refs {
		if !ref.Name().IsBranch() {
			continue
		}
		name := ref.Name().Short()
		if !seen[name] {
			seen[name] = true
			branches = append(branches, name)
		}
	}
	sort.Strings(branches)
	return branches, nil
}

// DefaultBranch returns the branch origin/HEAD points to
func (*defaultGitClient) DefaultBranch(repoInfo *RepositoryInfo) (string, error) {
	if repoInfo == nil || repoInfo.Repository == nil {
		return "", fmt.Errorf("repository is nil")
	}
	return remoteHead(repoInfo.Repository)
}

func remoteHead(repo *git.Repository) (string, error) {
	ref, err := repo.Reference(plumbing.NewRemoteHEADReferenceName(DefaultRemoteName), false)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", ErrNoRemoteHead
		}
		return "", fmt.Errorf("failed to read %s/HEAD: %w", DefaultRemoteName, err)
	}
	if ref.Type() != plumbing.SymbolicReference {
		return "", ErrNoRemoteHead
	}
	return strings.TrimPrefix(ref.Target().Short(), DefaultRemoteName+"/"), nil
}

// setRemoteHead points refs/remotes/origin/HEAD at origin/<branch>
func setRemoteHead(repo *git.Repository, branch string) error {
	ref := plumbing.NewSymbolicReference(
		plumbing.NewRemoteHEADReferenceName(DefaultRemoteName),
		plumbing.NewRemoteReferenceName(DefaultRemoteName, branch),
	)
	if err := repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("failed to record %s/HEAD: %w", DefaultRemoteName, err)
	}
	return nil
}

// recordRemoteHead asks the remote which branch HEAD points to and records it
func (c *defaultGitClient) recordRemoteHead(ctx context.Context, repo *git.Repository) error {
	remote, err := repo.Remote(DefaultRemoteName)
	if err != nil {
		return fmt.Errorf("failed to get remote %s: %w", DefaultRemoteName, err)
	}
	refs, err := c.listRemote(ctx, remote)
	if err != nil {
		return err
	}
	branch, err := defaultBranchFromRefs(refs)
	if err != nil {
		return err
	}
	return setRemoteHead(repo, branch)
}

// CheckoutBranch checks out branch, creating a local tracking branch from origin if needed
func (*defaultGitClient) CheckoutBranch(repoInfo *RepositoryInfo, branch string) error {
	if repoInfo == nil || repoInfo.Repository == nil {
		return fmt.Errorf("repository is nil")
	}
	repo := repoInfo.Repository

	branchRef := plumbing.NewBranchReferenceName(branch)
	if _, err := repo.Reference(branchRef, false); err != nil {
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("failed to look up branch %s: %w", branch, err)
		}
		if err := createTrackingBranch(repo, branch); err != nil {
			return err
		}
	}

	workTree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := workTree.Checkout(&git.CheckoutOptions{Branch: branchRef, Force: true}); err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branch, err)
	}

	repoInfo.Branch = branch
	return nil
}

// CheckoutRevision detaches HEAD at revision
func (*defaultGitClient) CheckoutRevision(repoInfo *RepositoryInfo, revision string) (string, error) {
	if repoInfo == nil || repoInfo.Repository == nil {
		return "", fmt.Errorf("repository is nil")
	}
	repo := repoInfo.Repository

	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRevisionNotFound, revision, err)
	}

	workTree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := workTree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", fmt.Errorf("failed to checkout commit %s: %w", revision, err)
	}

	repoInfo.Branch = ""
	return hash.String(), nil
}

// FastForward moves branch onto its configured upstream
func (*defaultGitClient) FastForward(repoInfo *RepositoryInfo, branch string) error {
	if repoInfo == nil || repoInfo.Repository == nil {
		return fmt.Errorf("repository is nil")
	}
	repo := repoInfo.Repository

	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}
	branchCfg, ok := cfg.Branches[branch]
	if !ok || branchCfg.Remote == "" || branchCfg.Merge == "" {
		return fmt.Errorf("%w for branch %s", ErrNoTrackingBranch, branch)
	}

	upstreamName := plumbing.NewRemoteReferenceName(branchCfg.Remote, branchCfg.Merge.Short())
	upstream, err := repo.Reference(upstreamName, true)
	if err != nil {
		return fmt.Errorf("%w for branch %s: %v", ErrNoTrackingBranch, branch, err)
	}

	branchRef := plumbing.NewBranchReferenceName(branch)
	local, err := repo.Reference(branchRef, true)
	if err != nil {
		return fmt.Errorf("failed to resolve branch %s: %w", branch, err)
	}
	if local.Hash() == upstream.Hash() {
		return nil
	}

	localCommit, err := repo.CommitObject(local.Hash())
	if err != nil {
		return fmt.Errorf("failed to get commit object: %w", err)
	}
	upstreamCommit, err := repo.CommitObject(upstream.Hash())
	if err != nil {
		return fmt.Errorf("failed to get commit object: %w", err)
	}

	canForward, err := localCommit.IsAncestor(upstreamCommit)
	if err != nil {
		return fmt.Errorf("failed to compare %s with %s: %w", branch, upstreamName.Short(), err)
	}
	if !canForward {
		if ahead, _ := upstreamCommit.IsAncestor(localCommit); ahead {
			return nil
		}
		return fmt.Errorf("%w: %s onto %s", ErrNotFastForward, branch, upstreamName.Short())
	}

	if err := repo.Storer.SetReference(plumbing.NewHashReference(branchRef, upstream.Hash())); err != nil {
		return fmt.Errorf("failed to update branch %s: %w", branch, err)
	}

	head, err := repo.Head()
	if err == nil && head.Name() == branchRef {
		workTree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree: %w", err)
		}
		if err := workTree.Checkout(&git.CheckoutOptions{Branch: branchRef, Force: true}); err != nil {
			return fmt.Errorf("failed to update worktree for %s: %w", branch, err)
		}
	}
	return nil
}

// Log walks history from HEAD ordered by committer time
func (*defaultGitClient) Log(repoInfo *RepositoryInfo, logConfig *LogConfig) ([]*object.Commit, error) {
	if repoInfo == nil || repoInfo.Repository == nil {
		return nil, fmt.Errorf("repository is nil")
	}
	repo := repoInfo.Repository

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// Empty repository
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	logOptions := &git.LogOptions{
		From:  head.Hash(),
		Order: git.LogOrderCommitterTime,
	}
	maxCount := 0
	if logConfig != nil {
		maxCount = logConfig.MaxCount
		if prefix := strings.Trim(logConfig.Path, "/"); prefix != "" {
			logOptions.PathFilter = func(path string) bool {
				return path == prefix || strings.HasPrefix(path, prefix+"/")
			}
		}
	}

	iter, err := repo.Log(logOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}
	defer iter.Close()

	var commits []*object.Commit
	err = iter.ForEach(func(commit *object.Commit) error {
		commits = append(commits, commit)
		if maxCount > 0 && len(commits) >= maxCount {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk commit log: %w", err)
	}
	return commits, nil
}

// HeadRef returns the checked out branch name or the detached commit hash
func (*defaultGitClient) HeadRef(repoInfo *RepositoryInfo) (string, error) {
	if repoInfo == nil || repoInfo.Repository == nil {
		return "", fmt.Errorf("repository is nil")
	}
	ref, err := repoInfo.Repository.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	if ref.Name().IsBranch() {
		return ref.Name().Short(), nil
	}
	return ref.Hash().String(), nil
}

func (c *defaultGitClient) listRemote(ctx context.Context, remote *git.Remote) ([]*plumbing.Reference, error) {
	listOptions := &git.ListOptions{}
	if c.auth != nil && c.auth.Username != "" {
		listOptions.Auth = &githttp.BasicAuth{Username: c.auth.Username, Password: c.auth.Password}
	}

	refs, err := retry(ctx, c.maxAttempts, func() ([]*plumbing.Reference, error) {
		refs, err := remote.ListContext(ctx, listOptions)
		if err != nil {
			return nil, permanentIfFatal(err)
		}
		return refs, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list remote references: %w", err)
	}
	return refs, nil
}

// updateRepositoryInfo updates the repository info with current state
func updateRepositoryInfo(repoInfo *RepositoryInfo) error {
	if repoInfo == nil || repoInfo.Repository == nil {
		return fmt.Errorf("repository is nil")
	}

	ref, err := repoInfo.Repository.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	if ref.Name().IsBranch() {
		repoInfo.Branch = ref.Name().Short()
	}

	return nil
}

func createTrackingBranch(repo *git.Repository, branch string) error {
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(DefaultRemoteName, branch), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("%w: %s", ErrBranchNotFound, branch)
		}
		return fmt.Errorf("failed to look up remote branch %s: %w", branch, err)
	}

	branchRef := plumbing.NewBranchReferenceName(branch)
	if err := repo.Storer.SetReference(plumbing.NewHashReference(branchRef, remoteRef.Hash())); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}

	err = repo.CreateBranch(&config.Branch{
		Name:   branch,
		Remote: DefaultRemoteName,
		Merge:  branchRef,
	})
	if err != nil && !errors.Is(err, git.ErrBranchExists) {
		return fmt.Errorf("failed to configure tracking for branch %s: %w", branch, err)
	}
	return nil
}

// defaultBranchFromRefs picks the branch HEAD points to in an advertised ref list
func defaultBranchFromRefs(refs []*plumbing.Reference) (string, error) {
	var headHash plumbing.Hash
	for _, ref := range refs {
		if ref.Name() != plumbing.HEAD {
			continue
		}
		if ref.Type() == plumbing.SymbolicReference {
			return ref.Target().Short(), nil
		}
		headHash = ref.Hash()
	}

	if headHash.IsZero() {
		return "", fmt.Errorf("%w: remote does not advertise HEAD", ErrBranchNotFound)
	}

	var candidates []string
	for _, ref := range refs {
		if ref.Name().IsBranch() && ref.Hash() == headHash {
			candidates = append(candidates, ref.Name().Short())
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no branch matches remote HEAD", ErrBranchNotFound)
	}
	sort.Strings(candidates)
	for _, preferred := range []string{"main", "master"} {
		for _, candidate := range candidates {
			if candidate == preferred {
				return candidate, nil
			}
		}
	}
	return candidates[0], nil
}

func permanentIfFatal(err error) error {
	switch {
	case errors.Is(err, transport.ErrRepositoryNotFound),
		errors.Is(err, transport.ErrEmptyRemoteRepository),
		errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed),
		errors.Is(err, transport.ErrInvalidAuthMethod),
		errors.Is(err, git.ErrRepositoryAlreadyExists):
		return backoff.Permanent(err)
	}
	return err
}

func retry[T any](ctx context.Context, attempts uint, op backoff.Operation[T]) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialInterval
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(attempts),
	)
}
