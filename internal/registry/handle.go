package registry

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/nf-core/modcache/internal/config"
	"github.com/nf-core/modcache/internal/git"
	"github.com/nf-core/modcache/internal/otel"
	"github.com/nf-core/modcache/internal/session"
	"github.com/nf-core/modcache/internal/telemetry"
)

// RecoveryPolicy decides what happens when an existing cache is corrupted
type RecoveryPolicy int

const (
	// RecoveryRetryOnce deletes the cache and retries once if Confirm approves.
	// A nil Confirm approves.
	RecoveryRetryOnce RecoveryPolicy = iota
	// RecoveryFailFast returns the CorruptedCache error without touching the cache
	RecoveryFailFast
	// RecoveryAlwaysDelete deletes the cache without asking and retries once
	RecoveryAlwaysDelete
)

// ParseRecoveryPolicy maps a configured policy name to a RecoveryPolicy
func ParseRecoveryPolicy(name string) (RecoveryPolicy, error) {
	switch name {
	case config.RecoveryRetryOnce, "":
		return RecoveryRetryOnce, nil
	case config.RecoveryFailFast:
		return RecoveryFailFast, nil
	case config.RecoveryAlwaysDelete:
		return RecoveryAlwaysDelete, nil
	default:
		return 0, fmt.Errorf("unknown recovery policy %q", name)
	}
}

// ProgressReporter renders progress of remote operations. Track is called
// once per clone or fetch; done is called when the operation ends.
type ProgressReporter interface {
	Track(operation, fullName, remoteURL string) (update git.ProgressFunc, done func())
}

// Options configures a Handle
type Options struct {
	// Session records which registries were synced in this process.
	// A nil Session gives the handle a private one.
	Session *session.Session

	// Client performs git operations. Defaults to the go-git client.
	Client git.Client

	// CacheDir is the root under which working copies live. Defaults to config.DefaultCacheDir().
	CacheDir string

	// Branch overrides branch resolution
	Branch string

	// NoPull suppresses fetching already cached registries for the rest of the session
	NoPull bool

	// HideProgress disables progress rendering even when Progress is set
	HideProgress bool

	// Progress renders clone and fetch progress (optional)
	Progress ProgressReporter

	// Recovery is applied when an existing cache turns out to be corrupted
	Recovery RecoveryPolicy

	// Confirm is asked before deleting a corrupted cache under RecoveryRetryOnce
	Confirm func(localDir string, cause error) bool

	// Metrics records network operations and sync durations (optional)
	Metrics *telemetry.CacheMetrics

	// Tracer creates spans for handle operations (optional)
	Tracer trace.Tracer
}

// Handle is a local working copy of one registry
type Handle struct {
	// RemoteURL is the URL the cache was cloned from
	RemoteURL string
	// FullName is the owner/repo identity derived from RemoteURL
	FullName string
	// LocalDir is <cacheRoot>/<FullName>
	LocalDir string
	// Branch is the resolved branch
	Branch string
	// OrgPath is the directory under each kind root holding this registry's components
	OrgPath string
	// ModulesDir is <LocalDir>/modules/<OrgPath>
	ModulesDir string
	// SubworkflowsDir is <LocalDir>/subworkflows/<OrgPath>
	SubworkflowsDir string
	// ToolsConfig is the registry's parsed tools config
	ToolsConfig *config.ToolsConfig

	requestedBranch string
	lockPath        string
	opts            Options
	client          git.Client
	session         *session.Session
	repo            *git.RepositoryInfo

	mu    sync.Mutex
	state State
}

// New establishes the local working copy of remoteURL and returns a handle
// at the tip of the resolved branch. An empty remoteURL selects the
// canonical registry.
func New(ctx context.Context, remoteURL string, opts Options) (*Handle, error) {
	if remoteURL == "" {
		remoteURL = CanonicalRemoteURL
	}

	fullName, err := FullNameFromRemote(remoteURL)
	if err != nil {
		return nil, newError(RemoteUnreachable, err, "Invalid remote URL '%s'", remoteURL)
	}

	if opts.Session == nil {
		opts.Session = session.New()
	}
	if opts.Client == nil {
		opts.Client = git.NewDefaultGitClient()
	}
	if opts.CacheDir == "" {
		opts.CacheDir = config.DefaultCacheDir()
	}

	localDir := filepath.Join(opts.CacheDir, filepath.FromSlash(fullName))
	h := &Handle{
		RemoteURL:       remoteURL,
		FullName:        fullName,
		LocalDir:        localDir,
		requestedBranch: opts.Branch,
		lockPath:        localDir + ".lock",
		opts:            opts,
		client:          opts.Client,
		session:         opts.Session,
	}

	// Once any caller asks not to pull, no registry is pulled for the rest of the session
	h.session.SuppressSync(opts.NoPull)

	ctx, span := otel.StartSpan(ctx, opts.Tracer, "registry.New",
		trace.WithAttributes(
			otel.AttrRegistryName.String(fullName),
			otel.AttrBranch.String(opts.Branch),
			otel.AttrSessionID.String(h.session.ID()),
		),
	)
	defer span.End()

	start := time.Now()
	err = h.setup(ctx)
	opts.Metrics.RecordSyncDuration(ctx, fullName, time.Since(start), err == nil)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	slog.Debug("Registry cache ready",
		"session", h.session.ID(),
		"registry", h.FullName,
		"branch", h.Branch,
		"path", h.LocalDir,
		"org_path", h.OrgPath,
	)
	return h, nil
}

func (h *Handle) setup(ctx context.Context) error {
	release, err := h.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := h.setupLocalRepo(ctx); err != nil {
		return err
	}
	return h.loadRegistryLayout()
}

// State returns the working copy state
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// HeadRef returns the checked out branch, or the commit hash when HEAD is detached
func (h *Handle) HeadRef() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.client.HeadRef(h.repo)
}

// KindDir returns the directory holding components of kind
func (h *Handle) KindDir(kind Kind) string {
	switch kind {
	case Subworkflow:
		return h.SubworkflowsDir
	default:
		return h.ModulesDir
	}
}

// ComponentDir returns the path of a component in the working copy. It does
// not check that the component exists.
func (h *Handle) ComponentDir(name string, kind Kind) string {
	return filepath.Join(h.KindDir(kind), filepath.FromSlash(name))
}

// restoreTip checks the resolved branch back out
func (h *Handle) restoreTip() error {
	if err := h.client.CheckoutBranch(h.repo, h.Branch); err != nil {
		return newError(BranchNotFound, err, "Branch '%s' not found in '%s'", h.Branch, h.RemoteURL)
	}
	h.state = State{Kind: AtBranchTip}
	return nil
}

// checkoutCommit detaches HEAD at commit
func (h *Handle) checkoutCommit(commit string) error {
	sha, err := h.client.CheckoutRevision(h.repo, commit)
	if err != nil {
		return newError(CommitNotFound, err, "Commit '%s' not found in '%s'", commit, h.RemoteURL)
	}
	h.state = State{Kind: AtCommit, Commit: sha}
	return nil
}
