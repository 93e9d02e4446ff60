package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/nf-core/modcache/internal/config"
	"github.com/nf-core/modcache/internal/git"
	"github.com/nf-core/modcache/internal/telemetry"
	"github.com/nf-core/modcache/internal/versions"
)

// setupLocalRepo establishes the working copy and applies the recovery
// policy when an existing cache is corrupted. Recovery runs at most once.
func (h *Handle) setupLocalRepo(ctx context.Context) error {
	err := h.syncWorkingCopy(ctx)
	if err == nil || !IsKind(err, CorruptedCache) {
		return err
	}

	slog.Error("Could not set up local cache of registry",
		"registry", h.FullName,
		"path", h.LocalDir,
		"error", err,
	)

	if !h.recover(ctx, err) {
		return newError(CorruptedCache, err, "Exiting due to error with local cache of '%s' at %s", h.RemoteURL, h.LocalDir)
	}

	if err := h.syncWorkingCopy(ctx); err != nil {
		if IsKind(err, CorruptedCache) {
			return newError(CorruptedCache, err, "Local cache of '%s' is still unusable after recovery", h.RemoteURL)
		}
		return err
	}
	return nil
}

// recover deletes the cache directory if the policy allows it
func (h *Handle) recover(ctx context.Context, cause error) bool {
	switch h.opts.Recovery {
	case RecoveryFailFast:
		h.opts.Metrics.RecordRecovery(ctx, h.FullName, false)
		return false
	case RecoveryRetryOnce:
		if h.opts.Confirm != nil && !h.opts.Confirm(h.LocalDir, cause) {
			h.opts.Metrics.RecordRecovery(ctx, h.FullName, false)
			return false
		}
	case RecoveryAlwaysDelete:
	}

	slog.Info("Removing local cache", "path", h.LocalDir)
	if err := os.RemoveAll(h.LocalDir); err != nil {
		slog.Error("Failed to remove local cache", "path", h.LocalDir, "error", err)
		h.opts.Metrics.RecordRecovery(ctx, h.FullName, false)
		return false
	}

	h.opts.Metrics.RecordRecovery(ctx, h.FullName, true)
	h.repo = nil
	h.state = State{Kind: Uninitialized}
	return true
}

// syncWorkingCopy clones a missing cache, or fetches an existing one at most
// once per session, then resolves the branch and fast-forwards it
func (h *Handle) syncWorkingCopy(ctx context.Context) error {
	_, statErr := os.Stat(h.LocalDir)
	switch {
	case errors.Is(statErr, fs.ErrNotExist):
		if err := h.clone(ctx); err != nil {
			return err
		}
		return h.setupBranch()
	case statErr != nil:
		return newError(CorruptedCache, statErr, "Cannot access local cache %s", h.LocalDir)
	}

	repo, err := h.client.Open(h.LocalDir)
	if err != nil {
		return newError(CorruptedCache, err, "Local cache %s is not a valid git repository", h.LocalDir)
	}
	h.repo = repo

	if h.session.SyncSuppressed() {
		h.session.MarkSynced(h.FullName)
	}
	if !h.session.IsSynced(h.FullName) {
		if err := h.fetch(ctx); err != nil {
			return err
		}
	}

	if err := h.setupBranch(); err != nil {
		return err
	}

	if err := h.client.FastForward(h.repo, h.Branch); err != nil {
		if errors.Is(err, git.ErrNoTrackingBranch) {
			return newError(DisconnectedBranch, err,
				"There is no remote tracking branch '%s' in '%s'", h.Branch, h.RemoteURL)
		}
		return newError(CorruptedCache, err, "Failed to update branch '%s' of %s", h.Branch, h.LocalDir)
	}
	return nil
}

func (h *Handle) clone(ctx context.Context) error {
	progress, done := h.trackProgress("Cloning")
	repo, err := h.client.Clone(ctx, &git.CloneConfig{
		URL:       h.RemoteURL,
		Directory: h.LocalDir,
		Progress:  progress,
	})
	done()
	h.opts.Metrics.RecordNetworkOp(ctx, h.FullName, telemetry.OpClone, err == nil)
	if err != nil {
		return newError(RemoteUnreachable, err, "Failed to clone from the remote: `%s`", h.RemoteURL)
	}

	h.repo = repo
	h.session.MarkSynced(h.FullName)
	return nil
}

func (h *Handle) fetch(ctx context.Context) error {
	progress, done := h.trackProgress("Pulling")
	err := h.client.Fetch(ctx, h.repo, progress)
	done()
	h.opts.Metrics.RecordNetworkOp(ctx, h.FullName, telemetry.OpFetch, err == nil)
	if err != nil {
		if isTransportError(err) {
			return newError(RemoteUnreachable, err, "Failed to fetch from the remote: `%s`", h.RemoteURL)
		}
		return newError(CorruptedCache, err, "Failed to fetch into local cache %s", h.LocalDir)
	}

	h.session.MarkSynced(h.FullName)
	return nil
}

func (h *Handle) trackProgress(operation string) (git.ProgressFunc, func()) {
	if h.opts.HideProgress || h.opts.Progress == nil {
		return nil, func() {}
	}
	update, done := h.opts.Progress.Track(operation, h.FullName, h.RemoteURL)
	if done == nil {
		done = func() {}
	}
	return update, done
}

// loadRegistryLayout reads the tools config and derives the component roots
func (h *Handle) loadRegistryLayout() error {
	configFile, toolsConfig, err := config.LoadToolsConfig(h.LocalDir)
	if err != nil {
		return newError(MalformedRegistry, err, "Failed to read %s in '%s'", configFile, h.RemoteURL)
	}
	if toolsConfig.OrgPath == "" {
		return newError(MalformedRegistry, nil, "'org_path' key not present in %s", configFile)
	}

	if versions.RegistryNewerThanTools(toolsConfig.NfCoreVersion) {
		slog.Warn("Registry was updated with a newer tools release than this client supports",
			"registry", h.FullName,
			"registry_version", toolsConfig.NfCoreVersion,
			"supported_version", versions.ToolsVersion,
		)
	}

	h.ToolsConfig = toolsConfig
	h.OrgPath = toolsConfig.OrgPath

	// The canonical registry on its default branch is known to be well formed
	if h.OrgPath != CanonicalOrgPath || h.requestedBranch != "" {
		if err := h.verifyLayout(); err != nil {
			return err
		}
	}

	h.ModulesDir = filepath.Join(h.LocalDir, Module.Dir(), h.OrgPath)
	h.SubworkflowsDir = filepath.Join(h.LocalDir, Subworkflow.Dir(), h.OrgPath)
	return nil
}

// verifyLayout checks that the working copy root has a modules/ directory
func (h *Handle) verifyLayout() error {
	entries, err := os.ReadDir(h.LocalDir)
	if err != nil {
		return newError(CorruptedCache, err, "Cannot read local cache %s", h.LocalDir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	if slices.Contains(names, Module.Dir()) {
		return nil
	}

	msg := fmt.Sprintf("Repository '%s' (%s) does not contain the '%s/' directory", h.RemoteURL, h.Branch, Module.Dir())
	if slices.Contains(names, legacySoftwareDir) {
		msg += fmt.Sprintf(".\nAs of nf-core/tools version 2.0, the '%s/' directory should be renamed to '%s/'",
			legacySoftwareDir, Module.Dir())
	}
	return &Error{Kind: MalformedRegistry, Message: msg}
}
