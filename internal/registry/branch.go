package registry

import (
	"context"
	"errors"

	"github.com/nf-core/modcache/internal/git"
)

// setupBranch resolves the branch to use and verifies it by checking it out.
// An explicit branch wins, the canonical registry uses its fixed default, and
// any other registry uses the origin/HEAD recorded by clone or fetch, so
// resolution never touches the network.
func (h *Handle) setupBranch() error {
	branch := h.requestedBranch
	if branch == "" {
		if h.RemoteURL == CanonicalRemoteURL {
			branch = CanonicalDefaultBranch
		} else {
			defaultBranch, err := h.client.DefaultBranch(h.repo)
			if err != nil {
				if errors.Is(err, git.ErrNoRemoteHead) {
					return newError(RemoteUnreachable, err,
						"The default branch of '%s' is not recorded in %s; sync without --no-pull or pass --branch",
						h.RemoteURL, h.LocalDir)
				}
				return newError(CorruptedCache, err,
					"Failed to determine the default branch of '%s'", h.RemoteURL)
			}
			branch = defaultBranch
		}
	}

	h.Branch = branch
	return h.restoreTip()
}

// RemoteBranches lists the branches advertised by a remote
func RemoteBranches(ctx context.Context, client git.Client, remoteURL string) ([]string, error) {
	if client == nil {
		client = git.NewDefaultGitClient()
	}
	if remoteURL == "" {
		remoteURL = CanonicalRemoteURL
	}

	branches, err := client.ListRemoteBranches(ctx, remoteURL)
	if err != nil {
		return nil, newError(RemoteUnreachable, err, "Was unable to fetch branches from '%s'", remoteURL)
	}
	return branches, nil
}
