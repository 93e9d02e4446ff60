package registry

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"
	"go.opentelemetry.io/otel/trace"

	"github.com/nf-core/modcache/internal/git"
	"github.com/nf-core/modcache/internal/otel"
)

// CommitRecord describes one commit touching a component
type CommitRecord struct {
	SHA string
	// Message is the first line of the commit message
	Message string
	// Date is the committer time
	Date time.Time
}

func newCommitRecord(commit *object.Commit) CommitRecord {
	message, _, _ := strings.Cut(commit.Message, "\n")
	return CommitRecord{
		SHA:     commit.Hash.String(),
		Message: message,
		Date:    commit.Committer.When,
	}
}

// CommitHistory returns the commits touching a component on the branch tip,
// newest first. Module history from the flat legacy layout is appended after
// the current layout records without merging. A positive depth caps each
// layout separately.
func (h *Handle) CommitHistory(ctx context.Context, name string, kind Kind, depth int) ([]CommitRecord, error) {
	_, span := otel.StartSpan(ctx, h.opts.Tracer, "registry.CommitHistory",
		trace.WithAttributes(
			otel.AttrRegistryName.String(h.FullName),
			otel.AttrComponentName.String(name),
			otel.AttrComponentKind.String(kind.String()),
		),
	)
	defer span.End()

	release, err := h.acquire(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	defer release()

	records, err := h.commitHistory(name, kind, depth)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(records)))
	return records, nil
}

func (h *Handle) commitHistory(name string, kind Kind, depth int) ([]CommitRecord, error) {
	if err := h.restoreTip(); err != nil {
		return nil, err
	}

	var records []CommitRecord
	for _, p := range kind.historyPaths(h.OrgPath, name) {
		commits, err := h.client.Log(h.repo, &git.LogConfig{Path: p, MaxCount: depth})
		if err != nil {
			return nil, newError(CorruptedCache, err, "Failed to read history of %s in %s", p, h.LocalDir)
		}
		for _, commit := range commits {
			records = append(records, newCommitRecord(commit))
		}
	}
	return records, nil
}

// LatestVersion returns the newest commit touching a component
func (h *Handle) LatestVersion(ctx context.Context, name string, kind Kind) (CommitRecord, error) {
	records, err := h.CommitHistory(ctx, name, kind, 1)
	if err != nil {
		return CommitRecord{}, err
	}
	if len(records) == 0 {
		return CommitRecord{}, newError(ComponentNotFound, nil,
			"No history found for %s '%s' in '%s' (%s)", kind.Singular(), name, h.RemoteURL, h.Branch)
	}
	return records[0], nil
}

// CommitExistsOnBranch reports whether sha is in the history of the branch tip
func (h *Handle) CommitExistsOnBranch(sha string) (bool, error) {
	release, err := h.acquire(context.Background())
	if err != nil {
		return false, err
	}
	defer release()

	commit, err := h.findOnBranch(sha)
	if err != nil {
		return false, err
	}
	return commit != nil, nil
}

// CommitInfo returns the first message line and the committer date,
// formatted with CommitDateLayout, of a commit on the branch
func (h *Handle) CommitInfo(sha string) (string, string, error) {
	release, err := h.acquire(context.Background())
	if err != nil {
		return "", "", err
	}
	defer release()

	commit, err := h.findOnBranch(sha)
	if err != nil {
		return "", "", err
	}
	if commit == nil {
		return "", "", newError(CommitNotFound, nil, "Commit '%s' not found in the '%s'", sha, h.RemoteURL)
	}

	record := newCommitRecord(commit)
	return record.Message, record.Date.Format(CommitDateLayout), nil
}

// VerifySHA checks user input for a commit: sha and prompt are mutually
// exclusive, and a given sha must exist on the branch. Failures are logged.
func (h *Handle) VerifySHA(prompt bool, sha string) bool {
	if prompt && sha != "" {
		slog.Error("Cannot use '--sha' and '--prompt' at the same time!")
		return false
	}
	if sha == "" {
		return true
	}

	exists, err := h.CommitExistsOnBranch(sha)
	if err != nil {
		slog.Error("Failed to look up commit", "sha", sha, "registry", h.FullName, "error", err)
		return false
	}
	if !exists {
		slog.Error("Commit SHA doesn't exist in registry", "sha", sha, "remote", h.RemoteURL)
		return false
	}
	return true
}

// findOnBranch scans the branch tip history for sha. It returns nil when absent.
func (h *Handle) findOnBranch(sha string) (*object.Commit, error) {
	if err := h.restoreTip(); err != nil {
		return nil, err
	}

	commits, err := h.client.Log(h.repo, nil)
	if err != nil {
		return nil, newError(CorruptedCache, err, "Failed to read history of %s", h.LocalDir)
	}
	for _, commit := range commits {
		if commit.Hash.String() == sha {
			return commit, nil
		}
	}
	return nil, nil
}
