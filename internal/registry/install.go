package registry

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"go.opentelemetry.io/otel/trace"

	"github.com/nf-core/modcache/internal/otel"
)

// Install copies a component as of commit into targetDir/name.
//
// It returns false without an error when the commit cannot be checked out,
// the component does not exist at that commit, or copying fails; a failed
// copy may leave a partial tree behind. The branch tip is restored in every
// case once the commit was checked out, and failing to restore it is
// returned as an error.
func (h *Handle) Install(ctx context.Context, name string, kind Kind, commit, targetDir string) (ok bool, err error) {
	ctx, span := otel.StartSpan(ctx, h.opts.Tracer, "registry.Install",
		trace.WithAttributes(
			otel.AttrRegistryName.String(h.FullName),
			otel.AttrComponentName.String(name),
			otel.AttrComponentKind.String(kind.String()),
			otel.AttrCommit.String(commit),
		),
	)
	defer span.End()

	release, err := h.acquire(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return false, err
	}
	defer release()

	if !filepath.IsLocal(filepath.FromSlash(name)) {
		slog.Error("Invalid component name", "name", name, "type", kind.Singular())
		return false, nil
	}

	if err := h.checkoutCommit(commit); err != nil {
		slog.Debug("Failed to check out commit", "commit", commit, "registry", h.FullName, "error", err)
		return false, nil
	}

	defer func() {
		if restoreErr := h.restoreTip(); restoreErr != nil {
			otel.RecordError(span, restoreErr)
			ok, err = false, restoreErr
		}
	}()

	names, err := h.listComponents(kind)
	if err != nil {
		slog.Error("Failed to list components", "type", kind, "registry", h.FullName, "error", err)
		return false, nil
	}
	if !slices.Contains(names, name) {
		slog.Error("The requested component does not exist in the branch",
			"type", kind.Singular(),
			"name", name,
			"branch", h.Branch,
			"remote", h.RemoteURL,
			"commit", commit,
		)
		return false, nil
	}

	dst := filepath.Join(targetDir, filepath.FromSlash(name))
	if err := copyComponent(h.ComponentDir(name, kind), dst); err != nil {
		slog.Error("Failed to copy component", "name", name, "destination", dst, "error", err)
		return false, nil
	}

	slog.Debug("Installed component", "name", name, "commit", commit, "destination", dst)
	return true, nil
}

// copyComponent copies the tree at src to dst, which must not exist
func copyComponent(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fs.ErrExist
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.CopyFS(dst, os.DirFS(src))
}
