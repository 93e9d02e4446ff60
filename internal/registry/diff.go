package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/nf-core/modcache/internal/otel"
)

// FilesIdentical compares the DiffFiles of an installed module at basePath
// with the module at commit, or at the branch tip when commit is empty.
// A file missing on either side keeps its default of true. The branch tip
// is restored before returning.
func (h *Handle) FilesIdentical(ctx context.Context, name, basePath, commit string) (result map[string]bool, err error) {
	ctx, span := otel.StartSpan(ctx, h.opts.Tracer, "registry.FilesIdentical",
		trace.WithAttributes(
			otel.AttrRegistryName.String(h.FullName),
			otel.AttrComponentName.String(name),
			otel.AttrCommit.String(commit),
		),
	)
	defer span.End()

	release, err := h.acquire(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	defer release()

	if commit == "" {
		err = h.restoreTip()
	} else {
		err = h.checkoutCommit(commit)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	defer func() {
		if restoreErr := h.restoreTip(); restoreErr != nil && err == nil {
			otel.RecordError(span, restoreErr)
			result, err = nil, restoreErr
		}
	}()

	componentDir := h.ComponentDir(name, Module)
	identical := make([]bool, len(DiffFiles))

	var g errgroup.Group
	for i, file := range DiffFiles {
		g.Go(func() error {
			same, err := sameFile(filepath.Join(componentDir, file), filepath.Join(basePath, file))
			switch {
			case errors.Is(err, fs.ErrNotExist):
				slog.Debug("Could not open file", "path", filepath.Join(componentDir, file), "error", err)
				identical[i] = true
			case err != nil:
				return err
			default:
				identical[i] = same
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to compare %s with %s: %w", name, basePath, err)
	}

	result = make(map[string]bool, len(DiffFiles))
	for i, file := range DiffFiles {
		result[file] = identical[i]
	}
	return result, nil
}

func sameFile(a, b string) (bool, error) {
	left, err := os.ReadFile(a)
	if err != nil {
		return false, err
	}
	right, err := os.ReadFile(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(left, right), nil
}
