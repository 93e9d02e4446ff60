package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// ListComponents returns the names of all components of kind, as slash
// separated paths relative to the kind root. A directory is a component when
// it directly contains MarkerFile. With checkout the branch tip is restored
// first; without it the listing reflects whatever HEAD currently is.
func (h *Handle) ListComponents(kind Kind, checkout bool) ([]string, error) {
	release, err := h.acquire(context.Background())
	if err != nil {
		return nil, err
	}
	defer release()

	if checkout {
		if err := h.restoreTip(); err != nil {
			return nil, err
		}
	}
	return h.listComponents(kind)
}

// ComponentExists reports whether name is a component of kind
func (h *Handle) ComponentExists(name string, kind Kind, checkout bool) (bool, error) {
	names, err := h.ListComponents(kind, checkout)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}

// MetaYAML returns the metadata file of a component at the branch tip, or nil
// when the component has none
func (h *Handle) MetaYAML(kind Kind, name string) ([]byte, error) {
	release, err := h.acquire(context.Background())
	if err != nil {
		return nil, err
	}
	defer release()

	if err := h.restoreTip(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(h.ComponentDir(name, kind), MetaFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s of %s: %w", MetaFile, name, err)
	}
	return data, nil
}

// listComponents walks the kind root of the current checkout
func (h *Handle) listComponents(kind Kind) ([]string, error) {
	root := h.KindDir(kind)

	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || d.Name() != MarkerFile {
			return nil
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s in %s: %w", kind, root, err)
	}
	return names, nil
}
