package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ToolsConfigFileNames are the accepted names of a registry's tools config, in lookup order
var ToolsConfigFileNames = []string{".nf-core.yml", ".nf-core.yaml"}

// ToolsConfig is the subset of a registry's tools config the cache relies on
type ToolsConfig struct {
	// RepositoryType is "modules" for component registries
	RepositoryType string `yaml:"repository_type,omitempty"`

	// OrgPath is the directory under modules/ and subworkflows/ holding this registry's components
	OrgPath string `yaml:"org_path,omitempty"`

	// NfCoreVersion is the tools version the registry was last updated with
	NfCoreVersion string `yaml:"nf_core_version,omitempty"`
}

// LoadToolsConfig reads the tools config at the root of dir. It returns the
// name of the file it looked for last and an empty config when none exists.
func LoadToolsConfig(dir string) (string, *ToolsConfig, error) {
	for _, name := range ToolsConfigFileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return name, nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		toolsConfig := &ToolsConfig{}
		if err := yaml.Unmarshal(data, toolsConfig); err != nil {
			return name, nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return name, toolsConfig, nil
	}

	return ToolsConfigFileNames[0], &ToolsConfig{}, nil
}
