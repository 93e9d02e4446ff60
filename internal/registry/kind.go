package registry

import (
	"fmt"
	"path"
	"strings"
)

// Kind is the closed set of component kinds a registry holds
type Kind int

const (
	// Module is a single tool wrapper under modules/
	Module Kind = iota
	// Subworkflow is a composition of modules under subworkflows/
	Subworkflow
)

// Kinds lists every component kind
var Kinds = []Kind{Module, Subworkflow}

// Dir returns the top-level directory holding components of this kind
func (k Kind) Dir() string {
	switch k {
	case Module:
		return "modules"
	case Subworkflow:
		return "subworkflows"
	default:
		return ""
	}
}

// Singular returns the human-readable singular name
func (k Kind) Singular() string {
	return strings.TrimSuffix(k.Dir(), "s")
}

func (k Kind) String() string {
	if d := k.Dir(); d != "" {
		return d
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// metaSchemaFile is the slash-separated path of the JSON schema a registry
// ships for the meta.yml of this kind
func (k Kind) metaSchemaFile() string {
	switch k {
	case Subworkflow:
		return path.Join(k.Dir(), "yaml-schema.json")
	default:
		return path.Join(Module.Dir(), "meta-schema.json")
	}
}

// historyPaths returns the slash-separated paths whose history describes
// a component, current layout first. Modules also carry history from the
// flat modules/<name> layout that predates org paths.
func (k Kind) historyPaths(orgPath, name string) []string {
	paths := []string{path.Join(k.Dir(), orgPath, name)}
	if k == Module {
		paths = append(paths, path.Join(Module.Dir(), name))
	}
	return paths
}

// ParseKind accepts singular or plural kind names
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	dirs := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		if name == k.Dir() || name == k.Singular() {
			return k, nil
		}
		dirs = append(dirs, k.Dir())
	}
	return 0, fmt.Errorf("unknown component type %q: must be one of %s", s, strings.Join(dirs, ", "))
}
