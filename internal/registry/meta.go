package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// ErrNoMetaSchema is returned when a registry ships no schema for a component kind
var ErrNoMetaSchema = errors.New("registry has no meta.yml schema")

var printer = message.NewPrinter(language.English)

// MetaIssue is one schema violation found in a meta.yml
type MetaIssue struct {
	// Path is the JSON pointer of the offending value, empty for the document root
	Path    string
	Message string
}

func (i MetaIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidateMetaYAML checks the meta.yml of a component at the branch tip
// against the schema the registry ships for its kind. Violations are
// returned as issues; the error covers missing files and broken schemas.
func (h *Handle) ValidateMetaYAML(kind Kind, name string) ([]MetaIssue, error) {
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
			return nil, newError(ComponentNotFound, err, "%s '%s' has no %s in '%s'", kind.Singular(), name, MetaFile, h.FullName)
		}
		return nil, fmt.Errorf("failed to read %s of %s: %w", MetaFile, name, err)
	}

	schemaPath := filepath.Join(h.LocalDir, filepath.FromSlash(kind.metaSchemaFile()))
	schema, err := compileSchema(schemaPath)
	if err != nil {
		return nil, err
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return []MetaIssue{{Message: fmt.Sprintf("invalid YAML: %v", err)}}, nil
	}
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s of %s to JSON: %w", MetaFile, name, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s of %s for validation: %w", MetaFile, name, err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return nil, fmt.Errorf("failed to validate %s of %s: %w", MetaFile, name, err)
	}

	var issues []MetaIssue
	collectIssues(validationErr, &issues)
	if len(issues) == 0 {
		issues = append(issues, MetaIssue{Message: validationErr.Error()})
	}
	return issues, nil
}

func compileSchema(path string) (*jsonschema.Schema, error) {
	schemaBytes, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoMetaSchema, path)
		}
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(path, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema %s: %w", path, err)
	}
	schema, err := c.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", path, err)
	}
	return schema, nil
}

// collectIssues keeps the leaves of the error tree that name a concrete keyword
func collectIssues(ve *jsonschema.ValidationError, issues *[]MetaIssue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectIssues(cause, issues)
		}
		return
	}
	if ve.ErrorKind == nil {
		return
	}

	keywordPath := ve.ErrorKind.KeywordPath()
	if len(keywordPath) == 0 {
		return
	}
	switch keywordPath[len(keywordPath)-1] {
	case "oneOf", "allOf", "$ref":
		return
	}

	path := ""
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	*issues = append(*issues, MetaIssue{Path: path, Message: ve.ErrorKind.LocalizedString(printer)})
}
