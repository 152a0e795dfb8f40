// Package manifest loads snapcraft.yaml files into the ordered part list the
// extraction engine works on.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/StinkyLord/snapcraft-sbom/internal/model"
)

// Manifest is the subset of snapcraft.yaml the SBOM needs.
type Manifest struct {
	Name       string
	Version    string
	Summary    string
	License    string
	AdoptInfo  string
	Parts      []model.ManifestPart // declaration order
	SourcePath string               // file the manifest was read from, if any
}

// ErrEmpty is returned for a document with no content at all.
var ErrEmpty = errors.New("manifest is empty")

// Part keys copied into model.ManifestPart.
const (
	keySource       = "source"
	keySourceType   = "source-type"
	keySourceTag    = "source-tag"
	keySourceBranch = "source-branch"
	keySourceCommit = "source-commit"
	keySourceDepth  = "source-depth"
	keyPlugin       = "plugin"
)

// Load reads and parses a snapcraft.yaml file.
func Load(path string) (*Manifest, error) {
	//nolint:gosec // G304: path is the manifest the user asked us to read
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.SourcePath = path
	return m, nil
}

// Parse parses snapcraft.yaml content. Parts keep their declaration order,
// which a plain map decode would lose.
func Parse(data []byte) (*Manifest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, ErrEmpty
	}

	doc := resolve(root.Content[0])
	if doc.Kind == yaml.ScalarNode && doc.ShortTag() == "!!null" {
		return nil, ErrEmpty
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level must be a mapping, got %s", kindName(doc))
	}

	m := &Manifest{}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i].Value, resolve(doc.Content[i+1])
		switch key {
		case "name":
			m.Name = scalarValue(value)
		case "version":
			m.Version = scalarValue(value)
		case "summary":
			m.Summary = scalarValue(value)
		case "license":
			m.License = scalarValue(value)
		case "adopt-info":
			m.AdoptInfo = scalarValue(value)
		case "parts":
			parts, err := parseParts(value)
			if err != nil {
				return nil, err
			}
			m.Parts = parts
		}
	}
	return m, nil
}

func parseParts(node *yaml.Node) ([]model.ManifestPart, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parts must be a mapping, got %s", kindName(node))
	}

	parts := make([]model.ManifestPart, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		parts = append(parts, parsePart(node.Content[i].Value, resolve(node.Content[i+1])))
	}
	return parts, nil
}

// parsePart never fails: shape problems are recorded on the part so the
// extractor can report them without losing the other parts.
func parsePart(name string, node *yaml.Node) model.ManifestPart {
	part := model.ManifestPart{Name: name}
	if isNull(node) {
		return part
	}
	if node.Kind != yaml.MappingNode {
		part.Malformed = map[string]string{model.WholePart: kindName(node)}
		return part
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, resolve(node.Content[i+1])

		var dst *string
		switch key {
		case keySource:
			part.HasSource = true
			dst = &part.Source
		case keySourceType:
			dst = &part.SourceType
		case keySourceTag:
			dst = &part.SourceTag
		case keySourceBranch:
			dst = &part.SourceBranch
		case keySourceCommit:
			dst = &part.SourceCommit
		case keySourceDepth:
			dst = &part.SourceDepth
		case keyPlugin:
			dst = &part.Plugin
		default:
			continue
		}

		if kind, bad := malformedKind(key, value); bad {
			if part.Malformed == nil {
				part.Malformed = map[string]string{}
			}
			part.Malformed[key] = kind
			continue
		}
		*dst = scalarValue(value)
	}
	return part
}

// malformedKind reports the kind of a field value the loader cannot accept.
// Any scalar is fine for the ref fields, where "source-tag: 2.10" means the
// text 2.10, but source has to be a string or null: "source: 123" names no
// location at all.
func malformedKind(key string, value *yaml.Node) (string, bool) {
	if value.Kind != yaml.ScalarNode {
		return kindName(value), true
	}
	if key == keySource {
		switch tag := value.ShortTag(); tag {
		case "!!str", "!!null":
		default:
			return strings.TrimPrefix(tag, "!!"), true
		}
	}
	return "", false
}

// resolve follows YAML aliases (*anchor) to the node they point at.
func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}

// scalarValue returns the literal text of a scalar, so "1.10" stays "1.10"
// instead of becoming the float 1.1. Null scalars and non-scalars yield "".
func scalarValue(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode || node.ShortTag() == "!!null" {
		return ""
	}
	return node.Value
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
