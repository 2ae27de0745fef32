package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/starry-os/starry-test-harness/internal/errors"
	"github.com/starry-os/starry-test-harness/internal/schema"
)

// Format is the encoding of a manifest document.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the document format from the file extension.
// Unrecognized extensions are read as TOML, the format the image recipes ship.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// LoadOptions controls manifest loading.
type LoadOptions struct {
	// Strict rejects tests whose type is not recognized instead of keeping
	// them (with a warning) for the runner to skip.
	Strict bool
}

// Load reads, validates and decodes the manifest at path using default options.
// It returns warnings for non-fatal issues such as unknown fields.
func Load(path string) (*Manifest, []string, error) {
	return LoadWithOptions(path, LoadOptions{})
}

// LoadWithOptions reads, validates and decodes the manifest at path.
// All failures are configuration errors.
func LoadWithOptions(path string, opts LoadOptions) (*Manifest, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Configf("manifest not found: %s", path)
		}
		return nil, nil, errors.ConfigWrap(err, "failed to read manifest")
	}

	m, warnings, err := Parse(data, FormatFromPath(path), opts)
	if err != nil {
		return nil, warnings, err
	}
	m.Path = path
	return m, warnings, nil
}

// Parse decodes and validates manifest data in the given format.
func Parse(data []byte, format Format, opts LoadOptions) (*Manifest, []string, error) {
	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, nil, errors.ConfigWrap(err, "failed to parse manifest")
	}

	if err := schema.ValidateDocument(doc); err != nil {
		return nil, nil, errors.ConfigWrap(err, "invalid manifest")
	}

	m, warnings, err := decodeTyped(data, format, doc)
	if err != nil {
		return nil, nil, errors.ConfigWrap(err, "failed to parse manifest")
	}

	applyDefaults(m)

	validationWarnings, err := Validate(m, opts)
	warnings = append(warnings, validationWarnings...)
	if err != nil {
		return nil, warnings, errors.ConfigWrap(err, "invalid manifest")
	}

	return m, warnings, nil
}

// decodeDocument decodes data into a generic document for schema validation.
func decodeDocument(data []byte, format Format) (interface{}, error) {
	var doc map[string]interface{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, err
		}
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return doc, nil
}

// decodeTyped decodes data into a Manifest and reports keys that do not map
// onto any manifest field.
func decodeTyped(data []byte, format Format, doc interface{}) (*Manifest, []string, error) {
	var m Manifest
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, nil, err
		}
		return &m, detectUnknownFields(doc), nil
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&m); err != nil {
			return nil, nil, err
		}
		return &m, detectUnknownFields(doc), nil
	default:
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, nil, err
		}
		return &m, undecodedWarnings(md), nil
	}
}

// Select returns the suite called name and whether it is enabled.
// A disabled suite is not an error: callers should treat it as a clean no-op.
func (m *Manifest) Select(name string) (*Suite, bool, error) {
	for i := range m.Suites {
		if m.Suites[i].Name == name {
			s := &m.Suites[i]
			return s, s.IsEnabled(), nil
		}
	}
	return nil, false, errors.Configf("test suite %q not found in manifest", name)
}

// SuiteNames returns the names of all suites in manifest order.
func (m *Manifest) SuiteNames() []string {
	names := make([]string, 0, len(m.Suites))
	for _, s := range m.Suites {
		names = append(names, s.Name)
	}
	return names
}
