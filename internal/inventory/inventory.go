// Package inventory reads and writes table inventory documents.
//
// An inventory is a snapshot of table definitions, stored as a document
// with a single `data` key holding an ordered list of table records. The
// primary encoding is JSON (tables.json); YAML is supported for projects
// that keep schema snapshots under version control.
package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestPreviewLen is the number of characters of the creation query
// included in each manifest line.
const ManifestPreviewLen = 50

// ErrMalformedInput indicates the inventory document could not be parsed
// or is missing the required `data` key.
var ErrMalformedInput = errors.New("malformed inventory document")

// TableRecord describes a single table definition.
type TableRecord struct {
	// Database is set when the record comes from live introspection.
	// Extract semantics ignore it.
	Database         string `json:"database,omitempty" yaml:"database,omitempty"`
	Engine           string `json:"engine" yaml:"engine"`
	Name             string `json:"name" yaml:"name"`
	CreateTableQuery string `json:"create_table_query" yaml:"create_table_query"`
}

// Document is the top-level inventory shape.
type Document struct {
	Data []TableRecord `json:"data" yaml:"data"`
}

// Load reads an inventory document from path. The codec is chosen by file
// extension: .yaml/.yml decode as YAML, everything else as JSON.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory %s: %w", path, err)
	}

	doc, err := Decode(raw, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Format identifies an inventory encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the inventory encoding for a file path.
func FormatForPath(path string) Format {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses raw inventory bytes. A document that parses but lacks the
// `data` key is rejected: there is no way to tell an empty inventory from
// a document of the wrong shape.
func Decode(raw []byte, format Format) (*Document, error) {
	// Data is a pointer so a missing key is distinguishable from an
	// explicitly empty list.
	var probe struct {
		Data *[]TableRecord `json:"data" yaml:"data"`
	}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(raw, &probe)
	default:
		err = json.Unmarshal(raw, &probe)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if probe.Data == nil {
		return nil, fmt.Errorf("%w: missing \"data\" key", ErrMalformedInput)
	}

	return &Document{Data: *probe.Data}, nil
}

// Write encodes the document to path, choosing the codec by extension.
// JSON output is indented so snapshots diff cleanly in version control.
func Write(path string, doc *Document) error {
	var (
		raw []byte
		err error
	)
	switch FormatForPath(path) {
	case FormatYAML:
		raw, err = yaml.Marshal(doc)
	default:
		raw, err = json.MarshalIndent(doc, "", "  ")
		if err == nil {
			raw = append(raw, '\n')
		}
	}
	if err != nil {
		return fmt.Errorf("failed to encode inventory: %w", err)
	}

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write inventory %s: %w", path, err)
	}
	return nil
}

// Engines returns the distinct engine names in first-seen order.
func (d *Document) Engines() []string {
	seen := make(map[string]struct{}, len(d.Data))
	var engines []string
	for _, rec := range d.Data {
		if _, ok := seen[rec.Engine]; ok {
			continue
		}
		seen[rec.Engine] = struct{}{}
		engines = append(engines, rec.Engine)
	}
	return engines
}

// CountByEngine returns the number of records per engine.
func (d *Document) CountByEngine() map[string]int {
	counts := make(map[string]int)
	for _, rec := range d.Data {
		counts[rec.Engine]++
	}
	return counts
}

// ManifestLine renders the flat manifest entry for a record:
// engine, name and a preview of the creation query, colon-separated.
// Fields containing ':' are not escaped; the format matches the original
// snapshot tooling and downstream consumers split on the first two colons.
func ManifestLine(rec TableRecord) string {
	return rec.Engine + ":" + rec.Name + ":" + Preview(rec.CreateTableQuery)
}

// Preview returns the first ManifestPreviewLen characters of a query.
func Preview(query string) string {
	runes := []rune(query)
	if len(runes) <= ManifestPreviewLen {
		return query
	}
	return string(runes[:ManifestPreviewLen])
}
