// Package dumper fans an inventory document out to the filesystem:
// one directory per storage engine, one .sql file per table, plus a flat
// manifest listing every table with a preview of its DDL.
package dumper

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tablekit/chdump/internal/inventory"
)

// Default output locations. A bare `chdump extract` in a directory holding
// tables.json produces exactly this layout.
const (
	DefaultOutputDir    = "dump"
	DefaultManifestPath = "tables.txt"
)

// Options configures a dump.
type Options struct {
	// OutputDir is the root of the per-engine layout.
	OutputDir string
	// ManifestPath is the flat summary file, truncated on each run.
	ManifestPath string
}

func (o Options) withDefaults() Options {
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if o.ManifestPath == "" {
		o.ManifestPath = DefaultManifestPath
	}
	return o
}

// Result summarizes a completed dump.
type Result struct {
	Tables        int
	FilesByEngine map[string]int
	OutputDir     string
	ManifestPath  string
}

// Dumper writes inventory documents to disk.
type Dumper struct {
	logger *slog.Logger
}

// New creates a Dumper. A nil logger discards output.
func New(logger *slog.Logger) *Dumper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dumper{logger: logger}
}

// Dump runs the full pipeline: prepare the per-engine layout, write the
// manifest, then write each table file. Steps run strictly in order and
// the first failure aborts; files already written stay on disk.
func (d *Dumper) Dump(doc *inventory.Document, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	if err := d.PrepareLayout(doc, opts.OutputDir); err != nil {
		return nil, err
	}
	if err := d.WriteManifest(doc, opts.ManifestPath); err != nil {
		return nil, err
	}
	if err := d.DumpTables(doc, opts.OutputDir); err != nil {
		return nil, err
	}

	return &Result{
		Tables:        len(doc.Data),
		FilesByEngine: doc.CountByEngine(),
		OutputDir:     opts.OutputDir,
		ManifestPath:  opts.ManifestPath,
	}, nil
}

// PrepareLayout creates one subdirectory per distinct engine under
// outputDir. Existing directories are not an error; re-running merges
// into the previous layout and never removes stale files.
func (d *Dumper) PrepareLayout(doc *inventory.Document, outputDir string) error {
	for _, engine := range doc.Engines() {
		dir := filepath.Join(outputDir, engine)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		d.logger.Debug("prepared engine directory", slog.String("dir", dir))
	}
	return nil
}

// WriteManifest writes one line per record, in input order, truncating
// any previous manifest.
func (d *Dumper) WriteManifest(doc *inventory.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest %s: %w", path, err)
	}

	for _, rec := range doc.Data {
		if _, err := f.WriteString(inventory.ManifestLine(rec) + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("failed to write manifest %s: %w", path, err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close manifest %s: %w", path, err)
	}

	d.logger.Debug("wrote manifest",
		slog.String("path", path),
		slog.Int("lines", len(doc.Data)))
	return nil
}

// DumpTables writes each record's full creation query, verbatim and with
// no added terminator, to {outputDir}/{engine}/{name}.sql.
func (d *Dumper) DumpTables(doc *inventory.Document, outputDir string) error {
	for _, rec := range doc.Data {
		path := TableFilePath(outputDir, rec)
		if err := os.WriteFile(path, []byte(rec.CreateTableQuery), 0644); err != nil {
			return fmt.Errorf("failed to write table file %s: %w", path, err)
		}
		d.logger.Debug("dumped table",
			slog.String("engine", rec.Engine),
			slog.String("table", rec.Name))
	}
	return nil
}

// TableFilePath returns the output path for a record.
func TableFilePath(outputDir string, rec inventory.TableRecord) string {
	return filepath.Join(outputDir, rec.Engine, rec.Name+".sql")
}
