package dumper

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablekit/chdump/internal/inventory"
	"github.com/tablekit/chdump/internal/testutil"
)

func testDoc() *inventory.Document {
	return &inventory.Document{Data: []inventory.TableRecord{
		{Engine: "MergeTree", Name: "events", CreateTableQuery: "CREATE TABLE events (id UInt64) ENGINE = MergeTree ORDER BY id"},
		{Engine: "Log", Name: "audit", CreateTableQuery: "CREATE TABLE audit (msg String) ENGINE = Log"},
		{Engine: "MergeTree", Name: "users", CreateTableQuery: "CREATE TABLE users (id INT)"},
	}}
}

func TestDump_FullPipeline(t *testing.T) {
	dir := t.TempDir()
	outputDir := filepath.Join(dir, "dump")
	manifest := filepath.Join(dir, "tables.txt")

	d := New(testutil.NewTestLogger(t))
	doc := testDoc()

	result, err := d.Dump(doc, Options{OutputDir: outputDir, ManifestPath: manifest})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Tables)
	assert.Equal(t, map[string]int{"MergeTree": 2, "Log": 1}, result.FilesByEngine)

	// One directory per distinct engine, nothing else.
	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	var dirs []string
	for _, e := range entries {
		require.True(t, e.IsDir())
		dirs = append(dirs, e.Name())
	}
	sort.Strings(dirs)
	assert.Equal(t, []string{"Log", "MergeTree"}, dirs)

	// Each table file holds the verbatim query, no trailing newline added.
	for _, rec := range doc.Data {
		content, err := os.ReadFile(TableFilePath(outputDir, rec))
		require.NoError(t, err, "table file for %s", rec.Name)
		assert.Equal(t, rec.CreateTableQuery, string(content))
	}

	// Manifest has one line per record, in input order.
	raw, err := os.ReadFile(manifest)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "MergeTree:events:"+inventory.Preview(doc.Data[0].CreateTableQuery), lines[0])
	assert.Equal(t, "Log:audit:"+inventory.Preview(doc.Data[1].CreateTableQuery), lines[1])
	assert.Equal(t, "MergeTree:users:CREATE TABLE users (id INT)", lines[2])
	assert.True(t, strings.HasSuffix(string(raw), "\n"), "manifest ends with a line terminator")
}

func TestDump_Idempotent(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		OutputDir:    filepath.Join(dir, "dump"),
		ManifestPath: filepath.Join(dir, "tables.txt"),
	}

	d := New(nil)
	doc := testDoc()

	_, err := d.Dump(doc, opts)
	require.NoError(t, err)

	// Second run over existing directories must not fail and must leave
	// the same content in place.
	_, err = d.Dump(doc, opts)
	require.NoError(t, err)

	content, err := os.ReadFile(TableFilePath(opts.OutputDir, doc.Data[0]))
	require.NoError(t, err)
	assert.Equal(t, doc.Data[0].CreateTableQuery, string(content))
}

func TestDump_OverwritesManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "tables.txt")
	require.NoError(t, os.WriteFile(manifest, []byte("stale line 1\nstale line 2\nstale line 3\nstale 4\n"), 0644))

	d := New(nil)
	doc := &inventory.Document{Data: []inventory.TableRecord{
		{Engine: "Log", Name: "only", CreateTableQuery: "CREATE TABLE only (x Int8)"},
	}}

	_, err := d.Dump(doc, Options{OutputDir: filepath.Join(dir, "dump"), ManifestPath: manifest})
	require.NoError(t, err)

	raw, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Equal(t, "Log:only:CREATE TABLE only (x Int8)\n", string(raw))
}

func TestDump_EmptyInventory(t *testing.T) {
	dir := t.TempDir()

	d := New(nil)
	result, err := d.Dump(&inventory.Document{}, Options{
		OutputDir:    filepath.Join(dir, "dump"),
		ManifestPath: filepath.Join(dir, "tables.txt"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Tables)

	// Manifest exists and is empty; no engine directories were created.
	raw, err := os.ReadFile(filepath.Join(dir, "tables.txt"))
	require.NoError(t, err)
	assert.Empty(t, raw)
	_, err = os.Stat(filepath.Join(dir, "dump"))
	assert.True(t, os.IsNotExist(err))
}

func TestPrepareLayout_FatalOnUnwritableParent(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks are not enforced")
	}

	dir := t.TempDir()
	readonly := filepath.Join(dir, "ro")
	require.NoError(t, os.Mkdir(readonly, 0555))

	d := New(nil)
	err := d.PrepareLayout(testDoc(), filepath.Join(readonly, "dump"))
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, DefaultOutputDir, opts.OutputDir)
	assert.Equal(t, DefaultManifestPath, opts.ManifestPath)
}
