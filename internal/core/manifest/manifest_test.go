package manifest

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bardock-dev/bardock/internal/core/failure"
)

const cargoNewManifest = `[package]
name = "foo"
version = "0.1.0"
edition = "2021"

[dependencies]
`

const richManifest = `cargo-features = ["edition2024"]

[package]
name = "rich"
version = "0.3.0"
authors = ["You <you@example.org>"]
publish = false

[package.metadata.docs]
all-features = true

[[bin]]
name = "tool"
path = "src/bin/tool.rs"

[[bin]]
name = "other"
path = "src/bin/other.rs"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
anyhow = "1"

[dev-dependencies]
tempfile = "3"

[features]
default = []
fast = ["serde/std"]

[target."cfg(unix)".dependencies]
libc = "0.2"

[profile.release]
lto = true
opt-level = 3
debug = 1.5

[badges]
maintenance = { status = "experimental" }

[custom-tool]
setting = "kept"
`

// decode gives an order-insensitive view of a document for comparisons.
func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var v map[string]any
	_, err := toml.Decode(string(data), &v)
	require.NoError(t, err, "document should decode:\n%s", data)
	return v
}

func TestParse_KeysInDocumentOrder(t *testing.T) {
	m, err := Parse([]byte(richManifest))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"cargo-features", "package", "bin", "dependencies", "dev-dependencies",
		"features", "target", "profile", "badges", "custom-tool",
	}, m.Keys())
	assert.Equal(t, []string{"custom-tool"}, m.Unrecognized())
}

func TestParse_Empty(t *testing.T) {
	m, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, m.Keys())

	out, err := m.Encode()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestParse_InvalidDocument(t *testing.T) {
	for name, doc := range map[string]string{
		"unterminated header": "[package\nname = \"x\"\n",
		"duplicate key":       "[package]\nname = \"a\"\nname = \"b\"\n",
		"bare value":          "name = \n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.Equal(t, failure.KindManifestParse, failure.KindOf(err))
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	for name, doc := range map[string]string{
		"cargo new": cargoNewManifest,
		"rich":      richManifest,
		"workspace": "[workspace]\nmembers = [\"a\", \"b\"]\nresolver = \"2\"\n\n[patch.crates-io]\nfoo = { path = \"../foo\" }\n",
		"scalars":   "cargo-features = []\n[package]\nname = \"x\"\n",
	} {
		t.Run(name, func(t *testing.T) {
			m, err := Parse([]byte(doc))
			require.NoError(t, err)
			out, err := m.Encode()
			require.NoError(t, err)

			if diff := cmp.Diff(decode(t, []byte(doc)), decode(t, out)); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s\noutput:\n%s", diff, out)
			}

			// A second parser has to agree that the output is valid and
			// means the same thing as the input.
			var want, got map[string]any
			require.NoError(t, gotoml.Unmarshal([]byte(doc), &want))
			require.NoError(t, gotoml.Unmarshal(out, &got), "go-toml rejected output:\n%s", out)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("go-toml view mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	m, err := Parse([]byte(richManifest))
	require.NoError(t, err)

	first, err := m.Encode()
	require.NoError(t, err)
	second, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	reparsed, err := Parse(first)
	require.NoError(t, err)
	third, err := reparsed.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(third), "encoding its own output must be a fixed point")
	assert.Equal(t, m.Keys(), reparsed.Keys())
}

func TestEncode_CargoNewLayout(t *testing.T) {
	m, err := Parse([]byte(cargoNewManifest))
	require.NoError(t, err)

	out, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, `[package]
edition = "2021"
name = "foo"
version = "0.1.0"

[dependencies]
`, string(out))
}

func TestEncode_ScalarsBeforeTables(t *testing.T) {
	m, err := Parse([]byte("cargo-features = [\"a\"]\n[package]\nname = \"x\"\n"))
	require.NoError(t, err)
	_, err = m.EnsureTable(Lib)
	require.NoError(t, err)

	out, err := m.Encode()
	require.NoError(t, err)
	assert.Regexp(t, `^cargo-features = \["a"\]\n`, string(out))
	assert.Less(t, strings.Index(string(out), "[package]"), strings.Index(string(out), "[lib]"),
		"new sections go after existing ones")
}

func TestSection_Shape(t *testing.T) {
	tests := map[string]string{
		"string":          "lib = \"src/lib.rs\"\n",
		"integer":         "lib = 3\n",
		"array":           "lib = [\"cdylib\"]\n",
		"array of tables": "[[lib]]\nname = \"x\"\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := Parse([]byte(doc))
			require.NoError(t, err)

			_, ok, err := m.Section(Lib)
			assert.True(t, ok)
			require.Error(t, err)
			assert.Equal(t, failure.KindManifestShape, failure.KindOf(err))

			_, err = m.EnsureTable(Lib)
			assert.Equal(t, failure.KindManifestShape, failure.KindOf(err))
		})
	}
}

func TestSection_Absent(t *testing.T) {
	m, err := Parse([]byte(cargoNewManifest))
	require.NoError(t, err)

	tbl, ok, err := m.Section(Lib)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, tbl)

	pkg, ok, err := m.Section("package")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "foo", pkg["name"])
}

func TestEnsureTable(t *testing.T) {
	m, err := Parse([]byte(cargoNewManifest))
	require.NoError(t, err)

	deps, err := m.EnsureTable(Dependencies)
	require.NoError(t, err)
	deps["log"] = "0.4.8"

	lib, err := m.EnsureTable(Lib)
	require.NoError(t, err)
	lib["name"] = "foo"

	assert.Equal(t, []string{"package", "dependencies", "lib"}, m.Keys())
	got, _ := m.Get(Dependencies)
	assert.Equal(t, Table{"log": "0.4.8"}, got)

	_, err = m.EnsureTable("package")
	assert.Error(t, err, "package is read-only")
}

func TestEnsureTable_ZeroValue(t *testing.T) {
	var m Manifest
	lib, err := m.EnsureTable(Lib)
	require.NoError(t, err)
	lib["path"] = "src/lib.rs"

	out, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, "[lib]\npath = \"src/lib.rs\"\n", string(out))
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "Cargo.toml"))
	require.Error(t, err)
	assert.Equal(t, failure.KindManifestIo, failure.KindOf(err))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoad_InvalidFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Cargo.toml")
	require.NoError(t, os.WriteFile(path, []byte("[package\nname = \"x\"\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, failure.KindManifestParse, failure.KindOf(err))
	assert.Contains(t, err.Error(), path)
}

func TestWrite_ReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.toml")
	require.NoError(t, os.WriteFile(path, []byte(cargoNewManifest), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	lib, err := m.EnsureTable(Lib)
	require.NoError(t, err)
	lib["crate-type"] = []any{"cdylib"}
	require.NoError(t, m.Write(path))

	reloaded, err := Load(path)
	require.NoError(t, err)
	got, ok := reloaded.Get(Lib)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"crate-type": []any{"cdylib"}}, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0644), info.Mode().Perm())
}

func TestWrite_KeepsFileMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.toml")
	require.NoError(t, os.WriteFile(path, []byte(cargoNewManifest), 0600))
	require.NoError(t, os.Chmod(path, 0600))

	m, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, m.Write(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0600), info.Mode().Perm())
}

func TestWrite_NewFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Cargo.toml")
	m, err := Parse([]byte(cargoNewManifest))
	require.NoError(t, err)
	require.NoError(t, m.Write(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0644), info.Mode().Perm())
}

func TestWrite_MissingDirectory(t *testing.T) {
	m, err := Parse([]byte(cargoNewManifest))
	require.NoError(t, err)

	err = m.Write(filepath.Join(t.TempDir(), "gone", "Cargo.toml"))
	require.Error(t, err)
	assert.Equal(t, failure.KindManifestIo, failure.KindOf(err))
}
