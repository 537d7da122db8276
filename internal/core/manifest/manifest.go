// Package manifest provides an order-preserving view over a Cargo.toml
// document.
//
// Every top-level entry is kept as the decoder produced it. Only the lib and
// dependencies sections can be edited; everything else is carried through to
// the output untouched.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/bardock-dev/bardock/internal/core/failure"
)

// Sections cargo recognizes at the top level of a manifest.
var Sections = []string{
	"cargo-features",
	"package",
	"project",
	"lib",
	"bin",
	"example",
	"test",
	"bench",
	"dependencies",
	"dev-dependencies",
	"build-dependencies",
	"features",
	"target",
	"workspace",
	"profile",
	"patch",
	"replace",
	"badges",
}

// Sections that may be created or edited through EnsureTable.
const (
	Lib          = "lib"
	Dependencies = "dependencies"
)

// Table is a decoded TOML table.
type Table = map[string]any

// Manifest is a parsed manifest document. The zero value is an empty
// document.
type Manifest struct {
	keys   []string
	values map[string]any
}

// Parse decodes a manifest document.
func Parse(data []byte) (*Manifest, error) {
	values := make(map[string]any)
	md, err := toml.Decode(string(data), &values)
	if err != nil {
		var pe toml.ParseError
		if errors.As(err, &pe) {
			return nil, failure.New(failure.KindManifestParse, err,
				"manifest is not a valid TOML document (line %d)", pe.Position.Line)
		}
		return nil, failure.New(failure.KindManifestParse, err, "manifest is not a valid TOML document")
	}

	m := &Manifest{values: values}
	seen := make(map[string]bool, len(values))
	for _, key := range md.Keys() {
		if len(key) == 0 || seen[key[0]] {
			continue
		}
		seen[key[0]] = true
		m.keys = append(m.keys, key[0])
	}
	// Anything the metadata did not report still has to survive; append it
	// in a stable order.
	var rest []string
	for k := range values {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	m.keys = append(m.keys, rest...)
	return m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failure.New(failure.KindManifestIo, err, "unable to read manifest %s", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, failure.Wrap(err, "unable to parse manifest %s", path)
	}
	return m, nil
}

// Keys returns the top-level keys in document order.
func (m *Manifest) Keys() []string {
	return slices.Clone(m.keys)
}

// Get returns the value stored under a top-level key.
func (m *Manifest) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Section returns the table stored under key. ok is false when the key is
// absent. A key holding anything other than a table is a shape error.
func (m *Manifest) Section(key string) (t Table, ok bool, err error) {
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	t, isTable := v.(map[string]any)
	if !isTable {
		return nil, true, failure.New(failure.KindManifestShape, nil,
			"`%s` in the manifest must be a table, found %s", key, kindOf(v))
	}
	return t, true, nil
}

// EnsureTable returns the editable lib or dependencies table, adding an
// empty one at the end of the document when the key is absent.
func (m *Manifest) EnsureTable(key string) (Table, error) {
	if key != Lib && key != Dependencies {
		return nil, fmt.Errorf("manifest section %q is read-only", key)
	}
	t, ok, err := m.Section(key)
	if err != nil {
		return nil, err
	}
	if ok {
		return t, nil
	}
	if m.values == nil {
		m.values = make(map[string]any)
	}
	t = make(Table)
	m.values[key] = t
	m.keys = append(m.keys, key)
	return t, nil
}

// Unrecognized returns the top-level keys cargo does not know about, in
// document order.
func (m *Manifest) Unrecognized() []string {
	var out []string
	for _, k := range m.keys {
		if !slices.Contains(Sections, k) {
			out = append(out, k)
		}
	}
	return out
}

// Encode serializes the manifest. Top-level values that are not tables come
// first, as TOML requires, followed by the tables. Both groups keep document
// order; keys inside a table are sorted by the encoder, so equal manifests
// always encode to equal bytes.
func (m *Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	var tables []string
	for _, k := range m.keys {
		v := m.values[k]
		if isTable(v) {
			tables = append(tables, k)
			continue
		}
		if err := encodeEntry(&buf, k, v); err != nil {
			return nil, err
		}
	}
	for _, k := range tables {
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		if err := encodeEntry(&buf, k, m.values[k]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Write encodes the manifest and replaces the file at path. The document is
// written to a temporary file in the same directory first and renamed over
// path, so a failed write leaves the previous manifest in place. The
// replacement keeps the permissions of the file it replaces.
func (m *Manifest) Write(path string) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return failure.New(failure.KindManifestIo, err, "unable to write manifest data to file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return failure.New(failure.KindManifestIo, err, "unable to write manifest data to file")
	}
	if err := tmp.Close(); err != nil {
		return failure.New(failure.KindManifestIo, err, "unable to write manifest data to file")
	}
	if err := os.Chmod(tmp.Name(), fileMode(path)); err != nil {
		return failure.New(failure.KindManifestIo, err, "unable to write manifest data to file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return failure.New(failure.KindManifestIo, err, "unable to replace manifest %s", path)
	}
	return nil
}

// fileMode returns the permissions of the file being replaced, or 0644 when
// there is none.
func fileMode(path string) fs.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0644
}

func encodeEntry(w io.Writer, key string, v any) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	if err := enc.Encode(map[string]any{key: v}); err != nil {
		return failure.New(failure.KindManifestSerialize, err, "unable to serialize manifest key `%s`", key)
	}
	return nil
}

// isTable reports whether the encoder writes v under a table header rather
// than as a key/value line.
func isTable(v any) bool {
	switch v := v.(type) {
	case map[string]any:
		return true
	case []map[string]any:
		return len(v) > 0
	case []any:
		if len(v) == 0 {
			return false
		}
		for _, e := range v {
			if _, ok := e.(map[string]any); !ok {
				return false
			}
		}
		return true
	}
	return false
}

func kindOf(v any) string {
	switch v.(type) {
	case string:
		return "a string"
	case int64:
		return "an integer"
	case float64:
		return "a float"
	case bool:
		return "a boolean"
	case time.Time:
		return "a datetime"
	case []any, []map[string]any:
		return "an array"
	case map[string]any:
		return "a table"
	}
	return fmt.Sprintf("%T", v)
}
