// Package testutil provides a stand-in for the external project generator
// so generation can be tested without a Rust toolchain.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeCargoScript mimics `cargo new <path>`: it refuses existing
// destinations and lays out Cargo.toml and src/main.rs.
const fakeCargoScript = `#!/bin/sh
if [ "$1" != "new" ] || [ -z "$2" ]; then
  echo "error: unexpected arguments: $*" >&2
  exit 1
fi
dir="$2"
if [ -e "$dir" ]; then
  echo "error: destination '$dir' already exists" >&2
  exit 101
fi
name=$(basename "$dir")
mkdir -p "$dir/src" || exit 101
cat > "$dir/Cargo.toml" <<EOF
[package]
name = "$name"
version = "0.1.0"
edition = "2021"

[dependencies]
EOF
@MAIN@
echo "     Created binary (application) '$name' package" >&2
`

const writeMain = `printf 'fn main() {\n    println!("Hello, world!");\n}\n' > "$dir/src/main.rs"`

// FakeCargo writes an executable generator script and returns its path.
func FakeCargo(t *testing.T) string {
	t.Helper()
	return writeScript(t, strings.Replace(fakeCargoScript, "@MAIN@", writeMain, 1))
}

// FakeCargoWithoutMain behaves like FakeCargo but never creates src/main.rs.
func FakeCargoWithoutMain(t *testing.T) string {
	t.Helper()
	return writeScript(t, strings.Replace(fakeCargoScript, "@MAIN@", ":", 1))
}

// Script writes an arbitrary shell script as an executable and returns its
// path.
func Script(t *testing.T, body string) string {
	t.Helper()
	return writeScript(t, "#!/bin/sh\n"+body+"\n")
}

func writeScript(t *testing.T, contents string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake generator scripts need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "cargo")
	if err := os.WriteFile(path, []byte(contents), 0755); err != nil {
		t.Fatalf("writing fake cargo: %v", err)
	}
	return path
}
