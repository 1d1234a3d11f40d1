package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFakeTool writes an executable shell script named name into dir and
// returns its path. The script body is whatever the test needs the "tool" to
// do when invoked.
func WriteFakeTool(t *testing.T, dir, name, script string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	return path
}

// WriteFakeGenerator writes a stand-in generator that understands the real
// invocation shape: it creates the -o target and, when asked, the header
// file, so executor tests can assert on produced outputs without flex or
// bison installed.
func WriteFakeGenerator(t *testing.T, dir, name string) string {
	t.Helper()

	script := `out=""
hdr=""
for arg in "$@"; do
  case "$arg" in
    --version) echo "` + name + ` 9.9.9"; exit 0;;
    --header-file=*) hdr="${arg#--header-file=}";;
    --defines=*) hdr="${arg#--defines=}";;
    -o*) out="${arg#-o}";;
  esac
done
if [ -z "$out" ]; then
  echo "no output requested" >&2
  exit 1
fi
echo "generated" > "$out"
if [ -n "$hdr" ]; then
  echo "header" > "$hdr"
fi`
	return WriteFakeTool(t, dir, name, script)
}
