package locator

import (
	"context"
	"path/filepath"

	"github.com/vk/lexgen/internal/ctxlog"
	"github.com/vk/lexgen/internal/fsutil"
)

// Conventional prefixes searched for the flex runtime library and header.
var runtimePrefixes = []string{"/usr", "/usr/local", "/opt/homebrew", "/opt/local"}

// discoverRuntime fills in the optional runtime library and include directory
// for tools that ship one. Absence is never an error; the fields stay empty.
func discoverRuntime(ctx context.Context, tool *Tool) {
	if tool.Name != "flex" {
		return
	}
	logger := ctxlog.FromContext(ctx)

	var libCandidates, headerCandidates []string
	for _, prefix := range runtimePrefixes {
		for _, lib := range []string{"libfl.so", "libfl.a", "libfl.dylib"} {
			libCandidates = append(libCandidates,
				filepath.Join(prefix, "lib", lib),
				filepath.Join(prefix, "lib64", lib),
			)
		}
		headerCandidates = append(headerCandidates, filepath.Join(prefix, "include", "FlexLexer.h"))
	}

	tool.RuntimeLibrary = fsutil.FirstExistingFile(libCandidates...)
	if header := fsutil.FirstExistingFile(headerCandidates...); header != "" {
		tool.IncludeDir = filepath.Dir(header)
	}

	logger.Debug("Runtime discovery finished.", "tool", tool.Name, "library", tool.RuntimeLibrary, "includeDir", tool.IncludeDir)
}
