package locator

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// probeVersion runs `<path> --version` once and returns both captured streams
// with trailing whitespace stripped. The returned error is non-nil when the
// process could not run or exited non-zero.
func probeVersion(ctx context.Context, path string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(ctx, path, "--version")

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	return strings.TrimRight(outBuf.String(), " \t\r\n"), strings.TrimRight(errBuf.String(), " \t\r\n"), err
}

// ParseVersionBanner extracts the version token from a tool's self-reported
// banner. The pattern strips a leading path/basename/extension prefix and an
// optional parenthesized package name and an optional literal "version"
// marker, then captures the first contiguous non-space token that begins the
// remaining text. Historical banners ("/usr/bin/flex version 2.5.4"), modern
// ones ("flex 2.6.4"), and GNU-style ones ("bison (GNU Bison) 3.8.2") all
// match. A
// banner that does not mention the executable's basename yields an empty
// string, which is not an error.
func ParseVersionBanner(banner, exePath string) string {
	base := filepath.Base(exePath)
	ext := filepath.Ext(base)
	nameWE := strings.TrimSuffix(base, ext)

	pattern := `^.*` + regexp.QuoteMeta(nameWE)
	if ext != "" {
		pattern += `(?:` + regexp.QuoteMeta(ext) + `)?`
	}
	pattern += `"? +(?:\([^)]*\) +)?(?:version +)?(\S+)`

	re, err := regexp.Compile(pattern)
	if err != nil {
		return ""
	}

	match := re.FindStringSubmatch(strings.TrimSpace(banner))
	if match == nil {
		return ""
	}
	return match[1]
}
