package core

import (
	"os"
	"path/filepath"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// projectRoot walks up from dir to the first directory holding a go.mod.
// go test runs in the package directory, deployed binaries run without a go.mod: dir is returned then.
func projectRoot(dir string) string {
	for curr := dir; ; {
		if fi, err := os.Stat(filepath.Join(curr, "go.mod")); err == nil && !fi.IsDir() {
			return curr
		}
		parent := filepath.Dir(curr)
		if parent == curr {
			return dir
		}
		curr = parent
	}
}
