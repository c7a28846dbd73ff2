// searchFiles: glob discovery without reading content.
//
// Hidden entries (a path segment starting with '.') are skipped unless the
// pattern itself names a hidden segment.

package tools

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const noFilesFound = "No files found"

func searchFiles(ctx context.Context, in SearchFilesInput) Result {
	dir := in.Directory
	if dir == "" {
		dir = "."
	}

	pattern := filepath.ToSlash(in.Pattern)
	if path.IsAbs(pattern) {
		dir, pattern = doublestar.SplitPattern(pattern)
	}
	pattern = strings.TrimPrefix(pattern, "./")

	if !doublestar.ValidatePattern(pattern) {
		return FailureResultf("invalid glob pattern %q: %v", in.Pattern, doublestar.ErrBadPattern)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return FailureResult(err)
	}
	if !info.IsDir() {
		return FailureResultf("not a directory: %s", dir)
	}

	includeHidden := namesHidden(pattern)
	var matches []string
	err = doublestar.GlobWalk(os.DirFS(dir), pattern, func(match string, _ fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !includeHidden && isHidden(match) {
			return nil
		}
		matches = append(matches, match)
		return nil
	}, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return FailureResult(fmt.Errorf("search %s: %w", dir, err))
	}

	if len(matches) == 0 {
		return SuccessResult(noFilesFound)
	}
	return SuccessResult(strings.Join(matches, "\n"))
}

func isHidden(p string) bool {
	for _, segment := range strings.Split(p, "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}

func namesHidden(pattern string) bool {
	return strings.HasPrefix(pattern, ".") || strings.Contains(pattern, "/.")
}
