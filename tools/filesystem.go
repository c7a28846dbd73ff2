// Filesystem tools: read, write, list and delete.
//
// Information Hiding:
// - File I/O implementation details hidden
// - OS errors rendered as the tool's error text

package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func readFile(in ReadFileInput) Result {
	content, err := os.ReadFile(in.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return FailureResultf("File not found: %s", in.Path)
	}
	if err != nil {
		return FailureResult(err)
	}
	return SuccessResult(string(content))
}

// writeFile creates missing parent directories before writing.
func writeFile(in WriteFileInput) Result {
	if dir := filepath.Dir(in.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return FailureResult(err)
		}
	}
	if err := os.WriteFile(in.Path, []byte(in.Content), 0o644); err != nil {
		return FailureResult(err)
	}
	return SuccessResult(fmt.Sprintf("Successfully wrote to %s", in.Path))
}

func listDirectory(in ListDirectoryInput) Result {
	entries, err := os.ReadDir(in.Path)
	if err != nil {
		return FailureResult(err)
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		kind := "file"
		if e.IsDir() {
			kind = "dir"
		}
		lines = append(lines, kind+": "+e.Name())
	}
	return SuccessResult(strings.Join(lines, "\n"))
}

// deleteFile removes files only; os.Remove would also take empty directories.
func deleteFile(in DeleteFileInput) Result {
	info, err := os.Lstat(in.Path)
	if err != nil {
		return FailureResult(err)
	}
	if info.IsDir() {
		return FailureResult(&fs.PathError{Op: "unlink", Path: in.Path, Err: errors.New("is a directory")})
	}
	if err := os.Remove(in.Path); err != nil {
		return FailureResult(err)
	}
	return SuccessResult(fmt.Sprintf("Successfully deleted %s", in.Path))
}
