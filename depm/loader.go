package depm

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/redgush/flycatcher/syntax"
)

// SourceLoader provides access to the tree files of a project.
type SourceLoader interface {
	// Exists reports whether a tree file exists at absPath.
	Exists(absPath string) bool

	// Load reads the tree file at absPath.
	Load(absPath, reprPath string) (*syntax.File, error)
}

// Root is a directory modules are searched for in.
type Root struct {
	// Name prefixes the representative paths of modules found in the root:
	// eg. `std`.
	Name string

	// AbsPath is the absolute path to the root directory.
	AbsPath string
}

// candidates returns the paths at which a module with the given import path
// may be located within the root in order of priority.
func (r Root) candidates(importPath string) []string {
	rel := filepath.FromSlash(importPath)
	return []string{
		rel + syntax.FileExt,
		filepath.Join(rel, "mod"+syntax.FileExt),
	}
}

// -----------------------------------------------------------------------------

// FileLoader loads tree files from the file system.
type FileLoader struct{}

func (FileLoader) Exists(absPath string) bool {
	finfo, err := os.Stat(absPath)
	return err == nil && !finfo.IsDir()
}

func (FileLoader) Load(absPath, reprPath string) (*syntax.File, error) {
	return syntax.ReadFile(absPath, reprPath)
}

// MemLoader loads tree files from memory.  It maps slash-separated absolute
// paths to tree text.
type MemLoader map[string]string

func (ml MemLoader) Exists(absPath string) bool {
	_, ok := ml[filepath.ToSlash(absPath)]
	return ok
}

func (ml MemLoader) Load(absPath, reprPath string) (*syntax.File, error) {
	src, ok := ml[filepath.ToSlash(absPath)]
	if !ok {
		return nil, errors.Errorf("no tree file at `%s`", absPath)
	}

	return syntax.ReadString(src, absPath, reprPath)
}

// -----------------------------------------------------------------------------

// locate searches the roots in order for a module with the given import path.
// It returns the absolute and representative paths of the first match.
func locate(loader SourceLoader, roots []Root, importPath string) (string, string, bool) {
	if importPath == "" || strings.HasPrefix(importPath, "/") || strings.Contains(importPath, "..") {
		return "", "", false
	}

	for _, root := range roots {
		for _, rel := range root.candidates(importPath) {
			absPath := filepath.Join(root.AbsPath, rel)
			if loader.Exists(absPath) {
				return absPath, filepath.ToSlash(filepath.Join(root.Name, rel)), true
			}
		}
	}

	return "", "", false
}
