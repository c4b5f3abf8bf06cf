// Package mods loads and initializes flycatcher project manifests.
package mods

import (
	"github.com/redgush/flycatcher/depm"
)

const (
	// ModuleFileName is the name of the project manifest.
	ModuleFileName = "flyc-mod.toml"

	// FlycVersion is the version of the compiler.
	FlycVersion = "0.1.0"

	// FlycPathVar is the environment variable pointing to the flycatcher
	// installation.  The standard library is found under `<FLYC_PATH>/std`.
	FlycPathVar = "FLYC_PATH"
)

// FlycModule represents a project: specifically, the project configuration.
// All paths are absolute.
type FlycModule struct {
	// Name is the name of the project.
	Name string

	// ModuleRoot is the directory enclosing the manifest.
	ModuleRoot string

	// Entry is the import path of the entry module.
	Entry string

	// SourceDirs are the project-local directories modules are searched in
	// in order of priority.
	SourceDirs []string

	// StdPath is the standard library directory.  It is empty if no standard
	// library is available.
	StdPath string

	// WordSize is the size of a machine word in bits: 32 or 64.
	WordSize int

	// Workers bounds the number of modules compiled at once.  Zero selects
	// the number of available processors.
	Workers int

	// Emit is the output format: `mir` or `llvm`.
	Emit string

	// OutputDir is the directory output is written to.
	OutputDir string

	// Version is the compiler version the project was created with.
	Version string
}

// Roots returns the directories modules are searched in: the standard library
// first and then each source directory.
func (m *FlycModule) Roots() []depm.Root {
	var roots []depm.Root

	if m.StdPath != "" {
		roots = append(roots, depm.Root{Name: "std", AbsPath: m.StdPath})
	}

	for _, dir := range m.SourceDirs {
		roots = append(roots, depm.Root{Name: relName(m.ModuleRoot, dir), AbsPath: dir})
	}

	return roots
}

// IsValidIdentifier returns whether or not a given string would be a valid
// identifier (module name, project name, etc.)
func IsValidIdentifier(idstr string) bool {
	if idstr == "" {
		return false
	}

	if idstr[0] == '_' || ('a' <= idstr[0] && idstr[0] <= 'z') || ('A' <= idstr[0] && idstr[0] <= 'Z') {
		for _, c := range idstr[1:] {
			if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
				continue
			}

			return false
		}

		return true
	}

	return false
}
