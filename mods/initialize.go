package mods

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/redgush/flycatcher/syntax"
)

// InitModule creates a new project with the given name at the given path: a
// manifest and an entry module in the default source directory.
func InitModule(name, path string) error {
	modFilePath := filepath.Join(path, ModuleFileName)

	// check to see if a module already exists
	_, err := os.Stat(modFilePath)
	if err == nil {
		return errors.New("module file already exists")
	}

	if !os.IsNotExist(err) {
		return errors.Wrap(err, "module file error")
	}

	if !IsValidIdentifier(name) {
		return errors.New("module name must be a valid identifier")
	}

	mod := &tomlModule{
		Name:       name,
		Entry:      "main",
		SourceDirs: []string{"src"},
		WordSize:   64,
		Emit:       "llvm",
		Output:     "out",
		Version:    FlycVersion,
	}

	f, err := os.Create(modFilePath)
	if err != nil {
		return errors.Wrap(err, "error creating module file")
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(&tomlModuleFile{Module: mod}); err != nil {
		return errors.Wrap(err, "error encoding TOML")
	}

	srcDir := filepath.Join(path, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return errors.Wrap(err, "error creating source directory")
	}

	entryPath := filepath.Join(srcDir, "main"+syntax.FileExt)
	if _, err := os.Stat(entryPath); err == nil {
		return nil
	}

	entry := "(module main\n  (func main () void (block)))\n"
	return errors.Wrap(os.WriteFile(entryPath, []byte(entry), 0o644), "error creating entry module")
}
