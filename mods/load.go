package mods

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/redgush/flycatcher/logging"
)

// tomlModuleFile represents the manifest as it is encoded in TOML.
type tomlModuleFile struct {
	Module *tomlModule `toml:"module"`
}

// tomlModule represents a project as it is encoded in TOML.
type tomlModule struct {
	Name       string   `toml:"name"`
	Entry      string   `toml:"entry"`
	SourceDirs []string `toml:"source-dirs"`
	StdPath    string   `toml:"std-path,omitempty"`
	WordSize   int      `toml:"word-size"`
	Workers    int      `toml:"workers,omitempty"`
	Emit       string   `toml:"emit"`
	Output     string   `toml:"output"`
	Version    string   `toml:"flyc-version"`
}

// LoadModule loads and validates the manifest of the project in the given
// directory.
func LoadModule(path string) (*FlycModule, error) {
	buff, err := os.ReadFile(filepath.Join(path, ModuleFileName))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read module file")
	}

	tmf := &tomlModuleFile{}
	if err := toml.Unmarshal(buff, tmf); err != nil {
		return nil, errors.Wrap(err, "failed to parse module file")
	}

	if tmf.Module == nil {
		return nil, errors.Errorf("module file at %s is missing a [module] table", path)
	}

	if err := validateModule(path, tmf.Module); err != nil {
		return nil, err
	}

	mod := &FlycModule{
		Name:       tmf.Module.Name,
		ModuleRoot: path,
		Entry:      tmf.Module.Entry,
		WordSize:   tmf.Module.WordSize,
		Workers:    tmf.Module.Workers,
		Emit:       tmf.Module.Emit,
		OutputDir:  absJoin(path, tmf.Module.Output),
		Version:    tmf.Module.Version,
	}

	for _, dir := range tmf.Module.SourceDirs {
		mod.SourceDirs = append(mod.SourceDirs, absJoin(path, dir))
	}

	if mod.StdPath, err = findStdPath(path, tmf.Module.StdPath); err != nil {
		return nil, err
	}

	return mod, nil
}

// validateModule checks the manifest contents and fills in defaults.
func validateModule(path string, mod *tomlModule) error {
	if mod.Name == "" {
		return errors.Errorf("missing module name for module at %s", path)
	}

	if !IsValidIdentifier(mod.Name) {
		return errors.New("module name must be a valid identifier")
	}

	if mod.Entry == "" {
		mod.Entry = "main"
	}

	if len(mod.SourceDirs) == 0 {
		mod.SourceDirs = []string{"src"}
	}

	switch mod.WordSize {
	case 0:
		mod.WordSize = 64
	case 32, 64:
	default:
		return errors.Errorf("word size must be 32 or 64, not %d", mod.WordSize)
	}

	if mod.Workers < 0 {
		return errors.New("worker count cannot be negative")
	}

	switch mod.Emit {
	case "":
		mod.Emit = "llvm"
	case "mir", "llvm":
	default:
		return errors.Errorf("%s is not a valid output format", mod.Emit)
	}

	if mod.Output == "" {
		mod.Output = "out"
	}

	if mod.Version != FlycVersion {
		logging.LogBuildWarning(
			"Module",
			fmt.Sprintf("version of module `%s` (v%s) does not match current flyc version (v%s)", mod.Name, mod.Version, FlycVersion),
		)
	}

	return nil
}

// findStdPath determines the standard library directory: the manifest's
// `std-path` if given, otherwise `<FLYC_PATH>/std`.  No standard library is
// used if neither is set.
func findStdPath(modRoot, stdPath string) (string, error) {
	if stdPath != "" {
		return checkDir(absJoin(modRoot, stdPath), "std-path")
	}

	flycPath, ok := os.LookupEnv(FlycPathVar)
	if !ok || flycPath == "" {
		return "", nil
	}

	if _, err := checkDir(flycPath, FlycPathVar); err != nil {
		return "", err
	}

	return filepath.Join(flycPath, "std"), nil
}

func checkDir(path, what string) (string, error) {
	finfo, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(err, "error loading %s", what)
	}

	if !finfo.IsDir() {
		return "", errors.Errorf("error loading %s: must point to a directory", what)
	}

	return path, nil
}

// absJoin makes path absolute relative to base.
func absJoin(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(base, path)
}

// relName returns the slash-separated name of dir relative to base for use in
// representative paths.
func relName(base, dir string) string {
	if rel, err := filepath.Rel(base, dir); err == nil {
		return filepath.ToSlash(rel)
	}

	return filepath.Base(dir)
}
