package cmd

import (
	"os"
	"path/filepath"

	"github.com/ComedicChimera/olive"

	"github.com/redgush/flycatcher/logging"
	"github.com/redgush/flycatcher/mods"
)

// Execute runs the main `flyc` application and returns its exit code.
func Execute() int {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("flyc", "flyc is a tool for managing flycatcher projects", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	buildCmd := cli.AddSubcommand("build", "compile a project", true)
	buildCmd.AddPrimaryArg("project-path", "the path to the project to build", true)
	buildCmd.AddStringArg("output", "o", "the directory to write output to", false)
	buildCmd.AddSelectorArg("emit", "e", "the output format", false, []string{"mir", "llvm"})

	checkCmd := cli.AddSubcommand("check", "check a project and report errors", true)
	checkCmd.AddPrimaryArg("project-path", "the path to the project to check", true)

	modCmd := cli.AddSubcommand("mod", "manage projects", true)
	modInitCmd := modCmd.AddSubcommand("init", "initialize a project", true)
	modInitCmd.AddPrimaryArg("project-name", "the name of the project", true)

	cli.AddSubcommand("version", "print the flyc version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		return 1
	}

	logging.Initialize(result.Arguments["loglevel"].(string))

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		return execBuildCommand(subResult, false)
	case "check":
		return execBuildCommand(subResult, true)
	case "mod":
		return execModCommand(subResult)
	case "version":
		logging.PrintInfoMessage("flyc Version", mods.FlycVersion)
	}

	return 0
}

// execBuildCommand executes the build and check subcommands and handles all
// errors.
func execBuildCommand(result *olive.ArgParseResult, checkOnly bool) int {
	projectRelPath, _ := result.PrimaryArg()

	projectPath, err := filepath.Abs(projectRelPath)
	if err != nil {
		logging.PrintErrorMessage("Path Error", err)
		return 1
	}

	mod, err := mods.LoadModule(projectPath)
	if err != nil {
		logging.PrintErrorMessage("Module Load Error", err)
		return 1
	}

	if outArg, ok := result.Arguments["output"]; ok {
		if mod.OutputDir, err = filepath.Abs(outArg.(string)); err != nil {
			logging.PrintErrorMessage("Path Error", err)
			return 1
		}
	}

	if emitArg, ok := result.Arguments["emit"]; ok {
		mod.Emit = emitArg.(string)
	}

	if runCompiler(mod, checkOnly) {
		return 0
	}

	return 1
}

// execModCommand executes the `mod` subcommand and its subcommands.  It
// handles all errors related to this command.
func execModCommand(result *olive.ArgParseResult) int {
	subcmdName, subResult, _ := result.Subcommand()

	workDir, err := os.Getwd()
	if err != nil {
		logging.PrintErrorMessage("Path Error", err)
		return 1
	}

	switch subcmdName {
	case "init":
		modName, _ := subResult.PrimaryArg()
		if err := mods.InitModule(modName, workDir); err != nil {
			logging.PrintErrorMessage("Module Init Error", err)
			return 1
		}

		logging.PrintInfoMessage("Module Init", "created project `"+modName+"`")
	}

	return 0
}
