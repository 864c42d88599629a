package main

import (
	"fmt"
	"io"
)

// Command names.
const (
	cmdBuild      = "build"
	cmdCheck      = "check"
	cmdWatch      = "watch"
	cmdDoctor     = "doctor"
	cmdVersion    = "version"
	cmdHelp       = "help"
	cmdCompletion = "completion"
)

// commandDescriptions lists the commands in help order.
var commandDescriptions = []struct {
	name string
	desc string
}{
	{cmdBuild, "Process documents and write one JSON tree per route"},
	{cmdCheck, "Process documents without writing output"},
	{cmdWatch, "Build, then rebuild changed documents"},
	{cmdDoctor, "Check configuration and environment"},
	{cmdVersion, "Show version information"},
	{cmdHelp, "Show help for a command"},
	{cmdCompletion, "Generate shell completion script"},
}

// describe returns the one-line description of a command.
func describe(name string) string {
	for _, c := range commandDescriptions {
		if c.name == name {
			return c.desc
		}
	}
	return ""
}

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docpipe <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commandDescriptions {
		fmt.Fprintf(w, "  %-11s%s\n", c.name, c.desc)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'docpipe help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags shared by every command.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --env-file <path>     Dotenv file with DOCPIPE_* variables (default: ./.env)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-document timing and debug logs")
	fmt.Fprintln(w, "      --log-format <s>      Log format: console, json")
}

// printBuildUsage prints usage for the build and check commands.
func printBuildUsage(w io.Writer, name string) {
	fmt.Fprintf(w, "Usage: docpipe %s [dir] [flags]\n", name)
	fmt.Fprintln(w)
	if name == cmdCheck {
		fmt.Fprintln(w, "Process every document and report errors without writing output.")
	} else {
		fmt.Fprintln(w, "Process every document and write <output>/<route>.json.")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  dir    Content root (default: input.dir from config, or .)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: dist)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto, max 32)")
	fmt.Fprintln(w, "      --pretty              Indent JSON output")
	fmt.Fprintln(w, "      --ignore <glob>       Extra ignore pattern, \"**\" spans folders (repeatable)")
	fmt.Fprintln(w, "      --metrics-file <path> Write Prometheus metrics after the build")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docpipe watch [dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build once, then rebuild documents as they change. Outputs of deleted")
	fmt.Fprintln(w, "documents are removed. Stop with Ctrl+C.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: dist)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto, max 32)")
	fmt.Fprintln(w, "      --pretty              Indent JSON output")
	fmt.Fprintln(w, "      --ignore <glob>       Extra ignore pattern (repeatable)")
	fmt.Fprintln(w, "      --metrics-file <path> Write Prometheus metrics after each rebuild")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Watch:")
	fmt.Fprintln(w, "      --debounce <d>        Quiet period before rebuilding (default: 200ms)")
	fmt.Fprintln(w, "      --metrics-addr <addr> Serve /metrics on this address")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docpipe doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check configuration, content root, output directory and environment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output in JSON format")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case cmdBuild, cmdCheck:
		printBuildUsage(env.Stdout, args[0])
	case cmdWatch:
		printWatchUsage(env.Stdout)
	case cmdDoctor:
		printDoctorUsage(env.Stdout)
	case cmdCompletion:
		printCompletionUsage(env.Stdout)
	case cmdVersion:
		fmt.Fprintln(env.Stdout, "Usage: docpipe version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case cmdHelp:
		fmt.Fprintln(env.Stdout, "Usage: docpipe help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
