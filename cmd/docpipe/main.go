package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command in args[1] and returns the exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}
	cmd, rest := args[1], args[2:]

	switch cmd {
	case cmdVersion, "--version":
		fmt.Fprintf(env.Stdout, "docpipe %s\n", Version)
		return ExitSuccess
	case cmdHelp, "-h", "--help":
		return runHelp(rest, env)
	case cmdCompletion:
		return reportError(runCompletion(rest, env), env)
	case cmdDoctor:
		return runDoctorCmd(rest, env)
	case cmdBuild, cmdCheck, cmdWatch:
		// below
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	setMaxProcs(hasVerbose(rest), env)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	var err error
	if cmd == cmdWatch {
		err = runWatch(ctx, rest, env)
	} else {
		err = runBuild(ctx, cmd, rest, env)
	}
	return reportError(err, env)
}

// setMaxProcs matches GOMAXPROCS to the container CPU quota before the
// worker count is resolved.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(verbose bool, env *Environment) {
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}

// hasVerbose reports whether args request verbose output. Flags are
// parsed properly later; this only decides how chatty startup is.
func hasVerbose(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// reportError prints err and maps it to an exit code.
func reportError(err error, env *Environment) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v\n", err)
	return exitCodeFor(err)
}
