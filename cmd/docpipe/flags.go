package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	envFile   string
	logFormat string
	quiet     bool
	verbose   bool
}

// buildFlags holds all flags for the build and check commands.
type buildFlags struct {
	common      commonFlags
	output      string
	workers     int
	pretty      bool
	metricsFile string
	ignore      []string

	// changed records the flags given on the command line, so zero values
	// can still override the config file.
	changed map[string]bool
}

// watchFlags holds all flags for the watch command.
type watchFlags struct {
	buildFlags
	debounce    string
	metricsAddr string
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.envFile, "env-file", "", "dotenv file with DOCPIPE_* variables (default: ./.env if present)")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-document timing and debug logs")
}

// addBuildFlags adds output and batch flags to a FlagSet.
func addBuildFlags(fs *flag.FlagSet, f *buildFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: dist)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.pretty, "pretty", false, "indent JSON output")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the build")
	fs.StringArrayVar(&f.ignore, "ignore", nil, "extra ignore glob, relative to the content root (repeatable)")
}

// addWatchFlags adds watch mode flags to a FlagSet.
func addWatchFlags(fs *flag.FlagSet, f *watchFlags) {
	fs.StringVar(&f.debounce, "debounce", "", "quiet period before rebuilding (e.g., 200ms)")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve /metrics on this address (e.g., 127.0.0.1:9090)")
}

func recordChanged(fs *flag.FlagSet) map[string]bool {
	changed := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { changed[fl.Name] = true })
	return changed
}

// newBuildFlagSet registers the build and check flags. Completion reuses
// it so the flag list has a single source.
func newBuildFlagSet(name string, f *buildFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	addBuildFlags(fs, f)
	addCommonFlags(fs, &f.common)
	fs.Usage = func() { printBuildUsage(os.Stderr, name) }
	return fs
}

// newWatchFlagSet registers the watch flags.
func newWatchFlagSet(f *watchFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(cmdWatch, flag.ContinueOnError)
	addBuildFlags(fs, &f.buildFlags)
	addWatchFlags(fs, f)
	addCommonFlags(fs, &f.common)
	fs.Usage = func() { printWatchUsage(os.Stderr) }
	return fs
}

// newDoctorFlagSet registers the doctor flags.
func newDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(cmdDoctor, flag.ContinueOnError)
	fs.BoolVar(&f.json, "json", false, "output in JSON format")
	addCommonFlags(fs, &f.common)
	fs.Usage = func() { printDoctorUsage(os.Stderr) }
	return fs
}

// parseBuildFlags parses build or check flags and returns positional args.
func parseBuildFlags(name string, args []string) (*buildFlags, []string, error) {
	f := &buildFlags{}
	fs := newBuildFlagSet(name, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.changed = recordChanged(fs)
	return f, fs.Args(), nil
}

// parseWatchFlags parses watch command flags and returns positional args.
func parseWatchFlags(args []string) (*watchFlags, []string, error) {
	f := &watchFlags{}
	fs := newWatchFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.changed = recordChanged(fs)
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string) (*doctorFlags, error) {
	f := &doctorFlags{}
	if err := newDoctorFlagSet(f).Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
