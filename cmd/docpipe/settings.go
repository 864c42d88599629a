package main

import (
	"github.com/rs/zerolog"

	docpipe "github.com/alnah/go-docpipe"
	"github.com/alnah/go-docpipe/internal/config"
)

// Output directory used when neither config, env nor flags name one.
const defaultOutputDir = "dist"

// settings is the resolved configuration of one command run.
type settings struct {
	cfg    *config.Config
	source string // config name or path; empty when running on defaults
	env    *envConfig
	log    zerolog.Logger
}

// loadSettings resolves dotenv, config file and environment layers.
// Command flags are merged by the caller before finish.
func loadSettings(common commonFlags, env *Environment) (*settings, error) {
	src, err := newEnvSource(env, common.envFile)
	if err != nil {
		return nil, err
	}
	envCfg := loadEnvConfig(src)

	cfg := config.DefaultConfig()
	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		cfg, err = config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
	}

	applyEnvConfig(envCfg, cfg)
	if common.logFormat != "" {
		cfg.Log.Format = common.logFormat
	}

	return &settings{cfg: cfg, source: name, env: envCfg, log: zerolog.Nop()}, nil
}

// finish validates the merged config and builds the logger.
func (s *settings) finish(common commonFlags, env *Environment) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	s.log = newLogger(env.Stderr, s.cfg.Log, common.quiet, common.verbose)

	for _, name := range s.env.Unknown {
		s.log.Warn().Str("variable", name).Msg("unknown environment variable (typo?)")
	}
	for _, name := range s.env.Invalid {
		s.log.Warn().Str("variable", name).Msg("ignoring invalid environment value")
	}
	return nil
}

// mergeBuildFlags applies build flags and the positional content root.
func mergeBuildFlags(f *buildFlags, args []string, cfg *config.Config) {
	if len(args) > 0 {
		cfg.Input.Dir = args[0]
	}
	if f.changed["output"] {
		cfg.Output.Dir = f.output
	}
	if f.changed["workers"] {
		cfg.Build.Workers = f.workers
	}
	if f.changed["pretty"] {
		cfg.Output.Pretty = f.pretty
	}
	if f.changed["metrics-file"] {
		cfg.Metrics.File = f.metricsFile
	}
	cfg.Routes.Ignore = append(cfg.Routes.Ignore, f.ignore...)
}

// mergeWatchFlags applies watch flags on top of the build flags.
func mergeWatchFlags(f *watchFlags, args []string, cfg *config.Config) {
	mergeBuildFlags(&f.buildFlags, args, cfg)
	if f.changed["debounce"] {
		cfg.Watch.Debounce = f.debounce
	}
	if f.changed["metrics-addr"] {
		cfg.Metrics.Addr = f.metricsAddr
	}
}

// resolveInputDir returns the content root, defaulting to the current
// directory.
func resolveInputDir(cfg *config.Config) string {
	if cfg.Input.Dir == "" {
		return "."
	}
	return cfg.Input.Dir
}

// resolveOutputDir returns the output root, defaulting to "dist".
func resolveOutputDir(cfg *config.Config) string {
	if cfg.Output.Dir == "" {
		return defaultOutputDir
	}
	return cfg.Output.Dir
}

// pipelineOptions translates config into pipeline options.
func pipelineOptions(cfg *config.Config, log zerolog.Logger, rec docpipe.Recorder) []docpipe.Option {
	opts := []docpipe.Option{
		docpipe.WithMaxDirectiveDepth(cfg.Directives.MaxDepth),
		docpipe.WithTOCDepth(cfg.TOC.MinDepth, cfg.TOC.MaxDepth),
		docpipe.WithLogger(log),
		docpipe.WithRecorder(rec),
	}
	if len(cfg.Directives.Kinds) > 0 {
		opts = append(opts, docpipe.WithDirectiveKinds(cfg.Directives.Kinds...))
	}
	if len(cfg.Highlight.Languages) > 0 {
		opts = append(opts, docpipe.WithLanguages(cfg.Highlight.Languages...))
	}
	return opts
}
