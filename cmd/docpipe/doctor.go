package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	flag "github.com/spf13/pflag"

	docpipe "github.com/alnah/go-docpipe"
	"github.com/alnah/go-docpipe/internal/fileutil"
	"github.com/alnah/go-docpipe/internal/routes"
)

// Doctor status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"` // "ready", "warnings", "errors"
	Config   configInfo   `json:"config"`
	Pipeline pipelineInfo `json:"pipeline"`
	Content  contentInfo  `json:"content"`
	Output   outputInfo   `json:"output"`
	Env      envInfo      `json:"environment"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// configInfo describes where settings came from.
type configInfo struct {
	Source string `json:"source"` // config name or path, "defaults" when none
	Valid  bool   `json:"valid"`
}

// pipelineInfo describes the effective pipeline options.
type pipelineInfo struct {
	DirectiveKinds    []string `json:"directive_kinds"`
	MaxDirectiveDepth int      `json:"max_directive_depth"`
	Languages         []string `json:"languages"`
	TOCDepth          [2]int   `json:"toc_depth"`
}

// contentInfo holds content root discovery results.
type contentInfo struct {
	Dir       string `json:"dir"`
	Exists    bool   `json:"exists"`
	Documents int    `json:"documents"`
}

// outputInfo holds output directory checks.
type outputInfo struct {
	Dir      string `json:"dir"`
	Writable bool   `json:"writable"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	GoMaxProcs    int    `json:"gomaxprocs"`
	Workers       int    `json:"workers"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	result := runDoctor(flags.common, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result, flags.common.verbose)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(common commonFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Config: configInfo{Source: "defaults"},
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			GoMaxProcs: runtime.GOMAXPROCS(0),
		},
	}

	if s := checkConfig(result, common, env); s != nil {
		checkPipeline(result, s)
		checkContent(result, resolveInputDir(s.cfg), s.cfg.Routes.Ignore)
		checkOutput(result, resolveOutputDir(s.cfg))
		result.Env.Workers = docpipe.ResolveWorkers(s.cfg.Build.Workers)
	}
	checkEnvironment(result, env.LookupEnv)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkConfig resolves settings the way build does. Returns nil when the
// configuration is unusable.
func checkConfig(result *doctorResult, common commonFlags, env *Environment) *settings {
	s, err := loadSettings(common, env)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return nil
	}
	if s.source != "" {
		result.Config.Source = s.source
	}
	if err := s.cfg.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return nil
	}
	result.Config.Valid = true

	for _, name := range s.env.Unknown {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Unknown environment variable %s (typo?)", name))
	}
	for _, name := range s.env.Invalid {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Ignoring invalid value of %s", name))
	}
	return s
}

// checkPipeline builds a pipeline from the config to report its options.
func checkPipeline(result *doctorResult, s *settings) {
	p, err := docpipe.NewPipeline(pipelineOptions(s.cfg, s.log, nil)...)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Pipeline = pipelineInfo{
		DirectiveKinds:    p.DirectiveKinds(),
		MaxDirectiveDepth: p.MaxDirectiveDepth(),
		Languages:         p.Languages(),
		TOCDepth:          [2]int{s.cfg.TOC.MinDepth, s.cfg.TOC.MaxDepth},
	}
}

// checkContent counts the routes below dir.
func checkContent(result *doctorResult, dir string, ignore []string) {
	result.Content.Dir = dir
	if !fileutil.DirExists(dir) {
		result.Errors = append(result.Errors, fmt.Sprintf("Content directory not found: %s", dir))
		return
	}
	result.Content.Exists = true

	patterns := append(append([]string(nil), routes.DefaultIgnore...), ignore...)
	rs, err := routes.Discover(dir, patterns)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Content.Documents = len(rs)
	if len(rs) == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("No documents found in %s", dir))
	}
}

// checkOutput verifies the output directory, or its nearest existing
// parent, accepts new files.
func checkOutput(result *doctorResult, dir string) {
	result.Output.Dir = dir

	probe := dir
	for !fileutil.DirExists(probe) {
		parent := filepath.Dir(probe)
		if parent == probe {
			break
		}
		probe = parent
	}

	f, err := os.CreateTemp(probe, ".docpipe-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Output directory not writable: %s", dir))
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	result.Output.Writable = true
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, lookup func(string) (string, bool)) {
	result.Env.Container, result.Env.ContainerHint = isContainer(lookup)

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if val, ok := lookup(v); ok && val != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(lookup func(string) (string, bool)) (bool, string) {
	// Explicit override (highest priority)
	if v, _ := lookup("DOCPIPE_CONTAINER"); v == "1" {
		return true, "DOCPIPE_CONTAINER=1"
	}
	// Docker
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v, _ := lookup("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if v, _ := lookup("KUBERNETES_SERVICE_HOST"); v != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult, verbose bool) {
	fmt.Fprintln(w, "docpipe doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	if r.Config.Valid {
		fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.Source)
	} else {
		fmt.Fprintf(w, "  [ERROR] Source: %s\n", r.Config.Source)
	}
	fmt.Fprintln(w)

	if len(r.Pipeline.DirectiveKinds) > 0 {
		fmt.Fprintln(w, "Pipeline")
		fmt.Fprintf(w, "  [OK] Directive kinds: %v (max depth %d)\n", r.Pipeline.DirectiveKinds, r.Pipeline.MaxDirectiveDepth)
		fmt.Fprintf(w, "  [OK] Highlighting: %d languages\n", len(r.Pipeline.Languages))
		if verbose {
			for _, lang := range r.Pipeline.Languages {
				fmt.Fprintf(w, "         %s\n", lang)
			}
		}
		fmt.Fprintf(w, "  [OK] Table of contents: h%d-h%d\n", r.Pipeline.TOCDepth[0], r.Pipeline.TOCDepth[1])
		fmt.Fprintln(w)
	}

	if r.Content.Dir != "" {
		fmt.Fprintln(w, "Content")
		if r.Content.Exists {
			fmt.Fprintf(w, "  [OK] %s: %d documents\n", r.Content.Dir, r.Content.Documents)
		} else {
			fmt.Fprintf(w, "  [ERROR] %s: not found\n", r.Content.Dir)
		}
		if r.Output.Writable {
			fmt.Fprintf(w, "  [OK] Output %s: writable\n", r.Output.Dir)
		} else {
			fmt.Fprintf(w, "  [ERROR] Output %s: not writable\n", r.Output.Dir)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] GOMAXPROCS: %d\n", r.Env.GoMaxProcs)
	if r.Env.Workers > 0 {
		fmt.Fprintf(w, "  [OK] Workers: %d\n", r.Env.Workers)
	}
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to build")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
