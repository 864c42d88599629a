package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name     string
	Desc     string
	Flags    []flagDef
	TakesDir bool     // accepts a content directory argument
	Args     []string // fixed argument values (shells, command names)
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"log-format": {Values: []string{"console", "json"}},

	"config":       {FileGlob: "*.yaml,*.yml"},
	"env-file":     {FileGlob: "*.env,.env"},
	"metrics-file": {FileGlob: "*.prom"},

	"output": {IsDir: true},
}

var supportedShells = []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	names := make([]string, 0, len(commandDescriptions))
	for _, c := range commandDescriptions {
		names = append(names, c.name)
	}

	return []commandDef{
		{
			Name:     cmdBuild,
			Desc:     describe(cmdBuild),
			Flags:    extractFlagsFromFlagSet(newBuildFlagSet(cmdBuild, &buildFlags{})),
			TakesDir: true,
		},
		{
			Name:     cmdCheck,
			Desc:     describe(cmdCheck),
			Flags:    extractFlagsFromFlagSet(newBuildFlagSet(cmdCheck, &buildFlags{})),
			TakesDir: true,
		},
		{
			Name:     cmdWatch,
			Desc:     describe(cmdWatch),
			Flags:    extractFlagsFromFlagSet(newWatchFlagSet(&watchFlags{})),
			TakesDir: true,
		},
		{
			Name:  cmdDoctor,
			Desc:  describe(cmdDoctor),
			Flags: extractFlagsFromFlagSet(newDoctorFlagSet(&doctorFlags{})),
		},
		{Name: cmdVersion, Desc: describe(cmdVersion)},
		{Name: cmdHelp, Desc: describe(cmdHelp), Args: names},
		{Name: cmdCompletion, Desc: describe(cmdCompletion), Args: supportedShells},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedShell, shell, strings.Join(supportedShells, ", "))
	}
}

// flagWords lists the spellings of every flag of cmd.
func flagWords(cmd commandDef) []string {
	var words []string
	for _, f := range cmd.Flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# bash completion for docpipe\n\n")
	b.WriteString("_docpipe_completions() {\n")
	b.WriteString("    local cur prev\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	fmt.Fprintf(&b, "    local commands=%q\n\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	b.WriteString("        COMPREPLY=( $(compgen -W \"${commands}\" -- \"${cur}\") )\n")
	b.WriteString("        return 0\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${COMP_WORDS[1]}\" in\n")

	for _, cmd := range cmds {
		fmt.Fprintf(&b, "        %s)\n", cmd.Name)

		var valueCases []string
		for _, f := range cmd.Flags {
			pattern := "--" + f.Long
			if f.Short != "" {
				pattern += "|-" + f.Short
			}
			switch f.Type {
			case flagEnum:
				valueCases = append(valueCases, fmt.Sprintf("                %s) COMPREPLY=( $(compgen -W %q -- \"${cur}\") ); return 0 ;;", pattern, strings.Join(f.Values, " ")))
			case flagFile:
				valueCases = append(valueCases, fmt.Sprintf("                %s) COMPREPLY=( $(compgen -f -- \"${cur}\") ); return 0 ;;", pattern))
			case flagDir:
				valueCases = append(valueCases, fmt.Sprintf("                %s) COMPREPLY=( $(compgen -d -- \"${cur}\") ); return 0 ;;", pattern))
			case flagString, flagInt:
				valueCases = append(valueCases, fmt.Sprintf("                %s) return 0 ;;", pattern))
			}
		}
		if len(valueCases) > 0 {
			b.WriteString("            case \"${prev}\" in\n")
			b.WriteString(strings.Join(valueCases, "\n"))
			b.WriteString("\n            esac\n")
		}

		switch {
		case len(cmd.Flags) > 0:
			b.WriteString("            if [[ \"${cur}\" == -* ]]; then\n")
			fmt.Fprintf(&b, "                COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(flagWords(cmd), " "))
			if cmd.TakesDir {
				b.WriteString("            else\n")
				b.WriteString("                COMPREPLY=( $(compgen -d -- \"${cur}\") )\n")
			}
			b.WriteString("            fi\n")
		case len(cmd.Args) > 0:
			fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(cmd.Args, " "))
		}
		b.WriteString("            ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -F _docpipe_completions docpipe\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshEscape makes s safe inside a single-quoted _arguments description.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`)
	return r.Replace(s)
}

func zshFlagSpec(f flagDef) string {
	var action string
	switch f.Type {
	case flagBool:
		action = ""
	case flagEnum:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagFile:
		action = fmt.Sprintf(":%s:_files", f.Long)
	case flagDir:
		action = fmt.Sprintf(":%s:_files -/", f.Long)
	default:
		action = fmt.Sprintf(":%s: ", f.Long)
	}

	desc := zshEscape(f.Desc)
	if f.Short != "" {
		return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
	}
	return fmt.Sprintf("'--%s[%s]%s'", f.Long, desc, action)
}

func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("#compdef docpipe\n\n")
	b.WriteString("_docpipe() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", cmd.Name, zshEscape(cmd.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")

	for _, cmd := range cmds {
		if len(cmd.Flags) == 0 && len(cmd.Args) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", cmd.Name)
		specs := make([]string, 0, len(cmd.Flags)+1)
		for _, f := range cmd.Flags {
			specs = append(specs, zshFlagSpec(f))
		}
		switch {
		case cmd.TakesDir:
			specs = append(specs, "'1:content directory:_files -/'")
		case len(cmd.Args) > 0:
			specs = append(specs, fmt.Sprintf("'1:argument:(%s)'", strings.Join(cmd.Args, " ")))
		}
		b.WriteString("            _arguments -s \\\n                ")
		b.WriteString(strings.Join(specs, " \\\n                "))
		b.WriteString("\n            ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("_docpipe \"$@\"\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// fishQuote single-quotes s for fish.
func fishQuote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s) + "'"
}

func generateFish(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# fish completion for docpipe\n\n")
	b.WriteString("function __fish_docpipe_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_docpipe_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c docpipe -f\n\n")

	for _, cmd := range cmds {
		fmt.Fprintf(&b, "complete -c docpipe -n __fish_docpipe_needs_command -a %s -d %s\n", cmd.Name, fishQuote(cmd.Desc))
	}

	for _, cmd := range cmds {
		cond := fmt.Sprintf("'__fish_docpipe_using_command %s'", cmd.Name)
		b.WriteString("\n")
		for _, f := range cmd.Flags {
			line := "complete -c docpipe -n " + cond
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += " -r -a " + fishQuote(strings.Join(f.Values, " "))
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -r -a '(__fish_complete_directories)'"
			default:
				line += " -r"
			}
			line += " -d " + fishQuote(f.Desc)
			b.WriteString(line + "\n")
		}
		switch {
		case cmd.TakesDir:
			fmt.Fprintf(&b, "complete -c docpipe -n %s -a '(__fish_complete_directories)'\n", cond)
		case len(cmd.Args) > 0:
			fmt.Fprintf(&b, "complete -c docpipe -n %s -a %s\n", cond, fishQuote(strings.Join(cmd.Args, " ")))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// psQuote single-quotes s for PowerShell.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func psList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = psQuote(s)
	}
	return "@(" + strings.Join(quoted, ", ") + ")"
}

func generatePowerShell(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# PowerShell completion for docpipe\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName docpipe -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $elements = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "        %s = %s\n", psQuote(cmd.Name), psQuote(cmd.Desc))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $arguments = @{\n")
	for _, cmd := range cmds {
		words := flagWords(cmd)
		words = append(words, cmd.Args...)
		sort.Strings(words)
		fmt.Fprintf(&b, "        %s = %s\n", psQuote(cmd.Name), psList(words))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    if ($elements.Count -lt 2 -or ($elements.Count -eq 2 -and $wordToComplete -ne '')) {\n")
	b.WriteString("        $commands.GetEnumerator() | Where-Object { $_.Key -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $command = $elements[1]\n")
	b.WriteString("    if ($arguments.ContainsKey($command)) {\n")
	b.WriteString("        $arguments[$command] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	shell := Shell(args[0])
	return GenerateCompletion(env.Stdout, shell)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docpipe completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(docpipe completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(docpipe completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    docpipe completion fish > ~/.config/fish/completions/docpipe.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    docpipe completion powershell | Out-String | Invoke-Expression")
}
