// Command anzenc runs and inspects the sample modules this core ships,
// the way the teacher's cmd/ailang drives its own evaluator, rebuilt here
// around cobra subcommands instead of a hand-rolled flag switch.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/loader"
	"github.com/anzenlang/anzenc/internal/pipeline"
	"github.com/anzenlang/anzenc/internal/repl"
	"github.com/anzenlang/anzenc/internal/samples"
)

var (
	Version = "dev"

	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

// projectConfig is the shape of an optional anzen.yaml sitting in the
// working directory: stdlib location, color preference, and tracing
// flags a project can pin down instead of passing on every invocation.
type projectConfig struct {
	StdlibPath string `yaml:"stdlib_path"`
	Color      *bool  `yaml:"color"`
	Trace      bool   `yaml:"trace"`
}

func loadProjectConfig() projectConfig {
	var cfg projectConfig
	data, err := os.ReadFile("anzen.yaml")
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s: anzen.yaml: %v\n", red("Warning"), err)
		return projectConfig{}
	}
	return cfg
}

func main() {
	cfg := loadProjectConfig()
	if cfg.Color != nil {
		color.NoColor = !*cfg.Color
	}

	root := &cobra.Command{
		Use:     "anzenc",
		Short:   "Driver for the anzen compiler core",
		Version: Version,
	}

	root.AddCommand(runCmd(cfg), buildIRCmd(), replCmd(cfg), listCmd(), loadCmd(cfg))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the sample modules this core ships",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(samples.Describe())
			return nil
		},
	}
}

func runCmd(cfg projectConfig) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "run <sample>",
		Short: "Run a sample module through binding, solving, lowering, and interpretation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := samples.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown sample %q (see `anzenc list`)", args[0])
			}
			if trace || cfg.Trace {
				fmt.Fprintf(os.Stderr, "%s running %s\n", bold("trace:"), filepath.Clean(s.Name))
			}
			cc := ast.NewCompilerContext()
			m := s.Build()
			v, err := pipeline.Run(cc, m)
			if err != nil {
				reportIssues(m)
				return err
			}
			fmt.Printf("%s %v\n", green("=>"), v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print the sample name before running it")
	return cmd
}

func buildIRCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-ir <sample>",
		Short: "Lower a sample module to IR and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := samples.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown sample %q (see `anzenc list`)", args[0])
			}
			cc := ast.NewCompilerContext()
			m := s.Build()
			unit, err := pipeline.BuildIR(cc, m)
			if err != nil {
				reportIssues(m)
				return err
			}
			fmt.Print(unit.String())
			return nil
		},
	}
}

func replCmd(cfg projectConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive sample REPL",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := repl.NewWithVersion(Version)
			r.Start(os.Stdin, os.Stdout)
			return nil
		},
	}
}

func loadCmd(cfg projectConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "load <module-id>",
		Short: "Resolve and normalize a module identifier against the project's stdlib_path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := cfg.StdlibPath
			if base == "" {
				base = "."
			}
			cc := ast.NewCompilerContext()
			l := loader.New(cc, base, loader.ParseNone)
			m, err := l.Load(args[0])
			if err != nil {
				return err
			}
			switch loader.ClassifyModuleID(args[0]) {
			case loader.KindBuiltin, loader.KindStdlib:
				fmt.Printf("%s %s is a distinguished module; no source to load\n", green("=>"), m.Buffer)
			default:
				fmt.Printf("%s resolved %s\n", green("=>"), loader.CanonicalModuleID(args[0]))
			}
			return nil
		},
	}
}

func reportIssues(m *ast.Module) {
	for _, issue := range m.Issues.Sorted() {
		fmt.Fprintf(os.Stderr, "%s %s\n", red(issue.Severity.String()+":"), issue.Message)
	}
}
