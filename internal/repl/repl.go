// Package repl implements the interactive shell cmd/anzenc's `repl`
// subcommand starts: a liner-backed read-eval-print loop in the shape of
// the teacher's own REPL, adapted to run named sample modules (there is
// no parser in this core's scope, so there is no free-form expression
// input — :run/:ir pick a module from the sample registry instead of
// parsing one from the line just typed).
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/pipeline"
	"github.com/anzenlang/anzenc/internal/samples"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// REPL is a running interactive session.
type REPL struct {
	version string
	last    string // last sample name run, for :ir with no argument
}

// New creates a REPL reporting itself as a dev build.
func New() *REPL { return NewWithVersion("dev") }

// NewWithVersion creates a REPL that reports version in its banner.
func NewWithVersion(version string) *REPL {
	if version == "" {
		version = "dev"
	}
	return &REPL{version: version}
}

func (r *REPL) prompt() string { return "anzen> " }

// Start runs the loop until EOF or :quit, reading from in and writing
// prompts/results to out.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	historyFile := filepath.Join(os.TempDir(), ".anzenc_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(l string) (c []string) {
		if !strings.HasPrefix(l, ":") {
			return nil
		}
		for _, cmd := range []string{":help", ":quit", ":list", ":run", ":ir"} {
			if strings.HasPrefix(cmd, l) {
				c = append(c, cmd)
			}
		}
		return c
	})

	fmt.Fprintf(out, "%s %s\n", bold("anzenc"), bold(r.version))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	for {
		input, err := line.Prompt(r.prompt())
		if err == io.EOF {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, ":") {
			if r.handleCommand(input, out) {
				break
			}
			continue
		}

		fmt.Fprintf(out, "%s this core has no parser; use %s or %s\n",
			yellow("note:"), cyan(":run <sample>"), cyan(":list"))
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// handleCommand runs one ":"-prefixed command, returning true if the
// session should end.
func (r *REPL) handleCommand(input string, out io.Writer) bool {
	parts := strings.Fields(input)
	switch parts[0] {
	case ":quit", ":q":
		fmt.Fprintln(out, green("Goodbye!"))
		return true

	case ":help", ":h":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  :help            Show this help")
		fmt.Fprintln(out, "  :quit            Exit the REPL")
		fmt.Fprintln(out, "  :list            List sample modules")
		fmt.Fprintln(out, "  :run <sample>    Bind, solve, lower, and interpret a sample")
		fmt.Fprintln(out, "  :ir [sample]     Lower a sample (or the last one run) and print its IR")

	case ":list":
		fmt.Fprint(out, samples.Describe())

	case ":run":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: :run <sample>")
			return false
		}
		r.runSample(parts[1], out)

	case ":ir":
		name := r.last
		if len(parts) >= 2 {
			name = parts[1]
		}
		if name == "" {
			fmt.Fprintln(out, "Usage: :ir <sample>")
			return false
		}
		r.showIR(name, out)

	default:
		fmt.Fprintf(out, "Unknown command: %s (try :help)\n", input)
	}
	return false
}

func (r *REPL) runSample(name string, out io.Writer) {
	s, ok := samples.Get(name)
	if !ok {
		fmt.Fprintf(out, "%s unknown sample %q\n", red("Error:"), name)
		return
	}
	r.last = name
	cc := ast.NewCompilerContext()
	m := s.Build()
	v, err := pipeline.Run(cc, m)
	if err != nil {
		r.reportIssues(m, out)
		fmt.Fprintf(out, "%s %v\n", red("Error:"), err)
		return
	}
	fmt.Fprintf(out, "%s %v\n", cyan("=>"), v)
}

func (r *REPL) showIR(name string, out io.Writer) {
	s, ok := samples.Get(name)
	if !ok {
		fmt.Fprintf(out, "%s unknown sample %q\n", red("Error:"), name)
		return
	}
	r.last = name
	cc := ast.NewCompilerContext()
	m := s.Build()
	unit, err := pipeline.BuildIR(cc, m)
	if err != nil {
		r.reportIssues(m, out)
		fmt.Fprintf(out, "%s %v\n", red("Error:"), err)
		return
	}
	fmt.Fprint(out, unit.String())
}

func (r *REPL) reportIssues(m *ast.Module, out io.Writer) {
	for _, issue := range m.Issues.Sorted() {
		fmt.Fprintf(out, "%s %s\n", red(issue.Severity.String()+":"), issue.Message)
	}
}
