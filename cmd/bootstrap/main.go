// Command bootstrap prepares a fresh checkout: it downloads modules, formats
// the sources and vets every package.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// step is one external tool invocation.
type step struct {
	name     string
	args     []string
	optional bool // skipped with a warning when the tool is not installed
	hint     string
}

var steps = []step{
	{name: "go", args: []string{"mod", "download"}},
	{name: "gofmt", args: []string{"-l", "-w", "."}},
	{name: "goimports", args: []string{"-w", "."}, optional: true,
		hint: "go install golang.org/x/tools/cmd/goimports@latest"},
	{name: "go", args: []string{"vet", "./..."}},
}

func main() {
	dir := flag.String("dir", ".", "project root")
	flag.Parse()
	os.Exit(run(*dir, steps, os.Stdout, os.Stderr))
}

// run executes steps in order and returns the exit code of the first one
// that fails.
func run(dir string, steps []step, stdout, stderr io.Writer) int {
	for _, s := range steps {
		label := strings.Join(append([]string{s.name}, s.args...), " ")
		if _, err := exec.LookPath(s.name); err != nil {
			if s.optional {
				fmt.Fprintf(stderr, "skipping %s: %s not found (%s)\n", label, s.name, s.hint)
				continue
			}
			fmt.Fprintf(stderr, "Error: %s not found in PATH\n", s.name)
			return 127
		}

		fmt.Fprintf(stdout, "==> %s\n", label)
		cmd := exec.Command(s.name, s.args...)
		cmd.Dir = dir
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(stderr, "Error: %s failed: %v\n", label, err)
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
				return exitErr.ExitCode()
			}
			return 1
		}
	}

	fmt.Fprintln(stdout, "\nDone. Next steps:")
	fmt.Fprintln(stdout, "  cp .env.example .env   # adjust DB_* and SECRET_KEY")
	fmt.Fprintln(stdout, "  go run .               # start the API")
	fmt.Fprintln(stdout, "  go run ./cmd/startapp <name>")
	return 0
}
