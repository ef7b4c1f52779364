// Command startapp scaffolds the model, repository, serializer, service and
// handler files for a new module of the project.
//
// Usage:
//
//	startapp [-dir .] <name>
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"ideaspark/internal/scaffold"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("startapp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", ".", "project root containing go.mod")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: startapp [-dir .] <name>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	module, err := scaffold.ModulePath(*dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	names, err := scaffold.NewNames(module, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	res, err := scaffold.Write(*dir, names)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	for _, p := range res.Created {
		fmt.Fprintf(stdout, "created %s\n", p)
	}
	for _, p := range res.Skipped {
		fmt.Fprintf(stdout, "skipped %s (already exists)\n", p)
	}
	fmt.Fprintf(stdout, "\nNext steps:\n")
	fmt.Fprintf(stdout, "  1. add &models.%s{} to models.All()\n", names.Type)
	fmt.Fprintf(stdout, "  2. construct services.New%sService in main.go\n", names.Type)
	fmt.Fprintf(stdout, "  3. register handlers.New%sHandler in internal/server\n", names.Type)
	return 0
}
