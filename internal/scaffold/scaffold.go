// Package scaffold generates the model, repository, serializer, service and
// handler files of a new module.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"golang.org/x/mod/modfile"
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Names are the identifiers derived from a module name such as "coupon_code".
type Names struct {
	Module string // Go module path of the project
	Snake  string // coupon_code
	Type   string // CouponCode
	Plural string // CouponCodes
	Table  string // coupon_codes
	Route  string // coupon-codes
}

// NewNames validates name and derives the identifiers used by the templates.
func NewNames(module, name string) (Names, error) {
	if !namePattern.MatchString(name) {
		return Names{}, fmt.Errorf("invalid module name %q: use lower case letters, digits and underscores", name)
	}
	parts := strings.Split(name, "_")
	var typ strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		typ.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return Names{
		Module: module,
		Snake:  name,
		Type:   typ.String(),
		Plural: typ.String() + "s",
		Table:  name + "s",
		Route:  strings.ReplaceAll(name, "_", "-") + "s",
	}, nil
}

// ModulePath reads the module path from the go.mod in dir.
func ModulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("reading go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", errors.New("go.mod has no module directive")
	}
	return path, nil
}

// File is one generated file, relative to the project root.
type File struct {
	Path    string
	Content []byte
}

// Render executes every template for names and gofmt's the result.
func Render(names Names) ([]File, error) {
	files := make([]File, 0, len(templates))
	for _, t := range templates {
		var buf bytes.Buffer
		if err := t.tmpl.Execute(&buf, names); err != nil {
			return nil, fmt.Errorf("executing template %s: %w", t.tmpl.Name(), err)
		}
		formatted, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("formatting %s: %w", t.tmpl.Name(), err)
		}
		files = append(files, File{
			Path:    filepath.Join(t.dir, fmt.Sprintf(t.file, names.Snake)),
			Content: formatted,
		})
	}
	return files, nil
}

// Result lists what Write did.
type Result struct {
	Created []string
	Skipped []string
}

// Write renders the files into root. Existing files are left untouched.
func Write(root string, names Names) (Result, error) {
	var res Result
	files, err := Render(names)
	if err != nil {
		return res, err
	}
	for _, f := range files {
		path := filepath.Join(root, f.Path)
		if _, err := os.Stat(path); err == nil {
			res.Skipped = append(res.Skipped, f.Path)
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return res, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return res, err
		}
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			return res, err
		}
		res.Created = append(res.Created, f.Path)
	}
	return res, nil
}

type fileTemplate struct {
	dir  string
	file string
	tmpl *template.Template
}

var templates = []fileTemplate{
	{"internal/models", "%s.go", modelTemplate},
	{"internal/repositories", "%s_repository.go", repositoryTemplate},
	{"internal/serializers", "%s.go", serializerTemplate},
	{"internal/services", "%s_service.go", serviceTemplate},
	{"internal/handlers", "%s_handler.go", handlerTemplate},
}
