package generate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/funvibe/comprehend/internal/cache"
	"github.com/funvibe/comprehend/internal/config"
	"github.com/funvibe/comprehend/internal/logger"
	"github.com/funvibe/comprehend/pkg/comprehend"
)

// Generator compiles manifests into Go files.
type Generator struct {
	// Defaults apply to entries that leave a setting empty.
	Defaults config.Options
	// Cache is optional.
	Cache *cache.Cache
}

// New creates a generator using the project configuration.
func New(cfg *config.Config, c *cache.Cache) *Generator {
	return &Generator{Defaults: cfg.Options(), Cache: c}
}

// Report summarizes one run.
type Report struct {
	Output  string
	Entries int
	// Cached counts entries served from the cache.
	Cached int
}

type generatedFunc struct {
	Name   string
	Doc    string
	Params string
	Type   string
	Code   string
}

type fileContext struct {
	Manifest string
	Package  string
	Imports  []string
	Funcs    []generatedFunc
}

const fileTemplate = `// Code generated by comprehend generate from {{.Manifest}}. DO NOT EDIT.

package {{.Package}}
{{if .Imports}}
import (
{{- range .Imports}}
	"{{.}}"
{{- end}}
)
{{end}}
{{- range .Funcs}}
{{if .Doc}}
// {{.Name}} {{.Doc}}
{{- end}}
func {{.Name}}({{.Params}}) {{.Type}} {
	return {{.Code}}
}
{{end}}`

var fileTmpl = template.Must(template.New("file").Parse(fileTemplate))

// Generate compiles the manifest at path and writes its output file. No
// file is written when any entry fails; all entry errors are returned
// together.
func (g *Generator) Generate(path string) (*Report, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	src, report, err := g.Render(m)
	if err != nil {
		return nil, err
	}

	out := m.OutputPath()
	if err := writeFile(out, src); err != nil {
		return nil, err
	}
	report.Output = out
	logger.LogGenerate(path, out, report.Entries, report.Cached)
	return report, nil
}

// Render compiles every entry of m and returns the formatted file.
func (g *Generator) Render(m *Manifest) ([]byte, *Report, error) {
	report := &Report{Entries: len(m.Entries)}
	ctx := &fileContext{Manifest: filepath.Base(m.path), Package: m.Package}
	importSet := make(map[string]bool)

	var errs []error
	for _, e := range m.Entries {
		res, hit, err := g.compile(m, e)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Name, err))
			continue
		}
		if hit {
			report.Cached++
		}
		for _, imp := range res.Imports {
			importSet[imp] = true
		}
		ctx.Funcs = append(ctx.Funcs, generatedFunc{
			Name:   e.Name,
			Doc:    strings.ReplaceAll(strings.TrimSpace(e.Doc), "\n", "\n// "),
			Params: e.Params,
			Type:   res.Type,
			Code:   indent(res.Code),
		})
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}

	for imp := range importSet {
		ctx.Imports = append(ctx.Imports, imp)
	}
	sort.Strings(ctx.Imports)

	var buf bytes.Buffer
	if err := fileTmpl.Execute(&buf, ctx); err != nil {
		return nil, nil, fmt.Errorf("rendering %s: %w", m.path, err)
	}
	// Entry sources may call packages that only the fragments know about,
	// such as slices.Values; goimports adds them and formats the file.
	src, err := imports.Process(m.OutputPath(), buf.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8})
	if err != nil {
		return nil, nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return src, report, nil
}

// compile returns the entry's compiled form, consulting the cache.
func (g *Generator) compile(m *Manifest, e Entry) (*comprehend.Result, bool, error) {
	target, err := e.Target()
	if err != nil {
		return nil, false, err
	}
	opts := e.Options(g.Defaults)

	var key string
	if g.Cache != nil {
		key = cache.Key(e.Source, target.String(), opts)
		entry, err := g.Cache.Get(key)
		if err != nil {
			logger.Warn("cache lookup failed", "entry", e.Name, "error", err)
		} else if entry != nil {
			return &comprehend.Result{Code: entry.Code, Type: entry.Type, Imports: entry.Imports}, true, nil
		}
	}

	res, err := comprehend.CompileFile(m.path+"#"+e.Name, e.Source, target, opts)
	if err != nil {
		return nil, false, err
	}
	if g.Cache != nil {
		if err := g.Cache.Put(key, cache.Entry{Code: res.Code, Type: res.Type, Imports: res.Imports}); err != nil {
			logger.Warn("cache store failed", "entry", e.Name, "error", err)
		}
	}
	return res, false, nil
}

// indent shifts every line after the first one tab right so a generated
// expression sits inside a function body.
func indent(code string) string {
	return strings.ReplaceAll(code, "\n", "\n\t")
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".comprehend-*.go")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
