package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/comprehend/internal/cache"
	"github.com/funvibe/comprehend/internal/config"
	"github.com/funvibe/comprehend/internal/generate"
	"github.com/funvibe/comprehend/internal/logger"
	"github.com/funvibe/comprehend/internal/repl"
	"github.com/funvibe/comprehend/internal/server"
	"github.com/funvibe/comprehend/internal/sink"
	"github.com/funvibe/comprehend/internal/watch"
	"github.com/funvibe/comprehend/pkg/comprehend"
)

const usage = `Usage: comprehend <command> [arguments]

Commands:
  compile [flags] [source | file.comp]   Compile one comprehension (stdin when omitted)
  generate [-watch] [manifest]           Write the Go file described by a manifest
  repl                                   Start an interactive session
  serve [-addr host:port]                Serve the gRPC compiler
  cache stats | prune [-older duration]  Inspect the compilation cache
  version                                Print the version
  help                                   Show this message

Settings are read from the nearest comprehend.yaml.
`

// DefaultManifest is used by generate when neither the command line nor
// comprehend.yaml names one.
const DefaultManifest = "comprehensions.yaml"

// app carries the streams and settings shared by every command.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help", "-help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return 0
	case "version", "-version", "--version":
		fmt.Fprintf(stdout, "comprehend %s\n", config.Version)
		return 0
	}

	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	cfg, err := config.Discover(wd)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := initLogger(cfg, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, cfg: cfg}

	switch cmd {
	case "compile":
		return a.compile(rest)
	case "generate", "gen":
		return a.generate(rest)
	case "repl":
		repl.Start(stdout, cfg.Options())
		return 0
	case "serve":
		return a.serve(rest)
	case "cache":
		return a.cache(rest)
	}
	fmt.Fprintf(stderr, "Unknown command: %s\n\n%s", cmd, usage)
	return 2
}

func initLogger(cfg *config.Config, stderr io.Writer) error {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	return logger.Init(logger.Config{
		Level:   level,
		Format:  cfg.Log.Format,
		Output:  stderr,
		LogFile: cfg.Resolve(cfg.Log.File),
	})
}

func (a *app) compile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	target := fs.String("target", "vec", "container kind ("+strings.Join(sink.Names(), ", ")+") or lazy")
	elem := fs.String("elem", "", "element type")
	key := fs.String("key", "", "key type")
	value := fs.String("value", "", "value type")
	dup := fs.String("dup", "", "duplication policy: per_pass or hoisted")
	showTree := fs.Bool("ast", false, "print the parse tree instead of code")
	format := fs.Bool("fmt", false, "reprint the comprehension in canonical form")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	src, file, err := a.readSource(fs.Args())
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}

	switch {
	case *showTree:
		tree, err := comprehend.Tree(src)
		if err != nil {
			return a.report(err)
		}
		fmt.Fprint(a.stdout, tree)
		return 0
	case *format:
		out, err := comprehend.Format(src, 80)
		if err != nil {
			return a.report(err)
		}
		fmt.Fprintln(a.stdout, out)
		return 0
	}

	tgt, err := comprehend.ParseTarget(*target)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 2
	}
	opts := a.cfg.Options()
	if *elem != "" {
		opts.Elem = *elem
	}
	if *key != "" {
		opts.Key = *key
	}
	if *value != "" {
		opts.Value = *value
	}
	if *dup != "" {
		p, err := config.ParseDupPolicy(*dup)
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return 2
		}
		opts.Dup = p
	}

	res, err := comprehend.CompileFile(file, src, tgt, opts)
	if err != nil {
		return a.report(err)
	}
	for _, imp := range res.Imports {
		fmt.Fprintf(a.stdout, "import %q\n", imp)
	}
	if len(res.Imports) > 0 {
		fmt.Fprintln(a.stdout)
	}
	fmt.Fprintf(a.stdout, "// %s\n%s\n", res.Type, res.Code)
	return 0
}

// readSource takes the comprehension from a source file, the arguments
// joined, or stdin.
func (a *app) readSource(args []string) (src, file string, err error) {
	if len(args) == 1 && isSourceFile(args[0]) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return strings.TrimSpace(string(data)), args[0], nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), "", nil
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", "", fmt.Errorf("reading stdin: %w", err)
	}
	src = strings.TrimSpace(string(data))
	if src == "" {
		return "", "", errors.New("no comprehension given")
	}
	return src, "", nil
}

func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (a *app) generate(args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	watchMode := fs.Bool("watch", false, "regenerate whenever the manifest changes")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	manifest := a.cfg.Resolve(a.cfg.Manifest)
	if fs.NArg() > 0 {
		manifest = fs.Arg(0)
	}
	if manifest == "" {
		manifest = DefaultManifest
	}

	c, err := a.openCache()
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
	if c != nil {
		defer c.Close()
	}
	gen := generate.New(a.cfg, c)

	runOnce := func() bool {
		report, err := gen.Generate(manifest)
		if err != nil {
			a.report(err)
			return false
		}
		fmt.Fprintf(a.stdout, "wrote %s (%d comprehensions, %d cached)\n", report.Output, report.Entries, report.Cached)
		return true
	}

	ok := runOnce()
	if !*watchMode {
		if !ok {
			return 1
		}
		return 0
	}

	w, err := watch.New(func(string) { runOnce() }, manifest)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
	defer w.Close()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Fprintf(a.stdout, "watching %s (Ctrl+C to stop)\n", manifest)
	if err := w.Run(ctx); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) serve(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	addr := fs.String("addr", "localhost:7878", "listen address")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	c, err := a.openCache()
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
	if c != nil {
		defer c.Close()
	}

	srv := server.New(a.cfg, c)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		srv.Stop()
	}()
	fmt.Fprintf(a.stdout, "serving %s on %s\n", server.ServiceName, *addr)
	if err := srv.ListenAndServe(*addr); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) cache(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(a.stderr, "usage: comprehend cache stats | prune [-older duration]")
		return 2
	}
	c, err := a.openCache()
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
	if c == nil {
		fmt.Fprintln(a.stderr, "Error: no cache configured (set cache: in comprehend.yaml)")
		return 1
	}
	defer c.Close()

	switch args[0] {
	case "stats":
		n, err := c.Len()
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(a.stdout, "%s: %d entries\n", c.Path(), n)
	case "prune":
		fs := flag.NewFlagSet("cache prune", flag.ContinueOnError)
		fs.SetOutput(a.stderr)
		older := fs.Duration("older", 30*24*time.Hour, "remove entries older than this")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		n, err := c.Prune(time.Now().Add(-*older))
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(a.stdout, "removed %d entries\n", n)
	default:
		fmt.Fprintf(a.stderr, "Unknown cache command: %s\n", args[0])
		return 2
	}
	return 0
}

// openCache returns nil when no cache path is configured.
func (a *app) openCache() (*cache.Cache, error) {
	path := a.cfg.Resolve(a.cfg.Cache)
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	return cache.Open(path)
}

// report prints err to stderr, highlighting diagnostic codes on a terminal.
func (a *app) report(err error) int {
	msg := err.Error()
	if isTerminal(a.stderr) {
		msg = highlightCodes(msg)
	}
	fmt.Fprintln(a.stderr, msg)
	return 1
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	colorRed   = "\033[31m"
	colorReset = "\033[0m"
)

// highlightCodes paints every "[X000]" marker red.
func highlightCodes(msg string) string {
	var b strings.Builder
	for {
		i := strings.Index(msg, "[")
		if i < 0 {
			break
		}
		j := strings.Index(msg[i:], "]")
		if j < 0 {
			break
		}
		b.WriteString(msg[:i])
		b.WriteString(colorRed + msg[i:i+j+1] + colorReset)
		msg = msg[i+j+1:]
	}
	b.WriteString(msg)
	return b.String()
}
