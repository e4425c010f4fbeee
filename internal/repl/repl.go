// Package repl is an interactive shell that compiles comprehensions as
// they are typed and prints the generated Go.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/funvibe/comprehend/internal/config"
	"github.com/funvibe/comprehend/internal/sink"
	"github.com/funvibe/comprehend/pkg/comprehend"
)

const (
	PROMPT              = ">> "
	CONTINUATION_PROMPT = ".. "
)

// Tab completion words: comprehension keywords, commands, target names.
var completionWords = func() []string {
	words := []string{"for", "in", "if", "else", "lazy",
		":help", ":kind", ":lazy", ":elem", ":key", ":value", ":dup", ":ast", ":fmt", ":show", ":quit"}
	return append(words, sink.Names()...)
}()

// Session holds the settings that apply to every compiled line.
type Session struct {
	Target  comprehend.Target
	Options comprehend.Options
	out     io.Writer
}

// NewSession starts with a slice target and the given options.
func NewSession(out io.Writer, opts comprehend.Options) *Session {
	return &Session{Target: comprehend.Eager(comprehend.KindVec), Options: opts.WithDefaults(), out: out}
}

// Start runs the REPL on the terminal until Ctrl+D or :quit.
func Start(out io.Writer, opts comprehend.Options) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(filterCompletions)

	historyFile := filepath.Join(os.TempDir(), ".comprehend_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	s := NewSession(out, opts)
	fmt.Fprintf(out, "comprehend %s\n", config.Version)
	fmt.Fprintln(out, "Type a comprehension such as `x * x for x in 0..10 if x%2 == 0`")
	fmt.Fprintln(out, "Type ':help' for commands, Ctrl+D to quit")
	fmt.Fprintln(out, "")

	var buf strings.Builder
	for {
		prompt := PROMPT
		if buf.Len() > 0 {
			prompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				buf.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out)
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(input)
		full := buf.String()
		if needsMoreInput(full) {
			continue
		}
		buf.Reset()

		if strings.TrimSpace(full) != "" {
			line.AppendHistory(full)
		}
		if s.Eval(full) {
			return
		}
	}
}

// Eval handles one complete input and reports whether the user asked to
// quit.
func (s *Session) Eval(input string) bool {
	trimmed := strings.TrimSpace(input)
	switch {
	case trimmed == "":
		return false
	case trimmed == "exit" || trimmed == "quit":
		return true
	case strings.HasPrefix(trimmed, ":"):
		return s.command(trimmed)
	}

	res, err := comprehend.Compile(trimmed, s.Target, s.Options)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return false
	}
	for _, imp := range res.Imports {
		fmt.Fprintf(s.out, "import %q\n", imp)
	}
	fmt.Fprintf(s.out, "// %s\n%s\n", res.Type, res.Code)
	return false
}

func (s *Session) command(cmd string) bool {
	name, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "Commands:")
		fmt.Fprintln(s.out, "  :kind <name>     Build into a container ("+strings.Join(sink.Names(), ", ")+")")
		fmt.Fprintln(s.out, "  :lazy            Produce an iter.Seq instead of a container")
		fmt.Fprintln(s.out, "  :elem <type>     Element type (also :key, :value)")
		fmt.Fprintln(s.out, "  :dup <policy>    Duplication policy: per_pass or hoisted")
		fmt.Fprintln(s.out, "  :ast <src>       Show the parse tree")
		fmt.Fprintln(s.out, "  :fmt <src>       Reprint in canonical form")
		fmt.Fprintln(s.out, "  :show            Show the current settings")
		fmt.Fprintln(s.out, "  :quit            Exit")

	case ":quit", ":q":
		return true

	case ":kind":
		t, err := sink.ParseTarget(arg)
		if err != nil {
			fmt.Fprintln(s.out, err)
			break
		}
		s.Target = t
		fmt.Fprintf(s.out, "target: %s\n", t)

	case ":lazy":
		s.Target = comprehend.LazyTarget
		fmt.Fprintln(s.out, "target: lazy")

	case ":elem", ":key", ":value":
		if arg == "" {
			fmt.Fprintf(s.out, "usage: %s <type>\n", name)
			break
		}
		switch name {
		case ":elem":
			s.Options.Elem = arg
		case ":key":
			s.Options.Key = arg
		case ":value":
			s.Options.Value = arg
		}
		fmt.Fprintf(s.out, "%s: %s\n", name[1:], arg)

	case ":dup":
		p, err := config.ParseDupPolicy(arg)
		if err != nil {
			fmt.Fprintln(s.out, err)
			break
		}
		s.Options.Dup = p
		fmt.Fprintf(s.out, "dup: %s\n", p)

	case ":ast":
		tree, err := comprehend.Tree(arg)
		if err != nil {
			fmt.Fprintln(s.out, err)
			break
		}
		fmt.Fprint(s.out, tree)

	case ":fmt":
		src, err := comprehend.Format(arg, 80)
		if err != nil {
			fmt.Fprintln(s.out, err)
			break
		}
		fmt.Fprintln(s.out, src)

	case ":show":
		fmt.Fprintf(s.out, "target=%s %s\n", s.Target, s.Options)

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", name)
	}
	return false
}

// needsMoreInput reports whether brackets are still open, ignoring
// brackets inside string and rune literals.
func needsMoreInput(input string) bool {
	depth := 0
	var quote rune
	escaped := false
	for _, ch := range input {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\' && quote != '`':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'', '`':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return depth > 0 || quote == '`'
}

// filterCompletions completes the last word of the line.
func filterCompletions(line string) []string {
	start := strings.LastIndexAny(line, " \t") + 1
	prefix, word := line[:start], line[start:]
	if word == "" {
		return nil
	}
	var out []string
	for _, w := range completionWords {
		if strings.HasPrefix(w, word) {
			out = append(out, prefix+w)
		}
	}
	return out
}
