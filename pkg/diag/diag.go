// Package diag is the compiler's error sink (C7). All semantic errors in
// the lowering and code-generation core funnel through here; every failure
// is fatal and non-recoverable, printing one diagnostic and aborting the
// process. There is no multi-error batching — the first error wins.
package diag

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/anfsity/Compile-Principle/pkg/token"
)

// SourceFileRecord tracks the name and content of a single input file, kept
// around so a diagnostic can render the offending source line.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

var sourceFiles []SourceFileRecord

// SetSourceFiles stores the source text of every input file for error
// rendering.
func SetSourceFiles(files []SourceFileRecord) {
	sourceFiles = files
}

var colorEnabled = isatty.IsTerminal(os.Stderr.Fd())

// SetColor overrides the automatic TTY detection; the driver calls it with
// its own check of whether stderr is a terminal.
func SetColor(enabled bool) { colorEnabled = enabled }

func colorize(code, s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

func findFileAndLine(tok token.Token) (filename string, line, col int) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(sourceFiles) {
		return "<unknown>", tok.Line, tok.Column
	}
	return sourceFiles[tok.FileIndex].Name, tok.Line, tok.Column
}

func printSourceLine(tok token.Token) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(sourceFiles) || tok.Line == 0 {
		return
	}

	content := sourceFiles[tok.FileIndex].Content
	lineNum := tok.Line
	lineStart := 0
	for i, r := range content {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}

	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(os.Stderr, "  %s\n", string(content[lineStart:lineEnd]))
	fmt.Fprintf(os.Stderr, "  %s%s\n", strings.Repeat(" ", tok.Column-1), colorize("32", "^"))
}

// Error reports a semantic error (§7) at the given token's position and
// aborts compilation. There is no return: the caller's current lowering or
// code-generation pass never resumes.
func Error(tok token.Token, format string, args ...interface{}) {
	filename, line, col := findFileAndLine(tok)
	fmt.Fprintf(os.Stderr, "%s:%d:%d: %s ", filename, line, col, colorize("31", "error:"))
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	printSourceLine(tok)
	os.Exit(1)
}

// ICE reports an internal invariant violation — an unreachable KIR tag or a
// type mismatch the core should have prevented from reaching code
// generation. It is always printed and always fatal, distinct from a
// semantic error.
func ICE(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "internal compiler error: %s\n", fmt.Sprintf(format, args...))
	os.Exit(2)
}
