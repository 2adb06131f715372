// Command kirc is the driver binary: it reads a source file, runs it
// through the frontend, the lowering core, and (optionally) the RISC-V
// backend, and writes the requested output. Structured the way the
// donor's cmd/gbc/main.go drives its own pipeline — a flat sequence of
// named phases logged to stderr, reading all flags up front before doing
// any work — generalized to this repository's two-lowering core instead
// of gbc's parse/typecheck/codegen/link pipeline.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goforj/godump"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"
	"golang.org/x/term"

	"github.com/anfsity/Compile-Principle/pkg/clix"
	"github.com/anfsity/Compile-Principle/pkg/diag"
	"github.com/anfsity/Compile-Principle/pkg/frontend"
	"github.com/anfsity/Compile-Principle/pkg/lower"
	"github.com/anfsity/Compile-Principle/pkg/riscv"
)

func main() {
	fs := clix.NewFlagSet("kirc")

	var (
		outPath   string
		emitKoopa bool
		emitRiscv bool
		dumpAST   bool
		timing    bool
		buildID   bool
	)
	fs.String(&outPath, "o", "", "output path (default: stdout)")
	fs.Bool(&emitKoopa, "koopa", false, "emit KIR text")
	fs.Bool(&emitRiscv, "riscv", false, "emit RISC-V assembly")
	fs.Bool(&dumpAST, "dump-ast", false, "pretty-print the parsed AST and exit")
	fs.Bool(&timing, "S", false, "print per-phase timing to stderr")
	fs.Bool(&buildID, "build-id", false, "stamp a build identifier into the emitted assembly")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "kirc:", err)
		fmt.Fprint(os.Stderr, fs.Usage())
		os.Exit(1)
	}

	inputs := fs.Args()
	if len(inputs) != 1 {
		fmt.Fprint(os.Stderr, fs.Usage())
		os.Exit(1)
	}
	path := inputs[0]

	colorOK := isatty.IsTerminal(os.Stderr.Fd())
	diag.SetColor(colorOK)

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kirc: could not read '%s': %v\n", path, err)
		os.Exit(1)
	}
	runes := []rune(string(src))
	diag.SetSourceFiles([]diag.SourceFileRecord{{Name: path, Content: runes}})

	phase := newPhaseTimer(timing)

	phase.start("parse")
	toks := frontend.NewLexer(runes, 0).Tokenize()
	root := frontend.Parse(toks)
	phase.stop()

	if dumpAST {
		godump.Dump(root)
		return
	}

	phase.start("lower")
	lw := lower.New()
	prog := lw.Lower(root)
	koopaText := lw.B.Text()
	phase.stop()

	var out string
	switch {
	case emitRiscv:
		phase.start("codegen")
		out = riscv.Generate(prog)
		phase.stop()
		if buildID {
			out = fmt.Sprintf("# build-id: %s\n%s", uuid.New().String(), out)
		}
	case emitKoopa:
		out = koopaText
	default:
		out = koopaText
	}

	writeOutput(outPath, out)
	phase.report(len(out))
}

func writeOutput(path, text string) {
	if path == "" {
		fmt.Print(text)
		return
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "kirc: could not write '%s': %v\n", path, err)
		os.Exit(1)
	}
}

// terminalWidth reports the terminal's column count, falling back to 80
// when stderr isn't a TTY — used only to decide whether the timing
// summary wraps its separator line.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// phaseTimer accumulates per-phase wall-clock durations for -S, using
// the same phase vocabulary (parse/lower/codegen) as the compiled
// program's own starttime/stoptime runtime intrinsics.
type phaseTimer struct {
	enabled bool
	names   []string
	durs    []time.Duration
	cur     string
	begun   time.Time
}

func newPhaseTimer(enabled bool) *phaseTimer { return &phaseTimer{enabled: enabled} }

func (p *phaseTimer) start(name string) {
	if !p.enabled {
		return
	}
	p.cur = name
	p.begun = time.Now()
}

func (p *phaseTimer) stop() {
	if !p.enabled {
		return
	}
	p.names = append(p.names, p.cur)
	p.durs = append(p.durs, time.Since(p.begun))
}

func (p *phaseTimer) report(outputBytes int) {
	if !p.enabled {
		return
	}
	sep := strings.Repeat("-", min(terminalWidth(), 40))
	fmt.Fprintln(os.Stderr, sep)
	var total time.Duration
	for i, name := range p.names {
		fmt.Fprintf(os.Stderr, "  %-8s %v\n", name, p.durs[i])
		total += p.durs[i]
	}
	fmt.Fprintf(os.Stderr, "  %-8s %v\n", "total", total)
	fmt.Fprintf(os.Stderr, "  output:  %s\n", humanize.Bytes(uint64(outputBytes)))
	fmt.Fprintf(os.Stderr, "  %s\n", strftime.Format("%Y-%m-%d %H:%M:%S", time.Now()))
}
