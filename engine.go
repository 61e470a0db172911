package main

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/myrkraverk/masp/sb"
)

// MaxRepeatCount bounds .AREPEAT/.IRP iteration counts (spec.md §5's
// "implementation-defined maxima" for repeat count); exceeding it is
// fatal.
const MaxRepeatCount = 1 << 20

// Options configures a new Engine; it is the Go-side equivalent of the
// CLI flags in spec.md §6, already resolved from cobra flags, a
// Config file, and built-in defaults by main().
type Options struct {
	Output            io.Writer
	ErrOutput         io.Writer
	CopySource        bool
	CommentChar       byte
	IncludePaths      []string
	Alternate         bool
	PredefinedSymbols map[string]string
}

// Engine is the preprocessing engine: the dispatcher that reads input
// lines, recognizes directives, performs symbolic substitution, expands
// macros, evaluates conditionals, handles inclusion, and emits
// translated output (spec.md §2, component F+G).
type Engine struct {
	Input   *inputStack
	Symbols *symbolTable
	Macros  *macroStore
	Cond    *conditionalStack
	Emit    *Emitter
	Report  *Reporter

	IncludePaths []string
	Alternate    bool
	Radix        int

	commentLeader byte
}

// NewEngine builds an Engine from Options, pre-loading any symbols the
// caller predefined (CLI -D flags or a Config file's [symbols] table).
func NewEngine(opts Options) *Engine {
	report := newReporter(opts.ErrOutput)
	e := &Engine{
		Input:         newInputStack(),
		Symbols:       newSymbolTable(),
		Macros:        newMacroStore(),
		Cond:          newConditionalStack(),
		Report:        report,
		Emit:          newEmitter(opts.Output, report, opts.CopySource, opts.CommentChar),
		IncludePaths:  opts.IncludePaths,
		Alternate:     opts.Alternate,
		Radix:         10,
		commentLeader: ';',
	}
	for name, val := range opts.PredefinedSymbols {
		e.Symbols.Define(name, sb.FromString(val))
	}
	return e
}

// Run processes each path in order, concatenating their translated
// output into the single stream already wired up in Options.Output
// (spec.md §6). It returns a non-nil error iff any diagnostic was
// reported.
func (e *Engine) Run(paths []string) error {
	var lastName string
	var lastLine int
	for _, p := range paths {
		if err := e.Input.pushFile(p, e.IncludePaths, false); err != nil {
			e.reportPushError("", 0, err)
			continue
		}
		for {
			line, name, lineNo, ok := e.Input.nextLine()
			if !ok {
				break
			}
			lastName, lastLine = name, lineNo
			e.processLine(line, name, lineNo)
		}
	}
	if n := e.Cond.Unclosed(); n > 0 {
		e.Report.Errorf(lastName, lastLine, "%d unclosed conditional block(s) at end of input", n)
	}
	if e.Report.HadError() {
		return fmt.Errorf("masp: completed with errors")
	}
	return nil
}

var assignShorthandRe = regexp.MustCompile(`(?i)^(\w+)\s+\.(ASSIGN|EQU)\b\s*(.*)$`)

// isConditionalControl reports whether upperTok names one of the
// directives spec.md §4.F step 1 exempts from suppression: a suppressed
// block must still parse these so nesting stays balanced and repeat
// bodies still get collected (even though their contents will, in
// turn, be discarded line by line).
func isConditionalControl(upperTok string) bool {
	switch upperTok {
	case ".AIF", ".AELSE", ".AENDI", ".AREPEAT", ".AENDR", ".IRP", ".ENDR":
		return true
	}
	return false
}

// processLine implements the per-line algorithm of spec.md §4.F.
func (e *Engine) processLine(raw, name string, lineNo int) {
	if e.Cond.Suppressed() {
		peekTok, _ := splitFirstToken(strings.TrimSpace(raw))
		if !isConditionalControl(strings.ToUpper(peekTok)) {
			return
		}
	}

	stripped := e.stripTrailingComment(raw, name, lineNo)
	trimmed := strings.TrimSpace(stripped)

	if m := assignShorthandRe.FindStringSubmatch(trimmed); m != nil {
		value := strings.TrimSpace(e.substitute(m[3], name, lineNo))
		e.Symbols.Define(m[1], sb.FromString(value))
		return
	}

	firstTok, rest := splitFirstToken(trimmed)
	if strings.HasPrefix(firstTok, ".") {
		handler, ok := directiveTable[strings.ToUpper(firstTok)]
		if !ok {
			e.Report.Errorf(name, lineNo, "unrecognized directive %s", firstTok)
			return
		}
		substRest := e.substitute(rest, name, lineNo)
		handler(e, rest, substRest, raw, name, lineNo)
		return
	}

	if def, ok := e.Macros.Lookup(firstTok); ok {
		substRest := e.substitute(rest, name, lineNo)
		actuals, ok := splitActuals(substRest)
		if !ok {
			e.Report.Errorf(name, lineNo, "unterminated string literal")
			return
		}
		if err := e.Input.pushMacro(def, actuals); err != nil {
			e.reportPushError(name, lineNo, err)
		}
		return
	}

	translated := e.substitute(stripped, name, lineNo)
	e.Emit.Emit(raw, translated, name, lineNo)
}

// reportPushError routes an inputStack.push failure to the correct
// Reporter tier: ErrInputDepthExceeded is one of spec.md §5/§7's fatal
// implementation-defined maxima and terminates the process via Fatalf;
// any other push error (a resource error, e.g. a missing include file)
// is a recoverable diagnostic via Errorf.
func (e *Engine) reportPushError(name string, lineNo int, err error) {
	if errors.Is(err, ErrInputDepthExceeded) {
		e.Report.Fatalf("%v", err)
		return
	}
	e.Report.Errorf(name, lineNo, "%v", err)
}

// substitute performs the spec.md §4.F step 6 pass over line: \x
// formal-parameter references are bound against the nearest enclosing
// macro frame, bare identifiers are bound against the symbol table,
// and both are skipped inside quoted literals. An unterminated quoted
// literal is reported once, through name/lineNo, as a syntax error
// (spec.md §7); the rest of the line is substituted as usual with
// whatever EatLiteral managed to consume.
func (e *Engine) substitute(line, name string, lineNo int) string {
	in := sb.FromString(line)
	out := sb.New()
	data := in.Bytes()
	n := len(data)
	idx := 0
	for idx < n {
		c := data[idx]
		switch {
		case c == '"' || c == '\'':
			lit := sb.New()
			var ok bool
			idx, ok = in.EatLiteral(idx, lit)
			if !ok {
				e.Report.Errorf(name, lineNo, "unterminated string literal")
			}
			out.AppendBuffer(lit)
		case c == '\\' && idx+1 < n && isIdentStart(data[idx+1]):
			j := idx + 1
			for j < n && isIdentChar(data[j]) {
				j++
			}
			formal := string(data[idx+1 : j])
			if val, ok := e.Input.topBinding(formal); ok {
				out.AppendBuffer(val)
			} else {
				out.AppendBytes(data[idx:j])
			}
			idx = j
		case isIdentStart(c):
			j := idx
			for j < n && isIdentChar(data[j]) {
				j++
			}
			ident := string(data[idx:j])
			if val, ok := e.Symbols.Lookup(ident); ok {
				out.AppendBuffer(val)
			} else {
				out.AppendBytes(data[idx:j])
			}
			idx = j
		default:
			out.AppendChar(c)
			idx++
		}
	}
	return out.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t'
}

// splitFirstToken splits s at the first run of whitespace, returning
// the leading token and the (whitespace-trimmed) remainder.
func splitFirstToken(s string) (string, string) {
	i := 0
	for i < len(s) && !isSpaceByte(s[i]) {
		i++
	}
	tok := s[:i]
	j := i
	for j < len(s) && isSpaceByte(s[j]) {
		j++
	}
	return tok, s[j:]
}

// stripTrailingComment truncates line at the first unquoted occurrence
// of e.commentLeader, per the .COMMENT directive (SPEC_FULL.md's
// supplemental directive table). An unterminated quoted literal is
// reported through name/lineNo (spec.md §7); scanning still stops at
// end-of-line as EatLiteral leaves it.
func (e *Engine) stripTrailingComment(line, name string, lineNo int) string {
	buf := sb.FromString(line)
	data := buf.Bytes()
	n := len(data)
	idx := 0
	for idx < n {
		c := data[idx]
		if c == '"' || c == '\'' {
			lit := sb.New()
			var ok bool
			idx, ok = buf.EatLiteral(idx, lit)
			if !ok {
				e.Report.Errorf(name, lineNo, "unterminated string literal")
			}
			continue
		}
		if c == e.commentLeader {
			return strings.TrimRight(string(data[:idx]), " \t")
		}
		idx++
	}
	return line
}
