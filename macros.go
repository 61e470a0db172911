package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/myrkraverk/masp/sb"
)

// MacroDef is a registered .MACRO ... .ENDM definition: an ordered list
// of formal parameter names and the raw, unsubstituted body lines
// collected between the directives.
type MacroDef struct {
	Name    string
	Formals []string
	Body    []string
}

// macroStore maps macro names to their definition. Names are matched
// case-insensitively; a redefinition replaces the prior entry.
type macroStore struct {
	defs map[string]*MacroDef
}

func newMacroStore() *macroStore {
	return &macroStore{defs: make(map[string]*MacroDef)}
}

func (m *macroStore) Define(def *MacroDef) {
	m.defs[foldName(def.Name)] = def
}

func (m *macroStore) Lookup(name string) (*MacroDef, bool) {
	d, ok := m.defs[foldName(name)]
	return d, ok
}

// bindActuals pairs a macro's formal parameters with the actual
// arguments supplied at a call site, positionally. Actuals are
// comma-separated and whitespace-insensitive (tokenized by the
// caller). Fewer actuals than formals bind the remainder to empty
// buffers; more actuals than formals is a reported error.
func bindActuals(def *MacroDef, actuals []string) (map[string]*sb.Buffer, error) {
	if len(actuals) > len(def.Formals) {
		return nil, fmt.Errorf("macro %s: too many arguments: got %d, want at most %d",
			def.Name, len(actuals), len(def.Formals))
	}

	pairs := lo.Map(def.Formals, func(formal string, i int) lo.Tuple2[string, *sb.Buffer] {
		actual := ""
		if i < len(actuals) {
			actual = strings.TrimSpace(actuals[i])
		}
		return lo.Tuple2[string, *sb.Buffer]{A: formal, B: sb.FromString(actual)}
	})

	bindings := make(map[string]*sb.Buffer, len(pairs))
	for _, pair := range pairs {
		bindings[foldName(pair.A)] = pair.B
	}
	return bindings, nil
}

// splitActuals tokenizes a macro call's argument list, splitting on
// top-level commas (not inside quoted literals or parentheses) and
// trimming surrounding whitespace from each piece. The second return
// value is false if a quoted literal in s was never closed before s
// ran out (spec.md §7's "unterminated string literal" syntax error);
// callers should report that condition through their Reporter rather
// than silently accepting the partial split.
func splitActuals(s string) ([]string, bool) {
	buf := sb.FromString(s)
	var out []string
	n := buf.Len()
	start := buf.SkipWhitespace(0)
	idx := start
	depth := 0
	ok := true
	for idx < n {
		c := buf.Bytes()[idx]
		switch {
		case c == '"' || c == '\'':
			lit := sb.New()
			var litOK bool
			idx, litOK = buf.EatLiteral(idx, lit)
			ok = ok && litOK
		case c == '(':
			depth++
			idx++
		case c == ')':
			if depth > 0 {
				depth--
			}
			idx++
		case c == ',' && depth == 0:
			out = append(out, strings.TrimSpace(string(buf.Bytes()[start:idx])))
			idx++
			idx = buf.SkipWhitespace(idx)
			start = idx
		default:
			idx++
		}
	}
	tail := strings.TrimSpace(string(buf.Bytes()[start:n]))
	if tail != "" || len(out) > 0 {
		out = append(out, tail)
	}
	return out, ok
}
