package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/myrkraverk/masp/sb"
)

// directiveHandler receives both the raw (unsubstituted) and substituted
// operand text so each handler can pick whichever it needs: .MACRO and
// .IRP want the raw form (formal names are never substituted at
// definition time), everything else wants the substituted form.
type directiveHandler func(e *Engine, rawRest, substRest, raw, name string, lineNo int)

var directiveTable map[string]directiveHandler

func init() {
	directiveTable = map[string]directiveHandler{
		".DB": handleByte, ".BYTE": handleByte,
		".DW": handleWord, ".WORD": handleWord,
		".DL": handleLong, ".LONG": handleLong,
		".ALIGN":     handleAlign,
		".RES":       handleSpace,
		".SRES":      handleSpace,
		".EXPORT":    handleGlobal,
		".GLOBAL":    handleGlobal,
		".HEADING":   handleHeading,
		".PAGE":      handlePage,
		".PRINT":     handlePrint,
		".INCLUDE":   handleInclude,
		".MACRO":     handleMacro,
		".ENDM":      handleUnmatchedBlock(".ENDM"),
		".AIF":       handleAif,
		".AELSE":     handleAelse,
		".AENDI":     handleAendi,
		".AREPEAT":   handleArepeat,
		".AENDR":     handleUnmatchedBlock(".AENDR"),
		".IRP":       handleIrp,
		".ENDR":      handleUnmatchedBlock(".ENDR"),
		".ASSIGN":    handleAssign,
		".EQU":       handleAssign,
		".ALTERNATE": handleAlternate,
		".RADIX":     handleRadix,
		".COMMENT":   handleComment,
		".END":       handleEnd,
	}
}

func handleByte(e *Engine, _, substRest, raw, name string, lineNo int) {
	e.emitData(".byte", substRest, raw, name, lineNo)
}

func handleWord(e *Engine, _, substRest, raw, name string, lineNo int) {
	e.emitData(".short", substRest, raw, name, lineNo)
}

func handleLong(e *Engine, _, substRest, raw, name string, lineNo int) {
	e.emitData(".long", substRest, raw, name, lineNo)
}

// emitData translates a .DB/.DW/.DL-family operand list: every
// recognizable integer literal is rendered in decimal (spec.md §4.G),
// and in ALTERNATE mode a .byte string literal is expanded into a
// comma-separated run of per-character literals.
func (e *Engine) emitData(mnemonic, operand, raw, name string, lineNo int) {
	items, ok := splitActuals(operand)
	if !ok {
		e.Report.Errorf(name, lineNo, "unterminated string literal")
		return
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if isQuoted(item) {
			if e.Alternate && mnemonic == ".byte" {
				parts = append(parts, expandStringToBytes(item)...)
			} else {
				parts = append(parts, item)
			}
			continue
		}
		parts = append(parts, renderDecimalOperand(item, e.Radix))
	}
	e.Emit.Emit(raw, mnemonic+"\t"+strings.Join(parts, ","), name, lineNo)
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0]
}

func expandStringToBytes(lit string) []string {
	inner := lit[1 : len(lit)-1]
	out := make([]string, 0, len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] >= 0x80 {
			out = append(out, strconv.Itoa(int(inner[i])))
			continue
		}
		out = append(out, fmt.Sprintf("'%c'", inner[i]))
	}
	return out
}

func handleAlign(e *Engine, _, substRest, raw, name string, lineNo int) {
	e.Emit.Emit(raw, ".align\t"+renderDecimalOperand(strings.TrimSpace(substRest), e.Radix), name, lineNo)
}

func handleSpace(e *Engine, _, substRest, raw, name string, lineNo int) {
	e.Emit.Emit(raw, ".space\t"+renderDecimalOperand(strings.TrimSpace(substRest), e.Radix), name, lineNo)
}

func handleGlobal(e *Engine, _, substRest, raw, name string, lineNo int) {
	items, ok := splitActuals(substRest)
	if !ok {
		e.Report.Errorf(name, lineNo, "unterminated string literal")
		return
	}
	var names []string
	for _, n := range items {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		e.Report.Errorf(name, lineNo, ".global: missing symbol name")
		return
	}
	e.Emit.Emit(raw, ".global\t"+strings.Join(names, ","), name, lineNo)
}

func handleHeading(e *Engine, _, substRest, raw, name string, lineNo int) {
	e.Emit.Emit(raw, ".title\t"+strings.TrimSpace(substRest), name, lineNo)
}

func handlePage(e *Engine, _, _, raw, name string, lineNo int) {
	e.Emit.Emit(raw, ".eject", name, lineNo)
}

func handlePrint(e *Engine, _, substRest, raw, name string, lineNo int) {
	switch strings.ToUpper(strings.TrimSpace(substRest)) {
	case "LIST":
		e.Emit.Emit(raw, ".list", name, lineNo)
	case "NOLIST":
		e.Emit.Emit(raw, ".nolist", name, lineNo)
	default:
		e.Report.Errorf(name, lineNo, ".print: expected LIST or NOLIST, got %q", substRest)
	}
}

func handleInclude(e *Engine, _, substRest, _, name string, lineNo int) {
	path := unquote(strings.TrimSpace(substRest))
	if err := e.Input.pushFile(path, e.IncludePaths, true); err != nil {
		e.reportPushError(name, lineNo, err)
	}
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// handleMacro parses ".MACRO name formal,formal,..." and collects the
// raw (unsubstituted) body up to the matching .ENDM.
func handleMacro(e *Engine, rawRest, _, _, name string, lineNo int) {
	trimmed := strings.TrimSpace(rawRest)
	macroName, formalsText := splitFirstToken(trimmed)
	if macroName == "" {
		e.Report.Errorf(name, lineNo, ".macro: missing name")
		return
	}
	formalItems, ok := splitActuals(formalsText)
	if !ok {
		e.Report.Errorf(name, lineNo, "unterminated string literal")
		return
	}
	var formals []string
	for _, f := range formalItems {
		f = strings.TrimSpace(f)
		if f != "" {
			formals = append(formals, f)
		}
	}
	body, _, _, err := e.collectBlock(".MACRO", ".ENDM", name, lineNo)
	if err != nil {
		e.Report.Errorf(name, lineNo, "%v", err)
		return
	}
	e.Macros.Define(&MacroDef{Name: macroName, Formals: formals, Body: body})
}

func handleAif(e *Engine, _, substRest, _, name string, lineNo int) {
	pred, err := evalPredicate(substRest, e.Radix)
	if err != nil {
		e.Report.Errorf(name, lineNo, ".aif: %v", err)
		pred = false
	}
	e.Cond.AIF(pred)
}

func handleAelse(e *Engine, _, _, _, name string, lineNo int) {
	if err := e.Cond.AElse(); err != nil {
		e.Report.Errorf(name, lineNo, "%v", err)
	}
}

func handleAendi(e *Engine, _, _, _, name string, lineNo int) {
	if err := e.Cond.AEndi(); err != nil {
		e.Report.Errorf(name, lineNo, "%v", err)
	}
}

func handleArepeat(e *Engine, _, substRest, _, name string, lineNo int) {
	body, endName, endLine, err := e.collectBlock(".AREPEAT", ".AENDR", name, lineNo)
	if err != nil {
		e.Report.Errorf(name, lineNo, "%v", err)
		return
	}
	count, ok := parseIntLiteral(strings.TrimSpace(substRest), e.Radix)
	if !ok {
		e.Report.Errorf(name, lineNo, ".arepeat: invalid count %q", substRest)
		return
	}
	if count > MaxRepeatCount {
		e.Report.Fatalf(".arepeat: count %d exceeds maximum %d", count, MaxRepeatCount)
	}
	if err := e.Input.pushRepeat(body, int(count)); err != nil {
		e.reportPushError(endName, endLine, err)
	}
}

// handleIrp implements the supplemental .IRP formal,value,value,... body
// .ENDR form (SPEC_FULL.md's directive table): the body is replayed once
// per value, each replay bound to formal as if it were a one-argument
// macro call. Frames are pushed in reverse so the first value ends up on
// top of the (LIFO) input stack and is therefore processed first.
func handleIrp(e *Engine, rawRest, _, _, name string, lineNo int) {
	trimmed := strings.TrimSpace(rawRest)
	comma := strings.IndexByte(trimmed, ',')
	var formal, listText string
	if comma < 0 {
		formal = trimmed
	} else {
		formal = strings.TrimSpace(trimmed[:comma])
		listText = trimmed[comma+1:]
	}
	if formal == "" {
		e.Report.Errorf(name, lineNo, ".irp: missing formal parameter name")
		return
	}
	body, endName, endLine, err := e.collectBlock(".IRP", ".ENDR", name, lineNo)
	if err != nil {
		e.Report.Errorf(name, lineNo, "%v", err)
		return
	}
	values, ok := splitActuals(e.substitute(listText, name, lineNo))
	if !ok {
		e.Report.Errorf(name, lineNo, "unterminated string literal")
		return
	}
	if len(values) > MaxRepeatCount {
		e.Report.Fatalf(".irp: value list length %d exceeds maximum %d", len(values), MaxRepeatCount)
	}
	def := &MacroDef{Name: "<irp>", Formals: []string{formal}, Body: body}
	for i := len(values) - 1; i >= 0; i-- {
		if err := e.Input.pushMacro(def, []string{values[i]}); err != nil {
			e.reportPushError(endName, endLine, err)
			return
		}
	}
}

// handleAssign implements the directive form ".ASSIGN name,value" (the
// shorthand "name .ASSIGN value" form is recognized earlier, in
// Engine.processLine, before directive dispatch ever sees it).
func handleAssign(e *Engine, rawRest, _, _, name string, lineNo int) {
	buf := sb.FromString(rawRest)
	data := buf.Bytes()
	idx := buf.SkipWhitespace(0)
	start := idx
	for idx < len(data) && data[idx] != ',' && !isSpaceByte(data[idx]) {
		idx++
	}
	symName := string(data[start:idx])
	if symName == "" {
		e.Report.Errorf(name, lineNo, ".assign: missing symbol name")
		return
	}
	idx = buf.SkipComma(idx)
	value := strings.TrimSpace(e.substitute(string(data[idx:]), name, lineNo))
	e.Symbols.Define(symName, sb.FromString(value))
}

func handleAlternate(e *Engine, _, _, _, _ string, _ int) {
	e.Alternate = true
}

func handleRadix(e *Engine, _, substRest, _, name string, lineNo int) {
	v, err := strconv.Atoi(strings.TrimSpace(substRest))
	if err != nil || (v != 2 && v != 8 && v != 10 && v != 16) {
		e.Report.Errorf(name, lineNo, ".radix: expected 2, 8, 10, or 16, got %q", substRest)
		return
	}
	e.Radix = v
}

func handleComment(e *Engine, _, substRest, _, name string, lineNo int) {
	s := unquote(strings.TrimSpace(substRest))
	if s == "" {
		e.Report.Errorf(name, lineNo, ".comment: missing leader character")
		return
	}
	e.commentLeader = s[0]
}

// handleEnd stops processing of the current source: the frame it was
// read from is made to report exhausted, so nextLine pops it normally
// on the following call. Frames below it on the stack are unaffected.
func handleEnd(e *Engine, _, _, _, _ string, _ int) {
	if f := e.Input.top(); f != nil {
		f.cursor = len(f.lines)
		f.remain = 0
	}
}

func handleUnmatchedBlock(directive string) directiveHandler {
	return func(e *Engine, _, _, _, name string, lineNo int) {
		e.Report.Errorf(name, lineNo, "unmatched %s", directive)
	}
}

// collectBlock reads lines directly from the input stack (bypassing
// Engine.processLine) until it finds closeName at the same nesting
// depth as the opening directive, honoring nested open/close pairs of
// the same kind. It is how .MACRO/.ENDM, .AREPEAT/.AENDR and .IRP/.ENDR
// bodies are gathered verbatim, unsubstituted, for later replay.
func (e *Engine) collectBlock(openName, closeName, curName string, curLine int) (body []string, name string, lineNo int, err error) {
	depth := 1
	name, lineNo = curName, curLine
	openUpper := strings.ToUpper(openName)
	closeUpper := strings.ToUpper(closeName)
	for {
		line, n, ln, ok := e.Input.nextLine()
		if !ok {
			return nil, name, lineNo, fmt.Errorf("unterminated %s block (opened at %s:%d)", openName, curName, curLine)
		}
		name, lineNo = n, ln
		tok, _ := splitFirstToken(strings.TrimSpace(line))
		switch strings.ToUpper(tok) {
		case openUpper:
			depth++
			body = append(body, line)
		case closeUpper:
			depth--
			if depth == 0 {
				return body, name, lineNo, nil
			}
			body = append(body, line)
		default:
			body = append(body, line)
		}
	}
}

// evalPredicate evaluates a .AIF predicate of the form "left OP right".
// Operands that both parse as integer literals (honoring radix) compare
// numerically; otherwise they compare as strings, with quotes stripped.
func evalPredicate(substituted string, radix int) (bool, error) {
	buf := sb.FromString(substituted)
	idx := buf.SkipWhitespace(0)
	left, idx, err := readPredicateOperand(buf, idx)
	if err != nil {
		return false, err
	}
	idx = buf.SkipWhitespace(idx)
	data := buf.Bytes()
	opStart := idx
	for idx < len(data) && isIdentChar(data[idx]) {
		idx++
	}
	op := strings.ToUpper(string(data[opStart:idx]))
	if op == "" {
		return false, fmt.Errorf("missing comparison operator")
	}
	idx = buf.SkipWhitespace(idx)
	right, _, err := readPredicateOperand(buf, idx)
	if err != nil {
		return false, err
	}
	return comparePredicateOperands(left, op, right, radix)
}

func readPredicateOperand(buf *sb.Buffer, idx int) (string, int, error) {
	data := buf.Bytes()
	if idx >= len(data) {
		return "", idx, fmt.Errorf("missing operand")
	}
	if data[idx] == '"' || data[idx] == '\'' {
		lit := sb.New()
		newIdx, ok := buf.EatLiteral(idx, lit)
		if !ok {
			return "", newIdx, fmt.Errorf("unterminated string literal")
		}
		s := lit.String()
		if len(s) >= 2 {
			s = s[1 : len(s)-1]
		}
		return s, newIdx, nil
	}
	start := idx
	for idx < len(data) && !isSpaceByte(data[idx]) {
		idx++
	}
	return string(data[start:idx]), idx, nil
}

func comparePredicateOperands(left, op, right string, radix int) (bool, error) {
	if lv, lok := parseIntLiteral(left, radix); lok {
		if rv, rok := parseIntLiteral(right, radix); rok {
			switch op {
			case "EQ":
				return lv == rv, nil
			case "NE":
				return lv != rv, nil
			case "LT":
				return lv < rv, nil
			case "LE":
				return lv <= rv, nil
			case "GT":
				return lv > rv, nil
			case "GE":
				return lv >= rv, nil
			}
			return false, fmt.Errorf("unknown comparison operator %q", op)
		}
	}
	switch op {
	case "EQ":
		return left == right, nil
	case "NE":
		return left != right, nil
	case "LT":
		return left < right, nil
	case "LE":
		return left <= right, nil
	case "GT":
		return left > right, nil
	case "GE":
		return left >= right, nil
	}
	return false, fmt.Errorf("unknown comparison operator %q", op)
}
