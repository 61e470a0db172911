package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestDirectiveAlignAndSpace(t *testing.T) {
	out, _ := runEngine(t, ".ALIGN 0x4\n.RES 10\n.SRES 020\n.END\n", Options{})
	for _, want := range []string{".align\t4", ".space\t10", ".space\t16"} {
		if !strings.Contains(out, want) {
			t.Errorf("output = %q, want it to contain %q", out, want)
		}
	}
}

func TestDirectivePrintListNolist(t *testing.T) {
	out, errs := runEngine(t, ".PRINT LIST\n.PRINT NOLIST\n.END\n", Options{})
	if errs != "" {
		t.Fatalf("unexpected errors: %s", errs)
	}
	if !strings.Contains(out, ".list") || !strings.Contains(out, ".nolist") {
		t.Errorf("output = %q, want both .list and .nolist", out)
	}
}

func TestDirectivePrintInvalidOperand(t *testing.T) {
	_, errs := runEngine(t, ".PRINT BOGUS\n.END\n", Options{})
	if !strings.Contains(errs, ".print") {
		t.Errorf("errs = %q, want a .print diagnostic", errs)
	}
}

func TestDirectivePageEmitsEject(t *testing.T) {
	out, _ := runEngine(t, ".PAGE\n.END\n", Options{})
	if !strings.Contains(out, ".eject") {
		t.Errorf("output = %q, want it to contain %q", out, ".eject")
	}
}

func TestAssignDirectCommaForm(t *testing.T) {
	out, _ := runEngine(t, ".ASSIGN X,7\n.db X\n.END\n", Options{})
	if !strings.Contains(out, ".byte\t7") {
		t.Errorf("output = %q, want it to contain %q", out, ".byte\t7")
	}
}

func TestEquAliasesAssign(t *testing.T) {
	out, _ := runEngine(t, "Y .equ 11\n.db Y\n.END\n", Options{})
	if !strings.Contains(out, ".byte\t11") {
		t.Errorf("output = %q, want it to contain %q", out, ".byte\t11")
	}
}

func TestUnmatchedBlockDirectivesReportErrors(t *testing.T) {
	_, errs := runEngine(t, ".ENDM\n.END\n", Options{})
	if !strings.Contains(errs, "unmatched .ENDM") {
		t.Errorf("errs = %q, want an unmatched .ENDM diagnostic", errs)
	}
	_, errs = runEngine(t, ".AENDR\n.END\n", Options{})
	if !strings.Contains(errs, "unmatched .AENDR") {
		t.Errorf("errs = %q, want an unmatched .AENDR diagnostic", errs)
	}
}

func TestUnclosedAifReportedAtEndOfSource(t *testing.T) {
	_, errs := runEngine(t, ".AIF 1 EQ 1\n.DB 1\n.END\n", Options{})
	if !strings.Contains(errs, "unclosed conditional") {
		t.Errorf("errs = %q, want an unclosed-conditional diagnostic", errs)
	}
}

func TestMacroTooManyActualsReportsError(t *testing.T) {
	src := ".macro M x\n .db \\x\n .endm\n M 1,2\n.END\n"
	_, errs := runEngine(t, src, Options{})
	if !strings.Contains(errs, "too many arguments") {
		t.Errorf("errs = %q, want a too-many-arguments diagnostic", errs)
	}
}

func TestEvalPredicateNumericComparisons(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{"1 EQ 1", true},
		{"1 EQ 2", false},
		{"1 NE 2", true},
		{"1 LT 2", true},
		{"2 LE 2", true},
		{"3 GT 2", true},
		{"2 GE 2", true},
	}
	for _, tt := range tests {
		got, err := evalPredicate(tt.expr, 10)
		if err != nil {
			t.Fatalf("evalPredicate(%q) error = %v", tt.expr, err)
		}
		if got != tt.want {
			t.Errorf("evalPredicate(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestEvalPredicateStringComparison(t *testing.T) {
	got, err := evalPredicate(`"foo" EQ "foo"`, 10)
	if err != nil {
		t.Fatalf("evalPredicate() error = %v", err)
	}
	if !got {
		t.Error("expected equal quoted strings to compare equal")
	}
	got, err = evalPredicate(`"foo" NE "bar"`, 10)
	if err != nil {
		t.Fatalf("evalPredicate() error = %v", err)
	}
	if !got {
		t.Error("expected distinct quoted strings to compare not-equal")
	}
}

func TestStripTrailingCommentProtectsQuotedLiterals(t *testing.T) {
	var errs bytes.Buffer
	e := NewEngine(Options{Output: io.Discard, ErrOutput: &errs})
	got := e.stripTrailingComment(`.db "a;b" ; trailing`, "t.s", 1)
	if strings.Contains(got, "trailing") {
		t.Errorf("stripTrailingComment() = %q, trailing comment should be removed", got)
	}
	if !strings.Contains(got, `"a;b"`) {
		t.Errorf("stripTrailingComment() = %q, quoted ';' should survive", got)
	}
	if errs.String() != "" {
		t.Errorf("unexpected errors: %s", errs.String())
	}
}

func TestStripTrailingCommentReportsUnterminatedLiteral(t *testing.T) {
	var errs bytes.Buffer
	e := NewEngine(Options{Output: io.Discard, ErrOutput: &errs})
	e.stripTrailingComment(`.db "unterminated`, "t.s", 3)
	if !strings.Contains(errs.String(), "unterminated string literal") {
		t.Errorf("errs = %q, want an unterminated string literal diagnostic", errs.String())
	}
}
