package main

import (
	"strings"

	"github.com/myrkraverk/masp/sb"
)

// symbolTable maps symbol names to their current byte-buffer value, as
// established by .ASSIGN/.EQU. Names are matched case-insensitively.
type symbolTable struct {
	values map[string]*sb.Buffer
}

func newSymbolTable() *symbolTable {
	return &symbolTable{values: make(map[string]*sb.Buffer)}
}

func foldName(name string) string {
	return strings.ToUpper(name)
}

// Define establishes or replaces the value bound to name.
func (t *symbolTable) Define(name string, value *sb.Buffer) {
	t.values[foldName(name)] = value
}

// Lookup returns the value bound to name, if any.
func (t *symbolTable) Lookup(name string) (*sb.Buffer, bool) {
	v, ok := t.values[foldName(name)]
	return v, ok
}
