package parser

import (
	"errors"
	"fmt"
)

// SymbolKind represents the kind of a symbol
type SymbolKind int

const (
	SymbolData SymbolKind = iota
	SymbolCode
	SymbolExternal
	SymbolEntry
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolData:
		return "data"
	case SymbolCode:
		return "code"
	case SymbolExternal:
		return "external"
	case SymbolEntry:
		return "entry"
	}
	return "unknown"
}

// Symbol represents a symbol in the symbol table
type Symbol struct {
	Name    string
	Address int
	Kind    SymbolKind
}

// Sentinel errors returned by symbol table operations.
var (
	ErrDuplicateSymbol = errors.New("symbol already defined")
	ErrEntryNotFound   = errors.New("no symbol with that name to mark as entry")
	ErrEntryExternal   = errors.New("external symbols cannot be entries")
)

// SymbolTable is an insertion-ordered mapping from label name to symbol.
// Iteration order is definition order so the .ent and .ext files are
// deterministic.
type SymbolTable struct {
	symbols []*Symbol
	index   map[string]int
}

// NewSymbolTable creates a new symbol table
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]int)}
}

// Insert adds a symbol, enforcing name uniqueness across all kinds.
func (st *SymbolTable) Insert(name string, address int, kind SymbolKind) error {
	if _, exists := st.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSymbol, name)
	}
	st.index[name] = len(st.symbols)
	st.symbols = append(st.symbols, &Symbol{Name: name, Address: address, Kind: kind})
	return nil
}

// Lookup looks up a symbol by name
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	i, exists := st.index[name]
	if !exists {
		return nil, false
	}
	return st.symbols[i], true
}

// MarkEntry promotes a previously-defined Code or Data symbol to Entry,
// preserving its address. External symbols are rejected: External and
// Entry are mutually exclusive.
func (st *SymbolTable) MarkEntry(name string) error {
	sym, exists := st.Lookup(name)
	if !exists {
		return fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}
	if sym.Kind == SymbolExternal {
		return fmt.Errorf("%w: %q", ErrEntryExternal, name)
	}
	sym.Kind = SymbolEntry
	return nil
}

// RelocateData adds the final instruction counter to every Data symbol's
// recorded offset. Called exactly once, at the end of an error-free first
// pass.
func (st *SymbolTable) RelocateData(icFinal int) {
	for _, sym := range st.symbols {
		if sym.Kind == SymbolData {
			sym.Address += icFinal
		}
	}
}

// Symbols returns all symbols in insertion order.
func (st *SymbolTable) Symbols() []*Symbol {
	return st.symbols
}

// Entries returns the Entry symbols in insertion order.
func (st *SymbolTable) Entries() []*Symbol {
	var entries []*Symbol
	for _, sym := range st.symbols {
		if sym.Kind == SymbolEntry {
			entries = append(entries, sym)
		}
	}
	return entries
}

// Len returns the number of symbols defined.
func (st *SymbolTable) Len() int {
	return len(st.symbols)
}

// ExternalUse records one use-site of an external symbol: the name and
// the address of the operand word that references it.
type ExternalUse struct {
	Name    string
	Address int
}
