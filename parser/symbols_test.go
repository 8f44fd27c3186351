package parser

import (
	"errors"
	"testing"
)

func TestSymbolTableInsertAndLookup(t *testing.T) {
	st := NewSymbolTable()

	if err := st.Insert("X", 0, SymbolData); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := st.Insert("MAIN", 100, SymbolCode); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	sym, ok := st.Lookup("X")
	if !ok || sym.Address != 0 || sym.Kind != SymbolData {
		t.Errorf("Lookup(X) = %+v, %v", sym, ok)
	}
	if _, ok := st.Lookup("missing"); ok {
		t.Error("Lookup of undefined symbol should fail")
	}
}

func TestSymbolTableDuplicate(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Insert("A", 1, SymbolData); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	err := st.Insert("A", 2, SymbolCode)
	if !errors.Is(err, ErrDuplicateSymbol) {
		t.Errorf("Expected ErrDuplicateSymbol, got %v", err)
	}

	// Duplicate external names are rejected too
	if err := st.Insert("E", 0, SymbolExternal); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := st.Insert("E", 0, SymbolExternal); !errors.Is(err, ErrDuplicateSymbol) {
		t.Errorf("Expected ErrDuplicateSymbol for repeated external, got %v", err)
	}
}

func TestMarkEntry(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Insert("MAIN", 105, SymbolCode); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := st.MarkEntry("MAIN"); err != nil {
		t.Fatalf("MarkEntry failed: %v", err)
	}
	sym, _ := st.Lookup("MAIN")
	if sym.Kind != SymbolEntry {
		t.Errorf("Expected kind entry, got %s", sym.Kind)
	}
	// Promotion preserves the address
	if sym.Address != 105 {
		t.Errorf("Expected address 105 after promotion, got %d", sym.Address)
	}
}

func TestMarkEntryNotFound(t *testing.T) {
	st := NewSymbolTable()
	if err := st.MarkEntry("ghost"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound, got %v", err)
	}
}

func TestMarkEntryExternal(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Insert("EXT", 0, SymbolExternal); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := st.MarkEntry("EXT"); !errors.Is(err, ErrEntryExternal) {
		t.Errorf("External and Entry are mutually exclusive, got %v", err)
	}
	sym, _ := st.Lookup("EXT")
	if sym.Kind != SymbolExternal || sym.Address != 0 {
		t.Errorf("External symbol must not be mutated, got %+v", sym)
	}
}

func TestRelocateData(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Insert("D0", 0, SymbolData); err != nil {
		t.Fatal(err)
	}
	if err := st.Insert("CODE", 100, SymbolCode); err != nil {
		t.Fatal(err)
	}
	if err := st.Insert("D5", 5, SymbolData); err != nil {
		t.Fatal(err)
	}
	if err := st.Insert("EXT", 0, SymbolExternal); err != nil {
		t.Fatal(err)
	}

	st.RelocateData(107)

	tests := []struct {
		name string
		want int
	}{
		{"D0", 107},  // data offset 0 + final IC
		{"D5", 112},  // data offset 5 + final IC
		{"CODE", 100}, // code addresses unchanged
		{"EXT", 0},    // externals never move
	}
	for _, tt := range tests {
		sym, _ := st.Lookup(tt.name)
		if sym.Address != tt.want {
			t.Errorf("%s address = %d, want %d", tt.name, sym.Address, tt.want)
		}
	}
}

func TestSymbolInsertionOrder(t *testing.T) {
	st := NewSymbolTable()
	names := []string{"C", "A", "B"}
	for i, name := range names {
		if err := st.Insert(name, i, SymbolCode); err != nil {
			t.Fatal(err)
		}
	}

	for i, sym := range st.Symbols() {
		if sym.Name != names[i] {
			t.Errorf("Symbol %d = %s, want %s", i, sym.Name, names[i])
		}
	}
}

func TestEntries(t *testing.T) {
	st := NewSymbolTable()
	for _, name := range []string{"A", "B", "C"} {
		if err := st.Insert(name, 100, SymbolCode); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.MarkEntry("C"); err != nil {
		t.Fatal(err)
	}
	if err := st.MarkEntry("A"); err != nil {
		t.Fatal(err)
	}

	entries := st.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	// Insertion order, not promotion order
	if entries[0].Name != "A" || entries[1].Name != "C" {
		t.Errorf("Entries out of order: %s, %s", entries[0].Name, entries[1].Name)
	}
}
