// Package assembler drives the translation pipeline for one source file:
// macro expansion, the layout-and-encode first pass, and the
// symbol-resolving second pass.
package assembler

import (
	"os"
	"path/filepath"

	"github.com/lookbusy1344/w12-assembler/parser"
)

// File holds all per-file assembly state. Every file owns its own symbol
// table, macro table, images and counters; nothing is shared between
// files, so the driver may assemble several files concurrently.
type File struct {
	// BaseName is the path of the file without its extension; output
	// files are derived from it.
	BaseName string
	// SourceName is the display name used in diagnostics, e.g. "prog.as".
	SourceName string

	// Expanded is the macro-expanded intermediate text, read once by
	// each pass.
	Expanded string

	Symbols *parser.SymbolTable
	Macros  *parser.MacroTable

	// Code is the instruction image, origin FirstCell; Data is the data
	// image, origin zero.
	Code *Image
	Data *Image

	IC int // next instruction address, starts at FirstCell
	DC int // next data offset, starts at zero

	Errors *parser.ErrorList

	HasExtern bool
	HasEntry  bool

	// Externals records every use-site of an external symbol in the
	// order the second pass encountered them.
	Externals []parser.ExternalUse

	// LinesParsed counts the intermediate lines read by the first pass.
	LinesParsed int

	overflowed bool
}

func newFile(baseName string) *File {
	return &File{
		BaseName:   baseName,
		SourceName: filepath.Base(baseName) + ".as",
		Symbols:    parser.NewSymbolTable(),
		Macros:     parser.NewMacroTable(),
		Code:       NewImage(parser.FirstCell),
		Data:       NewImage(0),
		IC:         parser.FirstCell,
		Errors:     &parser.ErrorList{},
	}
}

// Assemble reads <baseName>.as and runs the full pipeline over it. The
// returned error reports input IO failures only; translation diagnostics
// are collected in File.Errors.
func Assemble(baseName string) (*File, error) {
	source, err := os.ReadFile(baseName + ".as") // #nosec G304 -- user-provided source path
	if err != nil {
		return nil, err
	}
	return AssembleSource(string(source), baseName), nil
}

// AssembleSource runs the pipeline over in-memory source text.
//
// The macro pass always runs first and its diagnostics never suppress
// the first pass; the intermediate text is kept even when ill-formed so
// it can be written out for inspection. The second pass runs only when
// the file is clean so far, since it relies on the relocated symbol
// addresses the first pass produces on success.
func AssembleSource(source, baseName string) *File {
	f := newFile(baseName)

	expander := parser.NewExpander(f.Macros, f.Errors)
	f.Expanded = expander.Expand(source, f.SourceName)

	f.runFirstPass()

	if !f.Errors.HasErrors() {
		f.Symbols.RelocateData(f.IC)
		f.runSecondPass()
	}
	return f
}

// Succeeded reports whether the file assembled without diagnostics.
func (f *File) Succeeded() bool {
	return !f.Errors.HasErrors()
}

// intermediateName is the diagnostic filename for positions inside the
// expanded text.
func (f *File) intermediateName() string {
	return filepath.Base(f.BaseName) + ".am"
}

// checkCapacity records a single MemoryOverflow diagnostic when the
// combined images outgrow the machine's usable memory.
func (f *File) checkCapacity(pos parser.Position) {
	if f.overflowed {
		return
	}
	if (f.IC-parser.FirstCell)+f.DC > parser.MaxProgramWords {
		f.overflowed = true
		f.Errors.Add(pos, parser.MemoryOverflow)
	}
}
