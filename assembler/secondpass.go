package assembler

import (
	"errors"

	"github.com/lookbusy1344/w12-assembler/encoder"
	"github.com/lookbusy1344/w12-assembler/parser"
)

// runSecondPass re-reads the expanded text with IC restarted at
// FirstCell, resolves every Direct operand against the symbol table, and
// processes .entry directives. Register and immediate operand words laid
// down by the first pass are already correct and are only stepped over.
// Operand ordering exactly mirrors the first pass.
func (f *File) runSecondPass() {
	f.IC = parser.FirstCell
	name := f.intermediateName()

	for i, raw := range splitLines(f.Expanded) {
		pos := parser.Position{Filename: name, Line: i + 1}
		line := parser.LexLine(raw, pos)
		if line.Count == 0 {
			continue
		}
		line.TakeLabel() // already in the symbol table
		if line.Count == 0 {
			continue
		}

		switch parser.ClassifyWord(line.Word(1)) {
		case parser.StmtData, parser.StmtString, parser.StmtExtern:
			// Fully handled by the first pass.
		case parser.StmtEntry:
			f.handleEntry(line)
		case parser.StmtCode:
			f.resolveInstruction(line)
		}
	}
}

// handleEntry promotes each listed symbol to Entry.
func (f *File) handleEntry(line *parser.Line) {
	f.HasEntry = true
	for _, name := range f.parseNameList(line) {
		err := f.Symbols.MarkEntry(name)
		switch {
		case errors.Is(err, parser.ErrEntryNotFound):
			f.Errors.Addf(line.Pos, parser.CantFindLabelToEntry, "%q", name)
		case errors.Is(err, parser.ErrEntryExternal):
			f.Errors.Addf(line.Pos, parser.CantEntryExternalLabel, "%q", name)
		}
	}
}

// resolveInstruction recomputes the operand layout of a code line and
// fills in the Direct operand words the first pass reserved.
func (f *File) resolveInstruction(line *parser.Line) {
	op, ok := parser.InstructionOf(line.Word(1))
	if !ok {
		// The first pass rejected the line and emitted no words.
		return
	}

	var srcTok, dstTok string
	switch parser.ClassOf(op) {
	case parser.TwoOperands:
		srcTok, dstTok = line.Word(2), line.Word(4)
	case parser.OneOperand:
		dstTok = line.Word(2)
	}
	line.SourceMethod = parser.AddressingOf(srcTok)
	line.DestMethod = parser.AddressingOf(dstTok)

	f.IC++ // first instruction word

	if line.SourceMethod == parser.Register && line.DestMethod == parser.Register {
		f.IC++ // shared register word
		return
	}
	if line.SourceMethod != parser.Absent {
		f.resolveOperand(line.SourceMethod, srcTok, line.Pos)
	}
	if line.DestMethod != parser.Absent {
		f.resolveOperand(line.DestMethod, dstTok, line.Pos)
	}
}

// resolveOperand advances IC over one operand word, rewriting it when
// the operand is a symbol reference.
func (f *File) resolveOperand(method parser.AddressingMethod, token string, pos parser.Position) {
	if method == parser.Direct {
		f.resolveDirect(token, pos)
	}
	f.IC++
}

// resolveDirect writes the operand word for a label reference: external
// symbols get the External encoding with address zero and a use-site
// record; everything else gets Relocatable plus the symbol's address.
func (f *File) resolveDirect(token string, pos parser.Position) {
	sym, ok := f.Symbols.Lookup(token)
	if !ok {
		f.Errors.Addf(pos, parser.LabelNotFound, "%q", token)
		return
	}
	if sym.Kind == parser.SymbolExternal {
		f.Code.Set(f.IC, encoder.DirectWord(0, encoder.EncExternal))
		f.Externals = append(f.Externals, parser.ExternalUse{Name: sym.Name, Address: f.IC})
		return
	}
	f.Code.Set(f.IC, encoder.DirectWord(sym.Address, encoder.EncRelocatable))
}
