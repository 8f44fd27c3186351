package assembler

import (
	"strings"

	"github.com/lookbusy1344/w12-assembler/encoder"
	"github.com/lookbusy1344/w12-assembler/parser"
)

// runFirstPass reads the expanded text line by line, laying out memory:
// data and string values go to the data image at DC, instructions to the
// instruction image at IC with operand words reserved behind the first
// word. Symbols are recorded as they are defined. Direct operands get a
// placeholder word; the second pass rewrites them.
func (f *File) runFirstPass() {
	name := f.intermediateName()

	for i, raw := range splitLines(f.Expanded) {
		f.LinesParsed++
		pos := parser.Position{Filename: name, Line: i + 1}
		if len(raw) > parser.MaxLineLength {
			f.Errors.Add(pos, parser.LineTooLong)
		}

		line := parser.LexLine(raw, pos)
		if line.Count == 0 {
			continue
		}
		f.firstPassLine(line)
	}

	// Data follows the instruction image, so every Data symbol's final
	// address is its DC offset plus the final IC. Relocation happens in
	// AssembleSource, only when the pass was clean.
}

// firstPassLine handles one lexed statement.
func (f *File) firstPassLine(line *parser.Line) {
	label := f.takeLabel(line)
	if line.Count == 0 {
		// Label with nothing after it; nothing to lay out.
		return
	}

	switch parser.ClassifyWord(line.Word(1)) {
	case parser.StmtData:
		f.defineLabel(label, f.DC, parser.SymbolData, line.Pos)
		f.handleData(line)
	case parser.StmtString:
		f.defineLabel(label, f.DC, parser.SymbolData, line.Pos)
		f.handleString(line)
	case parser.StmtExtern:
		f.HasExtern = true
		f.handleExtern(line)
	case parser.StmtEntry:
		// Deferred to the second pass.
	case parser.StmtCode:
		f.defineLabel(label, f.IC, parser.SymbolCode, line.Pos)
		f.encodeInstruction(line)
	}
}

// takeLabel strips and validates a leading label. A label in front of
// .entry or .extern is rejected before stripping: those directives define
// the names listed after them, not the label.
func (f *File) takeLabel(line *parser.Line) string {
	if !line.HasLabel() {
		return ""
	}
	switch parser.ClassifyWord(line.Word(2)) {
	case parser.StmtEntry:
		f.Errors.Add(line.Pos, parser.CantDefineLabelBeforeEntry)
		line.Tokens = nil
		line.Count = 0
		return ""
	case parser.StmtExtern:
		f.Errors.Add(line.Pos, parser.CantDefineLabelBeforeExtern)
		line.Tokens = nil
		line.Count = 0
		return ""
	}

	label, _ := line.TakeLabel()
	if !parser.IsValidIdentifier(label) {
		f.Errors.Addf(line.Pos, parser.InvalidLabelName, "%q", label)
		return ""
	}
	return label
}

// defineLabel inserts a validated label at the given address.
func (f *File) defineLabel(label string, address int, kind parser.SymbolKind, pos parser.Position) {
	if label == "" {
		return
	}
	if err := f.Symbols.Insert(label, address, kind); err != nil {
		f.Errors.Addf(pos, parser.LabelAlreadyExists, "%q", label)
	}
}

// handleData parses the comma-separated value list of a .data directive
// and appends each value to the data image.
func (f *File) handleData(line *parser.Line) {
	tokens := line.Tokens[1:]
	if len(tokens) == 0 {
		f.Errors.Add(line.Pos, parser.MustProvideValuesToData)
		return
	}

	expectValue := true
	var values []int
	for _, tok := range tokens {
		if tok == "," {
			if expectValue {
				f.Errors.Add(line.Pos, parser.InvalidCommaPosition)
				return
			}
			expectValue = true
			continue
		}
		if !expectValue {
			f.Errors.Add(line.Pos, parser.CommaRequiredBetweenValues)
			return
		}
		v, err := parser.ParseImmediate(tok)
		if err != nil {
			f.Errors.Addf(line.Pos, parser.DataNeedNumValue, "%q", tok)
			return
		}
		values = append(values, v)
		expectValue = false
	}
	if expectValue {
		// Trailing comma.
		f.Errors.Add(line.Pos, parser.InvalidCommaPosition)
		return
	}

	for _, v := range values {
		f.appendData(encoder.DataWord(v), line.Pos)
	}
}

// handleString parses a .string directive. The argument is the remainder
// of the raw line after the directive: one double-quoted string whose
// characters are stored one per word, followed by a terminating zero.
func (f *File) handleString(line *parser.Line) {
	idx := strings.Index(line.Raw, parser.DirectiveString)
	rest := strings.TrimSpace(line.Raw[idx+len(parser.DirectiveString):])

	if rest == "" || rest[0] != '"' {
		f.Errors.Add(line.Pos, parser.StringStructureNotValid)
		return
	}
	closing := strings.LastIndexByte(rest, '"')
	if closing == 0 {
		f.Errors.Add(line.Pos, parser.StringMustEndInQuotes)
		return
	}
	if tail := strings.TrimSpace(rest[closing+1:]); tail != "" {
		f.Errors.Addf(line.Pos, parser.StringDirectiveAcceptsOneParameter, "%q", tail)
		return
	}

	for _, ch := range []byte(rest[1:closing]) {
		f.appendData(encoder.DataWord(int(ch)), line.Pos)
	}
	f.appendData(0, line.Pos)
}

// handleExtern inserts each listed name as an External symbol with
// address zero.
func (f *File) handleExtern(line *parser.Line) {
	for _, name := range f.parseNameList(line) {
		if err := f.Symbols.Insert(name, 0, parser.SymbolExternal); err != nil {
			f.Errors.Addf(line.Pos, parser.LabelAlreadyExists, "%q", name)
		}
	}
}

// parseNameList parses the comma-separated identifier list of an .extern
// or .entry directive, applying the same comma discipline as .data.
func (f *File) parseNameList(line *parser.Line) []string {
	expectName := true
	var names []string
	for _, tok := range line.Tokens[1:] {
		if tok == "," {
			if expectName {
				f.Errors.Add(line.Pos, parser.InvalidCommaPosition)
				return nil
			}
			expectName = true
			continue
		}
		if !expectName {
			f.Errors.Add(line.Pos, parser.CommaRequiredBetweenValues)
			return nil
		}
		if !parser.IsValidIdentifier(tok) {
			f.Errors.Addf(line.Pos, parser.InvalidLabelName, "%q", tok)
			return nil
		}
		names = append(names, tok)
		expectName = false
	}
	if expectName && len(names) > 0 {
		f.Errors.Add(line.Pos, parser.InvalidCommaPosition)
		return nil
	}
	return names
}

// encodeInstruction validates an instruction statement and, when clean,
// emits its first word and reserves the operand words behind it.
func (f *File) encodeInstruction(line *parser.Line) {
	op, ok := parser.InstructionOf(line.Word(1))
	if !ok {
		f.Errors.Addf(line.Pos, parser.InstructionNameNotExist, "%q", line.Word(1))
		return
	}

	if !f.checkShape(op, line) {
		return
	}

	switch parser.ClassOf(op) {
	case parser.TwoOperands:
		line.SourceMethod = parser.AddressingOf(line.Word(2))
		line.DestMethod = parser.AddressingOf(line.Word(4))
	case parser.OneOperand:
		line.SourceMethod = parser.Absent
		line.DestMethod = parser.AddressingOf(line.Word(2))
	case parser.ZeroOperands:
		line.SourceMethod = parser.Absent
		line.DestMethod = parser.Absent
	}

	if !f.checkAddressing(op, line) {
		return
	}

	f.appendCode(encoder.FirstWord(line.SourceMethod, op, line.DestMethod, encoder.EncAbsolute), line.Pos)
	f.emitOperandWords(line)
}

// checkShape enforces the token-count contract of each operand class:
// two operands lex as mnemonic, operand, comma, operand.
func (f *File) checkShape(op parser.Opcode, line *parser.Line) bool {
	switch parser.ClassOf(op) {
	case parser.TwoOperands:
		switch {
		case line.Count > 4:
			f.Errors.Add(line.Pos, parser.TooMuchWordsForInstruction)
		case line.Count < 4:
			f.Errors.Add(line.Pos, parser.InstructionShouldReceiveTwoOperands)
		case line.Word(3) != ",":
			f.Errors.Add(line.Pos, parser.CommaRequiredBetweenValues)
		default:
			return true
		}
	case parser.OneOperand:
		switch {
		case line.Count > 2:
			f.Errors.Add(line.Pos, parser.TooMuchWordsForInstruction)
		case line.Count < 2:
			f.Errors.Add(line.Pos, parser.InstructionShouldReceiveOneOperand)
		default:
			return true
		}
	case parser.ZeroOperands:
		if line.Count > 1 {
			f.Errors.Add(line.Pos, parser.InstructionShouldReceiveNoOperands)
			return false
		}
		return true
	}
	return false
}

// checkAddressing enforces the per-opcode addressing restrictions.
func (f *File) checkAddressing(op parser.Opcode, line *parser.Line) bool {
	src, dst := line.SourceMethod, line.DestMethod

	bad := false
	switch op {
	case parser.OpMov, parser.OpAdd, parser.OpSub:
		bad = dst == parser.Immediate
	case parser.OpLea:
		bad = src != parser.Direct || dst == parser.Immediate
	case parser.OpCmp, parser.OpPrn:
		// Any destination method is accepted.
	case parser.OpRts, parser.OpStop:
		// No operands to restrict.
	default:
		// Remaining one-operand opcodes reject an immediate target.
		bad = dst == parser.Immediate
	}

	if bad {
		f.Errors.Addf(line.Pos, parser.InvalidAddressMethodForInstruction,
			"%s %s,%s", parser.MnemonicOf(op), src, dst)
		return false
	}
	return true
}

// emitOperandWords reserves the words following the first instruction
// word: source operand first, then destination, except two registers
// which share a single word.
func (f *File) emitOperandWords(line *parser.Line) {
	src, dst := line.SourceMethod, line.DestMethod

	if src == parser.Register && dst == parser.Register {
		srcReg := parser.RegisterNumber(line.Word(2))
		dstReg := parser.RegisterNumber(line.Word(4))
		f.appendCode(encoder.RegisterPairWord(srcReg, dstReg), line.Pos)
		return
	}

	if src != parser.Absent {
		f.appendCode(f.operandWord(src, line.Word(2), true), line.Pos)
	}
	if dst != parser.Absent {
		tok := line.Word(2)
		if src != parser.Absent {
			tok = line.Word(4)
		}
		f.appendCode(f.operandWord(dst, tok, false), line.Pos)
	}
}

// operandWord encodes one operand word. Direct operands get a zero
// placeholder for the second pass to rewrite.
func (f *File) operandWord(method parser.AddressingMethod, token string, isSource bool) encoder.Word {
	switch method {
	case parser.Register:
		reg := parser.RegisterNumber(token)
		if isSource {
			return encoder.SourceRegisterWord(reg)
		}
		return encoder.DestRegisterWord(reg)
	case parser.Immediate:
		v, _ := parser.ParseImmediate(token)
		return encoder.ImmediateWord(v)
	}
	return 0
}

// appendCode adds a word to the instruction image and advances IC.
func (f *File) appendCode(w encoder.Word, pos parser.Position) {
	f.Code.Append(w)
	f.IC++
	f.checkCapacity(pos)
}

// appendData adds a word to the data image and advances DC.
func (f *File) appendData(w encoder.Word, pos parser.Position) {
	f.Data.Append(w)
	f.DC++
	f.checkCapacity(pos)
}

// splitLines splits the expanded text for per-line processing, matching
// the splitter the macro pass uses.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
