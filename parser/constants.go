package parser

// Machine geometry and source-format limits
const (
	// FirstCell is the address of the first instruction word. The cells
	// below it are reserved by the loader.
	FirstCell = 100

	// MemorySize is the total number of addressable cells.
	MemorySize = 1024

	// MaxProgramWords bounds the combined size of the instruction and
	// data images for one object file.
	MaxProgramWords = 924

	// MaxLineLength is the longest source line, excluding the newline.
	MaxLineLength = 80

	// MaxLabelLength is the longest identifier accepted for labels and
	// macro names.
	MaxLabelLength = 31

	// RegisterCount is the number of general registers @r0..@r7.
	RegisterCount = 8
)

// Immediate values occupy a signed 10-bit field.
const (
	ImmediateMin = -512
	ImmediateMax = 511
)

// Opcode identifies one of the 16 machine instructions.
type Opcode int

const (
	OpMov Opcode = iota
	OpCmp
	OpAdd
	OpSub
	OpNot
	OpClr
	OpLea
	OpInc
	OpDec
	OpJmp
	OpBne
	OpRed
	OpPrn
	OpJsr
	OpRts
	OpStop
)

// mnemonics maps source mnemonics to opcodes.
var mnemonics = map[string]Opcode{
	"mov":  OpMov,
	"cmp":  OpCmp,
	"add":  OpAdd,
	"sub":  OpSub,
	"not":  OpNot,
	"clr":  OpClr,
	"lea":  OpLea,
	"inc":  OpInc,
	"dec":  OpDec,
	"jmp":  OpJmp,
	"bne":  OpBne,
	"red":  OpRed,
	"prn":  OpPrn,
	"jsr":  OpJsr,
	"rts":  OpRts,
	"stop": OpStop,
}

// InstructionOf maps a mnemonic to its opcode. The second result is false
// for anything that is not an instruction name.
func InstructionOf(token string) (Opcode, bool) {
	op, ok := mnemonics[token]
	return op, ok
}

// MnemonicOf returns the source mnemonic for an opcode.
func MnemonicOf(op Opcode) string {
	for name, o := range mnemonics {
		if o == op {
			return name
		}
	}
	return "?"
}

// OperandClass is the number of operands an opcode takes.
type OperandClass int

const (
	ZeroOperands OperandClass = iota
	OneOperand
	TwoOperands
)

// ClassOf returns the operand class of an opcode.
func ClassOf(op Opcode) OperandClass {
	switch op {
	case OpMov, OpCmp, OpAdd, OpSub, OpLea:
		return TwoOperands
	case OpRts, OpStop:
		return ZeroOperands
	default:
		return OneOperand
	}
}

// AddressingMethod is an operand interpretation. The numeric values are
// the codes stored in the instruction word bit-fields.
type AddressingMethod int

const (
	Absent    AddressingMethod = 0
	Immediate AddressingMethod = 1
	Direct    AddressingMethod = 3
	Register  AddressingMethod = 5
)

func (m AddressingMethod) String() string {
	switch m {
	case Absent:
		return "absent"
	case Immediate:
		return "immediate"
	case Direct:
		return "direct"
	case Register:
		return "register"
	}
	return "invalid"
}

// Directive names recognised by the assembler.
const (
	DirectiveData   = ".data"
	DirectiveString = ".string"
	DirectiveEntry  = ".entry"
	DirectiveExtern = ".extern"
)

// Macro block delimiters.
const (
	MacroStart = "mcro"
	MacroEnd   = "endmcro"
)

// reservedWords holds every token that cannot be used as a label or macro
// name: the directives, the macro delimiters, all eight register names and
// the 16 mnemonics.
var reservedWords = buildReservedWords()

func buildReservedWords() map[string]struct{} {
	words := []string{
		DirectiveData, DirectiveString, DirectiveEntry, DirectiveExtern,
		MacroStart, MacroEnd,
		"@r0", "@r1", "@r2", "@r3", "@r4", "@r5", "@r6", "@r7",
	}
	set := make(map[string]struct{}, len(words)+len(mnemonics))
	for _, w := range words {
		set[w] = struct{}{}
	}
	for m := range mnemonics {
		set[m] = struct{}{}
	}
	return set
}

// IsReservedWord reports whether the token may not be used as an
// identifier.
func IsReservedWord(token string) bool {
	_, ok := reservedWords[token]
	return ok
}
