package sixtyfiveoh

// AddressingMode enumerates the 6502 addressing modes this package cares
// about when deciding what an instruction's operand can touch.
type AddressingMode int

// Addressing modes. BRK is split out from None because its operand byte
// (the "signature byte" after the BRK opcode) plays no part in decoding
// but the mode still needs to be distinguished for the analyzer's
// permission check (see Op.ArgSize mapping below).
const (
	ModeNone AddressingMode = iota
	ModeImmediate
	ModeZeroPage
	ModeZeroPageX
	ModeZeroPageY
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	ModeIndirect
	ModeIndirectX
	ModeIndirectY
	ModeRelative
	ModeBRK
)

// Op describes one of the 256 possible opcode byte values.
type Op struct {
	Code     byte
	Name     string
	Mode     AddressingMode
	ArgSize  int // 0, 1, or 2
	Official bool

	// ArgRead, ArgWrite and ArgExec describe whether the instruction's
	// effective operand address is read from, written to, or jumped to.
	ArgRead, ArgWrite, ArgExec bool
}

// Size is the total instruction length in bytes, opcode included.
func (o Op) Size() int { return 1 + o.ArgSize }

var modeArgSize = map[AddressingMode]int{
	ModeNone:      0,
	ModeImmediate: 1,
	ModeZeroPage:  1,
	ModeZeroPageX: 1,
	ModeZeroPageY: 1,
	ModeAbsolute:  2,
	ModeAbsoluteX: 2,
	ModeAbsoluteY: 2,
	ModeIndirect:  2,
	ModeIndirectX: 1,
	ModeIndirectY: 1,
	ModeRelative:  1,
	ModeBRK:       1,
}

// kilOpcodes halt the CPU outright (NMOS 6502 "KIL"/"JAM"/"HLT"). They
// never produce a control-flow successor, see nextSet.
var kilOpcodes = map[byte]bool{
	0x02: true, 0x12: true, 0x22: true, 0x32: true,
	0x42: true, 0x52: true, 0x62: true, 0x72: true,
	0x92: true, 0xB2: true, 0xD2: true, 0xF2: true,
}

var opcodeTable [256]Op

func defOp(code byte, name string, mode AddressingMode, official, read, write, exec bool) {
	opcodeTable[code] = Op{
		Code:     code,
		Name:     name,
		Mode:     mode,
		ArgSize:  modeArgSize[mode],
		Official: official,
		ArgRead:  read,
		ArgWrite: write,
		ArgExec:  exec,
	}
}

// GetOp returns the static descriptor for a single opcode byte. The
// function is total: every one of the 256 byte values has an entry,
// undocumented opcodes included (their Official field is false and, for
// those not modeled below, they fall back to a one-byte NOP shape filled
// in by init).
func GetOp(code byte) Op {
	return opcodeTable[code]
}

func init() {
	// Load/store
	defOp(0xA9, "LDA", ModeImmediate, true, false, false, false)
	defOp(0xA5, "LDA", ModeZeroPage, true, true, false, false)
	defOp(0xB5, "LDA", ModeZeroPageX, true, true, false, false)
	defOp(0xAD, "LDA", ModeAbsolute, true, true, false, false)
	defOp(0xBD, "LDA", ModeAbsoluteX, true, true, false, false)
	defOp(0xB9, "LDA", ModeAbsoluteY, true, true, false, false)
	defOp(0xA1, "LDA", ModeIndirectX, true, true, false, false)
	defOp(0xB1, "LDA", ModeIndirectY, true, true, false, false)

	defOp(0xA2, "LDX", ModeImmediate, true, false, false, false)
	defOp(0xA6, "LDX", ModeZeroPage, true, true, false, false)
	defOp(0xB6, "LDX", ModeZeroPageY, true, true, false, false)
	defOp(0xAE, "LDX", ModeAbsolute, true, true, false, false)
	defOp(0xBE, "LDX", ModeAbsoluteY, true, true, false, false)

	defOp(0xA0, "LDY", ModeImmediate, true, false, false, false)
	defOp(0xA4, "LDY", ModeZeroPage, true, true, false, false)
	defOp(0xB4, "LDY", ModeZeroPageX, true, true, false, false)
	defOp(0xAC, "LDY", ModeAbsolute, true, true, false, false)
	defOp(0xBC, "LDY", ModeAbsoluteX, true, true, false, false)

	defOp(0x85, "STA", ModeZeroPage, true, false, true, false)
	defOp(0x95, "STA", ModeZeroPageX, true, false, true, false)
	defOp(0x8D, "STA", ModeAbsolute, true, false, true, false)
	defOp(0x9D, "STA", ModeAbsoluteX, true, false, true, false)
	defOp(0x99, "STA", ModeAbsoluteY, true, false, true, false)
	defOp(0x81, "STA", ModeIndirectX, true, false, true, false)
	defOp(0x91, "STA", ModeIndirectY, true, false, true, false)

	defOp(0x86, "STX", ModeZeroPage, true, false, true, false)
	defOp(0x96, "STX", ModeZeroPageY, true, false, true, false)
	defOp(0x8E, "STX", ModeAbsolute, true, false, true, false)

	defOp(0x84, "STY", ModeZeroPage, true, false, true, false)
	defOp(0x94, "STY", ModeZeroPageX, true, false, true, false)
	defOp(0x8C, "STY", ModeAbsolute, true, false, true, false)

	// Transfers / stack / flags (no operand address)
	defOp(0xAA, "TAX", ModeNone, true, false, false, false)
	defOp(0x8A, "TXA", ModeNone, true, false, false, false)
	defOp(0xCA, "DEX", ModeNone, true, false, false, false)
	defOp(0xE8, "INX", ModeNone, true, false, false, false)
	defOp(0xA8, "TAY", ModeNone, true, false, false, false)
	defOp(0x98, "TYA", ModeNone, true, false, false, false)
	defOp(0x88, "DEY", ModeNone, true, false, false, false)
	defOp(0xC8, "INY", ModeNone, true, false, false, false)
	defOp(0x9A, "TXS", ModeNone, true, false, false, false)
	defOp(0xBA, "TSX", ModeNone, true, false, false, false)
	defOp(0x48, "PHA", ModeNone, true, false, false, false)
	defOp(0x68, "PLA", ModeNone, true, false, false, false)
	defOp(0x08, "PHP", ModeNone, true, false, false, false)
	defOp(0x28, "PLP", ModeNone, true, false, false, false)
	defOp(0x18, "CLC", ModeNone, true, false, false, false)
	defOp(0x38, "SEC", ModeNone, true, false, false, false)
	defOp(0x58, "CLI", ModeNone, true, false, false, false)
	defOp(0x78, "SEI", ModeNone, true, false, false, false)
	defOp(0xB8, "CLV", ModeNone, true, false, false, false)
	defOp(0xD8, "CLD", ModeNone, true, false, false, false)
	defOp(0xF8, "SED", ModeNone, true, false, false, false)
	defOp(0xEA, "NOP", ModeNone, true, false, false, false)

	// Arithmetic / logic, read-only operand
	for _, e := range []struct {
		name                                            string
		imm, zp, zpx, ab, abx, aby, ix, iy               byte
	}{
		{"ADC", 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71},
		{"AND", 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31},
		{"CMP", 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1},
		{"EOR", 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51},
		{"ORA", 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11},
		{"SBC", 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1},
	} {
		defOp(e.imm, e.name, ModeImmediate, true, false, false, false)
		defOp(e.zp, e.name, ModeZeroPage, true, true, false, false)
		defOp(e.zpx, e.name, ModeZeroPageX, true, true, false, false)
		defOp(e.ab, e.name, ModeAbsolute, true, true, false, false)
		defOp(e.abx, e.name, ModeAbsoluteX, true, true, false, false)
		defOp(e.aby, e.name, ModeAbsoluteY, true, true, false, false)
		defOp(e.ix, e.name, ModeIndirectX, true, true, false, false)
		defOp(e.iy, e.name, ModeIndirectY, true, true, false, false)
	}

	defOp(0xE0, "CPX", ModeImmediate, true, false, false, false)
	defOp(0xE4, "CPX", ModeZeroPage, true, true, false, false)
	defOp(0xEC, "CPX", ModeAbsolute, true, true, false, false)
	defOp(0xC0, "CPY", ModeImmediate, true, false, false, false)
	defOp(0xC4, "CPY", ModeZeroPage, true, true, false, false)
	defOp(0xCC, "CPY", ModeAbsolute, true, true, false, false)
	defOp(0x24, "BIT", ModeZeroPage, true, true, false, false)
	defOp(0x2C, "BIT", ModeAbsolute, true, true, false, false)

	// Read-modify-write: both ArgRead and ArgWrite
	for _, e := range []struct {
		name                      string
		acc                      byte // 0 if no accumulator form
		zp, zpx, ab, abx          byte
	}{
		{"ASL", 0x0A, 0x06, 0x16, 0x0E, 0x1E},
		{"LSR", 0x4A, 0x46, 0x56, 0x4E, 0x5E},
		{"ROL", 0x2A, 0x26, 0x36, 0x2E, 0x3E},
		{"ROR", 0x6A, 0x66, 0x76, 0x6E, 0x7E},
	} {
		defOp(e.acc, e.name, ModeNone, true, false, false, false)
		defOp(e.zp, e.name, ModeZeroPage, true, true, true, false)
		defOp(e.zpx, e.name, ModeZeroPageX, true, true, true, false)
		defOp(e.ab, e.name, ModeAbsolute, true, true, true, false)
		defOp(e.abx, e.name, ModeAbsoluteX, true, true, true, false)
	}

	defOp(0xE6, "INC", ModeZeroPage, true, true, true, false)
	defOp(0xF6, "INC", ModeZeroPageX, true, true, true, false)
	defOp(0xEE, "INC", ModeAbsolute, true, true, true, false)
	defOp(0xFE, "INC", ModeAbsoluteX, true, true, true, false)
	defOp(0xC6, "DEC", ModeZeroPage, true, true, true, false)
	defOp(0xD6, "DEC", ModeZeroPageX, true, true, true, false)
	defOp(0xCE, "DEC", ModeAbsolute, true, true, true, false)
	defOp(0xDE, "DEC", ModeAbsoluteX, true, true, true, false)

	// Control flow
	defOp(0x00, "BRK", ModeBRK, true, false, false, false)
	defOp(0x40, "RTI", ModeNone, true, false, false, false)
	defOp(0x60, "RTS", ModeNone, true, false, false, false)
	defOp(0x20, "JSR", ModeAbsolute, true, false, false, true)
	defOp(0x4C, "JMP", ModeAbsolute, true, false, false, true)
	defOp(0x6C, "JMP", ModeIndirect, true, false, false, true)

	for _, e := range []struct {
		name string
		code byte
	}{
		{"BPL", 0x10}, {"BMI", 0x30}, {"BVC", 0x50}, {"BVS", 0x70},
		{"BCC", 0x90}, {"BCS", 0xB0}, {"BNE", 0xD0}, {"BEQ", 0xF0},
	} {
		defOp(e.code, e.name, ModeRelative, true, false, false, true)
	}

	// Undocumented opcodes exercised by real 6502 software and modeled by
	// the original analyzer (ANC, SLO, SRE) plus the KIL family, which the
	// analyzer treats as dead ends with no successors (see nextSet).
	defOp(0x0B, "ANC", ModeImmediate, false, false, false, false)
	defOp(0x2B, "ANC", ModeImmediate, false, false, false, false)

	for _, e := range []struct {
		name                             string
		zp, zpx, ab, abx, aby, ix, iy    byte
	}{
		{"SLO", 0x07, 0x17, 0x0F, 0x1F, 0x1B, 0x03, 0x13},
		{"SRE", 0x47, 0x57, 0x4F, 0x5F, 0x5B, 0x43, 0x53},
	} {
		defOp(e.zp, e.name, ModeZeroPage, false, true, true, false)
		defOp(e.zpx, e.name, ModeZeroPageX, false, true, true, false)
		defOp(e.ab, e.name, ModeAbsolute, false, true, true, false)
		defOp(e.abx, e.name, ModeAbsoluteX, false, true, true, false)
		defOp(e.aby, e.name, ModeAbsoluteY, false, true, true, false)
		defOp(e.ix, e.name, ModeIndirectX, false, true, true, false)
		defOp(e.iy, e.name, ModeIndirectY, false, true, true, false)
	}

	for code := range kilOpcodes {
		defOp(code, "KIL", ModeNone, false, false, false, false)
	}

	// Every remaining zero-value slot is an unmodeled undocumented opcode.
	// Treat it as a one-byte NOP-shaped instruction: no operand address,
	// not official. This keeps GetOp total without inventing effect flags
	// for opcodes outside this analyzer's modeled set.
	for code := 0; code < 256; code++ {
		if opcodeTable[code].Name == "" {
			defOp(byte(code), "NOP", ModeNone, false, false, false, false)
		}
	}
}
