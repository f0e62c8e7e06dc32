package sixtyfiveoh

import (
	"fmt"
	"io"
	"strings"
	"text/template"
)

// Disassembler renders a finalized Database/Bank pair as a textual
// listing. Unlike the teacher's Disassembler, which decided code-vs-data
// by re-deriving it from a straddle heuristic against known code
// addresses, this one trusts the database: analysis must already be
// finalized (see Analyzer) before Disassemble is called.
type Disassembler struct {
	Bank *Bank
	DB   *Database
}

// NewDisassembler builds a Disassembler over a bank and its finalized
// database.
func NewDisassembler(bank *Bank, db *Database) *Disassembler {
	return &Disassembler{Bank: bank, DB: db}
}

var listingHeader = `; ----------------------------------------------------------------------
; disassembly produced by sixtyfiveoh
; origin: ${{ printf "%04X" .Org }}  length: {{ .Len }}
; ----------------------------------------------------------------------

`

// Disassemble writes the full listing to w: one line per instruction
// (CODE) or per contiguous data run (NOTCODE/UNKNOWN), decorated with
// labels, operand bases, and head/tail comments drawn from the database.
func (d *Disassembler) Disassemble(w io.Writer) error {
	tmpl, err := template.New("listing").Parse(listingHeader)
	if err != nil {
		return err
	}
	data := struct {
		Org uint16
		Len int
	}{d.Bank.Org(), d.Bank.Len()}
	if err := tmpl.Execute(w, data); err != nil {
		return err
	}

	addr := int(d.Bank.Org())
	max := int(d.Bank.AddrMax())
	for addr <= max {
		n, err := d.emitAt(w, uint16(addr))
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		addr += n
	}
	return nil
}

// emitAt writes one line (instruction or a run of data bytes) starting
// at addr and returns how many bytes it consumed.
func (d *Disassembler) emitAt(w io.Writer, addr uint16) (int, error) {
	d.emitLabel(w, addr)
	d.emitHeadComment(w, addr)

	if d.DB.IsCode(addr) {
		return d.emitInstruction(w, addr)
	}
	return d.emitData(w, addr)
}

func (d *Disassembler) emitLabel(w io.Writer, addr uint16) {
	if l, ok := d.DB.GetLabelByAddr(addr, ""); ok {
		fmt.Fprintf(w, "%s:\n", l.Name)
	}
}

func (d *Disassembler) emitHeadComment(w io.Writer, addr uint16) {
	c := d.DB.CommentAt(addr)
	if c == nil || !c.HasHead() {
		return
	}
	for _, line := range c.HeadLines(";") {
		fmt.Fprintln(w, line)
	}
}

func (d *Disassembler) emitTailComment(w io.Writer, addr uint16) {
	c := d.DB.CommentAt(addr)
	if c == nil || !c.HasTail() {
		return
	}
	fmt.Fprint(w, c.TailLine("  ; "))
}

func (d *Disassembler) emitInstruction(w io.Writer, addr uint16) (int, error) {
	op := GetOp(d.Bank.ReadByte(addr))
	size := op.Size()
	if !d.Bank.ContainsRange(addr, addr+uint16(size)-1) {
		return d.emitData(w, addr)
	}

	var operand int
	if op.ArgSize > 0 {
		raw, _ := d.Bank.ReadSlice(addr+1, addr+1+uint16(op.ArgSize))
		operand = unpackU(raw)
	}

	var sb strings.Builder
	sb.WriteString(op.Name)
	sb.WriteByte(' ')
	sb.WriteString(d.operandText(addr, op, operand))
	d.pad(&sb, 24)
	fmt.Fprintf(&sb, "; $%04X", addr)

	if _, err := fmt.Fprint(w, sb.String()); err != nil {
		return 0, err
	}
	d.emitTailComment(w, addr)
	if _, err := fmt.Fprintln(w); err != nil {
		return 0, err
	}
	return size, nil
}

func (d *Disassembler) operandText(addr uint16, op Op, operand int) string {
	switch op.Mode {
	case ModeNone, ModeBRK:
		return ""
	case ModeImmediate:
		return fmt.Sprintf("#$%02X", operand)
	case ModeRelative:
		target := relTarget(addr, byte(operand))
		return d.labelOrAddr(addr, target, "")
	case ModeZeroPage:
		return d.labelOrAddr(addr, uint16(operand), "")
	case ModeZeroPageX:
		return d.labelOrAddr(addr, uint16(operand), "") + ",X"
	case ModeZeroPageY:
		return d.labelOrAddr(addr, uint16(operand), "") + ",Y"
	case ModeAbsolute:
		return d.labelOrAddr(addr, uint16(operand), "")
	case ModeAbsoluteX:
		return d.labelOrAddr(addr, uint16(operand), "") + ",X"
	case ModeAbsoluteY:
		return d.labelOrAddr(addr, uint16(operand), "") + ",Y"
	case ModeIndirect:
		return "(" + d.labelOrAddr(addr, uint16(operand), "") + ")"
	case ModeIndirectX:
		return fmt.Sprintf("($%02X,X)", operand)
	case ModeIndirectY:
		return fmt.Sprintf("($%02X),Y", operand)
	default:
		return fmt.Sprintf("$%02X", operand)
	}
}

// labelOrAddr renders the operand's effective base address as a label
// (honoring the database's operand hint and displacement) or a raw hex
// literal if no label applies.
func (d *Disassembler) labelOrAddr(instrAddr, operand uint16, prefer string) string {
	base := d.DB.GetOperandBase(instrAddr, int(operand))
	if l, ok := d.DB.GetOperandLabel(instrAddr, uint16(base)); ok {
		disp := int(operand) - base
		if disp == 0 {
			return l.Name
		}
		return fmt.Sprintf("%s+%d", l.Name, disp)
	}
	width := 4
	if operand <= 0xFF {
		width = 2
	}
	return fmt.Sprintf("$%0*X", width, operand)
}

func (d *Disassembler) emitData(w io.Writer, addr uint16) (int, error) {
	start := addr
	dt := d.DB.DataTypeAt(addr)
	step := uint16(dt.Size())
	const maxRunBytes = 8

	end := start + step
	for end <= d.Bank.AddrMax() && end-start < maxRunBytes {
		if d.DB.IsCode(end) || d.DB.DataTypeAt(end) != dt {
			break
		}
		if _, ok := d.DB.GetLabelByAddr(end, ""); ok {
			break
		}
		if c := d.DB.CommentAt(end); c != nil && c.HasHead() {
			break
		}
		next := end + step
		if next < end || !d.Bank.ContainsRange(end, next-1) {
			break
		}
		end = next
	}

	raw, err := d.Bank.ReadSlice(start, end)
	if err != nil {
		return 0, err
	}

	var sb strings.Builder
	var parts []string
	if step == 1 {
		sb.WriteString("EQUB ")
		for _, b := range raw {
			parts = append(parts, fmt.Sprintf("$%02X", b))
		}
	} else {
		sb.WriteString(".WORD ")
		for i := 0; i+1 < len(raw); i += 2 {
			parts = append(parts, fmt.Sprintf("$%04X", unpackU(raw[i:i+2])))
		}
	}
	sb.WriteString(strings.Join(parts, ","))
	d.pad(&sb, 24)
	fmt.Fprintf(&sb, "; $%04X", start)

	if _, err := fmt.Fprint(w, sb.String()); err != nil {
		return 0, err
	}
	d.emitTailComment(w, start)
	if _, err := fmt.Fprintln(w); err != nil {
		return 0, err
	}
	return len(raw), nil
}

func (d *Disassembler) pad(sb *strings.Builder, col int) {
	for sb.Len() < col {
		sb.WriteByte(' ')
	}
	sb.WriteByte(' ')
}
