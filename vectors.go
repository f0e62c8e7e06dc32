package sixtyfiveoh

import "fmt"

// Interrupt vector addresses, fixed by the 6502 memory map.
const (
	vectorNMI   = 0xFFFA
	vectorRESET = 0xFFFC
	vectorIRQ   = 0xFFFE
)

// VectorSpec is one of the three interrupt vector selections a caller may
// pass to ResolveInterruptVectors: either "auto" (read the handler
// address out of the bank) or an explicit address.
type VectorSpec struct {
	Auto    bool
	Addr    uint16
	Present bool // false means "not supplied at all" (leave unresolved)
}

// AutoVector requests that the handler address be read from the bank's
// vector table.
func AutoVector() VectorSpec { return VectorSpec{Auto: true, Present: true} }

// FixedVector supplies an explicit handler address.
func FixedVector(addr uint16) VectorSpec { return VectorSpec{Addr: addr, Present: true} }

// ResolvedVectors holds the three handler addresses after resolution,
// each optionally present.
type ResolvedVectors struct {
	NMI, RESET, IRQ IRQAddr
}

// ResolveInterruptVectors implements spec.md §6 "Interrupt vectors",
// supplemented from original_source/td6502/analyze.py's ADDR_AUTO
// handling: NMI/RESET/IRQ are resolved identically, each either read
// little-endian from its fixed vector address in bank ("auto") or taken
// verbatim from spec.
//
// For each resolved vector: the target is marked CODE unless already
// NOTCODE, and given a default label (NMI/RESET/IRQ) if no label covers
// it. If all three vector address pairs are UNKNOWN at the start, they
// are set to WORD type.
func ResolveInterruptVectors(db *Database, bank *Bank, nmi, reset, irq VectorSpec) (ResolvedVectors, error) {
	allUnknownAtStart := db.IsUnknown(vectorNMI) && db.IsUnknown(vectorNMI+1) &&
		db.IsUnknown(vectorRESET) && db.IsUnknown(vectorRESET+1) &&
		db.IsUnknown(vectorIRQ) && db.IsUnknown(vectorIRQ+1)

	var rv ResolvedVectors
	var err error

	if rv.NMI, err = resolveOne(db, bank, nmi, vectorNMI, "NMI"); err != nil {
		return rv, err
	}
	if rv.RESET, err = resolveOne(db, bank, reset, vectorRESET, "RESET"); err != nil {
		return rv, err
	}
	if rv.IRQ, err = resolveOne(db, bank, irq, vectorIRQ, "IRQ"); err != nil {
		return rv, err
	}

	if allUnknownAtStart {
		db.SetDataType(vectorNMI, Word)
		db.SetDataType(vectorRESET, Word)
		db.SetDataType(vectorIRQ, Word)
	}

	return rv, nil
}

func resolveOne(db *Database, bank *Bank, spec VectorSpec, vectorAddr uint16, label string) (IRQAddr, error) {
	if !spec.Present {
		return NoIRQ, nil
	}

	target := spec.Addr
	if spec.Auto {
		if !bank.ContainsRange(vectorAddr, vectorAddr+1) {
			return NoIRQ, &InputShapeError{Reason: fmt.Sprintf("%s vector at 0x%04X is outside the bank", label, vectorAddr)}
		}
		raw, _ := bank.ReadSlice(vectorAddr, vectorAddr+2)
		target = uint16(unpackU(raw))
	}

	// No containment check on target: unlike the vector storage location
	// above, the resolved handler address is free to live outside the
	// currently-loaded bank (ChangeAnalysis/AddLabel operate on the full
	// 65536-entry database, not the bank). Matches
	// original_source/td6502/analyze.py's interrupt_register, which has
	// no containment check on addr at all.
	if !db.IsNotCode(target) {
		db.ChangeAnalysis(target, db.AnalysisAt(target), Code)
	}
	if _, ok := db.GetLabelByAddr(target, ""); !ok {
		_ = db.AddLabel(label, target, 1)
	}

	return Known(target), nil
}
