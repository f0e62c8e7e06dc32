package sixtyfiveoh

// Analyzer is the two-pass reachability engine that flips UNKNOWN cells
// to CODE or NOTCODE. It is the core of this package: ported line for
// line from original_source/td6502/ana.py's Analyzer, generalized only
// where the Go type system requires it.
//
// The analyzer is total: no input makes it fail. It may simply leave
// cells UNKNOWN.
type Analyzer struct{}

// NewAnalyzer constructs an Analyzer. It carries no state between calls.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// IRQAddr is an optional interrupt handler address. Present reports
// whether a concrete address is known; when absent, BRK's control-flow
// successor is empty (see nextSet) and its permission check (see
// analyzeSinglePerm) is skipped.
type IRQAddr struct {
	Addr    uint16
	Present bool
}

// NoIRQ is the absent interrupt address.
var NoIRQ = IRQAddr{}

// Known wraps a concrete interrupt address.
func Known(addr uint16) IRQAddr { return IRQAddr{Addr: addr, Present: true} }

// Analyze runs both passes over bank, mutating db's analysis state only
// through ChangeAnalysis.
func (a *Analyzer) Analyze(db *Database, bank *Bank, opsValid *[256]bool, perms []Permission, irq IRQAddr) {
	a.analyzeSingle(db, bank, opsValid, perms, irq)
	a.analyzeFlow(db, bank, irq)
}

// --- Pass 1: per-instruction legality ---

func (a *Analyzer) analyzeSingle(db *Database, bank *Bank, opsValid *[256]bool, perms []Permission, irq IRQAddr) {
	for addr := int(bank.Org()); addr <= int(bank.AddrMax()); addr++ {
		a16 := uint16(addr)
		if !db.IsUnknown(a16) {
			continue
		}

		if !perms[a16].Executable {
			// No instruction can start at a non-executable address.
			db.ChangeAnalysis(a16, Unknown, NotCode)
			continue
		}

		op := GetOp(bank.ReadByte(a16))

		if !opsValid[op.Code] {
			db.ChangeAnalysis(a16, Unknown, NotCode)
			continue
		}

		if !bank.ContainsRange(a16, a16+uint16(op.Size())-1) {
			// Truncated instruction at the image edge: leave UNKNOWN.
			continue
		}

		var operand int
		if op.ArgSize > 0 {
			argBytes, _ := bank.ReadSlice(a16+1, a16+1+uint16(op.ArgSize))
			operand = unpackU(argBytes)
		}
		a.analyzeSinglePerm(db, a16, op, operand, perms, irq)
	}
}

func notExecutable(db *Database, perms []Permission, addr uint16) bool {
	return db.IsNotCode(addr) || !perms[addr].Executable
}

func accessIllegal(db *Database, perms []Permission, addr uint16, op Op) bool {
	if op.ArgRead && !perms[addr].Readable {
		return true
	}
	if op.ArgWrite && !perms[addr].Writable {
		return true
	}
	if op.ArgExec && notExecutable(db, perms, addr) {
		return true
	}
	return false
}

// abiAddrs yields the 256 consecutive candidate addresses for an
// absolute-indexed (ABX/ABY) operand, wrapping modulo 2^16.
func abiAddrs(base int) []uint16 {
	addrs := make([]uint16, 0x100)
	addr := base
	for i := range addrs {
		addrs[i] = addrAdd(addr, 0)
		addr = int(addrAdd(addr, 1))
	}
	return addrs
}

func (a *Analyzer) analyzeSinglePerm(db *Database, addr uint16, op Op, operand int, perms []Permission, irq IRQAddr) {
	switch {
	case op.Mode == ModeBRK && irq.Present:
		if notExecutable(db, perms, irq.Addr) || !perms[irq.Addr].Readable {
			db.ChangeAnalysis(addr, Unknown, NotCode)
		}

	case op.Mode == ModeRelative:
		target := relTarget(addr, byte(operand))
		if notExecutable(db, perms, target) || !perms[target].Readable {
			db.ChangeAnalysis(addr, Unknown, NotCode)
		}

	case op.Code == 0x6C: // JMP (indirect): low-byte page-wrap bug
		lo := uint16(operand)
		hi := uint16(operand&0xFF00) | uint16((operand+1)&0xFF)
		if !perms[lo].Readable || !perms[hi].Readable {
			db.ChangeAnalysis(addr, Unknown, NotCode)
		}

	case op.Mode == ModeZeroPage || op.Mode == ModeAbsolute:
		if accessIllegal(db, perms, uint16(operand), op) {
			db.ChangeAnalysis(addr, Unknown, NotCode)
		}

	case op.Mode == ModeZeroPageX || op.Mode == ModeZeroPageY || op.Mode == ModeIndirectX:
		illegal := true
		for i := 0; i <= 0xFF; i++ {
			if !accessIllegal(db, perms, uint16(i), op) {
				illegal = false
				break
			}
		}
		if illegal {
			db.ChangeAnalysis(addr, Unknown, NotCode)
		}

	case op.Mode == ModeAbsoluteX || op.Mode == ModeAbsoluteY:
		illegal := true
		for _, cand := range abiAddrs(operand) {
			if !accessIllegal(db, perms, cand, op) {
				illegal = false
				break
			}
		}
		if illegal {
			db.ChangeAnalysis(addr, Unknown, NotCode)
		}

	case op.Mode == ModeIndirectY:
		lo := uint16(operand)
		hi := addrAdd(operand+1, 0) & 0xFF
		if !perms[lo].Readable || !perms[hi].Readable {
			db.ChangeAnalysis(addr, Unknown, NotCode)
		}
	}
}

// --- Control-flow successors ---

// nextResult is the 0-, 1- or 2-element successor set of an instruction.
// An element with unknown==true represents "a successor exists but its
// address cannot be determined" (RTS, RTI, JMP indirect).
type nextResult struct {
	addrs   []uint16
	unknown bool // single successor, address undetermined
}

func noSuccessors() nextResult { return nextResult{} }

// nextSet implements §4.F.3. pc is the instruction's address, op/operand
// its decoded form, irq the interrupt address (if known).
func nextSet(pc uint16, op Op, operand int, irq IRQAddr) nextResult {
	if kilOpcodes[op.Code] {
		return noSuccessors()
	}

	switch op.Code {
	case 0x00: // BRK
		if !irq.Present {
			return noSuccessors()
		}
		return nextResult{addrs: []uint16{irq.Addr}}

	case 0x20, 0x4C: // JSR abs, JMP abs
		return nextResult{addrs: []uint16{uint16(operand)}}

	case 0x6C, 0x60, 0x40: // JMP ind, RTS, RTI
		return nextResult{unknown: true}
	}

	if op.Mode == ModeRelative {
		after := int(pc) + 2
		target := int(pc) + 2 + u8ToS8(byte(operand))
		if after > 0xFFFF || target < 0 || target > 0xFFFF {
			return noSuccessors()
		}
		if after == target {
			return nextResult{addrs: []uint16{uint16(after)}}
		}
		return nextResult{addrs: []uint16{uint16(after), uint16(target)}}
	}

	after := int(pc) + op.Size()
	if after > 0xFFFF {
		return noSuccessors()
	}
	return nextResult{addrs: []uint16{uint16(after)}}
}

// decodeAt decodes the instruction at addr, reporting whether it fits in
// the bank (a truncated instruction at the image edge does not).
func decodeAt(bank *Bank, addr uint16) (Op, int, bool) {
	op := GetOp(bank.ReadByte(addr))
	if !bank.ContainsRange(addr, addr+uint16(op.Size())-1) {
		return op, 0, false
	}
	var operand int
	if op.ArgSize > 0 {
		argBytes, _ := bank.ReadSlice(addr+1, addr+1+uint16(op.ArgSize))
		operand = unpackU(argBytes)
	}
	return op, operand, true
}

// --- Pass 2a: UNKNOWN exploration ---

func (a *Analyzer) analyzeFlow(db *Database, bank *Bank, irq IRQAddr) {
	a.analyzeFlowUnknown(db, bank, irq)
	a.analyzeFlowCode(db, bank, irq)
}

func (a *Analyzer) analyzeFlowUnknown(db *Database, bank *Bank, irq IRQAddr) {
	var done [0x10000]bool
	for addr := 0; addr <= 0xFFFF; addr++ {
		a16 := uint16(addr)
		if !bank.Contains(a16) || !db.IsUnknown(a16) || done[addr] {
			continue
		}
		a.exploreUnknown(db, bank, irq, a16, &done)
	}
}

// exploreUnknown runs one depth-first linear trace, dooming it (flipping
// every address visited to NOTCODE) if it provably leads to non-code.
// Two-successor branches recurse independently per §4.F.5; this mirrors
// ana.py's _analyze_flow_unknown_one, iteratively for the 1-successor
// chain and recursively for the fork.
func (a *Analyzer) exploreUnknown(db *Database, bank *Bank, irq IRQAddr, start uint16, done *[0x10000]bool) {
	var trace []uint16
	addr := start
	doom := false

	for {
		if !bank.Contains(addr) || done[addr] {
			break
		}
		done[addr] = true
		trace = append(trace, addr)

		op, operand, fits := decodeAt(bank, addr)
		if !fits {
			break
		}
		next := nextSet(addr, op, operand, irq)

		switch len(next.addrs) {
		case 0:
			if next.unknown {
				// single successor, address undetermined
				return
			}
			return // no successors at all

		case 1:
			s := next.addrs[0]
			switch {
			case db.IsUnknown(s):
				addr = s
				continue
			case db.IsCode(s):
				return
			case db.IsNotCode(s):
				doom = true
			}

		case 2:
			s0, s1 := next.addrs[0], next.addrs[1]
			switch {
			case db.IsUnknown(s0) && db.IsUnknown(s1):
				a.exploreUnknown(db, bank, irq, s0, done)
				a.exploreUnknown(db, bank, irq, s1, done)
				if db.IsNotCode(s0) && db.IsNotCode(s1) {
					doom = true
				} else {
					return
				}
			case db.IsCode(s0) || db.IsCode(s1):
				return
			case db.IsUnknown(s0) && db.IsNotCode(s1):
				addr = s0
				continue
			case db.IsNotCode(s0) && db.IsUnknown(s1):
				addr = s1
				continue
			case db.IsNotCode(s0) && db.IsNotCode(s1):
				doom = true
			}
		}
		break
	}

	if doom {
		for _, t := range trace {
			db.ChangeAnalysis(t, Unknown, NotCode)
		}
	}
}

// --- Pass 2b: CODE propagation ---

func (a *Analyzer) analyzeFlowCode(db *Database, bank *Bank, irq IRQAddr) {
	var done [0x10000]bool
	for addr := 0; addr <= 0xFFFF; addr++ {
		a16 := uint16(addr)
		if !bank.Contains(a16) || !db.IsCode(a16) || done[addr] {
			continue
		}
		a.propagateCode(db, bank, irq, a16, &done)
	}
}

func (a *Analyzer) propagateCode(db *Database, bank *Bank, irq IRQAddr, start uint16, done *[0x10000]bool) {
	addr := start
	for {
		if !bank.Contains(addr) || done[addr] {
			return
		}
		done[addr] = true

		op, operand, fits := decodeAt(bank, addr)
		if !fits {
			return
		}
		next := nextSet(addr, op, operand, irq)

		switch len(next.addrs) {
		case 0:
			return

		case 1:
			s := next.addrs[0]
			switch {
			case db.IsUnknown(s):
				db.ChangeAnalysis(s, Unknown, Code)
				addr = s
			case db.IsCode(s):
				addr = s
			case db.IsNotCode(s):
				return
			}

		case 2:
			s0, s1 := next.addrs[0], next.addrs[1]
			switch {
			case db.IsUnknown(s0) && db.IsNotCode(s1):
				db.ChangeAnalysis(s0, Unknown, Code)
				addr = s0
			case db.IsNotCode(s0) && db.IsUnknown(s1):
				db.ChangeAnalysis(s1, Unknown, Code)
				addr = s1
			default:
				return
			}
		}
	}
}
