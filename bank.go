package sixtyfiveoh

import "fmt"

// Bank is a contiguous byte image placed at a known origin in the 16-bit
// 6502 address space. Banks never wrap: org+len(body)-1 must fit in
// [0, 0xFFFF].
type Bank struct {
	body []byte
	org  uint16
}

// NewBank validates and constructs a Bank. It fails on an empty body or an
// origin/length combination that would run past the top of the address
// space.
func NewBank(body []byte, org uint16) (*Bank, error) {
	if len(body) == 0 {
		return nil, &InputShapeError{Reason: "bank body is empty"}
	}
	if int(org)+len(body)-1 > 0xFFFF {
		return nil, &InputShapeError{Reason: fmt.Sprintf("bank of length %d at origin 0x%04X runs past 0xFFFF", len(body), org)}
	}
	return &Bank{body: body, org: org}, nil
}

// Org is the bank's origin address.
func (b *Bank) Org() uint16 { return b.org }

// Len is the number of bytes in the bank.
func (b *Bank) Len() int { return len(b.body) }

// AddrMax is the last address covered by the bank.
func (b *Bank) AddrMax() uint16 { return b.org + uint16(len(b.body)) - 1 }

// Contains reports whether addr falls within the bank.
func (b *Bank) Contains(addr uint16) bool {
	return addr >= b.org && addr <= b.AddrMax()
}

// ContainsRange reports whether every address in [a, z] falls within the
// bank. Callers pass an inclusive range.
func (b *Bank) ContainsRange(a, z uint16) bool {
	if z < a {
		return false
	}
	return b.Contains(a) && b.Contains(z)
}

// ReadByte reads a single byte at an absolute address. It panics if addr
// is outside the bank: callers are expected to have checked Contains
// first, the same contract the teacher's slice-index helpers rely on.
func (b *Bank) ReadByte(addr uint16) byte {
	if !b.Contains(addr) {
		panic(fmt.Sprintf("sixtyfiveoh: address 0x%04X outside bank [0x%04X, 0x%04X]", addr, b.org, b.AddrMax()))
	}
	return b.body[addr-b.org]
}

// ReadSlice returns the raw bytes for the half-open absolute range
// [a, z). Both endpoints must lie within the bank, with z allowed to be
// one past AddrMax (i.e. z == AddrMax()+1) to read to the end.
func (b *Bank) ReadSlice(a, z uint16) ([]byte, error) {
	end := int(z)
	if z == b.AddrMax()+1 {
		// One past AddrMax; for a bank ending at 0xFFFF this wraps to 0.
		end = int(b.AddrMax()) + 1
	}
	if end < int(a) {
		return nil, fmt.Errorf("sixtyfiveoh: inverted range [0x%04X, 0x%04X)", a, z)
	}
	if !b.Contains(a) {
		return nil, fmt.Errorf("sixtyfiveoh: start address 0x%04X outside bank", a)
	}
	if end > int(b.AddrMax())+1 {
		return nil, fmt.Errorf("sixtyfiveoh: end address 0x%04X outside bank", z)
	}
	return b.body[int(a)-int(b.org) : end-int(b.org)], nil
}
