package plugins

import "sixtyfiveoh"

func init() {
	sixtyfiveoh.Register("nes_minimal", newNesMinimal)
}

// nesMinimal is the lighter NES variant: same PPU/APU labels as nes, but
// BRK stays enabled and only the register read/write-only rules apply
// (derived generically over every PPU register mirror rather than nes's
// hand-enumerated mirror range). Grounded on plugins/nes_minimal.py.
type nesMinimal struct{}

func newNesMinimal(org uint16, size int, args []string) (sixtyfiveoh.Plugin, error) {
	return nesMinimal{}, nil
}

func (nesMinimal) UpdateDB(db *sixtyfiveoh.Database) {
	addPPUAndAPULabels(db)
}

func (nesMinimal) UpdateOpsValid(opsValid *[256]bool) {}

func (nesMinimal) UpdatePerms(perms []sixtyfiveoh.Permission) {
	for i := 0x2000; i <= 0x4017; i++ {
		perms[i].Executable = false
	}

	for base := 0x2000; base <= 0x3FFF; base += 8 {
		perms[base+0].Readable = false
		perms[base+1].Readable = false
		perms[base+3].Readable = false
		perms[base+5].Readable = false
		perms[base+6].Readable = false
	}
	for _, addr := range []int{0x4000, 0x4001, 0x4002, 0x4003, 0x4004, 0x4005, 0x4006, 0x4007,
		0x4008, 0x400A, 0x400B, 0x400C, 0x400E, 0x400F,
		0x4010, 0x4011, 0x4012, 0x4013, 0x4014} {
		perms[addr].Readable = false
	}

	for base := 0x2000; base <= 0x3FFF; base += 8 {
		perms[base+2].Writable = false
	}

	// $4009 and $400D are unused, but eventually accessed in
	// memory-clearing loops: http://wiki.nesdev.com/w/index.php/2A03
}
