package plugins

import "sixtyfiveoh"

func init() {
	sixtyfiveoh.Register("nes", newNes)
}

// nes models the NES/Famicom 2A03 memory map: RAM mirrors, PPU register
// mirrors, write-only and read-only registers, and BRK disabled (BRK is
// rarely used in NES code and its presence tends to make UNKNOWN data
// regions noisy). Grounded on plugins/nes.py.
type nes struct{}

func newNes(org uint16, size int, args []string) (sixtyfiveoh.Plugin, error) {
	return nes{}, nil
}

func (nes) UpdateDB(db *sixtyfiveoh.Database) {
	addPPUAndAPULabels(db)
}

func addPPUAndAPULabels(db *sixtyfiveoh.Database) {
	_ = db.AddLabel("PPU_CTRL", 0x2000, 1)
	_ = db.AddLabel("PPU_MASK", 0x2001, 1)
	_ = db.AddLabel("PPU_STATUS", 0x2002, 1)
	_ = db.AddLabel("OAM_ADDR", 0x2003, 1)
	_ = db.AddLabel("OAM_DATA", 0x2004, 1)
	_ = db.AddLabel("PPU_SCROLL", 0x2005, 1)
	_ = db.AddLabel("PPU_ADDR", 0x2006, 1)
	_ = db.AddLabel("PPU_DATA", 0x2007, 1)
	_ = db.AddLabel("OAM_DMA", 0x4014, 1)

	_ = db.AddLabel("APU_PULSE1", 0x4000, 4)
	_ = db.AddLabel("APU_PULSE2", 0x4004, 4)
	_ = db.AddLabel("APU_TRIANGLE", 0x4008, 4)
	_ = db.AddLabel("APU_NOISE", 0x400C, 4)
	_ = db.AddLabel("APU_DMC", 0x4010, 4)
	_ = db.AddLabel("APU_STATUS", 0x4015, 1)
	_ = db.AddLabel("APU_FRAME", 0x4017, 1)

	_ = db.AddLabel("CONTROLLER", 0x4016, 2)
}

const brkOpcode = 0x00

func (nes) UpdateOpsValid(opsValid *[256]bool) {
	opsValid[brkOpcode] = false
}

func (nes) UpdatePerms(perms []sixtyfiveoh.Permission) {
	// RAM mirror is not accessible.
	for i := 0x0800; i <= 0x1FFF; i++ {
		perms[i].Readable = false
		perms[i].Writable = false
		perms[i].Executable = false
	}

	// I/O registers are not executable.
	for i := 0x2000; i <= 0x4017; i++ {
		perms[i].Executable = false
	}

	// PPU register mirror is not accessible.
	for i := 0x2008; i <= 0x3FFF; i++ {
		perms[i].Readable = false
		perms[i].Writable = false
	}

	for _, addr := range []int{0x2000, 0x2001, 0x2003, 0x2005, 0x2006,
		0x4000, 0x4001, 0x4002, 0x4003, 0x4004, 0x4005, 0x4006, 0x4007,
		0x4008, 0x400A, 0x400B, 0x400C, 0x400E, 0x400F,
		0x4010, 0x4011, 0x4012, 0x4013, 0x4014} {
		perms[addr].Readable = false
	}

	// Read-only registers.
	perms[0x2002].Writable = false

	// $4009 and $400D are unused, but eventually accessed in
	// memory-clearing loops: http://wiki.nesdev.com/w/index.php/2A03
}
