package plugins

import "sixtyfiveoh"

func init() {
	sixtyfiveoh.Register("nes_mapper000", newNesMapper0)
}

// nesMapper0 layers NROM (iNES mapper 0) bus behavior on top of whichever
// PPU/APU plug-in ran before it: $4018-$7FFF is entirely inaccessible
// (not readable, writable or executable) and $8000-$FFFF (PRG ROM) is not
// writable. Grounded on plugins/nes_mapper000.py.
type nesMapper0 struct{}

func newNesMapper0(org uint16, size int, args []string) (sixtyfiveoh.Plugin, error) {
	return nesMapper0{}, nil
}

func (nesMapper0) UpdateDB(db *sixtyfiveoh.Database) {}

func (nesMapper0) UpdateOpsValid(opsValid *[256]bool) {}

func (nesMapper0) UpdatePerms(perms []sixtyfiveoh.Permission) {
	for i := 0x4018; i <= 0x7FFF; i++ {
		perms[i].Readable = false
		perms[i].Writable = false
		perms[i].Executable = false
	}
	for i := 0x8000; i <= 0xFFFF; i++ {
		perms[i].Writable = false
	}
}
