// Package plugins holds the built-in permission/opcode-validity plug-ins,
// ported from original_source/td6502/plugins/*.py. Each registers itself
// with the core package's compile-time registry in an init() function in
// place of the original's dynamic module loading.
package plugins

import "sixtyfiveoh"

func init() {
	sixtyfiveoh.Register("allops", newAllOps)
}

// allOps allows every opcode, official and undocumented alike.
// Grounded on plugins/allop.py.
type allOps struct{}

func newAllOps(org uint16, size int, args []string) (sixtyfiveoh.Plugin, error) {
	return allOps{}, nil
}

func (allOps) UpdateDB(db *sixtyfiveoh.Database) {}

func (allOps) UpdateOpsValid(opsValid *[256]bool) {
	for code := range opsValid {
		opsValid[code] = true
	}
}

func (allOps) UpdatePerms(perms []sixtyfiveoh.Permission) {}
