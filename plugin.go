package sixtyfiveoh

import "fmt"

// Plugin mutates the database, opcode-validity vector, and permissions
// before analysis runs. Each of the three methods is invoked once per
// plug-in, in this order, in the user-specified plug-in order; a plug-in
// sees the full post-previous-plug-in state.
type Plugin interface {
	UpdateDB(db *Database)
	UpdateOpsValid(opsValid *[256]bool)
	UpdatePerms(perms []Permission)
}

// PluginFactory constructs a Plugin given the bank's origin, its size in
// bytes, and the plug-in's own argument list (the part after ':' in a
// "--plugin name:arg1,arg2" flag).
type PluginFactory func(org uint16, size int, args []string) (Plugin, error)

var pluginRegistry = map[string]PluginFactory{}

// Register adds a built-in plug-in factory under name. Built-in plug-in
// packages call this from an init() function, the compile-time-
// registration replacement described in SPEC_FULL.md for the original's
// dynamic module loading.
func Register(name string, factory PluginFactory) {
	pluginRegistry[name] = factory
}

// Lookup finds a registered plug-in factory by name.
func Lookup(name string) (PluginFactory, bool) {
	f, ok := pluginRegistry[name]
	return f, ok
}

// RunPlugin constructs a plug-in by name and runs its three update
// methods against db/opsValid/perms, in the contract order. Any error
// from construction or execution is fatal and returned wrapped as a
// *PluginError.
func RunPlugin(name string, args []string, org uint16, size int, db *Database, opsValid *[256]bool, perms []Permission) error {
	factory, ok := Lookup(name)
	if !ok {
		return &PluginError{Plugin: name, Err: fmt.Errorf("no such plugin registered")}
	}
	p, err := factory(org, size, args)
	if err != nil {
		return &PluginError{Plugin: name, Err: err}
	}
	p.UpdateDB(db)
	p.UpdateOpsValid(opsValid)
	p.UpdatePerms(perms)
	return nil
}

// DefaultOpsValid returns the opcode-validity vector before any plug-in
// runs: official[code] for every opcode, per §4.E.
func DefaultOpsValid() *[256]bool {
	var ov [256]bool
	for code := 0; code < 256; code++ {
		ov[code] = GetOp(byte(code)).Official
	}
	return &ov
}
