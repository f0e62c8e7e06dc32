package sixtyfiveoh

// Permission is the read/write/execute vector for one address. The
// default, as the original analyzer assumes before any plug-in narrows
// it, is all three true.
type Permission struct {
	Readable   bool
	Writable   bool
	Executable bool
}

// NewPermissions allocates a dense 65536-entry permission vector,
// defaulting every address to fully permitted. Only plug-ins mutate it;
// the analyzer only ever reads it.
func NewPermissions() []Permission {
	perms := make([]Permission, 0x10000)
	for i := range perms {
		perms[i] = Permission{Readable: true, Writable: true, Executable: true}
	}
	return perms
}
