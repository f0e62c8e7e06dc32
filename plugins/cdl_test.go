package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"sixtyfiveoh"
)

func writeCDLFile(t *testing.T, bytes []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.cdl")
	if err := os.WriteFile(path, bytes, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCdlFceuxRequiresPath(t *testing.T) {
	factory, ok := sixtyfiveoh.Lookup("cdl_fceux")
	if !ok {
		t.Fatal("cdl_fceux plugin not registered")
	}
	if _, err := factory(0x8000, 4, nil); err == nil {
		t.Fatal("expected error with no path argument")
	}
}

func TestCdlFceuxMarksCodeRunStarts(t *testing.T) {
	factory, _ := sixtyfiveoh.Lookup("cdl_fceux")
	// CODE CODE DATA CODE: run starts at offset 0 and offset 3.
	path := writeCDLFile(t, []byte{cdlCode, cdlCode, cdlData, cdlCode})

	p, err := factory(0x8000, 4, []string{path})
	if err != nil {
		t.Fatal(err)
	}

	db := sixtyfiveoh.NewDatabase(0x8000)
	p.UpdateDB(db)

	if !db.IsCode(0x8000) {
		t.Error("offset 0 should be marked CODE (run start)")
	}
	if !db.IsUnknown(0x8001) {
		t.Error("offset 1 should stay UNKNOWN (mid-run, not a trustworthy start)")
	}
	if !db.IsUnknown(0x8002) {
		t.Error("offset 2 (pure data) should stay UNKNOWN in non-aggressive mode")
	}
	if !db.IsCode(0x8003) {
		t.Error("offset 3 should be marked CODE (new run start)")
	}
}

func TestCdlFceuxAggressiveMarksPureDataNotCode(t *testing.T) {
	factory, _ := sixtyfiveoh.Lookup("cdl_fceux")
	path := writeCDLFile(t, []byte{cdlCode, cdlData, 0x00})

	p, err := factory(0x8000, 3, []string{path, "0", "1"})
	if err != nil {
		t.Fatal(err)
	}

	db := sixtyfiveoh.NewDatabase(0x8000)
	p.UpdateDB(db)

	if !db.IsCode(0x8000) {
		t.Error("offset 0 should be CODE")
	}
	if !db.IsNotCode(0x8001) {
		t.Error("offset 1 (pure data) should be NOTCODE in aggressive mode")
	}
	// Offset 2 carries no CDL flags at all (not even data/data_ind/pcm),
	// so aggressive mode's "(data || dataInd || pcm)" disjunct never
	// fires for it; it stays UNKNOWN. Only an explicit data-ish flag
	// demotes a byte to NOTCODE, matching
	// original_source/td6502/plugins/cdl_fceux.py's update_db exactly.
	if !db.IsUnknown(0x8002) {
		t.Error("offset 2 (no flags at all) should stay UNKNOWN, even in aggressive mode")
	}
}

func TestCdlFceuxRejectsSizeMismatch(t *testing.T) {
	factory, _ := sixtyfiveoh.Lookup("cdl_fceux")
	path := writeCDLFile(t, []byte{cdlCode, cdlCode})

	if _, err := factory(0x8000, 10, []string{path}); err == nil {
		t.Fatal("expected error when requested size exceeds file size")
	}
}

func TestCdlFceuxOffsetSkipsLeadingBytes(t *testing.T) {
	factory, _ := sixtyfiveoh.Lookup("cdl_fceux")
	path := writeCDLFile(t, []byte{0xFF, cdlCode, cdlCode})

	p, err := factory(0x8000, 2, []string{path, "1"})
	if err != nil {
		t.Fatal(err)
	}

	db := sixtyfiveoh.NewDatabase(0x8000)
	p.UpdateDB(db)
	if !db.IsCode(0x8000) {
		t.Error("offset argument should skip the leading byte, landing on CODE flags")
	}
}
