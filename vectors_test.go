package sixtyfiveoh

import "testing"

func buildVectorBank(t *testing.T) *Bank {
	t.Helper()
	body := make([]byte, 0x10000)
	// RESET vector -> 0x8000
	body[vectorRESET] = 0x00
	body[vectorRESET+1] = 0x80
	// NMI vector -> 0x8100
	body[vectorNMI] = 0x00
	body[vectorNMI+1] = 0x81
	// IRQ vector -> 0x8200
	body[vectorIRQ] = 0x00
	body[vectorIRQ+1] = 0x82
	bank, err := NewBank(body, 0x0000)
	if err != nil {
		t.Fatal(err)
	}
	return bank
}

func TestResolveInterruptVectorsAuto(t *testing.T) {
	bank := buildVectorBank(t)
	db := NewDatabase(0x0000)

	resolved, err := ResolveInterruptVectors(db, bank, AutoVector(), AutoVector(), AutoVector())
	if err != nil {
		t.Fatal(err)
	}
	if !resolved.RESET.Present || resolved.RESET.Addr != 0x8000 {
		t.Errorf("RESET = %+v, want 0x8000", resolved.RESET)
	}
	if !resolved.NMI.Present || resolved.NMI.Addr != 0x8100 {
		t.Errorf("NMI = %+v, want 0x8100", resolved.NMI)
	}
	if !resolved.IRQ.Present || resolved.IRQ.Addr != 0x8200 {
		t.Errorf("IRQ = %+v, want 0x8200", resolved.IRQ)
	}

	for _, addr := range []uint16{0x8000, 0x8100, 0x8200} {
		if !db.IsCode(addr) {
			t.Errorf("0x%04X should be marked CODE", addr)
		}
	}
	for _, pair := range []uint16{vectorNMI, vectorRESET, vectorIRQ} {
		if db.DataTypeAt(pair) != Word {
			t.Errorf("vector pair at 0x%04X should be WORD-typed", pair)
		}
	}

	if _, ok := db.GetLabelByAddr(0x8000, ""); !ok {
		t.Error("RESET target should get a default label")
	}
}

func TestResolveInterruptVectorsDoesNotOverrideNotCode(t *testing.T) {
	bank := buildVectorBank(t)
	db := NewDatabase(0x0000)
	db.ChangeAnalysis(0x8000, Unknown, NotCode)

	resolved, err := ResolveInterruptVectors(db, bank, VectorSpec{}, AutoVector(), VectorSpec{})
	if err != nil {
		t.Fatal(err)
	}
	if !resolved.RESET.Present {
		t.Fatal("RESET should resolve even though target is NOTCODE")
	}
	if !db.IsNotCode(0x8000) {
		t.Error("RESET target was already NOTCODE; must not be overridden to CODE")
	}
}

func TestResolveInterruptVectorsFixedAddress(t *testing.T) {
	bank := buildVectorBank(t)
	db := NewDatabase(0x0000)

	resolved, err := ResolveInterruptVectors(db, bank, VectorSpec{}, VectorSpec{}, FixedVector(0x9000))
	if err != nil {
		t.Fatal(err)
	}
	if !resolved.IRQ.Present || resolved.IRQ.Addr != 0x9000 {
		t.Errorf("IRQ = %+v, want fixed 0x9000", resolved.IRQ)
	}
}

func TestResolveInterruptVectorsOutsideBankFails(t *testing.T) {
	body := make([]byte, 0x10)
	bank, err := NewBank(body, 0x8000) // does not cover the vector table
	if err != nil {
		t.Fatal(err)
	}
	db := NewDatabase(0x8000)

	if _, err := ResolveInterruptVectors(db, bank, AutoVector(), VectorSpec{}, VectorSpec{}); err == nil {
		t.Fatal("expected error when vector address is outside the bank")
	}
}

func TestResolveInterruptVectorsFixedAddressOutsideBankSucceeds(t *testing.T) {
	// A small bank: the vector table itself lives outside it, so only
	// fixed (non-auto) specs are usable here. The resolved handler
	// address (0xC000) also lies outside the bank, which must still be
	// accepted: ChangeAnalysis/AddLabel act on the full address space,
	// not the bank.
	body := make([]byte, 0x100)
	bank, err := NewBank(body, 0x8000)
	if err != nil {
		t.Fatal(err)
	}
	db := NewDatabase(0x8000)

	resolved, err := ResolveInterruptVectors(db, bank, VectorSpec{}, FixedVector(0xC000), VectorSpec{})
	if err != nil {
		t.Fatalf("FixedVector outside the bank should not fail: %v", err)
	}
	if !resolved.RESET.Present || resolved.RESET.Addr != 0xC000 {
		t.Errorf("RESET = %+v, want 0xC000", resolved.RESET)
	}
	if !db.IsCode(0xC000) {
		t.Error("0xC000 should be marked CODE even though it's outside the loaded bank")
	}
	if _, ok := db.GetLabelByAddr(0xC000, ""); !ok {
		t.Error("0xC000 should get a default label even though it's outside the loaded bank")
	}
}

func TestResolveInterruptVectorsNotSupplied(t *testing.T) {
	bank := buildVectorBank(t)
	db := NewDatabase(0x0000)

	resolved, err := ResolveInterruptVectors(db, bank, VectorSpec{}, VectorSpec{}, VectorSpec{})
	if err != nil {
		t.Fatal(err)
	}
	if resolved.NMI.Present || resolved.RESET.Present || resolved.IRQ.Present {
		t.Fatalf("expected no vectors resolved, got %+v", resolved)
	}
}
