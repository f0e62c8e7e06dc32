package sixtyfiveoh

import (
	"fmt"
	"sort"
)

// Analysis is the per-address classification the analyzer produces.
type Analysis int

const (
	Unknown Analysis = iota
	Code
	NotCode
)

func (a Analysis) String() string {
	switch a {
	case Unknown:
		return "UNKNOWN"
	case Code:
		return "CODE"
	case NotCode:
		return "NOTCODE"
	default:
		return "?"
	}
}

// DataType is the per-address data interpretation for NOTCODE bytes.
type DataType int

const (
	Byte DataType = iota
	Word
)

// Size is the number of bytes the data type spans.
func (t DataType) Size() int {
	if t == Word {
		return 2
	}
	return 1
}

func (t DataType) String() string {
	if t == Word {
		return "WORD"
	}
	return "BYTE"
}

// Label names a contiguous span of addresses. A label with Size > 1 is
// "array-like".
type Label struct {
	Name string
	Addr uint16
	Size int
}

// NewLabel validates and constructs a Label.
func NewLabel(name string, addr uint16, size int) (*Label, error) {
	if !isIdentifier(name) {
		return nil, &ScriptError{Directive: "label", Reason: fmt.Sprintf("invalid label name %q", name)}
	}
	if size < 1 {
		return nil, &ScriptError{Directive: "label", Reason: "size must be positive"}
	}
	if int(addr)+size-1 > 0xFFFF {
		return nil, &ScriptError{Directive: "label", Reason: "addr+size out of range"}
	}
	return &Label{Name: name, Addr: addr, Size: size}, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter {
			return false
		}
		if !isLetter && !isDigit {
			return false
		}
	}
	return true
}

// Addrs returns the address range this label covers.
func (l *Label) Addrs() []uint16 {
	addrs := make([]uint16, l.Size)
	for i := range addrs {
		addrs[i] = l.Addr + uint16(i)
	}
	return addrs
}

// labelTable is the forward name->Label / reverse addr->labels index.
// Mirrors original_source/td6502/db.py:_LabelTable.
type labelTable struct {
	byName map[string]*Label
	byAddr [0x10000][]*Label
}

func newLabelTable() *labelTable {
	return &labelTable{byName: make(map[string]*Label)}
}

func (t *labelTable) has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

func (t *labelTable) get(name string) (*Label, bool) {
	l, ok := t.byName[name]
	return l, ok
}

func (t *labelTable) add(l *Label) {
	if old, ok := t.byName[l.Name]; ok {
		t.remove(old.Name)
	}
	t.byName[l.Name] = l
	for _, addr := range l.Addrs() {
		t.byAddr[addr] = append(t.byAddr[addr], l)
	}
}

func (t *labelTable) remove(name string) {
	l, ok := t.byName[name]
	if !ok {
		return
	}
	for _, addr := range l.Addrs() {
		kept := t.byAddr[addr][:0]
		for _, cand := range t.byAddr[addr] {
			if cand.Name != name {
				kept = append(kept, cand)
			}
		}
		t.byAddr[addr] = kept
	}
	delete(t.byName, name)
}

// byAddrAt returns the labels covering addr, in first-insertion order.
func (t *labelTable) byAddrAt(addr uint16) []*Label {
	return t.byAddr[addr]
}

// getByAddr implements the §4.D get_label_by_addr preference rule: an
// exact name match for prefer wins; otherwise non-array labels (size==1)
// are preferred over array-like ones, ties broken by first-insertion
// order. Mirrors db.py:_LabelTable.get_label_by_addr.
func (t *labelTable) getByAddr(addr uint16, prefer string) (*Label, bool) {
	labels := t.byAddr[addr]
	if len(labels) == 0 {
		return nil, false
	}
	if prefer != "" {
		for _, l := range labels {
			if l.Name == prefer {
				return l, true
			}
		}
	}

	best := labels[0]
	bestRank := rankLabel(best)
	for _, l := range labels[1:] {
		if r := rankLabel(l); r < bestRank {
			best, bestRank = l, r
		}
	}
	return best, true
}

func rankLabel(l *Label) int {
	if l.Size == 1 {
		return 0
	}
	return 1
}

func (t *labelTable) all() []*Label {
	out := make([]*Label, 0, len(t.byName))
	for _, l := range t.byName {
		out = append(out, l)
	}
	return out
}

// OperandLabelPolicy controls how an operand value resolves to a label.
type OperandLabelPolicy int

const (
	// OperandLabelAuto looks up whatever label covers the operand base.
	OperandLabelAuto OperandLabelPolicy = iota
	// OperandLabelNone disables label substitution for this operand.
	OperandLabelNone
	// OperandLabelNamed prefers a specific label name, falling back to
	// OperandLabelAuto behavior if that name doesn't cover the address.
	OperandLabelNamed
)

// OperandHint is the per-address displacement and label-resolution
// policy applied to an instruction's decoded operand.
type OperandHint struct {
	Disp         int
	Policy       OperandLabelPolicy
	PreferedName string
}

func defaultOperandHint() OperandHint {
	return OperandHint{Disp: 0, Policy: OperandLabelAuto}
}

// Comment holds an optional head (above the line) and tail (end of line)
// comment for one address.
type Comment struct {
	Head string
	Tail string
}

// HasHead reports whether a head comment has been set.
func (c *Comment) HasHead() bool { return c.Head != "" }

// HasTail reports whether a tail comment has been set.
func (c *Comment) HasTail() bool { return c.Tail != "" }

// HeadLines returns the head comment split into comment-prefixed lines,
// e.g. "; foo" and "; bar" for a "foo\nbar" head with prefix ";". Mirrors
// original_source/td6502/db.py:Comment.head_fmt.
func (c *Comment) HeadLines(prefix string) []string {
	if c.Head == "" {
		return nil
	}
	lines := splitLines(c.Head)
	out := make([]string, len(lines))
	for i, line := range lines {
		if line == "" {
			out[i] = prefix
		} else {
			out[i] = prefix + " " + line
		}
	}
	return out
}

// TailLine returns the tail comment formatted with the given prefix, or
// "" if no tail comment is set.
func (c *Comment) TailLine(prefix string) string {
	if c.Tail == "" {
		return ""
	}
	return prefix + " " + c.Tail
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

// Database is the per-address analysis state plus annotations (labels,
// data types, operand hints, comments). The analyzer mutates only
// Analysis, through ChangeAnalysis; everything else is plug-in- or
// script-owned. Mirrors original_source/td6502/db.py:Database.
type Database struct {
	Org uint16

	analysis     [0x10000]Analysis
	dataTypes    [0x10000]DataType
	comments     [0x10000]Comment
	operandHints [0x10000]OperandHint

	labels *labelTable
}

// NewDatabase constructs a Database with every address UNKNOWN, BYTE
// typed, and default operand hints.
func NewDatabase(org uint16) *Database {
	db := &Database{Org: org, labels: newLabelTable()}
	for i := range db.operandHints {
		db.operandHints[i] = defaultOperandHint()
	}
	return db
}

func (db *Database) IsUnknown(addr uint16) bool { return db.analysis[addr] == Unknown }
func (db *Database) IsCode(addr uint16) bool     { return db.analysis[addr] == Code }
func (db *Database) IsNotCode(addr uint16) bool  { return db.analysis[addr] == NotCode }

// AnalysisAt returns the current classification of addr.
func (db *Database) AnalysisAt(addr uint16) Analysis { return db.analysis[addr] }

// ChangeAnalysis is the only mechanism that may mutate analysis state. It
// is an atomic compare-and-set: if the current state at addr is not
// from, the call is a no-op. This is what keeps NOTCODE->CODE and
// CODE->NOTCODE transitions from ever happening through the analyzer.
func (db *Database) ChangeAnalysis(addr uint16, from, to Analysis) {
	if db.analysis[addr] == from {
		db.analysis[addr] = to
	}
}

// DataTypeAt returns the data type at addr (BYTE unless SetDataType was
// called there).
func (db *Database) DataTypeAt(addr uint16) DataType { return db.dataTypes[addr] }

// SetDataType records the data type at addr and unconditionally marks
// [addr, addr+type.Size) NOTCODE, overriding UNKNOWN or CODE.
func (db *Database) SetDataType(addr uint16, t DataType) {
	db.dataTypes[addr] = t
	end := int(addr) + t.Size()
	for a := int(addr); a < end; a++ {
		db.analysis[a] = NotCode
	}
}

// GetLabel looks up a label by name.
func (db *Database) GetLabel(name string) (*Label, bool) {
	return db.labels.get(name)
}

// GetLabelByAddr returns a label covering addr, per the preference rule
// in §4.D: prefer matches the name of a covering label, else prefer
// non-array labels, else first-insertion order.
func (db *Database) GetLabelByAddr(addr uint16, prefer string) (*Label, bool) {
	return db.labels.getByAddr(addr, prefer)
}

// GetLabelsByAddr returns every label covering addr, in insertion order.
func (db *Database) GetLabelsByAddr(addr uint16) []*Label {
	return db.labels.byAddrAt(addr)
}

// AddLabel adds or replaces (by name) a label covering [addr, addr+size).
func (db *Database) AddLabel(name string, addr uint16, size int) error {
	l, err := NewLabel(name, addr, size)
	if err != nil {
		return err
	}
	db.labels.add(l)
	return nil
}

// RemoveLabel deletes a label by name. A no-op if the name is unknown.
func (db *Database) RemoveLabel(name string) {
	db.labels.remove(name)
}

// Labels returns every label in the table, unordered.
func (db *Database) Labels() []*Label {
	return db.labels.all()
}

// SetOperandDisp sets the displacement hint for an instruction's operand.
func (db *Database) SetOperandDisp(addr uint16, disp int) {
	db.operandHints[addr].Disp = disp
}

// SetOperandLabelAuto restores automatic label resolution at addr.
func (db *Database) SetOperandLabelAuto(addr uint16) {
	db.operandHints[addr].Policy = OperandLabelAuto
	db.operandHints[addr].PreferedName = ""
}

// SetOperandLabelNone disables label substitution at addr.
func (db *Database) SetOperandLabelNone(addr uint16) {
	db.operandHints[addr].Policy = OperandLabelNone
	db.operandHints[addr].PreferedName = ""
}

// SetOperandLabelNamed prefers a specific label name at addr.
func (db *Database) SetOperandLabelNamed(addr uint16, name string) {
	db.operandHints[addr].Policy = OperandLabelNamed
	db.operandHints[addr].PreferedName = name
}

// OperandHintAt returns the operand hint in effect at addr.
func (db *Database) OperandHintAt(addr uint16) OperandHint {
	return db.operandHints[addr]
}

// GetOperandBase returns operand-hint.disp subtracted from operandValue,
// i.e. the "base" address the operand displaces from. If that result
// falls outside [0, 0xFFFF] the hint is ignored and operandValue is
// returned unchanged.
func (db *Database) GetOperandBase(instrAddr uint16, operandValue int) int {
	disp := db.operandHints[instrAddr].Disp
	base := operandValue - disp
	if base < 0 || base > 0xFFFF {
		return operandValue
	}
	return base
}

// GetOperandLabel resolves a label for an operand's base address,
// honoring the label-resolution policy at instrAddr.
func (db *Database) GetOperandLabel(instrAddr uint16, baseValue uint16) (*Label, bool) {
	hint := db.operandHints[instrAddr]
	if hint.Policy == OperandLabelNone {
		return nil, false
	}
	prefer := ""
	if hint.Policy == OperandLabelNamed {
		prefer = hint.PreferedName
	}
	return db.labels.getByAddr(baseValue, prefer)
}

// CommentAt returns a pointer to the comment record at addr so callers
// can read or mutate head/tail in place.
func (db *Database) CommentAt(addr uint16) *Comment {
	return &db.comments[addr]
}

// SetCommentHead sets the head comment at addr.
func (db *Database) SetCommentHead(addr uint16, text string) {
	db.comments[addr].Head = text
}

// SetCommentTail sets the tail comment at addr. Returns a ScriptError if
// text contains a newline.
func (db *Database) SetCommentTail(addr uint16, text string) error {
	for _, c := range text {
		if c == '\n' || c == '\r' {
			return &ScriptError{Directive: "comment_tail", Reason: "tail comment cannot contain newline characters"}
		}
	}
	db.comments[addr].Tail = text
	return nil
}

// notcodeRegion is a maximal run of consecutive NOTCODE addresses.
type notcodeRegion struct {
	base uint16
	size int
}

func (db *Database) notcodeRegions() []notcodeRegion {
	var regions []notcodeRegion
	inRun := false
	var base uint16
	size := 0
	for addr := 0; addr <= 0xFFFF; addr++ {
		if db.IsNotCode(uint16(addr)) {
			if !inRun {
				inRun = true
				base = uint16(addr)
				size = 0
			}
			size++
		} else if inRun {
			regions = append(regions, notcodeRegion{base, size})
			inRun = false
		}
	}
	if inRun {
		regions = append(regions, notcodeRegion{base, size})
	}
	return regions
}

// sortedLabels returns every label ordered by ascending address, then by
// name for ties, giving deterministic script emission.
func (db *Database) sortedLabels() []*Label {
	labels := db.labels.all()
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Addr != labels[j].Addr {
			return labels[i].Addr < labels[j].Addr
		}
		return labels[i].Name < labels[j].Name
	})
	return labels
}
