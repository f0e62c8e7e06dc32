package plugins

import (
	"fmt"
	"os"
	"strconv"

	"sixtyfiveoh"
)

func init() {
	sixtyfiveoh.Register("cdl_fceux", newCdlFceux)
}

// cdlFceux ingests an FCEUX Code/Data Logger file, usage
// --plugin=cdl_fceux:foo.cdl[,offset][,aggressive]. Grounded on
// plugins/cdl_fceux.py.
type cdlFceux struct {
	cdl        []byte
	aggressive bool
}

func newCdlFceux(org uint16, size int, args []string) (sixtyfiveoh.Plugin, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: cdl_fceux:foo.cdl[,offset][,aggressive]")
	}
	path := args[0]

	offset := 0
	if len(args) > 1 {
		v, err := strconv.ParseInt(args[1], 0, 64)
		if err != nil {
			return nil, fmt.Errorf("cdl_fceux: invalid offset: %w", err)
		}
		offset = int(v)
	}

	aggressive := false
	if len(args) > 2 {
		v, err := strconv.ParseInt(args[2], 0, 64)
		if err != nil {
			return nil, fmt.Errorf("cdl_fceux: invalid aggressive flag: %w", err)
		}
		aggressive = v != 0
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cdl_fceux: %w", err)
	}
	if offset < 0 || offset+size > int(info.Size()) {
		return nil, fmt.Errorf("cdl_fceux: invalid offset")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cdl_fceux: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(offset), 0); err != nil {
		return nil, fmt.Errorf("cdl_fceux: %w", err)
	}
	cdl := make([]byte, size)
	if _, err := readFull(f, cdl); err != nil {
		return nil, fmt.Errorf("cdl_fceux: size mismatch: %w", err)
	}

	return &cdlFceux{cdl: cdl, aggressive: aggressive}, nil
}

func readFull(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, fmt.Errorf("unexpected EOF")
		}
	}
	return total, nil
}

// CDL byte flag bits (FCEUX format).
const (
	cdlCode    = 1 << 0
	cdlData    = 1 << 1
	cdlCodeInd = 1 << 4
	cdlDataInd = 1 << 5
	cdlPCM     = 1 << 6
)

// UpdateDB marks the start of every CODE/indirect-CODE run as
// UNKNOWN->CODE (FCEUX's CDL format does not distinguish opcode bytes
// from operand bytes, so only run starts are trustworthy). In aggressive
// mode, bytes flagged purely as data (or DPCM data) are marked
// UNKNOWN->NOTCODE; this can misfire since a CDL data flag does not rule
// out the same address also being reached as code on another execution
// path.
func (p *cdlFceux) UpdateDB(db *sixtyfiveoh.Database) {
	inCode := false
	inCodeInd := false

	for i, b := range p.cdl {
		code := b&cdlCode != 0
		data := b&cdlData != 0
		codeInd := b&cdlCodeInd != 0
		dataInd := b&cdlDataInd != 0
		pcm := b&cdlPCM != 0

		addr := db.Org + uint16(i)

		if p.aggressive {
			if !code && !codeInd && (data || dataInd || pcm) {
				db.ChangeAnalysis(addr, sixtyfiveoh.Unknown, sixtyfiveoh.NotCode)
			}
		}

		if code {
			if !inCode {
				db.ChangeAnalysis(addr, sixtyfiveoh.Unknown, sixtyfiveoh.Code)
				inCode = true
			}
		} else {
			inCode = false
		}

		if codeInd {
			if !inCodeInd {
				db.ChangeAnalysis(addr, sixtyfiveoh.Unknown, sixtyfiveoh.Code)
				inCodeInd = true
			}
		} else {
			inCodeInd = false
		}
	}
}

func (p *cdlFceux) UpdateOpsValid(opsValid *[256]bool) {}
func (p *cdlFceux) UpdatePerms(perms []sixtyfiveoh.Permission) {}
