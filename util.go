package sixtyfiveoh

// unpackU decodes a little-endian unsigned integer from 1 or 2 bytes.
// Ported from original_source/td6502/util.py:unpack_u.
func unpackU(buf []byte) int {
	value := 0
	for i, b := range buf {
		value |= int(b) << (8 * uint(i))
	}
	return value
}

// u8ToS8 reinterprets a byte as a signed 8-bit value.
// Ported from original_source/td6502/util.py:u8_to_s8.
func u8ToS8(value byte) int {
	if value < 0x80 {
		return int(value)
	}
	return int(value) - 0x100
}

// addrAdd adds a signed displacement to a 16-bit address, wrapping modulo
// 2^16 in either direction.
// Ported from original_source/td6502/util.py:addr_add.
func addrAdd(addr int, n int) uint16 {
	sum := (addr + n) % 0x10000
	if sum < 0 {
		sum += 0x10000
	}
	return uint16(sum)
}

// relTarget computes the absolute target of a relative branch: two bytes
// past the branch opcode, plus the signed operand.
// Ported from original_source/td6502/util.py:rel_target.
func relTarget(addr uint16, operand byte) uint16 {
	return addrAdd(int(addr), 2+u8ToS8(operand))
}

// packU16 encodes a 16-bit value as two little-endian bytes.
func packU16(v uint16) [2]byte {
	return [2]byte{byte(v), byte(v >> 8)}
}
