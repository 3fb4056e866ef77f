/*
	Copyright 2015 Franc[e]sco (lolisamurai@tfwno.gf)
	This file is part of go-chip8.
	go-chip8 is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.
	go-chip8 is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.
	You should have received a copy of the GNU General Public License
	along with go-chip8. If not, see <http://www.gnu.org/licenses/>.
*/

package chip8

const (
	// MemorySize is the amount of addressable memory. Addresses are masked
	// into this range, so reads and writes past the end wrap around.
	MemorySize = 0x1000
	// ProgramStart is where programs are loaded. The COSMAC VIP interpreter
	// occupied the first 512 bytes.
	ProgramStart = 0x200
	// FontStart is where the built-in hex digit sprites live.
	FontStart = 0x000
	// FontHeight is the number of rows (bytes) in each digit sprite.
	FontHeight = 5

	addrMask = MemorySize - 1
)

var font = [16 * FontHeight]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the 4k address space where programs are loaded and executed.
type Memory struct {
	b [MemorySize]byte
}

// NewMemory returns a memory with the hex font installed at FontStart.
func NewMemory() *Memory {
	m := &Memory{}
	copy(m.b[FontStart:], font[:])
	return m
}

// Load copies a program image verbatim to ProgramStart.
func (m *Memory) Load(program []byte) error {
	if len(program) > MemorySize-ProgramStart {
		return &OutOfMemoryErr{int64(len(program)), MemorySize - ProgramStart}
	}
	copy(m.b[ProgramStart:], program)
	return nil
}

// ReadByte returns the byte at addr.
func (m *Memory) ReadByte(addr uint16) uint8 { return m.b[addr&addrMask] }

// ReadWord returns the big-endian word at addr. The high byte is at addr.
func (m *Memory) ReadWord(addr uint16) uint16 {
	return uint16(m.b[addr&addrMask])<<8 | uint16(m.b[(addr+1)&addrMask])
}

// WriteByte stores value at addr.
func (m *Memory) WriteByte(addr uint16, value uint8) { m.b[addr&addrMask] = value }
