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

import "fmt"

// An Instruction is a raw 16-bit CHIP-8 instruction word.
type Instruction uint16

func (i Instruction) Family() uint8 { return uint8(i >> 12) }
func (i Instruction) X() uint8      { return uint8(i>>8) & 0xF }
func (i Instruction) Y() uint8      { return uint8(i>>4) & 0xF }
func (i Instruction) N() uint8      { return uint8(i) & 0xF }
func (i Instruction) NN() uint8     { return uint8(i) }
func (i Instruction) NNN() uint16   { return uint16(i) & 0x0FFF }

// An Op identifies the operation an instruction performs. Ops are listed in
// opcode order.
type Op uint8

const (
	OpInvalid Op = iota
	OpCls
	OpRet
	OpJp
	OpCall
	OpSeImm
	OpSneImm
	OpSeReg
	OpLdImm
	OpAddImm
	OpLdReg
	OpOr
	OpAnd
	OpXor
	OpAddReg
	OpSub
	OpShr
	OpSubn
	OpShl
	OpSneReg
	OpLdI
	OpJpOffset
	OpRnd
	OpDrw
	OpSkp
	OpSknp
	OpLdVxDt
	OpLdVxK
	OpLdDtVx
	OpLdStVx
	OpAddI
	OpLdF
	OpLdBcd
	OpStore
	OpLoad
)

// Decode returns the operation encoded by i, or OpInvalid.
func (i Instruction) Decode() Op {
	switch i.Family() {
	case 0x0:
		switch i.NNN() {
		case 0x0E0:
			return OpCls
		case 0x0EE:
			return OpRet
		}
	case 0x1:
		return OpJp
	case 0x2:
		return OpCall
	case 0x3:
		return OpSeImm
	case 0x4:
		return OpSneImm
	case 0x5:
		return OpSeReg
	case 0x6:
		return OpLdImm
	case 0x7:
		return OpAddImm
	case 0x8:
		switch i.N() {
		case 0x0:
			return OpLdReg
		case 0x1:
			return OpOr
		case 0x2:
			return OpAnd
		case 0x3:
			return OpXor
		case 0x4:
			return OpAddReg
		case 0x5:
			return OpSub
		case 0x6:
			return OpShr
		case 0x7:
			return OpSubn
		case 0xE:
			return OpShl
		}
	case 0x9:
		return OpSneReg
	case 0xA:
		return OpLdI
	case 0xB:
		return OpJpOffset
	case 0xC:
		return OpRnd
	case 0xD:
		return OpDrw
	case 0xE:
		switch i.NN() {
		case 0x9E:
			return OpSkp
		case 0xA1:
			return OpSknp
		}
	case 0xF:
		switch i.NN() {
		case 0x07:
			return OpLdVxDt
		case 0x0A:
			return OpLdVxK
		case 0x15:
			return OpLdDtVx
		case 0x18:
			return OpLdStVx
		case 0x1E:
			return OpAddI
		case 0x29:
			return OpLdF
		case 0x33:
			return OpLdBcd
		case 0x55:
			return OpStore
		case 0x65:
			return OpLoad
		}
	}
	return OpInvalid
}

// String returns a pseudo-asm representation of the instruction.
func (i Instruction) String() string {
	x, y := i.X(), i.Y()
	switch i.Decode() {
	case OpCls:
		return "CLS"
	case OpRet:
		return "RET"
	case OpJp:
		return fmt.Sprintf("JP %03X", i.NNN())
	case OpCall:
		return fmt.Sprintf("CALL %03X", i.NNN())
	case OpSeImm:
		return fmt.Sprintf("SE V%1X,%02X", x, i.NN())
	case OpSneImm:
		return fmt.Sprintf("SNE V%1X,%02X", x, i.NN())
	case OpSeReg:
		return fmt.Sprintf("SE V%1X,V%1X", x, y)
	case OpLdImm:
		return fmt.Sprintf("LD V%1X,%02X", x, i.NN())
	case OpAddImm:
		return fmt.Sprintf("ADD V%1X,%02X", x, i.NN())
	case OpLdReg:
		return fmt.Sprintf("LD V%1X,V%1X", x, y)
	case OpOr:
		return fmt.Sprintf("OR V%1X,V%1X", x, y)
	case OpAnd:
		return fmt.Sprintf("AND V%1X,V%1X", x, y)
	case OpXor:
		return fmt.Sprintf("XOR V%1X,V%1X", x, y)
	case OpAddReg:
		return fmt.Sprintf("ADD V%1X,V%1X", x, y)
	case OpSub:
		return fmt.Sprintf("SUB V%1X,V%1X", x, y)
	case OpShr:
		return fmt.Sprintf("SHR V%1X,V%1X", x, y)
	case OpSubn:
		return fmt.Sprintf("SUBN V%1X,V%1X", x, y)
	case OpShl:
		return fmt.Sprintf("SHL V%1X,V%1X", x, y)
	case OpSneReg:
		return fmt.Sprintf("SNE V%1X,V%1X", x, y)
	case OpLdI:
		return fmt.Sprintf("LD I,%03X", i.NNN())
	case OpJpOffset:
		return fmt.Sprintf("JP V0,%03X", i.NNN())
	case OpRnd:
		return fmt.Sprintf("RND V%1X,%02X", x, i.NN())
	case OpDrw:
		return fmt.Sprintf("DRW V%1X,V%1X,%1X", x, y, i.N())
	case OpSkp:
		return fmt.Sprintf("SKP V%1X", x)
	case OpSknp:
		return fmt.Sprintf("SKNP V%1X", x)
	case OpLdVxDt:
		return fmt.Sprintf("LD V%1X,DT", x)
	case OpLdVxK:
		return fmt.Sprintf("LD V%1X,K", x)
	case OpLdDtVx:
		return fmt.Sprintf("LD DT,V%1X", x)
	case OpLdStVx:
		return fmt.Sprintf("LD ST,V%1X", x)
	case OpAddI:
		return fmt.Sprintf("ADD I,V%1X", x)
	case OpLdF:
		return fmt.Sprintf("LD F,V%1X", x)
	case OpLdBcd:
		return fmt.Sprintf("LD B,V%1X", x)
	case OpStore:
		return fmt.Sprintf("LD [I],V%1X", x)
	case OpLoad:
		return fmt.Sprintf("LD V%1X,[I]", x)
	}
	return fmt.Sprintf("DW %04X", uint16(i))
}
