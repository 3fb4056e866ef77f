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

// An OutOfMemoryErr is returned upon attempting to load a program that
// exceeds the memory's capacity.
type OutOfMemoryErr struct {
	ProgramSize int64
	Capacity    int
}

func (e *OutOfMemoryErr) Error() string {
	return fmt.Sprintf("not enough memory (program size: %v, free memory: %v)",
		e.ProgramSize, e.Capacity)
}

// A StackUnderflowErr is returned when a RET is executed with an empty call
// stack.
type StackUnderflowErr struct {
	// Address of the offending RET.
	PC uint16
}

func (e *StackUnderflowErr) Error() string {
	return fmt.Sprintf("stack underflow: RET with empty call stack at %04X", e.PC)
}

// A BadCodeErr is returned when the emulator tries to execute an instruction
// it does not recognize.
type BadCodeErr struct {
	Opcode uint16
	// Address the opcode was fetched from.
	PC uint16
}

func (e *BadCodeErr) Error() string {
	return fmt.Sprintf("invalid instruction %04X at %04X", e.Opcode, e.PC)
}
