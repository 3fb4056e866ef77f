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

// Registers holds V0~VF. VF doubles as the carry, borrow and collision flag.
type Registers [16]uint8

// Get returns the value of register i.
func (r *Registers) Get(i uint8) uint8 { return r[i&0xF] }

// Set sets register i to value.
func (r *Registers) Set(i, value uint8) { r[i&0xF] = value }

// setFlag stores a boolean in VF.
func (r *Registers) setFlag(b bool) {
	if b {
		r[0xF] = 1
	} else {
		r[0xF] = 0
	}
}
