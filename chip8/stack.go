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

// Stack holds return addresses. Unlike the 12 levels of the COSMAC VIP it
// grows without bound.
type Stack struct {
	addrs []uint16
}

// Push saves a return address.
func (s *Stack) Push(addr uint16) { s.addrs = append(s.addrs, addr) }

// Pop removes and returns the most recent address. ok is false if the stack
// is empty.
func (s *Stack) Pop() (addr uint16, ok bool) {
	if len(s.addrs) == 0 {
		return 0, false
	}
	addr = s.addrs[len(s.addrs)-1]
	s.addrs = s.addrs[:len(s.addrs)-1]
	return addr, true
}

// Len returns the current call depth.
func (s *Stack) Len() int { return len(s.addrs) }
