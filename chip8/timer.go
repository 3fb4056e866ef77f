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

import "time"

// TimerInterval is the period of the delay and sound timers (60hz).
const TimerInterval = time.Second / 60

// A Timer is an 8-bit counter that counts down to zero. It knows nothing about
// wall-clock time, the interpreter decides when to call Decrement.
type Timer struct {
	value uint8
}

// Decrement moves the timer one step towards zero.
func (t *Timer) Decrement() {
	if t.value > 0 {
		t.value--
	}
}

func (t *Timer) Set(value uint8) { t.value = value }
func (t *Timer) Get() uint8      { return t.value }
