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

package driver

import (
	"time"

	"github.com/Francesco149/go-chip8/chip8"
)

// QWERTY lays the hex keyboard out on the left of a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var QWERTY = map[rune]uint8{
	'1': chip8.Key1, '2': chip8.Key2, '3': chip8.Key3, '4': chip8.KeyC,
	'q': chip8.Key4, 'w': chip8.Key5, 'e': chip8.Key6, 'r': chip8.KeyD,
	'a': chip8.Key7, 's': chip8.Key8, 'd': chip8.Key9, 'f': chip8.KeyE,
	'z': chip8.KeyA, 'x': chip8.Key0, 'c': chip8.KeyB, 'v': chip8.KeyF,
}

// Autorelease turns key presses into KeyDown/KeyUp pairs for terminals,
// which only report presses. A key is released Hold after its last press;
// auto-repeat keeps it down while the physical key is held.
type Autorelease struct {
	hold time.Duration
	keys *chip8.Queue[chip8.KeyEvent]
	// last press of every key currently down
	down map[uint8]time.Time
}

// NewAutorelease returns an Autorelease pushing events to keys.
func NewAutorelease(keys *chip8.Queue[chip8.KeyEvent], hold time.Duration) *Autorelease {
	return &Autorelease{
		hold: hold,
		keys: keys,
		down: make(map[uint8]time.Time),
	}
}

// Press records a press of key at now.
func (a *Autorelease) Press(key uint8, now time.Time) {
	if _, held := a.down[key]; !held {
		a.keys.Push(chip8.KeyDown(key))
	}
	a.down[key] = now
}

// Expire releases the keys whose last press is older than the hold time.
func (a *Autorelease) Expire(now time.Time) {
	for k, t := range a.down {
		if now.Sub(t) > a.hold {
			delete(a.down, k)
			a.keys.Push(chip8.KeyUp(k))
		}
	}
}

// ReleaseAll releases every key still down.
func (a *Autorelease) ReleaseAll() {
	for k := range a.down {
		delete(a.down, k)
		a.keys.Push(chip8.KeyUp(k))
	}
}
