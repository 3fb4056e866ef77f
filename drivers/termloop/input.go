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

package termloop

import (
	"github.com/Francesco149/go-chip8/chip8"
	"github.com/Francesco149/go-chip8/driver"
	tl "github.com/JoelOtter/termloop"
)

// A KeyMap maps terminal input to CHIP-8 keys. Printable keys are looked up
// by rune, everything else by termloop key.
type KeyMap struct {
	Runes map[rune]uint8
	Keys  map[tl.Key]uint8
}

// DefaultKeyMap uses the QWERTY layout for printable keys. The arrows and
// Enter map to 2, 4, 6, 8 and 5, the usual directions.
var DefaultKeyMap = &KeyMap{
	Runes: driver.QWERTY,
	Keys: map[tl.Key]uint8{
		tl.KeyArrowDown:  chip8.Key8,
		tl.KeyArrowLeft:  chip8.Key4,
		tl.KeyArrowRight: chip8.Key6,
		tl.KeyArrowUp:    chip8.Key2,
		tl.KeyEnter:      chip8.Key5,
	},
}

// Lookup returns the CHIP-8 key for a termloop key event.
func (m *KeyMap) Lookup(key tl.Key, ch rune) (uint8, bool) {
	if ch != 0 {
		k, ok := m.Runes[ch]
		return k, ok
	}
	k, ok := m.Keys[key]
	return k, ok
}
