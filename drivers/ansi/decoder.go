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

package ansi

import (
	"time"

	"github.com/Francesco149/go-chip8/chip8"
)

const (
	keyCtrlC     = 0x03
	keyEnter     = '\r'
	keyEsc       = 0x1B
	keyCtrlSlash = 0x1C
)

// escTimeout is how long to wait for the rest of an escape sequence before
// treating Esc as a key of its own.
const escTimeout = 50 * time.Millisecond

type action uint8

const (
	actionNone action = iota
	actionKey
	actionStop
	actionQuit
)

// arrows maps the final byte of the cursor key sequences to the usual
// direction keys.
var arrows = map[byte]uint8{
	'A': chip8.Key2,
	'B': chip8.Key8,
	'C': chip8.Key6,
	'D': chip8.Key4,
}

type decoderState uint8

const (
	stateGround decoderState = iota
	stateEsc
	stateCSI
)

// decoder turns raw terminal bytes into key presses. It understands cursor
// keys sent as ESC [ A..D and tells them apart from a lone Esc.
type decoder struct {
	runes map[rune]uint8
	state decoderState
	escAt time.Time
}

func newDecoder(runes map[rune]uint8) *decoder {
	return &decoder{runes: runes}
}

func (d *decoder) feed(b byte, now time.Time) (action, uint8) {
	switch d.state {
	case stateEsc:
		if b == '[' {
			d.state = stateCSI
			return actionNone, 0
		}
		// a lone Esc, the key typed after it is dropped
		d.state = stateGround
		if act, _ := d.ground(b, now); act == actionQuit {
			return actionQuit, 0
		}
		return actionStop, 0
	case stateCSI:
		// parameters and intermediates until the final byte
		if b >= 0x40 && b <= 0x7E {
			d.state = stateGround
			if k, ok := arrows[b]; ok {
				return actionKey, k
			}
		}
		return actionNone, 0
	}
	return d.ground(b, now)
}

func (d *decoder) ground(b byte, now time.Time) (action, uint8) {
	switch b {
	case keyCtrlC, keyCtrlSlash:
		return actionQuit, 0
	case keyEsc:
		d.state = stateEsc
		d.escAt = now
		return actionNone, 0
	case keyEnter:
		return actionKey, chip8.Key5
	}
	if k, ok := d.runes[lower(rune(b))]; ok {
		return actionKey, k
	}
	return actionNone, 0
}

// timeout reports a stop if a lone Esc has been waiting too long.
func (d *decoder) timeout(now time.Time) action {
	if d.state == stateEsc && now.Sub(d.escAt) >= escTimeout {
		d.state = stateGround
		return actionStop
	}
	return actionNone
}

func lower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + 'a' - 'A'
	}
	return r
}
