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

// Key numbers of the hex keyboard. 8, 4, 6 and 2 are typically used for
// directional input.
const (
	Key0 uint8 = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

// KeyEventKind tells what a KeyEvent reports.
type KeyEventKind uint8

const (
	EventKeyDown KeyEventKind = iota
	EventKeyUp
	// EventStop asks the run loop to halt. Key is ignored.
	EventStop
)

// A KeyEvent is sent by a frontend to the interpreter's keypad.
type KeyEvent struct {
	Kind KeyEventKind
	Key  uint8
}

func KeyDown(key uint8) KeyEvent { return KeyEvent{EventKeyDown, key & 0xF} }
func KeyUp(key uint8) KeyEvent   { return KeyEvent{EventKeyUp, key & 0xF} }
func Stop() KeyEvent             { return KeyEvent{Kind: EventStop} }

// Keypad latches the state of the 16 keys from a stream of KeyEvents.
//
// Besides the pressed state it keeps the last released key until someone
// takes it; a newer release replaces an unread one. This is what LD VX,K
// polls, so waiting for input never blocks the interpreter.
type Keypad struct {
	pressed     [16]bool
	released    uint8
	hasReleased bool
	stopped     bool
}

// Apply updates the keypad with a single event.
func (k *Keypad) Apply(ev KeyEvent) {
	switch ev.Kind {
	case EventKeyDown:
		k.pressed[ev.Key&0xF] = true
	case EventKeyUp:
		k.pressed[ev.Key&0xF] = false
		k.released = ev.Key & 0xF
		k.hasReleased = true
	case EventStop:
		k.stopped = true
	}
}

// Drain applies every event waiting in q without blocking.
func (k *Keypad) Drain(q *Queue[KeyEvent]) {
	if q == nil {
		return
	}
	for {
		ev, ok := q.TryPop()
		if !ok {
			return
		}
		k.Apply(ev)
	}
}

// IsPressed reports whether key is currently held down.
func (k *Keypad) IsPressed(key uint8) bool { return k.pressed[key&0xF] }

// TakeReleased returns the pending released key and clears it.
//
// Every KeyUp is recorded, not only those that arrive while LD VX,K waits, so
// a release left over from before the wait satisfies it right away.
func (k *Keypad) TakeReleased() (key uint8, ok bool) {
	if !k.hasReleased {
		return 0, false
	}
	k.hasReleased = false
	return k.released, true
}

// Stopped reports whether a stop event has been received. It stays set.
func (k *Keypad) Stopped() bool { return k.stopped }
