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

// Package termloop implements a terminal frontend built on termloop.
//
// termbox only reports key presses, so every key is released automatically
// some time after its last press. Esc stops the interpreter, Ctrl+C closes
// the frontend.
package termloop

import (
	"context"
	"fmt"
	"time"

	"github.com/Francesco149/go-chip8/chip8"
	"github.com/Francesco149/go-chip8/driver"
	tl "github.com/JoelOtter/termloop"
	"github.com/retroenv/retrogolib/log"
)

// DefaultHold is how long a key stays down after its last press.
const DefaultHold = 100 * time.Millisecond

// screen preview position
const (
	screenX = 0
	screenY = 2
)

// A TermloopDriver is a terminal-based driver that uses the termloop library.
type TermloopDriver struct {
	// KeyMap maps terminal keys to CHIP-8 keys. Nil means DefaultKeyMap.
	KeyMap *KeyMap
	// Hold is how long a key stays pressed, zero means DefaultHold.
	Hold time.Duration
}

// just a wrapper entity to replay the display feed and handle input
type frontend struct {
	ctx    context.Context
	feeds  driver.IO
	logger *log.Logger
	keyMap *KeyMap
	input  *driver.Autorelease

	fb     chip8.Framebuffer
	shown  [chip8.PixelCount]bool
	pixels [chip8.PixelCount]*tl.Rectangle
	buf    []chip8.DisplayEvent

	status *tl.Text
	halted bool
	err    error
}

func (f *frontend) Draw(s *tl.Screen) {
	f.input.Expire(time.Now())

	f.buf = f.feeds.Display.Drain(f.buf[:0])
	for _, ev := range f.buf {
		f.fb.Apply(ev)
	}
	on, off := diff(&f.fb, &f.shown)
	for _, i := range on {
		s.AddEntity(f.pixels[i])
	}
	for _, i := range off {
		s.RemoveEntity(f.pixels[i])
	}

	if f.halted {
		return
	}
	select {
	case err := <-f.feeds.Halted:
		f.halted = true
		f.err = err
		if err != nil {
			f.status.SetText(fmt.Sprintf("Halted: %v. Press Ctrl+C to quit.", err))
		} else {
			f.status.SetText("Stopped. Press Ctrl+C to quit.")
		}
	case <-f.ctx.Done():
		f.halted = true
		f.feeds.Keys.Push(chip8.Stop())
		f.status.SetText("Interrupted. Press Ctrl+C to quit.")
	default:
	}
}

func (f *frontend) Tick(ev tl.Event) {
	if ev.Type != tl.EventKey {
		return
	}
	if ev.Key == tl.KeyEsc {
		f.logger.Debug("Stop requested from keyboard")
		f.feeds.Keys.Push(chip8.Stop())
		return
	}
	if k, ok := f.keyMap.Lookup(ev.Key, ev.Ch); ok {
		f.input.Press(k, time.Now())
	}
}

// Run starts termloop and blocks until Ctrl+C is pressed. If the interpreter
// halted on an error by then, that error is returned.
func (d *TermloopDriver) Run(ctx context.Context, feeds driver.IO) error {
	keyMap := d.KeyMap
	if keyMap == nil {
		keyMap = DefaultKeyMap
	}
	hold := d.Hold
	if hold <= 0 {
		hold = DefaultHold
	}
	logger := feeds.Log()

	g := tl.NewGame()
	scr := g.Screen()

	f := &frontend{
		ctx:    ctx,
		feeds:  feeds,
		logger: logger,
		keyMap: keyMap,
		input:  driver.NewAutorelease(feeds.Keys, hold),
		status: tl.NewText(0, 1, "Running. Esc stops, Ctrl+C quits.",
			tl.ColorDefault, tl.ColorDefault),
	}
	for y := 0; y < chip8.Height; y++ {
		for x := 0; x < chip8.Width; x++ {
			f.pixels[x+y*chip8.Width] = tl.NewRectangle(
				screenX+2*x, screenY+y, 2, 1, tl.ColorWhite)
		}
	}

	scr.AddEntity(tl.NewText(0, 0, "go-chip8", tl.ColorDefault, tl.ColorDefault))
	scr.AddEntity(f.status)
	scr.AddEntity(f)

	logger.Info("TermloopDriver initialized")
	g.Start()

	feeds.Keys.Push(chip8.Stop())
	return f.err
}

// diff returns the pixels that must be turned on and off to make shown
// match fb, and updates shown.
func diff(fb *chip8.Framebuffer, shown *[chip8.PixelCount]bool) (on, off []int) {
	for y := 0; y < chip8.Height; y++ {
		for x := 0; x < chip8.Width; x++ {
			i := x + y*chip8.Width
			v := fb.Pixel(x, y)
			if v == shown[i] {
				continue
			}
			if v {
				on = append(on, i)
			} else {
				off = append(off, i)
			}
			shown[i] = v
		}
	}
	return on, off
}

// -----------------------------------------------------------------------------

func init() {
	if err := driver.RegisterDriver("termloop", &TermloopDriver{}); err != nil {
		panic(err)
	}
}
