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

// Package ansi implements a frontend for plain terminals. It puts the terminal
// in raw mode, reads keys straight from stdin and paints the screen with
// half block characters, two CHIP-8 rows per line.
//
// Esc stops the interpreter, Ctrl+C or Ctrl+\ closes the frontend.
package ansi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Francesco149/go-chip8/chip8"
	"github.com/Francesco149/go-chip8/driver"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// DefaultHold is how long a key stays down after its last press.
const DefaultHold = 100 * time.Millisecond

// FrameInterval is how often the screen is repainted.
const FrameInterval = time.Second / 60

// An ANSIDriver paints the screen with ANSI escape sequences.
type ANSIDriver struct {
	// Runes maps typed characters to CHIP-8 keys. Nil means driver.QWERTY.
	Runes map[rune]uint8
	// Hold is how long a key stays pressed, zero means DefaultHold.
	Hold time.Duration
}

// Run puts stdin in raw mode and paints stdout until the user quits, the
// interpreter halts or ctx is done. The interpreter's error is returned.
func (d *ANSIDriver) Run(ctx context.Context, feeds driver.IO) error {
	runes := d.Runes
	if runes == nil {
		runes = driver.QWERTY
	}
	hold := d.Hold
	if hold <= 0 {
		hold = DefaultHold
	}
	logger := feeds.Log()

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil &&
		(w < chip8.Width || h < chip8.Height/2+1) {
		logger.Warn("Terminal is smaller than the screen",
			log.Uint16("width", uint16(w)), log.Uint16("height", uint16(h)))
	}

	// the reader is left blocked in Read when the frontend exits, there is
	// no portable way to interrupt it
	input := make(chan byte, 64)
	go readInput(os.Stdin, input)

	io.WriteString(os.Stdout, "\x1b[?25l\x1b[2J")
	defer io.WriteString(os.Stdout, "\x1b[?25h\x1b[2J\x1b[H")

	p := newPainter(os.Stdout)
	keys := driver.NewAutorelease(feeds.Keys, hold)
	dec := newDecoder(runes)
	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	logger.Info("ANSIDriver initialized")
	for {
		select {
		case <-ctx.Done():
			feeds.Keys.Push(chip8.Stop())
			return ctx.Err()
		case err := <-feeds.Halted:
			p.update(feeds.Display)
			return err
		case b, ok := <-input:
			if !ok {
				feeds.Keys.Push(chip8.Stop())
				return nil
			}
			switch act, k := dec.feed(b, time.Now()); act {
			case actionQuit:
				feeds.Keys.Push(chip8.Stop())
				return nil
			case actionStop:
				logger.Debug("Stop requested from keyboard")
				feeds.Keys.Push(chip8.Stop())
			case actionKey:
				keys.Press(k, time.Now())
			}
		case now := <-ticker.C:
			if dec.timeout(now) == actionStop {
				logger.Debug("Stop requested from keyboard")
				feeds.Keys.Push(chip8.Stop())
			}
			keys.Expire(now)
			if err := p.update(feeds.Display); err != nil {
				return fmt.Errorf("painting screen: %w", err)
			}
		}
	}
}

func readInput(r io.Reader, input chan<- byte) {
	defer close(input)
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			input <- b
		}
		if err != nil {
			return
		}
	}
}

// -----------------------------------------------------------------------------

// painter replays the display feed and repaints when something changed.
type painter struct {
	w     io.Writer
	fb    chip8.Framebuffer
	buf   []chip8.DisplayEvent
	dirty bool
}

func newPainter(w io.Writer) *painter {
	return &painter{w: w, dirty: true}
}

func (p *painter) update(q *chip8.Queue[chip8.DisplayEvent]) error {
	p.buf = q.Drain(p.buf[:0])
	for _, ev := range p.buf {
		p.fb.Apply(ev)
	}
	if len(p.buf) == 0 && !p.dirty {
		return nil
	}
	p.dirty = false
	_, err := io.WriteString(p.w, render(&p.fb))
	return err
}

// render returns the escape sequence painting fb from the top left corner.
func render(fb *chip8.Framebuffer) string {
	var sb strings.Builder
	sb.WriteString("\x1b[H")
	for y := 0; y < chip8.Height; y += 2 {
		for x := 0; x < chip8.Width; x++ {
			top, bottom := fb.Pixel(x, y), fb.Pixel(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		// raw mode does not translate \n
		sb.WriteString("\r\n")
	}
	return sb.String()
}

func init() {
	if err := driver.RegisterDriver("ansi", &ANSIDriver{}); err != nil {
		panic(err)
	}
}
