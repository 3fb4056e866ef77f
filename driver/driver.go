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

// Package driver defines the interface between the interpreter and the
// frontends that present it.
//
// A frontend never touches the interpreter directly: it replays the display
// feed to paint the screen and pushes key events to the keyboard feed.
// Frontends should be registered by the RegisterDriver function in init().
package driver

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/Francesco149/go-chip8/chip8"
	"github.com/retroenv/retrogolib/log"
)

// IO bundles the feeds connecting a frontend to a running interpreter.
type IO struct {
	// Display carries screen changes from the interpreter.
	Display *chip8.Queue[chip8.DisplayEvent]
	// Keys carries key events to the interpreter.
	Keys *chip8.Queue[chip8.KeyEvent]
	// Halted receives the interpreter's exit status once it stops running.
	Halted <-chan error
	Logger *log.Logger
}

// Log returns the Logger, or one that discards everything if it is nil.
func (f IO) Log() *log.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	return log.NewWithConfig(cfg)
}

// A Driver presents a running interpreter to the user.
type Driver interface {
	// Run blocks until the user quits or ctx is done. Quitting must push a
	// chip8.Stop event so the interpreter halts too.
	Run(ctx context.Context, feeds IO) error
}

// -----------------------------------------------------------------------------

var (
	mu      sync.RWMutex
	drivers = map[string]Driver{}
)

// RegisterDriver registers a driver to a name.
func RegisterDriver(name string, drv Driver) error {
	mu.Lock()
	defer mu.Unlock()
	if drivers[name] != nil {
		return fmt.Errorf("driver %s already exists", name)
	}
	drivers[name] = drv
	return nil
}

// UnregisterDriver unloads a previously registered driver.
func UnregisterDriver(name string) error {
	mu.Lock()
	defer mu.Unlock()
	if drivers[name] == nil {
		return fmt.Errorf("driver %s does not exist", name)
	}
	delete(drivers, name)
	return nil
}

// Lookup returns the driver registered under name.
func Lookup(name string) (Driver, error) {
	mu.RLock()
	defer mu.RUnlock()
	drv := drivers[name]
	if drv == nil {
		return nil, fmt.Errorf("driver %s not found", name)
	}
	return drv, nil
}

// Names returns the registered driver names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// -----------------------------------------------------------------------------

// A NullDriver is the headless driver. It keeps a Framebuffer up to date
// and never sends input.
type NullDriver struct {
	mu     sync.Mutex
	screen chip8.Framebuffer
}

// Run replays display events until the interpreter halts or ctx is done.
// The interpreter's error is returned as is. Every run starts from a blank
// screen.
func (d *NullDriver) Run(ctx context.Context, feeds IO) error {
	d.mu.Lock()
	d.screen = chip8.Framebuffer{}
	d.mu.Unlock()
	feeds.Log().Debug("NullDriver initialized")

	var buf []chip8.DisplayEvent
	for {
		select {
		case <-ctx.Done():
			feeds.Keys.Push(chip8.Stop())
			return ctx.Err()
		case err := <-feeds.Halted:
			d.replay(feeds.Display, buf)
			return err
		case <-feeds.Display.Ready():
			buf = d.replay(feeds.Display, buf)
		}
	}
}

func (d *NullDriver) replay(q *chip8.Queue[chip8.DisplayEvent],
	buf []chip8.DisplayEvent) []chip8.DisplayEvent {

	buf = q.Drain(buf[:0])
	d.mu.Lock()
	for _, ev := range buf {
		d.screen.Apply(ev)
	}
	d.mu.Unlock()
	return buf
}

// Screen returns a text dump of the last replayed screen.
func (d *NullDriver) Screen() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.screen.String()
}

func init() {
	if err := RegisterDriver("null", &NullDriver{}); err != nil {
		panic(err)
	}
}
