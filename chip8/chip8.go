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

// Package chip8 implements a CHIP-8 virtual machine.
//
// The interpreter talks to the outside world through two queues: it publishes
// every change of the screen on a display feed and reads key presses from a
// keyboard feed. Neither is ever waited on, so a Chip8 can run on its own
// goroutine while a frontend renders and collects input on another.
package chip8

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// IndexLimit is the highest address I can hold before ADD I,VX reports an
// overflow (when FlagIndexOverflow is enabled).
const IndexLimit = 0x0FFF

// Chip8 is an implementation of a CHIP-8 emulator. It holds the state of the
// virtual machine. A Chip8 is not safe for concurrent use, but independent
// instances do not share anything.
type Chip8 struct {
	// The memory where programs are loaded and executed.
	Memory *Memory
	// V[0x0]~V[0xF] are 8-bit registers. V[0xF] doubles as a carry flag.
	V Registers
	// 16-bit address register. Used for memory operations.
	I uint16
	// The call stack, which holds return addresses.
	Stack Stack
	// Program counter. Holds the address of the next instruction.
	PC uint16
	// Timers. These count down at 60hz when they are non-zero.
	// DT is intended to be used for timing events in games, while ST makes a
	// beeping sound as long as its value is non-zero.
	DT, ST Timer
	// Keypad is fed from the keyboard queue at the start of every cycle.
	Keypad Keypad
	// Screen is the 64x32 monochrome screen buffer.
	Screen *Display

	settings        Settings
	logger          *log.Logger
	trace           bool
	keys            *Queue[KeyEvent]
	rng             *rand.Rand
	now             func() time.Time
	lastTimerUpdate time.Time
}

// New initializes a new instance of Chip8 with the given settings. If settings
// is nil, DefaultSettings will be used. Screen changes are pushed to display
// and key events are read from keys; either may be nil.
func New(logger *log.Logger, s *Settings, display *Queue[DisplayEvent],
	keys *Queue[KeyEvent]) (*Chip8, error) {

	if s == nil {
		s = DefaultSettings
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if logger == nil {
		cfg := log.DefaultConfig()
		cfg.Output = io.Discard
		logger = log.NewWithConfig(cfg)
	}

	c := &Chip8{
		Memory:   NewMemory(),
		PC:       ProgramStart,
		Screen:   NewDisplay(display),
		settings: *s,
		logger:   logger,
		trace:    s.Trace,
		keys:     keys,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}

	logger.Info("CHIP-8 initialized",
		log.Bool("assign_before_shift", s.AssignBeforeShift),
		log.Bool("increment_index", s.IncrementIndex),
		log.Bool("flag_index_overflow", s.FlagIndexOverflow),
		log.Bool("jump_offset_vx", s.JumpOffsetVX),
		log.Bool("catch_up_timers", s.CatchUpTimers),
		log.String("timer_interval", s.TimerInterval.String()))
	return c, nil
}

// Settings returns the settings the instance was created with.
func (c *Chip8) Settings() Settings { return c.settings }

// String returns formatted information about the instance of the emulator.
func (c *Chip8) String() string {
	return fmt.Sprintf("Chip8{Registers: [% 02X] I: %04X, Stack: % 04X, "+
		"PC: %04X, DT: %02X, ST: %02X}",
		c.V[:], c.I, c.Stack.addrs, c.PC, c.DT.Get(), c.ST.Get())
}

// Load opens a CHIP-8 binary file and loads it into memory.
// Returns the size, in bytes, of the program and an error if any.
func (c *Chip8) Load(path string) (size int64, err error) {
	program, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading program '%s': %w", path, err)
	}
	size = int64(len(program))
	if err = c.Memory.Load(program); err != nil {
		return size, err
	}
	// programs that fit in memory always fit in 16 bits
	c.logger.Info("Loaded program", log.String("path", path), log.Uint16("size", uint16(size)))
	return size, nil
}

// LoadRaw loads a byte array as a CHIP-8 binary into memory.
func (c *Chip8) LoadRaw(program []byte) error {
	if err := c.Memory.Load(program); err != nil {
		return err
	}
	c.logger.Info("Loaded program", log.Uint16("size", uint16(len(program))))
	return nil
}

// Stopped reports whether the frontend asked the interpreter to stop.
func (c *Chip8) Stopped() bool { return c.Keypad.Stopped() }

// Run runs the emulator, blocking the goroutine until ctx is done, a stop
// event arrives or an instruction fails. A stop event returns nil.
func (c *Chip8) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.Tick(); err != nil {
			c.logger.Error("Execution halted", err,
				log.String("state", c.String()))
			return err
		}
		if c.Keypad.Stopped() {
			c.logger.Info("Stop requested")
			return nil
		}
	}
}

// Tick runs one CPU cycle. Returns an error if the instruction could not be
// executed, in which case the machine should not be ticked again.
func (c *Chip8) Tick() error {
	c.updateTimers()
	c.Keypad.Drain(c.keys)

	pc := c.PC
	ins := Instruction(c.Memory.ReadWord(pc))
	c.PC += 2

	if c.trace {
		c.logger.Debug("Executing",
			log.String("pc", fmt.Sprintf("0x%04X", pc)),
			log.Uint16("opcode", uint16(ins)),
			log.String("instruction", ins.String()))
	}

	return c.execute(pc, ins)
}

func (c *Chip8) updateTimers() {
	now := c.now()
	if c.lastTimerUpdate.IsZero() {
		c.lastTimerUpdate = now
		return
	}

	interval := c.settings.TimerInterval
	if now.Sub(c.lastTimerUpdate) < interval {
		return
	}

	if !c.settings.CatchUpTimers {
		c.DT.Decrement()
		c.ST.Decrement()
		c.lastTimerUpdate = now
		return
	}

	for now.Sub(c.lastTimerUpdate) >= interval {
		c.DT.Decrement()
		c.ST.Decrement()
		c.lastTimerUpdate = c.lastTimerUpdate.Add(interval)
	}
}

// execute applies a single instruction fetched from pc. c.PC already points
// past it.
func (c *Chip8) execute(pc uint16, ins Instruction) error {
	x, y, nn := ins.X(), ins.Y(), ins.NN()

	switch ins.Decode() {
	case OpCls:
		c.Screen.Clear()
	case OpRet:
		addr, ok := c.Stack.Pop()
		if !ok {
			return &StackUnderflowErr{PC: pc}
		}
		c.PC = addr
	case OpJp:
		c.PC = ins.NNN()
	case OpCall:
		c.Stack.Push(c.PC)
		c.PC = ins.NNN()
	case OpSeImm:
		if c.V.Get(x) == nn {
			c.PC += 2
		}
	case OpSneImm:
		if c.V.Get(x) != nn {
			c.PC += 2
		}
	case OpSeReg:
		if c.V.Get(x) == c.V.Get(y) {
			c.PC += 2
		}
	case OpSneReg:
		if c.V.Get(x) != c.V.Get(y) {
			c.PC += 2
		}
	case OpLdImm:
		c.V.Set(x, nn)
	case OpAddImm:
		// no carry flag
		c.V.Set(x, c.V.Get(x)+nn)
	case OpLdReg:
		c.V.Set(x, c.V.Get(y))
	case OpOr:
		c.V.Set(x, c.V.Get(x)|c.V.Get(y))
	case OpAnd:
		c.V.Set(x, c.V.Get(x)&c.V.Get(y))
	case OpXor:
		c.V.Set(x, c.V.Get(x)^c.V.Get(y))
	case OpAddReg:
		result := uint16(c.V.Get(x)) + uint16(c.V.Get(y))
		c.V.Set(x, uint8(result))
		c.V.setFlag(result > 0xFF)
	case OpSub:
		vx, vy := c.V.Get(x), c.V.Get(y)
		c.V.Set(x, vx-vy)
		c.V.setFlag(vx >= vy) // 1 means no borrow
	case OpSubn:
		vx, vy := c.V.Get(x), c.V.Get(y)
		c.V.Set(x, vy-vx)
		c.V.setFlag(vy >= vx)
	case OpShr:
		if c.settings.AssignBeforeShift {
			c.V.Set(x, c.V.Get(y))
		}
		vx := c.V.Get(x)
		c.V.Set(x, vx>>1)
		c.V.setFlag(vx&0x01 != 0) // least significant bit
	case OpShl:
		if c.settings.AssignBeforeShift {
			c.V.Set(x, c.V.Get(y))
		}
		vx := c.V.Get(x)
		c.V.Set(x, vx<<1)
		c.V.setFlag(vx&0x80 != 0) // most significant bit
	case OpLdI:
		c.I = ins.NNN()
	case OpJpOffset:
		offset := c.V[0]
		if c.settings.JumpOffsetVX {
			offset = c.V.Get(x)
		}
		c.PC = ins.NNN() + uint16(offset)
	case OpRnd:
		c.V.Set(x, uint8(c.rng.Intn(0x100))&nn)
	case OpDrw:
		c.draw(x, y, ins.N())
	case OpSkp:
		if c.Keypad.IsPressed(c.V.Get(x)) {
			c.PC += 2
		}
	case OpSknp:
		if !c.Keypad.IsPressed(c.V.Get(x)) {
			c.PC += 2
		}
	case OpLdVxDt:
		c.V.Set(x, c.DT.Get())
	case OpLdVxK:
		// wait for input by executing this instruction again until a key
		// has been released
		key, ok := c.Keypad.TakeReleased()
		if !ok {
			c.PC -= 2
			break
		}
		c.V.Set(x, key)
	case OpLdDtVx:
		c.DT.Set(c.V.Get(x))
	case OpLdStVx:
		c.ST.Set(c.V.Get(x))
	case OpAddI:
		c.I += uint16(c.V.Get(x))
		if c.settings.FlagIndexOverflow {
			c.V.setFlag(c.I > IndexLimit)
		}
	case OpLdF:
		c.I = FontStart + uint16(c.V.Get(x)&0xF)*FontHeight
	case OpLdBcd:
		value := c.V.Get(x)
		c.Memory.WriteByte(c.I, value/100)     // hundreds
		c.Memory.WriteByte(c.I+1, value/10%10) // tens
		c.Memory.WriteByte(c.I+2, value%10)    // ones
	case OpStore:
		for r := uint8(0); r <= x; r++ {
			c.Memory.WriteByte(c.I+uint16(r), c.V[r])
		}
		if c.settings.IncrementIndex {
			c.I += uint16(x) + 1
		}
	case OpLoad:
		for r := uint8(0); r <= x; r++ {
			c.V[r] = c.Memory.ReadByte(c.I + uint16(r))
		}
		if c.settings.IncrementIndex {
			c.I += uint16(x) + 1
		}
	default:
		return &BadCodeErr{Opcode: uint16(ins), PC: pc}
	}
	return nil
}

// draw XORs an n rows tall sprite from memory at I onto the screen at VX,VY.
// The origin wraps around the screen but the sprite itself is clipped at the
// right and bottom edges. VF is set when any pixel is turned off.
func (c *Chip8) draw(x, y, rows uint8) {
	originX := int(c.V.Get(x) % Width)
	originY := int(c.V.Get(y) % Height)
	collision := false

	for row := 0; row < int(rows); row++ {
		py := originY + row
		if py >= Height {
			break
		}
		sprite := c.Memory.ReadByte(c.I + uint16(row))
		for bit := 0; bit < 8; bit++ {
			px := originX + bit
			if px >= Width {
				break
			}
			if sprite&(0x80>>bit) == 0 {
				continue
			}
			if c.Screen.Toggle(px, py) {
				collision = true
			}
		}
	}

	c.V.setFlag(collision)
}
