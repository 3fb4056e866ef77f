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

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

type testMachine struct {
	*Chip8
	display *Queue[DisplayEvent]
	keys    *Queue[KeyEvent]
	clock   *fakeClock
}

// newTestMachine returns a machine with the given program loaded, a frozen
// clock and a seeded random source.
func newTestMachine(t *testing.T, s *Settings, program ...uint16) *testMachine {
	t.Helper()

	m := &testMachine{
		display: NewQueue[DisplayEvent](),
		keys:    NewQueue[KeyEvent](),
		clock:   &fakeClock{t: time.Unix(1000, 0)},
	}
	c, err := New(log.NewTestLogger(t), s, m.display, m.keys)
	assert.NoError(t, err)
	c.now = m.clock.now
	c.rng = rand.New(rand.NewSource(1))
	m.Chip8 = c

	code := make([]byte, 2*len(program))
	for i, word := range program {
		binary.BigEndian.PutUint16(code[2*i:], word)
	}
	assert.NoError(t, c.LoadRaw(code))
	return m
}

// step runs n cycles and fails the test on error.
func (m *testMachine) step(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		assert.NoError(t, m.Tick())
	}
}

func TestLoadImmediate(t *testing.T) {
	m := newTestMachine(t, nil, 0x6A05)
	m.step(t, 1)
	assert.Equal(t, uint8(5), m.V[0xA])
	assert.Equal(t, uint16(0x202), m.PC)
}

func TestDrawScenario(t *testing.T) {
	m := newTestMachine(t, nil, 0xA300, 0xD011)
	m.Memory.WriteByte(0x300, 0b1010_0000)
	m.step(t, 2)

	assert.Equal(t, uint16(0x300), m.I)
	assert.Equal(t, uint8(0), m.V[0xF])
	assert.True(t, m.Screen.Pixel(0, 0))
	assert.False(t, m.Screen.Pixel(1, 0))
	assert.True(t, m.Screen.Pixel(2, 0))

	events := m.display.Drain(nil)
	assert.Equal(t, 2, len(events))
	assert.Equal(t, DisplayEvent{Kind: DisplaySet, Index: 0, Value: true}, events[0])
	assert.Equal(t, DisplayEvent{Kind: DisplaySet, Index: 2, Value: true}, events[1])
}

func TestDrawZeroRows(t *testing.T) {
	// DRW V0,V1,0 draws nothing and clears VF
	m := newTestMachine(t, nil, 0xA300, 0xD010)
	m.Memory.WriteByte(0x300, 0xFF)
	m.V[0xF] = 1
	m.step(t, 2)

	assert.Equal(t, uint8(0), m.V[0xF])
	assert.Equal(t, 0, m.display.Len())
}

func TestDrawTwiceRestoresScreen(t *testing.T) {
	m := newTestMachine(t, nil,
		0x600A, // LD V0,0A
		0x6107, // LD V1,07
		0xA300, // LD I,300
		0xD013, // DRW V0,V1,3
		0xD013, // DRW V0,V1,3
	)
	m.Memory.WriteByte(0x300, 0xFF)
	m.Memory.WriteByte(0x301, 0x81)
	m.Memory.WriteByte(0x302, 0x3C)

	m.step(t, 4)
	assert.Equal(t, uint8(0), m.V[0xF])
	assert.True(t, m.Screen.Pixel(10, 7))

	m.step(t, 1)
	assert.Equal(t, uint8(1), m.V[0xF])

	var blank Display
	assert.Equal(t, blank.String(), m.Screen.String())
}

func TestDrawClipsAndWrapsOrigin(t *testing.T) {
	tests := []struct {
		name    string
		x, y    uint8
		rows    int
		lit     [][2]int
		unlit   [][2]int
		setEvts int
	}{
		{
			name:    "clipped right edge",
			x:       60,
			y:       0,
			rows:    1,
			lit:     [][2]int{{60, 0}, {63, 0}},
			unlit:   [][2]int{{0, 0}, {3, 0}},
			setEvts: 4,
		},
		{
			name:    "clipped bottom edge",
			x:       0,
			y:       30,
			rows:    4,
			lit:     [][2]int{{0, 30}, {7, 31}},
			unlit:   [][2]int{{0, 0}, {0, 1}},
			setEvts: 16,
		},
		{
			name:    "origin wraps",
			x:       64 + 5,
			y:       32 + 2,
			rows:    1,
			lit:     [][2]int{{5, 2}, {12, 2}},
			unlit:   [][2]int{{4, 2}, {13, 2}},
			setEvts: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, nil, 0xA300, 0xD010|uint16(tt.rows))
			for i := 0; i < tt.rows; i++ {
				m.Memory.WriteByte(0x300+uint16(i), 0xFF)
			}
			m.V[0] = tt.x
			m.V[1] = tt.y
			m.step(t, 2)

			for _, p := range tt.lit {
				assert.True(t, m.Screen.Pixel(p[0], p[1]))
			}
			for _, p := range tt.unlit {
				assert.False(t, m.Screen.Pixel(p[0], p[1]))
			}
			assert.Equal(t, tt.setEvts, m.display.Len())
		})
	}
}

func TestClearScreen(t *testing.T) {
	m := newTestMachine(t, nil, 0xA000, 0xD005, 0x00E0)
	m.step(t, 2)
	m.display.Drain(nil)

	m.step(t, 1)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			assert.False(t, m.Screen.Pixel(x, y))
		}
	}
	events := m.display.Drain(nil)
	assert.Equal(t, 1, len(events))
	assert.Equal(t, DisplayClear, events[0].Kind)
}

func TestAddCarryAllPairs(t *testing.T) {
	m := newTestMachine(t, nil)
	for a := 0; a < 0x100; a++ {
		for b := 0; b < 0x100; b++ {
			m.V[1], m.V[2] = uint8(a), uint8(b)
			assert.NoError(t, m.execute(0x200, 0x8124))
			assert.Equal(t, uint8(a+b), m.V[1])
			assert.Equal(t, a+b > 0xFF, m.V[0xF] == 1)
		}
	}
}

func TestSubBorrowAllPairs(t *testing.T) {
	m := newTestMachine(t, nil)
	for a := 0; a < 0x100; a++ {
		for b := 0; b < 0x100; b++ {
			m.V[1], m.V[2] = uint8(a), uint8(b)
			assert.NoError(t, m.execute(0x200, 0x8125))
			assert.Equal(t, uint8(a-b), m.V[1])
			assert.Equal(t, a >= b, m.V[0xF] == 1)

			m.V[1], m.V[2] = uint8(a), uint8(b)
			assert.NoError(t, m.execute(0x200, 0x8127))
			assert.Equal(t, uint8(b-a), m.V[1])
			assert.Equal(t, b >= a, m.V[0xF] == 1)
		}
	}
}

func TestFlagWinsWhenTargetIsVF(t *testing.T) {
	m := newTestMachine(t, nil, 0x8F14)
	m.V[0xF] = 0xFF
	m.V[1] = 0x01
	m.step(t, 1)
	assert.Equal(t, uint8(1), m.V[0xF])
}

func TestLogicLeavesFlag(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		want   uint8
	}{
		{"OR", 0x8121, 0b1110},
		{"AND", 0x8122, 0b1000},
		{"XOR", 0x8123, 0b0110},
		{"LD", 0x8120, 0b1010},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, nil, tt.opcode)
			m.V[1], m.V[2], m.V[0xF] = 0b1100, 0b1010, 7
			m.step(t, 1)
			assert.Equal(t, tt.want, m.V[1])
			assert.Equal(t, uint8(7), m.V[0xF])
		})
	}
}

func TestShift(t *testing.T) {
	tests := []struct {
		name     string
		assign   bool
		opcode   uint16
		vx, vy   uint8
		want, vf uint8
	}{
		{"shr in place", false, 0x8126, 0b0000_0011, 0b1000_0000, 0b0000_0001, 1},
		{"shr assign", true, 0x8126, 0b0000_0011, 0b1000_0000, 0b0100_0000, 0},
		{"shl in place", false, 0x812E, 0b1000_0001, 0b0000_0001, 0b0000_0010, 1},
		{"shl assign", true, 0x812E, 0b1000_0001, 0b0000_0001, 0b0000_0010, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *DefaultSettings
			s.AssignBeforeShift = tt.assign
			m := newTestMachine(t, &s, tt.opcode)
			m.V[1], m.V[2] = tt.vx, tt.vy
			m.step(t, 1)
			assert.Equal(t, tt.want, m.V[1])
			assert.Equal(t, tt.vf, m.V[0xF])
			assert.Equal(t, tt.vy, m.V[2])
		})
	}
}

func TestAddImmediateWraps(t *testing.T) {
	m := newTestMachine(t, nil, 0x71FF)
	m.V[1] = 2
	m.V[0xF] = 9
	m.step(t, 1)
	assert.Equal(t, uint8(1), m.V[1])
	assert.Equal(t, uint8(9), m.V[0xF])
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy uint8
		skip   bool
	}{
		{"SE imm equal", 0x3142, 0x42, 0, true},
		{"SE imm differ", 0x3142, 0x41, 0, false},
		{"SNE imm equal", 0x4142, 0x42, 0, false},
		{"SNE imm differ", 0x4142, 0x41, 0, true},
		{"SE reg equal", 0x5120, 3, 3, true},
		{"SE reg differ", 0x5120, 3, 4, false},
		{"SNE reg equal", 0x9120, 3, 3, false},
		{"SNE reg differ", 0x9120, 3, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, nil, tt.opcode)
			m.V[1], m.V[2] = tt.vx, tt.vy
			m.step(t, 1)
			want := uint16(0x202)
			if tt.skip {
				want = 0x204
			}
			assert.Equal(t, want, m.PC)
		})
	}
}

func TestCallAndReturn(t *testing.T) {
	m := newTestMachine(t, nil,
		0x2206, // 200: CALL 206
		0x6101, // 202: LD V1,01
		0x1204, // 204: JP 204
		0x6202, // 206: LD V2,02
		0x00EE, // 208: RET
	)
	m.step(t, 1)
	assert.Equal(t, uint16(0x206), m.PC)
	assert.Equal(t, 1, m.Stack.Len())

	m.step(t, 2)
	assert.Equal(t, uint16(0x202), m.PC)
	assert.Equal(t, 0, m.Stack.Len())

	m.step(t, 3)
	assert.Equal(t, uint16(0x204), m.PC)
	assert.Equal(t, uint8(1), m.V[1])
	assert.Equal(t, uint8(2), m.V[2])
}

func TestReturnWithEmptyStack(t *testing.T) {
	m := newTestMachine(t, nil, 0x00EE)
	err := m.Tick()
	assert.Error(t, err, "stack underflow: RET with empty call stack at 0200")

	underflow, ok := err.(*StackUnderflowErr)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x200), underflow.PC)
}

func TestInvalidInstruction(t *testing.T) {
	for _, opcode := range []uint16{0x0000, 0x0123, 0x8008, 0xE000, 0xF0FF} {
		m := newTestMachine(t, nil, 0x6000, opcode)
		m.step(t, 1)
		err := m.Tick()
		assert.Error(t, err, fmt.Sprintf("invalid instruction %04X at 0202", opcode))

		bad, ok := err.(*BadCodeErr)
		assert.True(t, ok)
		assert.Equal(t, opcode, bad.Opcode)
		assert.Equal(t, uint16(0x202), bad.PC)
	}
}

func TestJumpWithOffset(t *testing.T) {
	tests := []struct {
		name  string
		useVX bool
		want  uint16
	}{
		{"V0", false, 0x310},
		{"VX", true, 0x320},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *DefaultSettings
			s.JumpOffsetVX = tt.useVX
			m := newTestMachine(t, &s, 0xB300)
			m.V[0] = 0x10
			m.V[3] = 0x20
			m.step(t, 1)
			assert.Equal(t, tt.want, m.PC)
		})
	}
}

func TestRandomIsMasked(t *testing.T) {
	m := newTestMachine(t, nil)
	for i := 0; i < 100; i++ {
		assert.NoError(t, m.execute(0x200, 0xC10F))
		assert.Equal(t, uint8(0), m.V[1]&0xF0)
	}
	assert.NoError(t, m.execute(0x200, 0xC100))
	assert.Equal(t, uint8(0), m.V[1])
}

func TestBCD(t *testing.T) {
	m := newTestMachine(t, nil, 0xA400, 0xF133)
	m.V[1] = 254
	m.step(t, 2)
	assert.Equal(t, uint8(2), m.Memory.ReadByte(0x400))
	assert.Equal(t, uint8(5), m.Memory.ReadByte(0x401))
	assert.Equal(t, uint8(4), m.Memory.ReadByte(0x402))
}

func TestFontAddress(t *testing.T) {
	m := newTestMachine(t, nil, 0xF129)
	m.V[1] = 0xA
	m.step(t, 1)
	assert.Equal(t, uint16(FontStart+0xA*FontHeight), m.I)
	assert.Equal(t, uint8(0xF0), m.Memory.ReadByte(m.I))
}

func TestAddToIndex(t *testing.T) {
	tests := []struct {
		name   string
		flag   bool
		i      uint16
		vx     uint8
		wantI  uint16
		wantVF uint8
	}{
		{"in range flagged", true, 0x0F00, 0x10, 0x0F10, 0},
		{"overflow flagged", true, 0x0FFF, 0x01, 0x1000, 1},
		{"overflow unflagged", false, 0x0FFF, 0x01, 0x1000, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *DefaultSettings
			s.FlagIndexOverflow = tt.flag
			m := newTestMachine(t, &s, 0xF11E)
			m.I = tt.i
			m.V[1] = tt.vx
			m.V[0xF] = 7
			m.step(t, 1)
			assert.Equal(t, tt.wantI, m.I)
			assert.Equal(t, tt.wantVF, m.V[0xF])
		})
	}
}

func TestBlockTransferRoundTrip(t *testing.T) {
	for _, increment := range []bool{false, true} {
		s := *DefaultSettings
		s.IncrementIndex = increment
		m := newTestMachine(t, &s)

		for x := uint16(0); x < 16; x++ {
			for _, i := range []uint16{0x000, 0x200, 0x7FF, 0xFF0 - x} {
				for r := range m.V {
					m.V[r] = uint8(r*17 + int(x))
				}
				want := m.V

				m.I = i
				assert.NoError(t, m.execute(0x200, Instruction(0xF055|x<<8)))
				if increment {
					assert.Equal(t, i+x+1, m.I)
				} else {
					assert.Equal(t, i, m.I)
				}

				m.V = Registers{}
				m.I = i
				assert.NoError(t, m.execute(0x200, Instruction(0xF065|x<<8)))
				for r := uint16(0); r <= x; r++ {
					assert.Equal(t, want[r], m.V[r])
				}
				for r := x + 1; r < 16; r++ {
					assert.Equal(t, uint8(0), m.V[r])
				}
			}
		}
	}
}

func TestWaitForKey(t *testing.T) {
	m := newTestMachine(t, nil, 0xF30A, 0x6101)

	for i := 0; i < 5; i++ {
		m.step(t, 1)
		assert.Equal(t, uint16(0x200), m.PC)
	}

	// a key being held is not enough, it has to be released
	m.keys.Push(KeyDown(KeyB))
	m.step(t, 1)
	assert.Equal(t, uint16(0x200), m.PC)

	m.keys.Push(KeyUp(KeyB))
	m.step(t, 1)
	assert.Equal(t, uint16(0x202), m.PC)
	assert.Equal(t, KeyB, m.V[3])

	m.step(t, 1)
	assert.Equal(t, uint16(0x204), m.PC)
	assert.Equal(t, uint8(1), m.V[1])
}

func TestWaitForKeyTakesEarlierRelease(t *testing.T) {
	// LD V0,1  LD V3,K
	m := newTestMachine(t, nil, 0x6001, 0xF30A)

	m.keys.Push(KeyDown(Key7))
	m.keys.Push(KeyUp(Key7))
	m.step(t, 1)
	assert.Equal(t, uint16(0x202), m.PC)

	m.step(t, 1)
	assert.Equal(t, uint16(0x204), m.PC)
	assert.Equal(t, Key7, m.V[3])
}

func TestSkipIfKey(t *testing.T) {
	m := newTestMachine(t, nil, 0xE19E, 0x0000, 0xE1A1, 0x0000, 0xE19E)
	m.V[1] = Key5
	m.keys.Push(KeyDown(Key5))
	m.step(t, 1)
	assert.Equal(t, uint16(0x204), m.PC)

	m.step(t, 1)
	assert.Equal(t, uint16(0x206), m.PC)

	m.keys.Push(KeyUp(Key5))
	m.PC = 0x208
	m.step(t, 1)
	assert.Equal(t, uint16(0x20A), m.PC)
}

func TestDelayAndSoundRegisters(t *testing.T) {
	m := newTestMachine(t, nil, 0xF115, 0xF218, 0xF307)
	m.V[1], m.V[2] = 30, 40
	m.step(t, 3)
	assert.Equal(t, uint8(30), m.DT.Get())
	assert.Equal(t, uint8(40), m.ST.Get())
	assert.Equal(t, uint8(30), m.V[3])
}

func TestTimerPacing(t *testing.T) {
	tests := []struct {
		name    string
		catchUp bool
		want    uint8
	}{
		// at most one tick per cycle, the remaining periods are lost
		{"reference", false, 9},
		{"catch up", true, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *DefaultSettings
			s.CatchUpTimers = tt.catchUp
			m := newTestMachine(t, &s, 0x1200)
			m.DT.Set(10)
			m.ST.Set(10)

			m.step(t, 1) // first cycle only takes the checkpoint
			assert.Equal(t, uint8(10), m.DT.Get())

			m.clock.advance(TimerInterval / 2)
			m.step(t, 1)
			assert.Equal(t, uint8(10), m.DT.Get())

			m.clock.advance(TimerInterval*3 - TimerInterval/2)
			m.step(t, 1)
			assert.Equal(t, tt.want, m.DT.Get())
			assert.Equal(t, tt.want, m.ST.Get())
		})
	}
}

func TestTimersStopAtZero(t *testing.T) {
	m := newTestMachine(t, nil, 0x1200)
	m.DT.Set(1)
	m.step(t, 1)
	for i := 0; i < 3; i++ {
		m.clock.advance(TimerInterval)
		m.step(t, 1)
	}
	assert.Equal(t, uint8(0), m.DT.Get())
	assert.Equal(t, uint8(0), m.ST.Get())
}

func TestRunStopsOnStopEvent(t *testing.T) {
	m := newTestMachine(t, nil, 0x1200)
	m.keys.Push(Stop())
	assert.NoError(t, m.Run(context.Background()))
	assert.True(t, m.Stopped())
}

func TestRunReturnsExecutionError(t *testing.T) {
	m := newTestMachine(t, nil, 0x00EE)
	err := m.Run(context.Background())
	_, ok := err.(*StackUnderflowErr)
	assert.True(t, ok)
}

func TestRunCancelled(t *testing.T) {
	m := newTestMachine(t, nil, 0x1200)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, m.Run(ctx))
}

func TestFramebufferReplaysDisplay(t *testing.T) {
	m := newTestMachine(t, nil,
		0xA000, // LD I,000 (font 0)
		0xD015, // DRW V0,V1,5
		0x6008, // LD V0,08
		0xF029, // LD F,V0
		0xD015, // DRW V0,V1,5
		0x00E0, // CLS
		0x6A3D, // LD VA,3D
		0x6B1E, // LD VB,1E
		0xDAB5, // DRW VA,VB,5
	)

	var fb Framebuffer
	for i := 0; i < 9; i++ {
		m.step(t, 1)
		for _, ev := range m.display.Drain(nil) {
			fb.Apply(ev)
		}
		assert.Equal(t, m.Screen.String(), fb.String())
	}
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	_, err := New(nil, &Settings{}, nil, nil)
	assert.Error(t, err, "invalid settings: timer interval must be positive, got 0s")
}

func TestLoadRawTooLarge(t *testing.T) {
	c, err := New(nil, nil, nil, nil)
	assert.NoError(t, err)

	err = c.LoadRaw(make([]byte, MemorySize-ProgramStart+1))
	oom, ok := err.(*OutOfMemoryErr)
	assert.True(t, ok)
	assert.Equal(t, int64(MemorySize-ProgramStart+1), oom.ProgramSize)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ch8")
	assert.NoError(t, os.WriteFile(path, []byte{0x6A, 0x05}, 0o600))

	c, err := New(nil, nil, nil, nil)
	assert.NoError(t, err)
	size, err := c.Load(path)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), size)
	assert.NoError(t, c.Tick())
	assert.Equal(t, uint8(5), c.V[0xA])

	_, err = c.Load(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestInstancesAreIndependent(t *testing.T) {
	a := newTestMachine(t, nil, 0x6A05)
	b := newTestMachine(t, nil, 0x6A07)
	a.step(t, 1)
	b.step(t, 1)
	assert.Equal(t, uint8(5), a.V[0xA])
	assert.Equal(t, uint8(7), b.V[0xA])
}

func TestTrace(t *testing.T) {
	for _, trace := range []bool{false, true} {
		var buf bytes.Buffer
		cfg := log.DefaultConfig()
		cfg.Level = log.DebugLevel
		cfg.Output = &buf

		s := *DefaultSettings
		s.Trace = trace
		c, err := New(log.NewWithConfig(cfg), &s, nil, nil)
		assert.NoError(t, err)
		assert.NoError(t, c.LoadRaw([]byte{0x6A, 0x05}))
		assert.NoError(t, c.Tick())

		assert.Equal(t, trace, strings.Contains(buf.String(), "LD VA,05"))
		assert.True(t, strings.Contains(buf.String(), "Loaded program"))
	}
}
