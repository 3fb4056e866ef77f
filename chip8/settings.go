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
	"fmt"
	"sort"
	"time"
)

// Settings holds the configuration parameters for a Chip8 instance. They are
// read once by New and never change while the program runs.
//
// The quirk toggles each reproduce the behaviour of a historical interpreter.
type Settings struct {
	// AssignBeforeShift makes SHR VX,VY and SHL VX,VY copy VY into VX before
	// shifting, like the COSMAC VIP. Otherwise VX is shifted in place.
	AssignBeforeShift bool
	// IncrementIndex makes LD [I],VX and LD VX,[I] leave I pointing past the
	// last transferred byte (I += X+1).
	IncrementIndex bool
	// FlagIndexOverflow makes ADD I,VX set VF when I goes past 0x0FFF.
	FlagIndexOverflow bool
	// JumpOffsetVX makes JP V0,NNN jump to NNN+VX, where X is the high nibble
	// of NNN, like the CHIP-48 and SUPER-CHIP.
	JumpOffsetVX bool

	// TimerInterval is the interval between each timer tick, normally
	// 60hz = time.Second / 60.
	TimerInterval time.Duration
	// CatchUpTimers makes the timers tick once for every elapsed interval.
	// By default they tick at most once per cycle, so they fall behind real
	// time when cycles are slower than TimerInterval.
	CatchUpTimers bool

	// Trace logs every executed instruction at debug level.
	Trace bool
}

// Validate validates the settings.
// Returns an error when the settings aren't valid.
func (s *Settings) Validate() error {
	if s.TimerInterval <= 0 {
		return fmt.Errorf("timer interval must be positive, got %v", s.TimerInterval)
	}
	return nil
}

// DefaultSettings matches the most common modern interpretation.
var DefaultSettings = &Settings{
	FlagIndexOverflow: true,
	TimerInterval:     TimerInterval,
}

// Profiles maps a name to a set of quirks for a well known interpreter.
var Profiles = map[string]Settings{
	"modern": *DefaultSettings,
	"cosmac": {
		AssignBeforeShift: true,
		IncrementIndex:    true,
		TimerInterval:     TimerInterval,
	},
	"schip": {
		JumpOffsetVX:  true,
		TimerInterval: TimerInterval,
	},
}

// ProfileNames returns the names of the available profiles, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(Profiles))
	for name := range Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile returns a copy of the named profile.
func Profile(name string) (*Settings, error) {
	p, ok := Profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (available: %v)", name, ProfileNames())
	}
	return &p, nil
}
