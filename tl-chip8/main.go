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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Francesco149/go-chip8/chip8"
	"github.com/Francesco149/go-chip8/driver"
	_ "github.com/Francesco149/go-chip8/drivers"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

type optionFlags struct {
	program string
	driver  string
	profile string
	logFile string
	debug   bool
	quiet   bool
	dump    bool

	hz     int
	cycles int

	shiftQuirk    bool
	indexQuirk    bool
	overflowQuirk bool
	jumpQuirk     bool
	catchUp       bool

	// names of the flags given on the command line
	set map[string]bool
}

func main() {
	options, err := readArguments(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := runEmulator(options); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("%s: %w", filepath.Base(os.Args[0]), err))
		os.Exit(1)
	}
}

func readArguments(args []string) (optionFlags, error) {
	flags := flag.NewFlagSet("tl-chip8", flag.ContinueOnError)
	options := optionFlags{set: map[string]bool{}}

	flags.StringVar(&options.driver, "driver", "termloop", "frontend to use: "+strings.Join(driver.Names(), ", "))
	flags.StringVar(&options.profile, "profile", "modern", "quirk profile: "+strings.Join(chip8.ProfileNames(), ", "))
	flags.StringVar(&options.logFile, "log", "", "write the log to `file` (terminal frontends discard it otherwise)")
	flags.BoolVar(&options.debug, "debug", false, "trace every instruction")
	flags.BoolVar(&options.quiet, "q", false, "only log errors")
	flags.BoolVar(&options.dump, "dump", false, "print the screen when the null driver exits")
	flags.IntVar(&options.hz, "hz", 0, "instructions per second, 0 runs unthrottled")
	flags.IntVar(&options.cycles, "cycles", 0, "stop after this many instructions, 0 runs forever")
	flags.BoolVar(&options.shiftQuirk, "shift-quirk", false, "SHR/SHL copy VY into VX before shifting")
	flags.BoolVar(&options.indexQuirk, "index-quirk", false, "LD [I],VX and LD VX,[I] advance I")
	flags.BoolVar(&options.overflowQuirk, "overflow-quirk", true, "ADD I,VX sets VF when I passes 0x0FFF")
	flags.BoolVar(&options.jumpQuirk, "jump-quirk", false, "JP V0,NNN adds VX instead of V0")
	flags.BoolVar(&options.catchUp, "catchup", false, "tick the timers once per elapsed 60hz period")

	if err := flags.Parse(args); err != nil {
		return options, err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return options, errors.New("usage: tl-chip8 [options] path/to/program")
	}
	options.program = flags.Arg(0)
	flags.Visit(func(f *flag.Flag) { options.set[f.Name] = true })

	if options.hz < 0 || options.cycles < 0 {
		return options, errors.New("-hz and -cycles must not be negative")
	}
	return options, nil
}

// buildSettings starts from the selected profile and applies the quirk flags
// that were given explicitly.
func buildSettings(options optionFlags) (*chip8.Settings, error) {
	s, err := chip8.Profile(options.profile)
	if err != nil {
		return nil, err
	}
	overrides := []struct {
		flag  string
		value bool
		field *bool
	}{
		{"shift-quirk", options.shiftQuirk, &s.AssignBeforeShift},
		{"index-quirk", options.indexQuirk, &s.IncrementIndex},
		{"overflow-quirk", options.overflowQuirk, &s.FlagIndexOverflow},
		{"jump-quirk", options.jumpQuirk, &s.JumpOffsetVX},
		{"catchup", options.catchUp, &s.CatchUpTimers},
	}
	for _, o := range overrides {
		if options.set[o.flag] {
			*o.field = o.value
		}
	}
	s.Trace = options.debug
	return s, nil
}

// createLogger creates a logger with appropriate settings. Terminal frontends
// own the screen, so their log is discarded unless a file is given.
func createLogger(options optionFlags) (*log.Logger, func(), error) {
	cfg := log.DefaultConfig()
	if options.debug {
		cfg.Level = log.DebugLevel
	} else if options.quiet {
		cfg.Level = log.ErrorLevel
	}

	var w io.Writer = os.Stderr
	closeLog := func() {}
	switch {
	case options.logFile != "":
		f, err := os.Create(options.logFile)
		if err != nil {
			return nil, nil, fmt.Errorf("creating log file '%s': %w", options.logFile, err)
		}
		w = f
		closeLog = func() { _ = f.Close() }
	case options.driver != "null":
		w = io.Discard
	}

	cfg.Output = w
	return log.NewWithConfig(cfg), closeLog, nil
}

func runEmulator(options optionFlags) error {
	logger, closeLog, err := createLogger(options)
	if err != nil {
		return err
	}
	defer closeLog()

	settings, err := buildSettings(options)
	if err != nil {
		return err
	}
	drv, err := driver.Lookup(options.driver)
	if err != nil {
		return err
	}
	if options.driver != "null" &&
		(!term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd()))) {
		return fmt.Errorf("driver %s needs a terminal, use -driver null", options.driver)
	}

	feeds := driver.IO{
		Display: chip8.NewQueue[chip8.DisplayEvent](),
		Keys:    chip8.NewQueue[chip8.KeyEvent](),
		Logger:  logger,
	}
	c, err := chip8.New(logger, settings, feeds.Display, feeds.Keys)
	if err != nil {
		return fmt.Errorf("initializing emulator: %w", err)
	}
	if _, err := c.Load(options.program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	halted := make(chan error, 1)
	done := make(chan struct{})
	var runErr error
	feeds.Halted = halted
	go func() {
		defer close(done)
		runErr = runLoop(ctx, c, options.hz, options.cycles)
		halted <- runErr
	}()

	drvErr := drv.Run(ctx, feeds)
	feeds.Keys.Push(chip8.Stop())
	<-done

	if d, ok := drv.(interface{ Screen() string }); ok && options.dump {
		fmt.Print(d.Screen())
	}

	// the interpreter already logged why it halted
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if drvErr != nil && !errors.Is(drvErr, context.Canceled) && !errors.Is(drvErr, runErr) {
		return fmt.Errorf("running driver %s: %w", options.driver, drvErr)
	}
	return nil
}

// runLoop runs c until it stops. hz throttles it to that many instructions
// per second, cycles stops it after that many instructions.
func runLoop(ctx context.Context, c *chip8.Chip8, hz, cycles int) error {
	if hz == 0 && cycles == 0 {
		return c.Run(ctx)
	}

	var tick <-chan time.Time
	perTick := 1
	if hz > 0 {
		// batch about 1/60th of a second of cycles per tick to keep the
		// ticker slow, the interval is stretched to fit the batch
		perTick = max(hz/60, 1)
		interval := time.Second * time.Duration(perTick) / time.Duration(hz)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for n := 0; cycles == 0 || n < cycles; {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		for i := 0; i < perTick && (cycles == 0 || n < cycles); i++ {
			if err := c.Tick(); err != nil {
				return err
			}
			n++
			if c.Stopped() {
				return nil
			}
		}
	}
	return nil
}
