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

import "strings"

// Screen size in pixels. Color is monochrome.
const (
	Width      = 64
	Height     = 32
	PixelCount = Width * Height
)

// DisplayEventKind tells what a DisplayEvent reports.
type DisplayEventKind uint8

const (
	// DisplaySet means pixel Index now has Value.
	DisplaySet DisplayEventKind = iota
	// DisplayClear means every pixel is now off.
	DisplayClear
)

// A DisplayEvent is a single change to the screen. Replaying the events in
// order reconstructs the screen exactly, see Framebuffer.
type DisplayEvent struct {
	Kind DisplayEventKind
	// Index is x + y*Width.
	Index int
	Value bool
}

// Display is the canonical 64x32 screen. Every change is published to the
// display feed.
type Display struct {
	pixels [PixelCount]bool
	feed   *Queue[DisplayEvent]
}

// NewDisplay returns a blank display publishing to feed. feed may be nil.
func NewDisplay(feed *Queue[DisplayEvent]) *Display {
	return &Display{feed: feed}
}

// Toggle flips the pixel at x, y and returns its previous value.
func (d *Display) Toggle(x, y int) bool {
	index := x + y*Width
	old := d.pixels[index]
	d.pixels[index] = !old
	d.publish(DisplayEvent{Kind: DisplaySet, Index: index, Value: !old})
	return old
}

// Clear turns off every pixel.
func (d *Display) Clear() {
	d.pixels = [PixelCount]bool{}
	d.publish(DisplayEvent{Kind: DisplayClear})
}

// Pixel returns the pixel at x, y.
func (d *Display) Pixel(x, y int) bool { return d.pixels[x+y*Width] }

func (d *Display) String() string { return dumpPixels(&d.pixels) }

func (d *Display) publish(ev DisplayEvent) {
	if d.feed != nil {
		d.feed.Push(ev)
	}
}

// -----------------------------------------------------------------------------

// A Framebuffer rebuilds the screen on the consumer side of the display feed.
type Framebuffer struct {
	pixels [PixelCount]bool
}

// Apply replays a single display event.
func (f *Framebuffer) Apply(ev DisplayEvent) {
	switch ev.Kind {
	case DisplaySet:
		if ev.Index >= 0 && ev.Index < PixelCount {
			f.pixels[ev.Index] = ev.Value
		}
	case DisplayClear:
		f.pixels = [PixelCount]bool{}
	}
}

// Pixel returns the pixel at x, y.
func (f *Framebuffer) Pixel(x, y int) bool { return f.pixels[x+y*Width] }

func (f *Framebuffer) String() string { return dumpPixels(&f.pixels) }

func dumpPixels(p *[PixelCount]bool) string {
	var sb strings.Builder
	sb.Grow((Width + 1) * Height)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if p[x+y*Width] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
