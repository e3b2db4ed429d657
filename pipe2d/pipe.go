// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipe2d

import "math"

// SampleFunc evaluates a pipe at real-valued coordinates.
type SampleFunc[T any] func(x, y float64) T

// WrapFunc builds a new sample from an underlying sampler and coordinates.
type WrapFunc[T any] func(get SampleFunc[T], x, y float64) T

// InterpolateFunc combines the four texels surrounding a coordinate.
// tl, tr, bl and br are the samples at (x0,y0), (x1,y0), (x0,y1) and (x1,y1);
// fx and fy are the fractional offsets within the cell, in [0, 1).
type InterpolateFunc[T any] func(tl, tr, bl, br T, fx, fy float64) T

// Pipe is a lazily evaluated 2D function over a width x height domain.
//
// A Pipe holds no mutable state: Get may be called any number of times, in
// any order and from any number of goroutines, and returns the same value for
// the same coordinates. Results are not cached.
//
// The declared width and height describe the domain for consumers such as
// rasterizers; Get itself is defined for every real coordinate.
type Pipe[T any] struct {
	width  int
	height int
	sample SampleFunc[T]
}

// New creates a pipe of the given size backed by fn.
// Negative dimensions are treated as zero.
func New[T any](width, height int, fn SampleFunc[T]) *Pipe[T] {
	return &Pipe[T]{
		width:  max(width, 0),
		height: max(height, 0),
		sample: fn,
	}
}

// Width returns the declared domain width.
func (p *Pipe[T]) Width() int {
	return p.width
}

// Height returns the declared domain height.
func (p *Pipe[T]) Height() int {
	return p.height
}

// Get evaluates the pipe at (x, y).
func (p *Pipe[T]) Get(x, y float64) T {
	return p.sample(x, y)
}

// Wrap returns a pipe of the same size whose samples are computed by fn
// from this pipe.
func (p *Pipe[T]) Wrap(fn WrapFunc[T]) *Pipe[T] {
	get := p.sample
	return New(p.width, p.height, func(x, y float64) T {
		return fn(get, x, y)
	})
}

// FloorCoordinates returns a pipe that snaps every coordinate down to its
// containing integer cell before sampling (nearest-neighbor lookup biased
// toward the top-left corner of each cell).
func (p *Pipe[T]) FloorCoordinates() *Pipe[T] {
	return p.Wrap(func(get SampleFunc[T], x, y float64) T {
		return get(math.Floor(x), math.Floor(y))
	})
}

// Interpolate returns a pipe that samples the four integer cells around each
// coordinate and combines them with fn.
func (p *Pipe[T]) Interpolate(fn InterpolateFunc[T]) *Pipe[T] {
	return p.Wrap(func(get SampleFunc[T], x, y float64) T {
		x0 := math.Floor(x)
		y0 := math.Floor(y)
		x1 := x0 + 1
		y1 := y0 + 1
		return fn(
			get(x0, y0), get(x1, y0),
			get(x0, y1), get(x1, y1),
			x-x0, y-y0,
		)
	})
}
