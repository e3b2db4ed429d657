// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pipe2d provides a minimal lazily evaluated 2D sampling function.
//
// A [Pipe] pairs a declared width and height with a pure function from real
// coordinates to values. Pipes are composed by wrapping: every combinator
// returns a new Pipe that delegates to the one it wraps, so nothing is
// computed until [Pipe.Get] is called.
//
// Only the combinators needed for image sampling are provided:
//
//   - [Pipe.Wrap]: generic coordinate/value transform
//   - [Pipe.FloorCoordinates]: nearest-neighbor snapping
//   - [Pipe.Interpolate]: four-texel interpolation (bilinear and friends)
//
// Example:
//
//	checker := pipe2d.New(8, 8, func(x, y float64) int {
//	    return (int(x) + int(y)) % 2
//	})
//	v := checker.FloorCoordinates().Get(2.7, 3.1) // samples (2, 3)
package pipe2d
