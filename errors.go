package imagepipe

import (
	"errors"
	"fmt"
)

// Common errors for pipe creation and rendering.
var (
	// ErrInvalidDimensions is returned when width or height is negative.
	ErrInvalidDimensions = errors.New("imagepipe: invalid dimensions")

	// ErrDataSize is returned when a byte slice does not hold exactly
	// width*height*4 bytes.
	ErrDataSize = errors.New("imagepipe: data length does not match dimensions")

	// ErrAsyncSource is returned by NewImagePipe for URL sources, which can
	// only be resolved by LoadImagePipe or CreateImagePipe.
	ErrAsyncSource = errors.New("imagepipe: URL sources must be loaded with LoadImagePipe")

	// ErrNotLoaded is returned when an Image is used before any content has
	// finished loading.
	ErrNotLoaded = errors.New("imagepipe: image not loaded")

	// ErrSuperseded is delivered to a pending SetSource call when a newer
	// source was assigned before it finished loading.
	ErrSuperseded = errors.New("imagepipe: image source superseded")

	// ErrNotExportable is returned when an intermediate surface cannot be
	// exported to a data URL.
	ErrNotExportable = errors.New("imagepipe: surface cannot be exported")
)

// InvalidSourceError is returned when a value matches none of the supported
// source representations.
type InvalidSourceError struct {
	Value  any
	Reason string
}

func (e *InvalidSourceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("imagepipe: invalid image source %T: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("imagepipe: invalid image source %T", e.Value)
}

// InvalidTargetError is returned when a value matches none of the supported
// render target representations.
type InvalidTargetError struct {
	Value any
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("imagepipe: invalid render target %T", e.Value)
}

// SourceLoadError reports a failed URL load. Err holds the loader's failure.
type SourceLoadError struct {
	URL string
	Err error
}

func (e *SourceLoadError) Error() string {
	return "imagepipe: load " + e.URL + ": " + e.Err.Error()
}

func (e *SourceLoadError) Unwrap() error {
	return e.Err
}

// SinkLoadError reports that an image sink failed to load rendered content.
type SinkLoadError struct {
	Err error
}

func (e *SinkLoadError) Error() string {
	return "imagepipe: sink load: " + e.Err.Error()
}

func (e *SinkLoadError) Unwrap() error {
	return e.Err
}
