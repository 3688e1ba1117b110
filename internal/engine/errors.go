package engine

import "errors"

var (
	// ErrUnsupportedLanguage is returned when the loaded language tag names
	// anything but JavaScript. No run is attempted.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrNoSource is returned when a run is requested before SetCode.
	ErrNoSource = errors.New("no source loaded")
)
