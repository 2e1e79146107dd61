// Package ocr provides the OCR collaborator boundary: engines accept image
// bytes and return the UTF-8 text lines read from them. The MRZ decoder
// treats an engine as a black box; engine failure surfaces as an error and
// never as a partial decode.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"strings"
)

// ErrEngineUnavailable is returned by engines whose backend is not compiled
// in or not configured.
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// Engine reads text lines from a document image.
type Engine interface {
	// Recognize performs OCR on the image bytes. The image data must not
	// be retained after the call returns.
	Recognize(ctx context.Context, image []byte) ([]string, error)

	// Name returns the engine name for logging
	Name() string
}

// JPEG and PNG magic bytes for image detection
var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
)

// IsImageData checks for JPEG or PNG magic bytes at the start of the data.
func IsImageData(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	return bytes.HasPrefix(data, jpegMagic) || bytes.HasPrefix(data, pngMagic)
}

// SplitLines breaks raw recognized text into its non-empty lines.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// TextEngine accepts requests whose payload already is MRZ text rather than
// an image. Clients that run OCR on-device send the zone text directly.
type TextEngine struct{}

// NewTextEngine creates a pass-through engine for pre-recognized text.
func NewTextEngine() *TextEngine {
	return &TextEngine{}
}

func (e *TextEngine) Name() string { return "text" }

func (e *TextEngine) Recognize(_ context.Context, image []byte) ([]string, error) {
	if IsImageData(image) {
		return nil, errors.New("text: payload is a binary image, not MRZ text")
	}
	lines := SplitLines(string(image))
	if len(lines) == 0 {
		return nil, errors.New("text: payload contains no text lines")
	}
	return lines, nil
}
