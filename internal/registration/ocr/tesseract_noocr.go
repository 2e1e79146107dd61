//go:build !ocr

package ocr

import "context"

// TesseractEngine is a stub compiled without the "ocr" build tag; the real
// implementation wraps the Tesseract library and needs CGO plus an
// installed Tesseract.
type TesseractEngine struct{}

func NewTesseractEngine(string) *TesseractEngine { return &TesseractEngine{} }

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) Recognize(context.Context, []byte) ([]string, error) {
	return nil, ErrEngineUnavailable
}
