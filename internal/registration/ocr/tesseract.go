//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// mrzWhitelist restricts Tesseract to the MRZ character set; everything a
// scan could legally contain is an uppercase letter, a digit or the filler.
const mrzWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789<"

// TesseractEngine runs OCR in-process through the Tesseract library.
// It requires Tesseract to be installed and the "ocr" build tag; without
// the tag a stub that reports ErrEngineUnavailable is compiled instead.
type TesseractEngine struct {
	language string
}

// NewTesseractEngine creates a Tesseract-backed engine. Passport MRZ fonts
// read best with the dedicated "ocrb" traineddata when available; "eng"
// works as a fallback.
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{language: language}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// gosseract clients are not safe for concurrent use; one per call.
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return nil, fmt.Errorf("tesseract: set language: %w", err)
	}
	if err := client.SetWhitelist(mrzWhitelist); err != nil {
		return nil, fmt.Errorf("tesseract: set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("tesseract: set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("tesseract: set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract: recognize: %w", err)
	}
	return SplitLines(text), nil
}
