package docket

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// ProgressFunc receives recognition progress between 0 and 1.
type ProgressFunc func(fraction float64)

// Recognizer turns an image into text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, progress ProgressFunc) (string, error)
}

// Tesseract recognizes text with a local Tesseract installation.
type Tesseract struct {
	Languages []string
}

// NewTesseract creates a recognizer for the given languages, English when
// none are named.
func NewTesseract(languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{Languages: languages}
}

type recognition struct {
	err  error
	text string
}

// Recognize runs OCR on image. Tesseract cannot be interrupted, so a
// cancelled context returns early and leaves the engine to finish alone.
func (t *Tesseract) Recognize(ctx context.Context, image []byte, progress ProgressFunc) (string, error) {
	report(progress, 0)

	done := make(chan recognition, 1)
	go func() {
		text, err := t.recognize(image, progress)
		done <- recognition{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		report(progress, 1)
		return r.text, nil
	}
}

func (t *Tesseract) recognize(image []byte, progress ProgressFunc) (string, error) {
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(t.Languages...); err != nil {
		return "", fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to load docket image: %w", err)
	}
	report(progress, 0.1)

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognize docket text: %w", err)
	}
	return text, nil
}

func report(progress ProgressFunc, fraction float64) {
	if progress != nil {
		progress(fraction)
	}
}
