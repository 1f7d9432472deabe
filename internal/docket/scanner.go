package docket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dockside/receiving/internal/model"
)

// Messages shown after a scan.
const (
	MessageNotFound = "Could not find PO number, please enter manually"
	MessageFailed   = "OCR failed, please enter PO number manually"
)

// Result is the outcome of scanning one docket.
type Result struct {
	Extraction *model.DocketExtraction
	Message    string
	Found      bool
}

// Scanner recognizes docket photos and extracts their fields.
type Scanner struct {
	recognizer Recognizer
}

// NewScanner creates a scanner using recognizer.
func NewScanner(recognizer Recognizer) *Scanner {
	return &Scanner{recognizer: recognizer}
}

// Scan never fails: recognition errors degrade to a manual-entry message
// and a nil extraction.
func (s *Scanner) Scan(ctx context.Context, image []byte, progress ProgressFunc) Result {
	text, err := s.recognizer.Recognize(ctx, image, progress)
	if err != nil {
		slog.Warn("Docket OCR failed", "error", err)
		return Result{Message: MessageFailed}
	}

	extraction := Extract(text)
	slog.Debug("Docket OCR complete",
		"chars", len(text),
		"po_number", extraction.PONumber,
		"supplier", extraction.SupplierName)

	if !extraction.Found() {
		return Result{Extraction: &extraction, Message: MessageNotFound}
	}
	return Result{
		Extraction: &extraction,
		Message:    fmt.Sprintf("Found PO #%s", extraction.PONumber),
		Found:      true,
	}
}
