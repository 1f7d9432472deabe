// Package docket recognizes text on photographed delivery dockets and pulls
// out the fields receiving cares about.
package docket

import (
	"regexp"
	"strings"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/model"
)

// PO number patterns, tried in order. An explicit label wins over a bare
// five digit number in the 2xxxx range.
var poPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:PO|P\.O\.?|Purchase\s*Order|Order\s*No\.?)\s*[#:]?\s*(\d{4,6})`),
	regexp.MustCompile(`\b(2\d{4})\b`),
}

var (
	supplierPattern = regexp.MustCompile(`(?i)(?:Supplier|Vendor|From|Company)[:\s]+([A-Za-z][A-Za-z\s&'.,-]+)`)
	slipPattern     = regexp.MustCompile(`(?i)(?:Packing\s*Slip|Slip\s*No|Docket\s*No|Invoice\s*No)[.:\s#]*(\S+)`)
	trackingPattern = regexp.MustCompile(`(?i)(?:Tracking|Consignment|AWB|Freight)[.:\s#]*(\S+)`)
	datePattern     = regexp.MustCompile(`(?i)(?:Date|Delivery\s*Date|Ship\s*Date)[.:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
)

// Extract parses recognized docket text. Every field is optional.
func Extract(text string) model.DocketExtraction {
	return model.DocketExtraction{
		PONumber:          FindPONumber(text),
		SupplierName:      strings.TrimSpace(common.FirstSubmatch(supplierPattern, text)),
		PackingSlipNumber: strings.TrimSpace(common.FirstSubmatch(slipPattern, text)),
		TrackingNumber:    strings.TrimSpace(common.FirstSubmatch(trackingPattern, text)),
		DeliveryDate:      strings.TrimSpace(common.FirstSubmatch(datePattern, text)),
		RawText:           truncate(text, model.MaxRawTextLength),
	}
}

// FindPONumber returns the first PO number found in text, or "".
func FindPONumber(text string) string {
	for _, re := range poPatterns {
		if po := common.FirstSubmatch(re, text); po != "" {
			return po
		}
	}
	return ""
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
