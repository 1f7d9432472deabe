package model

// MaxRawTextLength bounds the recognized text kept with an extraction. It
// counts Unicode code points, so a multi-byte character is never split.
const MaxRawTextLength = 2000

// DocketExtraction holds the fields recognized on a delivery docket.
// Every field is best effort and may be empty.
type DocketExtraction struct {
	PONumber          string `json:"poNumber,omitempty"`
	SupplierName      string `json:"supplierName,omitempty"`
	PackingSlipNumber string `json:"packingSlipNumber,omitempty"`
	TrackingNumber    string `json:"trackingNumber,omitempty"`
	DeliveryDate      string `json:"deliveryDate,omitempty"`
	RawText           string `json:"rawOcrText,omitempty"`
}

// Found reports whether a PO number was recognized.
func (d DocketExtraction) Found() bool {
	return d.PONumber != ""
}
