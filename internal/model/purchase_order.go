package model

import "strconv"

// ReceiptStatus is the backend's receiving state for a line item.
type ReceiptStatus string

// Receipt statuses reported by the backend.
const (
	NotReceipted       ReceiptStatus = "not_receipted"
	PartiallyReceipted ReceiptStatus = "partially_receipted"
	FullyReceipted     ReceiptStatus = "fully_receipted"
)

// StockHolding is the placeholder location the backend reports for items
// that have not been put away yet.
const StockHolding = "Stock Holding"

// NotApplicable is the backend's marker for a missing job number.
const NotApplicable = "N/A"

// LineItem is one ordered line on a purchase order.
type LineItem struct {
	Description      string        `json:"description"`
	PartNo           string        `json:"partNo"`
	ReceiptStatus    ReceiptStatus `json:"receiptStatus"`
	JobNumber        string        `json:"jobNumber,omitempty"`
	CustomerName     string        `json:"customerName,omitempty"`
	StorageLocation  string        `json:"storageLocation,omitempty"`
	CatalogID        int           `json:"catalogId"`
	QuantityOrdered  float64       `json:"quantityOrdered"`
	QuantityReceived float64       `json:"quantityReceived"`
}

// Remaining is the quantity still to be received.
func (li LineItem) Remaining() float64 {
	return li.QuantityOrdered - li.QuantityReceived
}

// IsAllocated reports whether the item has been put away somewhere other
// than the holding area.
func (li LineItem) IsAllocated() bool {
	return li.StorageLocation != "" && li.StorageLocation != StockHolding
}

// PurchaseOrder is a vendor order as returned by a lookup.
type PurchaseOrder struct {
	PONumber     string     `json:"poNumber"`
	VendorName   string     `json:"vendorName"`
	JobNumber    string     `json:"jobNumber"`
	CustomerName string     `json:"customerName"`
	DueDate      string     `json:"dueDate"`
	Items        []LineItem `json:"items"`
	ID           int        `json:"poId"`
}

// HasAllocatedItems reports whether any item already has a storage location.
func (po *PurchaseOrder) HasAllocatedItems() bool {
	if po == nil {
		return false
	}
	for _, item := range po.Items {
		if item.IsAllocated() {
			return true
		}
	}
	return false
}

// Item returns the line item at index, or false when out of range.
func (po *PurchaseOrder) Item(index int) (LineItem, bool) {
	if po == nil || index < 0 || index >= len(po.Items) {
		return LineItem{}, false
	}
	return po.Items[index], true
}

// HasJob reports whether job is a usable job number.
func HasJob(job string) bool {
	return job != "" && job != NotApplicable
}

// FormatQuantity renders a quantity without a trailing fraction for whole numbers.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
