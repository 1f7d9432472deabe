package model

// AllocationLog is one row of the allocation history.
type AllocationLog struct {
	CreatedAt       string `json:"created_at"`
	StaffName       string `json:"staff_name"`
	PONumber        string `json:"po_number"`
	JobNumber       string `json:"job_number"`
	VendorName      string `json:"vendor_name"`
	StorageLocation string `json:"storage_location"`
	AllocationType  string `json:"allocation_type"`
	ItemsAllocated  int    `json:"items_allocated"`
	Verified        bool   `json:"verified"`
}

// ReceiptingItem is a PO that has been allocated but not yet goods-received.
type ReceiptingItem struct {
	PONumber        string `json:"po_number"`
	VendorName      string `json:"vendor_name"`
	JobNumber       string `json:"job_number"`
	StorageLocation string `json:"storage_location"`
	AllocatedDate   string `json:"allocated_date"`
	TotalItems      int    `json:"total_items"`
}

// ReceiptingSummary is the home-screen dashboard of outstanding receipts.
type ReceiptingSummary struct {
	Items []ReceiptingItem `json:"items"`
	Count int              `json:"count"`
}

// PickItem is an order awaiting picking.
type PickItem struct {
	Vendor  string `json:"vendor"`
	JobID   int    `json:"jobId"`
	OrderID int    `json:"orderId"`
}

// PickList is the set of items ready to pick.
type PickList struct {
	Items []PickItem `json:"items"`
	Count int        `json:"count"`
}

// MysteryResult is a delivery matched by free-text search.
type MysteryResult struct {
	PONumber          string `json:"po_number"`
	CreatedAt         string `json:"created_at"`
	SupplierName      string `json:"supplier_name"`
	PackingSlipNumber string `json:"packing_slip_number"`
	TrackingNumber    string `json:"tracking_number"`
	StorageLocation   string `json:"storage_location"`
	ReceiptJob        string `json:"receipt_job"`
	StaffName         string `json:"staff_name"`
}
