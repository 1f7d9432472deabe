package service

import (
	"fmt"

	"github.com/dockside/receiving/internal/model"
)

// APIError is a failure reported by the backend, either through a non-2xx
// status or a success=false body. Message is the backend's error text.
type APIError struct {
	Message string
	Status  int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

// AuthStatus is the answer to a session check.
type AuthStatus struct {
	Staff         *model.Identity `json:"staff,omitempty"`
	Authenticated bool            `json:"authenticated"`
}

// AllocationItem is one selected line sent for allocation.
type AllocationItem struct {
	ReceiptStatus    model.ReceiptStatus `json:"receiptStatus"`
	CatalogID        int                 `json:"catalogId"`
	Quantity         float64             `json:"quantity"`
	QuantityOrdered  float64             `json:"quantityOrdered"`
	QuantityReceived float64             `json:"quantityReceived"`
}

// AllocationRequest commits received items to a storage location.
type AllocationRequest struct {
	PONumber        string           `json:"poNumber"`
	JobNumber       string           `json:"jobNumber"`
	VendorName      string           `json:"vendorName"`
	StorageName     string           `json:"storageName"`
	IdempotencyKey  string           `json:"-"`
	Items           []AllocationItem `json:"items"`
	POID            int              `json:"poId"`
	StorageDeviceID int              `json:"storageDeviceId"`
}

// AllocationResult is the backend's report on an allocation.
type AllocationResult struct {
	AllocatedBy      string `json:"allocatedBy"`
	Error            string `json:"error,omitempty"`
	SuccessCount     int    `json:"successCount"`
	Success          bool   `json:"success"`
	AllVerified      bool   `json:"allVerified"`
	GoodsReceivedSet bool   `json:"goodsReceivedSet"`
}

// BackorderItem is a line flagged as not delivered.
type BackorderItem struct {
	Description  string  `json:"description"`
	PartNo       string  `json:"partNo"`
	JobNumber    string  `json:"jobNumber,omitempty"`
	CustomerName string  `json:"customerName,omitempty"`
	Index        int     `json:"index"`
	CatalogID    int     `json:"catalogId"`
	Quantity     float64 `json:"quantity"`
}

// BackorderRequest records backordered lines for a PO.
type BackorderRequest struct {
	PONumber   string          `json:"poNumber"`
	VendorName string          `json:"vendorName"`
	Items      []BackorderItem `json:"items"`
	POID       int             `json:"poId"`
}

// DocketDataRequest persists the fields recognized on a delivery docket.
type DocketDataRequest struct {
	PONumber string `json:"poNumber"`
	model.DocketExtraction
	POID int `json:"poId"`
}

// Photo is an image encoded as a data URL.
type Photo struct {
	Base64   string `json:"base64"`
	Filename string `json:"filename"`
}

// PhotoUploadRequest attaches delivery photos to jobs and the PO.
type PhotoUploadRequest struct {
	PONumber   string   `json:"poNumber"`
	JobIDs     []string `json:"jobIds"`
	Photos     []Photo  `json:"photos"`
	POSimproID int      `json:"poSimproId"`
}

// PhotoUploadResult reports where photos were attached.
type PhotoUploadResult struct {
	Error      string `json:"error,omitempty"`
	JobUploads int    `json:"jobUploads"`
	POUploads  int    `json:"poUploads"`
	Uploaded   int    `json:"uploaded"`
	Success    bool   `json:"success"`
}

// PickingSlipItem is one line on a generated picking slip.
type PickingSlipItem struct {
	Description     string  `json:"description"`
	PartNo          string  `json:"partNo"`
	StorageLocation string  `json:"storageLocation"`
	Quantity        float64 `json:"quantity"`
}

// PickingSlipRequest asks the backend to produce and file a picking slip.
type PickingSlipRequest struct {
	PONumber     string            `json:"poNumber"`
	JobNumber    string            `json:"jobNumber"`
	VendorName   string            `json:"vendorName"`
	CustomerName string            `json:"customerName"`
	Items        []PickingSlipItem `json:"items"`
	POID         int               `json:"poId"`
}

// PickingSlipResult names the job the slip was filed against.
type PickingSlipResult struct {
	JobNumber string `json:"jobNumber"`
	Error     string `json:"error,omitempty"`
	Success   bool   `json:"success"`
}

// RelocateItem is one stock record to move.
type RelocateItem struct {
	PartNo      string  `json:"partNo"`
	Description string  `json:"description"`
	StockID     int     `json:"stockId"`
	CatalogID   int     `json:"catalogId"`
	JobID       int     `json:"jobId"`
	Quantity    float64 `json:"quantity"`
}

// RelocateRequest moves stock between two storage locations.
type RelocateRequest struct {
	SourceName     string         `json:"sourceName"`
	DestName       string         `json:"destName"`
	IdempotencyKey string         `json:"-"`
	Items          []RelocateItem `json:"items"`
	SourceID       int            `json:"sourceId"`
	DestID         int            `json:"destId"`
}

// RelocateResult is either an immediate move or a queued transfer.
type RelocateResult struct {
	Note                      string `json:"note,omitempty"`
	MovedBy                   string `json:"movedBy,omitempty"`
	Error                     string `json:"error,omitempty"`
	SuccessCount              int    `json:"successCount"`
	QueuedCount               int    `json:"queuedCount"`
	Success                   bool   `json:"success"`
	RequiresBrowserAutomation bool   `json:"requiresBrowserAutomation"`
}

// CreateStaffRequest adds an account.
type CreateStaffRequest struct {
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	Password    string     `json:"password"`
	Role        model.Role `json:"role"`
}

// UpdateStaffRequest changes an account. Nil fields are left unchanged and
// an empty password keeps the current one.
type UpdateStaffRequest struct {
	DisplayName *string     `json:"displayName,omitempty"`
	Role        *model.Role `json:"role,omitempty"`
	Active      *bool       `json:"active,omitempty"`
	Password    string      `json:"password,omitempty"`
}
