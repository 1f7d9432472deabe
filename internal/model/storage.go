package model

// StorageLocation is a storage device in the job-management system.
type StorageLocation struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// StockRecord is a quantity of a catalog item held at a storage location.
type StockRecord struct {
	PartNo      string  `json:"partNo"`
	Description string  `json:"description"`
	Name        string  `json:"name"`
	JobNumber   string  `json:"jobNumber"`
	StockID     int     `json:"stockId"`
	CatalogID   int     `json:"catalogId"`
	JobID       int     `json:"jobId"`
	Quantity    float64 `json:"quantity"`
}

// Label returns the best human-readable name for the record.
func (s StockRecord) Label() string {
	switch {
	case s.Description != "":
		return s.Description
	case s.Name != "":
		return s.Name
	default:
		return s.PartNo
	}
}
