package model

// Label is the content of one printed item label.
type Label struct {
	JobNumber    string
	CustomerName string
	PartNo       string
	Description  string
	Location     string
	Date         string
	PONumber     string
	Quantity     float64
}
