// Package export writes allocation logs, labels and stock listings as
// spreadsheets or CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/dockside/receiving/internal/model"
)

// Format is an output file type.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx". Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Table is one sheet of output.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]string
}

// Write renders tables in format. CSV output carries only the first table.
func Write(w io.Writer, format Format, tables ...Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("nothing to export")
	}
	if format == FormatXLSX {
		return WriteExcel(w, tables...)
	}
	return WriteCSV(w, tables[0])
}

// WriteCSV writes a header row followed by the rows.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteExcel writes one sheet per table with a shaded header row.
func WriteExcel(w io.Writer, tables ...Table) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	keepDefault := false
	for i, t := range tables {
		index, err := f.NewSheet(t.Sheet)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", t.Sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}
		if t.Sheet == "Sheet1" {
			keepDefault = true
		}
		if err := fillSheet(f, t, headerStyle); err != nil {
			return err
		}
	}
	if !keepDefault {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func fillSheet(f *excelize.File, t Table, headerStyle int) error {
	for col, header := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(t.Sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header %s: %w", header, err)
		}
		if err := f.SetCellStyle(t.Sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header %s: %w", header, err)
		}
	}

	for r, row := range t.Rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(t.Sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if len(t.Headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(t.Headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(t.Sheet, "A", last, 15); err != nil {
			return fmt.Errorf("failed to set column widths: %w", err)
		}
	}
	return nil
}

// LogsTable lists allocation history.
func LogsTable(logs []model.AllocationLog) Table {
	t := Table{
		Sheet: "Allocations",
		Headers: []string{
			"Date", "Staff", "PO Number", "Job", "Vendor", "Location", "Type", "Items", "Verified",
		},
	}
	for _, l := range logs {
		t.Rows = append(t.Rows, []string{
			l.CreatedAt,
			l.StaffName,
			l.PONumber,
			l.JobNumber,
			l.VendorName,
			l.StorageLocation,
			l.AllocationType,
			strconv.Itoa(l.ItemsAllocated),
			yesNo(l.Verified),
		})
	}
	return t
}

// LabelsTable lists label content, one row per label.
func LabelsTable(labels []model.Label) Table {
	t := Table{
		Sheet: "Labels",
		Headers: []string{
			"Job", "Customer", "Part No", "Description", "Quantity", "Location", "Date", "PO Number",
		},
	}
	for _, l := range labels {
		t.Rows = append(t.Rows, []string{
			l.JobNumber,
			l.CustomerName,
			l.PartNo,
			l.Description,
			model.FormatQuantity(l.Quantity),
			l.Location,
			l.Date,
			l.PONumber,
		})
	}
	return t
}

// StockTable lists what a storage location holds.
func StockTable(location string, records []model.StockRecord) Table {
	t := Table{
		Sheet:   "Stock",
		Headers: []string{"Location", "Part No", "Item", "Job", "Quantity"},
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			location,
			r.PartNo,
			r.Label(),
			r.JobNumber,
			model.FormatQuantity(r.Quantity),
		})
	}
	return t
}

// ReceiptingTable lists allocated POs still awaiting goods receipt.
func ReceiptingTable(items []model.ReceiptingItem) Table {
	t := Table{
		Sheet:   "Receipting",
		Headers: []string{"PO Number", "Vendor", "Job", "Location", "Allocated", "Items"},
	}
	for _, it := range items {
		t.Rows = append(t.Rows, []string{
			it.PONumber,
			it.VendorName,
			it.JobNumber,
			it.StorageLocation,
			it.AllocatedDate,
			strconv.Itoa(it.TotalItems),
		})
	}
	return t
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
