package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

// LabelDateLayout is the day-first date printed on labels.
const LabelDateLayout = "02/01/2006"

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// receivedLabels makes one label per selected line, falling back to the
// PO's job and customer when the line has none.
func receivedLabels(po *model.PurchaseOrder, selection []selectedItem, location string, date time.Time) []model.Label {
	labels := make([]model.Label, 0, len(selection))
	for _, sel := range selection {
		labels = append(labels, model.Label{
			JobNumber:    firstNonEmpty(sel.item.JobNumber, po.JobNumber, model.NotApplicable),
			CustomerName: firstNonEmpty(sel.item.CustomerName, po.CustomerName, model.NotApplicable),
			PartNo:       sel.item.PartNo,
			Description:  sel.item.Description,
			Quantity:     sel.quantity,
			Location:     location,
			Date:         date.Format(LabelDateLayout),
			PONumber:     firstNonEmpty(po.PONumber, model.NotApplicable),
		})
	}
	return labels
}

// allocatedItems are the lines already put away somewhere.
func allocatedItems(po *model.PurchaseOrder) []model.LineItem {
	var items []model.LineItem
	for _, item := range po.Items {
		if item.IsAllocated() {
			items = append(items, item)
		}
	}
	return items
}

// AllocatedLabels makes one label per received unit of every allocated
// line on po.
func AllocatedLabels(po *model.PurchaseOrder, date time.Time) []model.Label {
	var labels []model.Label
	for _, item := range allocatedItems(po) {
		qty := item.QuantityReceived
		if qty == 0 {
			qty = item.QuantityOrdered
		}
		for range int(math.Ceil(qty)) {
			labels = append(labels, model.Label{
				JobNumber:    item.JobNumber,
				CustomerName: item.CustomerName,
				PartNo:       item.PartNo,
				Description:  item.Description,
				Quantity:     qty,
				Location:     item.StorageLocation,
				Date:         date.Format(LabelDateLayout),
				PONumber:     po.PONumber,
			})
		}
	}
	return labels
}

func (c *Controller) printLabels() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &c.st.receive
	if r.po == nil || len(r.selection) == 0 {
		return c.reject("No items to print labels for")
	}
	location := r.lastStorageName
	if r.storage != nil {
		location = r.storage.Name
	}
	c.st.labels = receivedLabels(r.po, r.selection, firstNonEmpty(location, "Unknown"), c.now())
	c.setStatus(StatusInfo, fmt.Sprintf("%d label(s) ready to print", len(c.st.labels)))
	return nil
}

func (c *Controller) reprintLabels() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.st.receive.po == nil {
		return c.reject("Look up a PO first")
	}
	labels := AllocatedLabels(c.st.receive.po, c.now())
	if len(labels) == 0 {
		return c.reject("No allocated items to print labels for.")
	}
	c.st.labels = labels
	c.setStatus(StatusInfo, fmt.Sprintf("%d label(s) ready to print", len(labels)))
	return nil
}

func (c *Controller) openLabels() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.labelPO = labelLookupState{}
	c.st.labels = nil
	c.showLocked(ScreenLabels)
	return nil
}

func (c *Controller) lookupLabels(ctx context.Context, number string) error {
	number = strings.TrimSpace(number)

	c.mu.Lock()
	if number == "" {
		err := c.reject("Please enter a PO number")
		c.mu.Unlock()
		return err
	}
	tk, err := c.begin(opLookup)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.setStatus(StatusLoading, "Looking up...")
	c.mu.Unlock()

	po, err := c.backend.LookupPO(ctx, number)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.end(tk) {
		return nil
	}
	c.st.labels = nil
	if err != nil {
		c.st.labelPO = labelLookupState{}
		return c.fail(failureText(err, "PO not found"), err)
	}

	c.st.labelPO = labelLookupState{po: clonePO(po)}
	c.st.status = Status{}
	c.st.labels = AllocatedLabels(po, c.now())
	if len(c.st.labels) == 0 {
		c.st.labelPO.message = "No allocated items found on this PO."
	}
	return nil
}

func (c *Controller) generatePickingSlip(ctx context.Context) error {
	c.mu.Lock()
	s := c.st.success
	r := &c.st.receive
	if s == nil || r.po == nil || len(r.selection) == 0 {
		if s != nil {
			s.pickingSlip.message = "No items to generate slip for"
		}
		err := c.reject("No items to generate slip for")
		c.mu.Unlock()
		return err
	}
	if s.pickingSlip.status == TaskSucceeded {
		c.mu.Unlock()
		return common.Validation("Picking slip already uploaded")
	}
	tk, err := c.begin(opPickingSlip)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	location := "Unknown"
	if r.storage != nil {
		location = r.storage.Name
	}
	req := service.PickingSlipRequest{
		POID:         r.po.ID,
		PONumber:     r.po.PONumber,
		JobNumber:    r.po.JobNumber,
		VendorName:   r.po.VendorName,
		CustomerName: r.po.CustomerName,
	}
	for _, sel := range r.selection {
		req.Items = append(req.Items, service.PickingSlipItem{
			Description:     sel.item.Description,
			PartNo:          sel.item.PartNo,
			Quantity:        sel.quantity,
			StorageLocation: location,
		})
	}
	s.pickingSlip.message = "Creating PDF and uploading..."
	c.mu.Unlock()

	res, err := c.backend.GeneratePickingSlip(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.end(tk) {
		return nil
	}
	s.pickingSlip.attempts++
	if err != nil {
		slog.Warn("Picking slip failed", "po_number", req.PONumber, "error", err)
		msg := failureText(err, "Failed to generate")
		if !backendRejected(err) {
			msg = "Error: could not reach the server"
		}
		s.pickingSlip.status = TaskFailed
		s.pickingSlip.message = msg
		return c.fail(msg, err)
	}
	s.pickingSlip.status = TaskSucceeded
	s.pickingSlip.message = "Picking slip uploaded to Job " + res.JobNumber
	return nil
}
