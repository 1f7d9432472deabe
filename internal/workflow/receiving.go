package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

func (c *Controller) openReceive() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showLocked(ScreenScan)
	return nil
}

func (c *Controller) lookupPO(ctx context.Context, number string) error {
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
	c.setStatus(StatusLoading, "Looking up PO...")
	c.mu.Unlock()

	po, err := c.backend.LookupPO(ctx, number)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.end(tk) {
		return nil
	}
	if err != nil {
		slog.Warn("PO lookup failed", "po_number", number, "error", err)
		return c.fail(failureText(err, "Failed to lookup PO"), err)
	}

	r := &c.st.receive
	r.po = clonePO(po)
	r.selection = nil
	r.backorders = nil
	r.drafts = make(map[int]float64)
	r.storage = nil
	r.photos.items = nil
	r.photos.group = nil
	c.st.labels = nil
	c.showLocked(ScreenVerify)

	slog.Info("Loaded PO", "po_number", po.PONumber, "items", len(po.Items))
	return nil
}

func (c *Controller) scanDocket(ctx context.Context, image []byte) error {
	c.mu.Lock()
	if c.scanner == nil {
		err := c.reject("Docket scanning is not available")
		c.mu.Unlock()
		return err
	}
	if len(image) == 0 {
		err := c.reject("No docket photo captured")
		c.mu.Unlock()
		return err
	}
	tk, err := c.begin(opDocket)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	d := &c.st.receive.docket
	*d = docketState{scanning: true, hasPhoto: true}
	c.setStatus(StatusLoading, "Scanning document...")
	c.mu.Unlock()

	res := c.scanner.Scan(ctx, image, func(fraction float64) {
		c.mu.Lock()
		if c.epoch != tk.epoch {
			c.mu.Unlock()
			return
		}
		c.st.receive.docket.progress = fraction
		if c.st.receive.docket.scanning {
			c.setStatus(StatusLoading, fmt.Sprintf("Scanning document... %d%%", int(math.Round(fraction*100))))
		}
		c.mu.Unlock()
		c.notify()
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.end(tk) {
		return nil
	}
	d.scanning = false
	d.extraction = res.Extraction
	d.message = res.Message
	d.found = res.Found
	if res.Found {
		c.setStatus(StatusInfo, res.Message)
	} else {
		c.setStatus(StatusError, res.Message)
	}
	return nil
}

func (r *receiveState) draft(index int, item model.LineItem) float64 {
	if v, ok := r.drafts[index]; ok {
		return v
	}
	return item.Remaining()
}

// seedQuantity is the quantity a line starts with when selected: the draft
// if positive, else what remains, else the ordered quantity for lines that
// are already fully receipted.
func seedQuantity(item model.LineItem, draft float64) float64 {
	if draft > 0 {
		return draft
	}
	if item.ReceiptStatus == model.FullyReceipted || item.Remaining() <= 0 {
		return item.QuantityOrdered
	}
	return item.Remaining()
}

// lineItem returns the PO line at index. Callers hold the lock.
func (c *Controller) lineItem(index int) (model.LineItem, error) {
	if c.st.receive.po == nil {
		return model.LineItem{}, c.reject("Look up a PO first")
	}
	item, ok := c.st.receive.po.Item(index)
	if !ok {
		return model.LineItem{}, c.reject(fmt.Sprintf("No item at position %d", index+1))
	}
	return item, nil
}

func (c *Controller) toggleItem(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, err := c.lineItem(index)
	if err != nil {
		return err
	}
	r := &c.st.receive
	if i := r.selected(index); i >= 0 {
		r.selection = append(r.selection[:i], r.selection[i+1:]...)
		return nil
	}
	r.selection = append(r.selection, selectedItem{
		item:     item,
		index:    index,
		quantity: seedQuantity(item, r.draft(index, item)),
	})
	return nil
}

// setQuantity clamps the draft into [0, remaining]. It changes the selection
// only when the line is selected.
func (c *Controller) setQuantity(index int, qty float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, err := c.lineItem(index)
	if err != nil {
		return err
	}
	qty = clamp(qty, 0, math.Max(item.Remaining(), 0))

	r := &c.st.receive
	r.drafts[index] = qty
	if i := r.selected(index); i >= 0 {
		r.selection[i].quantity = qty
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (c *Controller) selectAll(selected bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &c.st.receive
	if r.po == nil {
		return c.reject("Look up a PO first")
	}
	r.selection = nil
	if !selected {
		return nil
	}
	for i, item := range r.po.Items {
		r.selection = append(r.selection, selectedItem{
			item:     item,
			index:    i,
			quantity: seedQuantity(item, r.draft(i, item)),
		})
	}
	return nil
}

// toggleBackorder records what remains at the moment of flagging.
// Backorders are independent of the selection.
func (c *Controller) toggleBackorder(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, err := c.lineItem(index)
	if err != nil {
		return err
	}
	r := &c.st.receive
	if i := r.backordered(index); i >= 0 {
		r.backorders = append(r.backorders[:i], r.backorders[i+1:]...)
		return nil
	}
	r.backorders = append(r.backorders, service.BackorderItem{
		Index:        index,
		CatalogID:    item.CatalogID,
		Description:  item.Description,
		PartNo:       item.PartNo,
		Quantity:     item.Remaining(),
		JobNumber:    item.JobNumber,
		CustomerName: item.CustomerName,
	})
	return nil
}

func (c *Controller) proceedToStorage(ctx context.Context) error {
	c.mu.Lock()
	if len(c.st.receive.selection) == 0 {
		err := c.reject("Select at least one item")
		c.mu.Unlock()
		return err
	}
	c.showLocked(ScreenStorage)
	c.mu.Unlock()

	return c.ensureLocations(ctx)
}

// ensureLocations loads storage locations once per session.
func (c *Controller) ensureLocations(ctx context.Context) error {
	c.mu.Lock()
	if len(c.st.locations) > 0 {
		c.mu.Unlock()
		return nil
	}
	epoch := c.epoch
	c.mu.Unlock()

	locations, err := c.backend.StorageLocations(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended(epoch) {
		return nil
	}
	if err != nil {
		slog.Warn("Failed to load storage locations", "error", err)
		return c.fail(failureText(err, "Failed to load storage locations"), err)
	}
	c.st.locations = locations
	return nil
}

// location finds a storage location by id. Callers hold the lock.
func (c *Controller) location(id int) (model.StorageLocation, bool) {
	for _, loc := range c.st.locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return model.StorageLocation{}, false
}

func (c *Controller) selectStorage(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &c.st.receive
	if id == 0 {
		r.storage = nil
		return nil
	}
	loc, ok := c.location(id)
	if !ok {
		return c.reject("Unknown storage location")
	}
	r.storage = &loc
	r.lastStorageName = loc.Name
	return nil
}

func (c *Controller) setPhotoMode(mode PhotoMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &c.st.receive.photos
	switch mode {
	case PhotoNone, PhotoSkip:
		p.group = nil
		p.items = nil
	case PhotoIndividual:
		p.items = nil
	case PhotoGroup:
	default:
		return c.reject("Unknown photo mode")
	}
	p.mode = mode
	return nil
}

func (c *Controller) attachGroupPhoto(image []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &c.st.receive.photos
	if p.mode != PhotoGroup {
		return c.reject("Choose group photo mode first")
	}
	if len(image) == 0 {
		return c.reject("No photo captured")
	}
	p.group = image
	return nil
}

func (c *Controller) removeGroupPhoto() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.receive.photos.group = nil
	return nil
}

func (c *Controller) attachItemPhoto(index int, image []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &c.st.receive
	if r.photos.mode != PhotoIndividual {
		return c.reject("Choose individual photo mode first")
	}
	if r.selected(index) < 0 {
		return c.reject("Select the item before adding its photo")
	}
	if len(image) == 0 {
		return c.reject("No photo captured")
	}
	if r.photos.items == nil {
		r.photos.items = make(map[int][]byte)
	}
	r.photos.items[index] = image
	return nil
}

func (c *Controller) removeItemPhoto(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.st.receive.photos.items, index)
	return nil
}

// startNewPO discards the PO, its selection, storage, docket scan,
// backorders, photos and the last allocation result.
func (c *Controller) startNewPO() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight(opAllocate) {
		return fmt.Errorf("%w: %s", common.ErrOperationInFlight, opAllocate)
	}
	c.st.receive = receiveState{
		drafts:          make(map[int]float64),
		lastStorageName: c.st.receive.lastStorageName,
	}
	c.st.success = nil
	c.st.labels = nil
	c.showLocked(ScreenScan)
	return nil
}
