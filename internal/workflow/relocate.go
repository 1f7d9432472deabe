package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/service"
)

func (c *Controller) openRelocate(ctx context.Context) error {
	if err := c.startNewRelocate(); err != nil {
		return err
	}
	return c.ensureLocations(ctx)
}

func (c *Controller) startNewRelocate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight(opRelocate) {
		return fmt.Errorf("%w: %s", common.ErrOperationInFlight, opRelocate)
	}
	c.st.relocate = relocateState{}
	c.showLocked(ScreenRelocateSource)
	return nil
}

func (c *Controller) selectRelocateSource(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rl := &c.st.relocate
	if id == 0 {
		rl.source = nil
		rl.clearPicks()
		return nil
	}
	loc, ok := c.location(id)
	if !ok {
		return c.reject("Unknown storage location")
	}
	if rl.source == nil || rl.source.ID != id {
		rl.clearPicks()
	}
	rl.source = &loc
	return nil
}

func (c *Controller) loadRelocateItems(ctx context.Context) error {
	c.mu.Lock()
	if c.st.relocate.source == nil {
		err := c.reject("Select a storage location first")
		c.mu.Unlock()
		return err
	}
	tk, err := c.begin(opStock)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	sourceID := c.st.relocate.source.ID
	c.setStatus(StatusLoading, "Loading items from storage...")
	c.mu.Unlock()

	records, err := c.backend.StockAt(ctx, sourceID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.end(tk) {
		return nil
	}
	if err != nil {
		slog.Warn("Failed to load stock for relocation", "location_id", sourceID, "error", err)
		return c.fail(failureText(err, "Failed to load items"), err)
	}
	if len(records) == 0 {
		return c.fail("No items found in this location", common.ErrNotFound)
	}

	rl := &c.st.relocate
	rl.items = records
	rl.selected = nil
	c.showLocked(ScreenRelocateItems)
	return nil
}

func (c *Controller) toggleRelocateItem(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rl := &c.st.relocate
	if index < 0 || index >= len(rl.items) {
		return c.reject(fmt.Sprintf("No item at position %d", index+1))
	}
	if i := rl.selectedAt(index); i >= 0 {
		rl.selected = append(rl.selected[:i], rl.selected[i+1:]...)
		return nil
	}
	rl.selected = append(rl.selected, index)
	return nil
}

func (c *Controller) selectAllRelocate(selected bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rl := &c.st.relocate
	rl.selected = nil
	if selected {
		for i := range rl.items {
			rl.selected = append(rl.selected, i)
		}
	}
	return nil
}

// proceedToRelocateDest always starts the destination step with nothing
// chosen.
func (c *Controller) proceedToRelocateDest() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rl := &c.st.relocate
	if len(rl.selected) == 0 {
		return c.reject("Select at least one item")
	}
	rl.dest = nil
	rl.warning = false
	c.showLocked(ScreenRelocateDest)
	return nil
}

func (c *Controller) selectRelocateDest(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rl := &c.st.relocate
	rl.warning = false
	if id == 0 {
		rl.dest = nil
		return nil
	}
	if rl.source != nil && id == rl.source.ID {
		rl.dest = nil
		rl.warning = true
		return c.reject("Destination must be different from the source location")
	}
	loc, ok := c.location(id)
	if !ok {
		return c.reject("Unknown storage location")
	}
	rl.dest = &loc
	c.st.status = Status{}
	return nil
}

func (c *Controller) executeRelocate(ctx context.Context) error {
	c.mu.Lock()
	rl := &c.st.relocate
	if rl.source == nil || rl.dest == nil || len(rl.selected) == 0 {
		err := c.reject("Please select items and a destination")
		c.mu.Unlock()
		return err
	}
	if rl.dest.ID == rl.source.ID {
		rl.warning = true
		err := c.reject("Destination must be different from the source location")
		c.mu.Unlock()
		return err
	}
	tk, err := c.begin(opRelocate)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	source, dest := *rl.source, *rl.dest
	req := service.RelocateRequest{
		SourceID:       source.ID,
		SourceName:     source.Name,
		DestID:         dest.ID,
		DestName:       dest.Name,
		IdempotencyKey: c.newKey(),
	}
	for _, i := range rl.selected {
		rec := rl.items[i]
		req.Items = append(req.Items, service.RelocateItem{
			StockID:     rec.StockID,
			CatalogID:   rec.CatalogID,
			Quantity:    rec.Quantity,
			PartNo:      rec.PartNo,
			Description: firstNonEmpty(rec.Description, rec.Name),
			JobID:       rec.JobID,
		})
	}
	selected := len(rl.selected)
	staffName := c.actor().DisplayName
	c.showLocked(ScreenProcessing)
	c.setStatus(StatusLoading, "Moving to "+dest.Name)
	c.mu.Unlock()

	slog.Info("Submitting relocation",
		"source", source.Name,
		"dest", dest.Name,
		"items", len(req.Items),
		"idempotency_key", req.IdempotencyKey)

	res, err := c.backend.Relocate(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.end(tk) {
		return nil
	}
	if err != nil {
		slog.Error("Relocation failed", "error", err)
		c.showLocked(ScreenRelocateDest)
		detail := failureText(err, "Unknown error")
		if !backendRejected(err) {
			detail = "could not reach the server"
		}
		return c.fail("Relocation failed: "+detail, err)
	}

	c.st.relocate.result = relocateOutcome(res, selected, staffName, source.Name, dest.Name)
	c.showLocked(ScreenRelocateSuccess)
	return nil
}

// relocateOutcome distinguishes a queued transfer from an immediate move.
// Counts fall back to how many records were selected.
func relocateOutcome(res *service.RelocateResult, selected int, staffName, from, to string) *RelocateOutcome {
	out := &RelocateOutcome{From: from, To: to}
	if res.RequiresBrowserAutomation {
		out.Queued = true
		out.Count = res.QueuedCount
		if out.Count == 0 {
			out.Count = selected
		}
		out.Summary = fmt.Sprintf("%d item(s) queued for transfer", out.Count)
		out.Note = firstNonEmpty(res.Note, "Transfer will be processed automatically.")
		out.StaffName = staffName
		return out
	}
	out.Count = res.SuccessCount
	if out.Count == 0 {
		out.Count = selected
	}
	out.Summary = fmt.Sprintf("%d item(s) moved", out.Count)
	out.StaffName = firstNonEmpty(res.MovedBy, staffName)
	return out
}
